package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeproof/internal/lsp"
	"codeproof/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the codeproof language server over stdio",
	RunE:  runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Config:  cfg,
		Version: version.String(),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
