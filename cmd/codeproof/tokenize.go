package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeproof/internal/diagfmt"
	"codeproof/internal/driver"
	"codeproof/internal/keywords"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file",
	Short: "Print the words codeproof finds in a file",
	Long:  `Tokenize lists every letter run of a file with its position, casing convention and, with --expand, the words it splits into`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("expand", false, "split tokens by casing convention")
	tokenizeCmd.Flags().String("lang", "", "language id (default: by extension); "+langHelp())
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	expand, err := cmd.Flags().GetBool("expand")
	if err != nil {
		return fmt.Errorf("failed to get expand flag: %w", err)
	}
	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}

	result, err := driver.Tokenize(args[0], lang, expand)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// langHelp names the languages whose reserved words are skipped.
func langHelp() string {
	return "keywords known for " + strings.Join(keywords.Languages(), ", ")
}
