package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeproof/internal/dict"
	"codeproof/internal/pipeline"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [flags] word...",
	Short: "Check single words and print spelling suggestions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type suggestion struct {
	Word        string   `json:"word"`
	Known       bool     `json:"known"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func runSuggest(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	checker, err := startChecker(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer checker.Close()

	accepted := dict.NewSet(cfg.CaseSensitive)
	if err := dict.NewStore(cfg.DictPath, accepted).Load(); err != nil {
		return fmt.Errorf("accepted words: %w", err)
	}
	pipe := pipeline.New(checker)

	out := make([]suggestion, 0, len(args))
	for _, word := range args {
		known, err := checker.Check(ctx, word)
		if err != nil {
			return err
		}
		s := suggestion{Word: word, Known: known || accepted.Contains(word)}
		if !s.Known {
			s.Suggestions = pipe.Suggest(ctx, word)
		}
		out = append(out, s)
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, s := range out {
		switch {
		case s.Known:
			fmt.Fprintf(w, "%s: ok\n", s.Word)
		case len(s.Suggestions) == 0:
			fmt.Fprintf(w, "%s: no suggestions\n", s.Word)
		default:
			fmt.Fprintf(w, "%s: %s\n", s.Word, strings.Join(s.Suggestions, ", "))
		}
	}
	return nil
}
