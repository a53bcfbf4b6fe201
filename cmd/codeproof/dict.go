package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codeproof/internal/dict"
	"codeproof/internal/resolve"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the accepted-word dictionary",
}

var dictAddCmd = &cobra.Command{
	Use:   "add word...",
	Short: "Accept words so they are never reported",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictAdd,
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the accepted words",
	Args:  cobra.NoArgs,
	RunE:  runDictList,
}

var dictPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the accepted-word file location",
	Args:  cobra.NoArgs,
	RunE:  runDictPath,
}

var dictCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "List or clear downloaded dictionary files",
	Args:  cobra.NoArgs,
	RunE:  runDictCache,
}

func init() {
	dictCacheCmd.Flags().Bool("clear", false, "remove every downloaded file")
	dictCmd.AddCommand(dictAddCmd, dictListCmd, dictPathCmd, dictCacheCmd)
}

func openStore(cmd *cobra.Command) (*dict.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store := dict.NewStore(cfg.DictPath, dict.NewSet(cfg.CaseSensitive))
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("accepted words: %w", err)
	}
	return store, nil
}

func runDictAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	n, err := store.AddAll(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d of %d words to %s\n", n, len(args), store.Path())
	return nil
}

func runDictList(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	words, err := dict.ReadWords(store.Path())
	if err != nil {
		return err
	}
	for _, w := range words {
		fmt.Fprintln(cmd.OutOrStdout(), w)
	}
	return nil
}

func runDictPath(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cfg.DictPath)
	return nil
}

func runDictCache(cmd *cobra.Command, _ []string) error {
	drop, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cache, err := resolve.OpenCache(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("open dictionary cache: %w", err)
	}
	entries, err := cache.Entries()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if drop {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("clear dictionary cache: %w", err)
		}
		fmt.Fprintf(out, "removed %d cached files from %s\n", len(entries), cache.Dir())
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.URL, e.Size, e.Fetched.Format("2006-01-02"))
	}
	return tw.Flush()
}
