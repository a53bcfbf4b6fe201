package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codeproof/internal/diag"
	"codeproof/internal/diagfmt"
	"codeproof/internal/dict"
	"codeproof/internal/driver"
	"codeproof/internal/observ"
	"codeproof/internal/pipeline"
	"codeproof/internal/prof"
	"codeproof/internal/source"
)

// errFindings makes the process exit 1 once the report is printed.
var errFindings = errors.New("unknown words found")

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Spell check files and directories",
	Long: `Check reports every identifier word that no configured dictionary knows.
Directories are walked recursively, skipping hidden entries and binary files.
Without paths the current directory is checked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("lang", "", "language id for every file (default: by extension); "+langHelp())
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "files checked in parallel (0 = GOMAXPROCS)")
	checkCmd.Flags().Bool("suggest", false, "attach spelling suggestions")
	checkCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics per file (0 = unlimited)")
	checkCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("timings", false, "print phase timings")
	checkCmd.Flags().String("cpuprofile", "", "write a CPU profile to file")
	checkCmd.Flags().String("memprofile", "", "write a heap profile to file")
	checkCmd.Flags().String("runtime-trace", "", "write a Go runtime trace to file")
}

type checkOptions struct {
	lang           string
	format         string
	jobs           int
	suggest        bool
	maxDiagnostics int
	pathMode       source.PathMode
	ui             triMode
	timings        bool
	profile        prof.Options
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	if opts.lang, err = flags.GetString("lang"); err != nil {
		return opts, err
	}
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, err
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.jobs < 0 {
		return opts, fmt.Errorf("--jobs must not be negative")
	}
	if opts.suggest, err = flags.GetBool("suggest"); err != nil {
		return opts, err
	}
	if opts.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, err
	}
	var ok bool
	if opts.pathMode, ok = source.ParsePathMode(pathMode); !ok {
		return opts, fmt.Errorf("invalid --path-mode value %q", pathMode)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readTriMode("ui", uiValue); err != nil {
		return opts, err
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.profile.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return opts, err
	}
	if opts.profile.Mem, err = flags.GetString("memprofile"); err != nil {
		return opts, err
	}
	if opts.profile.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return opts, err
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	timer := observ.NewTimer()

	if opts.profile.Enabled() {
		session, err := prof.Start(opts.profile)
		if err != nil {
			return err
		}
		defer func() {
			if err := session.Stop(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
			}
		}()
	}

	checker, err := startChecker(ctx, cfg, timer)
	if err != nil {
		return err
	}
	defer checker.Close()

	store := dict.NewStore(cfg.DictPath, dict.NewSet(cfg.CaseSensitive))
	if err := store.Load(); err != nil {
		return fmt.Errorf("accepted words: %w", err)
	}

	req := driver.Request{
		Paths:          args,
		Language:       opts.lang,
		Jobs:           opts.jobs,
		Suggest:        opts.suggest,
		Severity:       cfg.Severity(),
		MaxDiagnostics: opts.maxDiagnostics,
		Pipeline:       pipeline.New(checker, pipeline.WithMinLength(cfg.MinWordLength)),
		Accepted:       store.Set(),
	}

	var results []driver.FileResult
	err = timer.Measure(observ.PhaseCheck, func() error {
		if opts.format == "pretty" && shouldUseTUI(opts.ui) {
			files, err := driver.CollectFiles(args)
			if err != nil {
				return err
			}
			results, err = runCheckWithUI(ctx, "checking", files, req)
			return err
		}
		var err error
		results, err = driver.CheckFiles(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	colorMode, err := colorModeFlag(cmd)
	if err != nil {
		return err
	}
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	findings, failed, skipped := 0, 0, 0
	for _, r := range results {
		findings += r.Findings()
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", r.Path, r.Err)
		case r.Skipped:
			skipped++
		}
	}

	switch opts.format {
	case "json":
		bags := make([]*diag.Bag, 0, len(results))
		for _, r := range results {
			bags = append(bags, r.Bag)
		}
		output := diagfmt.BuildDiagnosticsOutput(bags, diagfmt.JSONOpts{
			PathMode:     opts.pathMode,
			IncludeFixes: opts.suggest,
		})
		if opts.timings {
			report := timer.Report()
			output.Timings = &report
		}
		if err := diagfmt.JSON(stdout, output); err != nil {
			return err
		}
	default:
		if err := printPretty(stdout, results, opts, useColor(colorMode, os.Stdout)); err != nil {
			return err
		}
		diagfmt.Summary(stdout, findings, len(results)-skipped-failed, skipped, useColor(colorMode, os.Stdout))
		if opts.timings {
			fmt.Fprint(stderr, timer.Summary())
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d files could not be read", failed)
	}
	if findings > 0 {
		return errFindings
	}
	return nil
}

func printPretty(w io.Writer, results []driver.FileResult, opts checkOptions, colored bool) error {
	prettyOpts := diagfmt.PrettyOpts{
		Color:      colored,
		PathMode:   opts.pathMode,
		ShowSource: true,
		ShowFixes:  opts.suggest,
	}
	for _, r := range results {
		if r.Findings() == 0 {
			continue
		}
		if err := diagfmt.Pretty(w, r.Bag, diagfmt.Sources{r.Path: r.Text}, prettyOpts); err != nil {
			return err
		}
	}
	return nil
}
