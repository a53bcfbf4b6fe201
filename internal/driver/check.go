// Package driver checks files on disk in parallel for the command line.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"codeproof/internal/diag"
	"codeproof/internal/pipeline"
	"codeproof/internal/trace"
)

// Request describes one batch check.
type Request struct {
	Paths []string
	// Language overrides the language inferred from each file extension.
	Language string
	// Jobs bounds concurrent files; 0 means GOMAXPROCS.
	Jobs int
	// Suggest attaches replacement fixes to every diagnostic.
	Suggest  bool
	Severity diag.Severity
	// MaxDiagnostics caps diagnostics per file; 0 means unbounded.
	MaxDiagnostics int
	Pipeline       *pipeline.Pipeline
	Accepted       pipeline.Acceptor
	Progress       ProgressSink
}

func (r *Request) emit(evt Event) {
	if r.Progress != nil {
		r.Progress.OnEvent(evt)
	}
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path     string
	Language string
	Text     string
	Bag      *diag.Bag
	// Skipped is set for binary files, which are never checked.
	Skipped bool
	Err     error
	Elapsed time.Duration
}

// Findings returns the number of diagnostics of the file.
func (r FileResult) Findings() int {
	if r.Bag == nil {
		return 0
	}
	return r.Bag.Len()
}

// CheckFiles expands req.Paths and checks every text file. Results are in
// path order. Unreadable files are reported in their FileResult; the
// returned error is only set when the paths cannot be expanded or ctx is
// cancelled.
func CheckFiles(ctx context.Context, req Request) ([]FileResult, error) {
	if req.Pipeline == nil {
		return nil, errors.New("driver: no pipeline")
	}
	files, err := CollectFiles(req.Paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeServer, "driver.check_files")

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, path := range files {
		req.emit(Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	// each goroutine writes only its own index
	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(gctx, &req, path)
			return nil
		})
	}
	err = g.Wait()
	span.End(fmt.Sprintf("files=%d", len(files)))
	return results, err
}

func checkFile(ctx context.Context, req *Request, path string) FileResult {
	start := time.Now()
	res := FileResult{Path: path, Language: req.Language}
	if res.Language == "" {
		res.Language = LanguageID(path)
	}
	req.emit(Event{File: path, Stage: StageRead, Status: StatusWorking})

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		req.emit(Event{File: path, Stage: StageRead, Status: StatusError, Err: err, Elapsed: res.Elapsed})
		return res
	}
	if IsBinary(content) {
		res.Skipped = true
		res.Elapsed = time.Since(start)
		req.emit(Event{File: path, Stage: StageRead, Status: StatusSkipped, Elapsed: res.Elapsed})
		return res
	}
	res.Text = string(content)

	req.emit(Event{File: path, Stage: StageCheck, Status: StatusWorking})
	bag := diag.NewBag(req.MaxDiagnostics)
	suggestions := make(map[string][]string)
	for _, f := range req.Pipeline.Check(ctx, res.Text, res.Language, req.Accepted) {
		d := diag.UnknownWord(req.Severity, path, f.Span(), f.Word)
		if req.Suggest {
			s, ok := suggestions[f.Word]
			if !ok {
				s = req.Pipeline.Suggest(ctx, f.Word)
				suggestions[f.Word] = s
			}
			d = d.WithReplacements(s)
		}
		if !bag.Add(d) {
			break
		}
	}
	bag.Sort()
	res.Bag = bag
	res.Elapsed = time.Since(start)
	req.emit(Event{File: path, Stage: StageCheck, Status: StatusDone, Elapsed: res.Elapsed, Findings: bag.Len()})
	return res
}
