package main

import (
	"context"
	"fmt"

	"codeproof/internal/bridge"
	"codeproof/internal/config"
	"codeproof/internal/engine"
	"codeproof/internal/observ"
	"codeproof/internal/resolve"
)

// startChecker resolves the configured dictionaries and blocks until the
// spell checker has loaded them. timer may be nil.
func startChecker(ctx context.Context, cfg *config.Config, timer *observ.Timer) (*bridge.Bridge, error) {
	if timer == nil {
		timer = observ.NewTimer()
	}
	var paths []resolve.Paths
	err := timer.Measure(observ.PhaseResolve, func() error {
		var err error
		paths, err = resolve.New(cfg.ResolverOptions()).ResolveAll(ctx, cfg.Dictionaries)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve dictionaries: %w", err)
	}

	checker := bridge.Start(ctx, engine.Loader(paths...), bridge.Options{MaxSuggestions: cfg.MaxSuggestions})
	if err := timer.Measure(observ.PhaseLoad, func() error { return waitReady(ctx, checker) }); err != nil {
		checker.Close()
		return nil, fmt.Errorf("load dictionaries: %w", err)
	}
	return checker, nil
}

func waitReady(ctx context.Context, checker *bridge.Bridge) error {
	select {
	case <-checker.Ready():
		return nil
	case <-checker.Done():
		if err := checker.Err(); err != nil {
			return err
		}
		return bridge.ErrUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}
}
