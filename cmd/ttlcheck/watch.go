package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/krux02/ttl/stubhost"
	"github.com/krux02/ttl/ttl"
)

var flagWatchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <expr-file>",
	Short: "Re-validate and re-evaluate an annotation file as it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(args[0])
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 500*time.Millisecond, "minimum time between re-checks")
}

// runWatch polls the file's mtime and re-runs validate+eval whenever it
// changes. The rate limiter caps how often a single burst of writes (an
// editor autosave loop, a build script rewriting the file repeatedly)
// can trigger a re-check; this bounds the watch loop's resource use the
// way spec.md's concurrency model requires the host side to do for any
// long-running consumer.
func runWatch(path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	limiter := rate.NewLimiter(rate.Every(flagWatchInterval), 1)

	scope, err := loadScope(flagConfig)
	if err != nil {
		return err
	}
	host := stubhost.NewHost(scope)

	var lastMod time.Time
	check := func() {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ttlcheck watch:", err)
			return
		}
		if !info.ModTime().After(lastMod) {
			return
		}
		lastMod = info.ModTime()

		term, diags, err := parseAndValidateFile(path)
		printDiagnostics(diags)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ttlcheck watch:", err)
			return
		}
		if term == nil {
			return
		}
		result, evalDiags := ttl.Eval(term, nil, nil, host)
		printDiagnostics(evalDiags)
		fmt.Println(result)
	}

	check()
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil // context canceled: Ctrl-C
		}
		select {
		case <-ctx.Done():
			return nil
		default:
			check()
		}
	}
}
