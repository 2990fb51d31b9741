package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-snap/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-capture",
		Short:         "Stress test capture delegation; one client gets the overlay, the rest must be refused",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "file", "file|clip: save a file or copy to the clipboard only")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func (o stressOptions) request() (singleinstance.Request, error) {
	switch o.mode {
	case "file":
		return singleinstance.Request{SaveToFile: true, CopyToClipboard: true}, nil
	case "clip":
		return singleinstance.Request{CopyToClipboard: true}, nil
	default:
		return singleinstance.Request{}, fmt.Errorf("unknown mode %q", o.mode)
	}
}

type tally struct {
	ok, busy, cancelled, timeout, errs int32
}

func (t *tally) record(delegated bool, err error) {
	switch {
	case err == nil && delegated:
		atomic.AddInt32(&t.ok, 1)
	case errors.Is(err, singleinstance.ErrCancelled):
		atomic.AddInt32(&t.cancelled, 1)
	case errors.Is(err, context.DeadlineExceeded):
		atomic.AddInt32(&t.timeout, 1)
	case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
		atomic.AddInt32(&t.busy, 1)
	default:
		atomic.AddInt32(&t.errs, 1)
	}
}

func runWithOptions(opts stressOptions) error {
	req, err := opts.request()
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var t tally
	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := singleinstance.NewClient().TryCapture(ctx, req)
			t.record(delegated, err)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "launched=%d ok=%d busy=%d cancelled=%d timeout=%d err=%d elapsed=%s\n",
		opts.n, t.ok, t.busy, t.cancelled, t.timeout, t.errs, elapsed)
	return nil
}
