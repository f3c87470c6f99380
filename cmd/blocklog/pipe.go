package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newPipeCommand(opts *options) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Log every line read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _, err := openLogger(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			records := make(chan string, 64)
			go readLines(ctx, cmd.InOrStdin(), records)

			s := &scheduler{
				logger: logger,
				tick:   time.Duration(opts.tickMs) * time.Millisecond,
				onReject: func(payload string, err error) {
					if !quiet {
						fmt.Fprintf(os.Stderr, "skipped %q: %v\n", payload, err)
					}
				},
			}
			err = s.run(ctx, records)
			printStats(logger)
			return err
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not report rejected lines")
	return cmd
}

// readLines sends each input line and closes out at EOF
func readLines(ctx context.Context, r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}
