package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newStressCommand(opts *options) *cobra.Command {
	var (
		count     int
		maxLen    int
		busyEvery int
	)

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Log random samples with a flaky device to exercise rotation and retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, storage, err := openLogger(opts)
			if err != nil {
				return err
			}

			// Every busyEvery-th poll reports the device busy
			if busyEvery > 0 {
				var polls atomic.Int64
				storage.SetBusyFunc(func() bool {
					return polls.Add(1)%int64(busyEvery) == 0
				})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			records := make(chan string)
			go generate(ctx, count, maxLen, records)

			s := &scheduler{
				logger: logger,
				tick:   time.Duration(opts.tickMs) * time.Millisecond,
			}
			err = s.run(ctx, records)
			printStats(logger)
			return err
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1000, "number of samples")
	cmd.Flags().IntVar(&maxLen, "max-len", 60, "max random payload length, longer than a slot to exercise rejection")
	cmd.Flags().IntVar(&busyEvery, "busy-every", 3, "report the device busy on every n-th poll, 0 disables")
	return cmd
}

// generate sends count random sensor-like samples
func generate(ctx context.Context, count, maxLen int, out chan<- string) {
	defer close(out)
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789;,. "
	for i := 0; i < count; i++ {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte(',')
		n := rand.Intn(maxLen + 1)
		for j := 0; j < n; j++ {
			sb.WriteByte(chars[rand.Intn(len(chars))])
		}
		select {
		case out <- sb.String():
		case <-ctx.Done():
			return
		}
	}
}
