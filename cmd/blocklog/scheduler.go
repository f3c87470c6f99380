package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/blocklog"
)

// maxCloseSteps bounds the final drain and the busy-close retries
const maxCloseSteps = 1000

// scheduler polls the flush state machine on every tick and hands records
// from a producer channel to the logger, all on one goroutine
type scheduler struct {
	logger *blocklog.Logger
	tick   time.Duration

	// onReject is told about records the logger refused
	onReject func(payload string, err error)
}

// run consumes records until the channel closes or ctx is done, then drains
// and closes the logger
func (s *scheduler) run(ctx context.Context, records <-chan string) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	var pending []string

	for {
		// Stop receiving while the logger holds records back
		in := records
		if len(pending) > 0 {
			in = nil
		}

		select {
		case <-ctx.Done():
			return s.shutdown(pending)

		case payload, ok := <-in:
			if !ok {
				return s.shutdown(pending)
			}
			pending = s.feed(append(pending, payload))

		case <-ticker.C:
			if err := s.step(); err != nil {
				return err
			}
			pending = s.feed(pending)
		}
	}
}

// feed appends queued records while the logger accepts them
func (s *scheduler) feed(queue []string) []string {
	for len(queue) > 0 && s.logger.IsOperational() {
		payload := queue[0]
		if err := s.logger.LogData(payload); err != nil {
			if errors.Is(err, blocklog.ErrNotOperational) {
				break
			}
			if s.onReject != nil {
				s.onReject(payload, err)
			}
		}
		queue = queue[1:]
	}
	return queue
}

// step advances one phase, a failed step is fatal for the CLI
func (s *scheduler) step() error {
	res, err := s.logger.Step()
	if res == blocklog.StepFailed {
		return fmt.Errorf("flush failed in %s: %w", s.logger.Phase(), err)
	}
	return nil
}

// shutdown queues what it can, drains and closes, retrying while the device is busy
func (s *scheduler) shutdown(queue []string) error {
	for i := 0; i < maxCloseSteps && (len(queue) > 0 || s.logger.FlushPending()); i++ {
		queue = s.feed(queue)
		if err := s.step(); err != nil {
			return err
		}
		time.Sleep(s.tick)
	}
	if len(queue) > 0 {
		fmt.Fprintf(os.Stderr, "blocklog: %d records not written\n", len(queue))
	}

	if s.logger.RequestFlush() {
		for i := 0; i < maxCloseSteps && s.logger.FlushPending(); i++ {
			if err := s.step(); err != nil {
				return err
			}
			time.Sleep(s.tick)
		}
	}

	for i := 0; i < maxCloseSteps; i++ {
		err := s.logger.Close()
		if !errors.Is(err, blocklog.ErrDeviceBusy) {
			return err
		}
		time.Sleep(s.tick)
	}
	return fmt.Errorf("close: %w", blocklog.ErrDeviceBusy)
}
