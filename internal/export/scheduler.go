package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Source produces the export payload.
type Source interface {
	Export(ctx context.Context) ([]byte, error)
}

// Run fetches one export from src and writes it to every destination. All
// destinations are attempted; the returned error joins their failures.
func Run(ctx context.Context, src Source, destinations []Destination, logger *slog.Logger) (int, error) {
	data, err := src.Export(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	var errs []error
	for _, dest := range destinations {
		if err := dest.Write(ctx, data); err != nil {
			logger.Error("export destination write failed", "destination", name(dest), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name(dest), err))
		}
	}
	if len(errs) > 0 {
		return len(data), errors.Join(errs...)
	}
	return len(data), nil
}

// Scheduler runs periodic exports to one or more destinations.
type Scheduler struct {
	source       Source
	destinations []Destination
	interval     time.Duration
	clock        clockwork.Clock
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from src to the given
// destinations at the specified interval. A nil clock means the real clock.
func NewScheduler(src Source, destinations []Destination, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		source:       src,
		destinations: destinations,
		interval:     interval,
		clock:        clock,
		logger:       logger,
	}
}

// Start begins periodic export. It runs an initial export immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// The ticker is created before returning so a fake clock sees it.
	ticker := s.clock.NewTicker(s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		s.run(ctx, ticker)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, ticker clockwork.Ticker) {
	// Run once immediately at startup.
	s.exportOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	n, err := Run(ctx, s.source, s.destinations, s.logger)
	if err != nil {
		s.logger.Error("scheduled export failed", "err", err)
		return
	}
	s.logger.Info("export completed", "destinations", len(s.destinations), "bytes", n)
}

func name(d Destination) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", d)
}
