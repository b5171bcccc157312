package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BumpyClock/netindexer"
	"github.com/BumpyClock/netindexer/internal/stats"
	"github.com/BumpyClock/netindexer/internal/urlsource"
	"go.uber.org/zap"
)

// Source is the subset of urlsource.Source the Coordinator depends on.
type Source interface {
	GetBatch(n int) ([]string, error)
}

var _ Source = (*urlsource.Source)(nil)

// Coordinator owns a pool of fetch workers sized cfg.Workers, feeding each a
// fresh URL batch of cfg.BatchSize and draining completed workers onto a
// result channel.
type Coordinator struct {
	cfg    *netindexer.Config
	src    Source
	stats  *stats.Collector
	logger *zap.SugaredLogger
}

// NewCoordinator builds a Coordinator over src, publishing counters to
// collector and logging status via logger.
func NewCoordinator(cfg *netindexer.Config, src Source, collector *stats.Collector, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{cfg: cfg, src: src, stats: collector, logger: logger}
}

type workerDone struct {
	results []netindexer.FetchResult
	err     error
}

// Run drives the fetch pipeline: it spawns up to cfg.Workers worker
// goroutines (admitting at most cfg.MaxSpawnsPerIteration per scheduling
// pass to avoid a connection-burst thundering herd), drains completions onto
// out, and returns once the URL source is exhausted and no worker remains
// in flight. A WorkerFatal from any worker aborts the run.
func (c *Coordinator) Run(ctx context.Context, out chan<- netindexer.FetchResult) error {
	defer close(out)
	c.stats.StartClock()

	done := make(chan workerDone)
	var wg sync.WaitGroup
	inFlight := 0
	exhausted := false
	workerID := 0

	// spawn pulls the next non-empty, filtered URL batch and starts a worker
	// for it. A batch consisting entirely of blank/whitespace-only lines is
	// not a worker spawn; spawn keeps reading until it finds usable URLs or
	// the Source is genuinely exhausted (GetBatch returns zero raw lines).
	spawn := func() (bool, error) {
		for {
			raw, err := c.src.GetBatch(c.cfg.BatchSize)
			if err != nil {
				return false, err
			}
			if len(raw) == 0 {
				exhausted = true
				return false, nil
			}
			urls := filterBlank(raw)
			if len(urls) == 0 {
				continue
			}
			c.stats.AddSubmitted(int64(len(urls)))
			w := NewWorker(workerID, urls, c.cfg)
			workerID++
			inFlight++
			wg.Add(1)
			go func() {
				defer wg.Done()
				results, err := w.Run(ctx)
				done <- workerDone{results: results, err: err}
			}()
			return true, nil
		}
	}

	for !exhausted || inFlight > 0 {
		spawned := 0
		for inFlight < c.cfg.Workers && spawned < c.cfg.MaxSpawnsPerIteration && !exhausted {
			ok, err := spawn()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			spawned++
		}

		if inFlight == 0 {
			if exhausted {
				break
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-done:
			inFlight--
			if d.err != nil {
				return d.err
			}
			for _, r := range d.results {
				select {
				case out <- r:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case <-time.After(time.Second):
			// 1 s drain poll, matching the reference coordinator's
			// concurrent.futures.wait(timeout=1).
		}

		c.stats.PrintPeriodic(inFlight)
	}

	wg.Wait()
	c.stats.PrintFinal()
	return nil
}

// filterBlank drops empty and whitespace-only lines, per the URL Source's
// caller contract: it preserves every raw line, including blanks, and
// leaves skipping them to the reader.
func filterBlank(lines []string) []string {
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
