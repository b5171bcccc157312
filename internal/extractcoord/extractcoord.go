// Package extractcoord implements the Extraction Coordinator: globs batch
// files, fans them out across a bounded worker pool, and streams each
// worker's output to stdout with periodic progress.
package extractcoord

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/BumpyClock/netindexer"
	"github.com/BumpyClock/netindexer/internal/batch"
	"github.com/BumpyClock/netindexer/internal/extract"
	"github.com/BumpyClock/netindexer/internal/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Coordinator drives one extraction pass over every file matched by
// cfg.FileGlob.
type Coordinator struct {
	cfg    *netindexer.AnalyseConfig
	stats  *stats.Collector
	logger *zap.SugaredLogger
}

// New builds a Coordinator.
func New(cfg *netindexer.AnalyseConfig, collector *stats.Collector, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{cfg: cfg, stats: collector, logger: logger}
}

type fileResult struct {
	count int
	text  string
}

// Run resolves cfg.FileGlob, processes each matched file with at most
// cfg.MaxWorkers concurrent extraction workers, and writes each worker's
// output text to stdout as it completes. A corrupt or unreadable batch file
// is tolerated (logged, zero records counted); a bad --regexp aborts the
// run. Run does not check the function name: an unknown name produces no
// output (AnalyseConfig.Validate is where unknown names are rejected).
func (c *Coordinator) Run(ctx context.Context, stdout io.Writer) error {
	files, err := filepath.Glob(c.cfg.FileGlob)
	if err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrConfig, Op: "extractcoord.Run", Err: err}
	}
	c.logger.Infow("loaded files", "count", len(files))

	if len(files) == 0 {
		fmt.Fprintln(stdout, 0)
		return nil
	}

	c.stats.StartClock()

	sem := make(chan struct{}, c.cfg.MaxWorkers)
	out := make(chan fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for _, path := range files {
		path := path
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		g.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			records, rerr := batch.ReadAll(path)
			if rerr != nil {
				c.logger.Warnw("batch file unreadable, skipping", "path", path, "error", rerr)
				out <- fileResult{}
				return nil
			}
			count, text, perr := extract.Process(records, c.cfg.Function, c.cfg.Regexp)
			if perr != nil {
				return perr
			}
			out <- fileResult{count: count, text: text}
			return nil
		})
	}

	go func() {
		g.Wait()
		close(out)
	}()

	for r := range out {
		if r.text != "" {
			fmt.Fprint(stdout, r.text)
		}
		c.stats.AddProcessed(int64(r.count))
		c.stats.PrintPeriodic(c.cfg.MaxWorkers)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	c.stats.PrintFinal()
	return nil
}
