// Package sink implements the Result Sink: consumes the FetchResult stream
// yielded by the Fetch Coordinator, writes the plain-text summary log, and
// rotates compressed BatchFiles once the in-memory buffer crosses the
// configured threshold.
package sink

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/BumpyClock/netindexer"
	"github.com/BumpyClock/netindexer/internal/batch"
	"github.com/BumpyClock/netindexer/internal/stats"
)

// Sink owns the summary log file and the active BatchFile writer.
type Sink struct {
	cfg     *netindexer.Config
	stats   *stats.Collector
	summary *os.File
	sw      *bufio.Writer
	writer  *batch.Writer
	buf     []netindexer.FetchResult
}

// New opens cfg.Logfile and the first BatchFile under cfg.DatafilePrefix.
func New(cfg *netindexer.Config, collector *stats.Collector) (*Sink, error) {
	summary, err := os.Create(cfg.Logfile)
	if err != nil {
		return nil, &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "sink.New", Err: err}
	}
	w, err := batch.NewWriter(cfg.DatafilePrefix)
	if err != nil {
		summary.Close()
		return nil, err
	}
	return &Sink{
		cfg:     cfg,
		stats:   collector,
		summary: summary,
		sw:      bufio.NewWriter(summary),
		writer:  w,
	}, nil
}

// Consume drains results until the channel closes or ctx is canceled,
// writing a summary line and accumulating each record, rotating the
// BatchFile whenever the buffer exceeds cfg.OutputBatchSize. It flushes any
// remaining buffered records before returning.
func (s *Sink) Consume(ctx context.Context, results <-chan netindexer.FetchResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-results:
			if !ok {
				return s.Close()
			}
			if err := s.writeSummaryLine(r); err != nil {
				return err
			}
			if r.Error != "" {
				s.stats.AddError(r.Error)
			} else {
				s.stats.AddSuccess()
			}
			s.stats.AddProcessed(1)

			if s.cfg.LogErrors || r.Error == "" {
				s.buf = append(s.buf, r)
			}
			if len(s.buf) > s.cfg.OutputBatchSize {
				if err := s.rotate(); err != nil {
					return err
				}
			}
		}
	}
}

func (s *Sink) writeSummaryLine(r netindexer.FetchResult) error {
	var err error
	if r.Error != "" {
		_, err = fmt.Fprintf(s.sw, "ERR %s %s\n", r.Error, r.URL)
	} else {
		_, err = fmt.Fprintf(s.sw, "%d %d %s\n", r.HTTPCode, r.Size, r.URL)
	}
	if err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "sink.writeSummaryLine", URL: r.URL, Err: err}
	}
	return nil
}

// rotate persists the current buffer as one Batch, closes the current
// BatchFile, and opens the next.
func (s *Sink) rotate() error {
	if err := s.writer.WriteBatch(batch.Batch{Records: s.buf}); err != nil {
		return err
	}
	s.buf = nil
	return s.writer.Rotate()
}

// Close flushes any buffered records and closes the summary log and the
// active BatchFile.
func (s *Sink) Close() error {
	if len(s.buf) > 0 {
		if err := s.writer.WriteBatch(batch.Batch{Records: s.buf}); err != nil {
			return err
		}
		s.buf = nil
	}
	if err := s.writer.Close(); err != nil {
		return err
	}
	if err := s.sw.Flush(); err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "sink.Close", Err: err}
	}
	if err := s.summary.Close(); err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "sink.Close", Err: err}
	}
	return nil
}
