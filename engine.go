package netindexer

import (
	"context"
	"time"

	"github.com/BumpyClock/netindexer/internal/extract"
	"github.com/BumpyClock/netindexer/internal/extractcoord"
	"github.com/BumpyClock/netindexer/internal/fetch"
	"github.com/BumpyClock/netindexer/internal/sink"
	"github.com/BumpyClock/netindexer/internal/stats"
	"github.com/BumpyClock/netindexer/internal/urlsource"
	"go.uber.org/zap"
)

// FetchEngine wires the URL Source, Fetch Coordinator, and Result Sink into
// a single run, per Config.
type FetchEngine struct {
	Config *Config
	Logger *zap.SugaredLogger
}

// NewFetchEngine validates cfg and returns a FetchEngine ready to Run.
func NewFetchEngine(cfg *Config, logger *zap.SugaredLogger) (*FetchEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l.Sugar()
	}
	return &FetchEngine{Config: cfg, Logger: logger}, nil
}

// Run opens the URL Source, drives the Fetch Coordinator's worker pool, and
// hands every yielded FetchResult to the Result Sink until the input is
// exhausted. It implements Runner.
func (e *FetchEngine) Run(ctx context.Context) error {
	src, err := urlsource.Open(e.Config.URLFile, 0)
	if err != nil {
		return err
	}
	defer src.Close()

	collector := stats.New(e.Logger, time.Second)
	coord := fetch.NewCoordinator(e.Config, src, collector, e.Logger)
	s, err := sink.New(e.Config, collector)
	if err != nil {
		return err
	}

	out := make(chan FetchResult, e.Config.BatchSize)
	errCh := make(chan error, 1)
	go func() { errCh <- coord.Run(ctx, out) }()

	if err := s.Consume(ctx, out); err != nil {
		<-errCh
		return err
	}
	return <-errCh
}

var _ Runner = (*FetchEngine)(nil)

// AnalyseEngine wires the Extraction Coordinator into a single run, per
// AnalyseConfig.
type AnalyseEngine struct {
	Config *AnalyseConfig
	Logger *zap.SugaredLogger
	Stdout interface {
		Write([]byte) (int, error)
	}
}

// NewAnalyseEngine validates cfg and returns an AnalyseEngine ready to Run.
func NewAnalyseEngine(cfg *AnalyseConfig, logger *zap.SugaredLogger, stdout interface {
	Write([]byte) (int, error)
}) (*AnalyseEngine, error) {
	if err := cfg.Validate(extract.Functions); err != nil {
		return nil, err
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l.Sugar()
	}
	return &AnalyseEngine{Config: cfg, Logger: logger, Stdout: stdout}, nil
}

// Run drives the Extraction Coordinator to completion. It implements
// Runner.
func (e *AnalyseEngine) Run(ctx context.Context) error {
	collector := stats.New(e.Logger, time.Second)
	coord := extractcoord.New(e.Config, collector, e.Logger)
	return coord.Run(ctx, e.Stdout)
}

var _ Runner = (*AnalyseEngine)(nil)
