package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BumpyClock/netindexer"
	"github.com/BumpyClock/netindexer/internal/stats"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sliceSource struct {
	batches [][]string
	idx     int
}

func (s *sliceSource) GetBatch(n int) ([]string, error) {
	if s.idx >= len(s.batches) {
		return nil, nil
	}
	b := s.batches[s.idx]
	s.idx++
	return b, nil
}

func TestCoordinatorDrainsAllWorkersAndYieldsEveryResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := &sliceSource{batches: [][]string{
		{srv.URL, srv.URL},
		{srv.URL, srv.URL},
		{srv.URL},
	}}

	cfg := netindexer.NewConfig()
	cfg.Workers = 2
	cfg.BatchSize = 2
	cfg.MaxSpawnsPerIteration = 2

	collector := stats.New(zap.NewNop().Sugar(), time.Hour)
	coord := NewCoordinator(cfg, src, collector, zap.NewNop().Sugar())

	out := make(chan netindexer.FetchResult, 16)
	err := coord.Run(context.Background(), out)
	require.NoError(t, err)

	var got []netindexer.FetchResult
	for r := range out {
		got = append(got, r)
	}
	require.Len(t, got, 5)

	// The Coordinator only tracks submissions; success/error/processed
	// counters are the Result Sink's responsibility once it consumes out.
	snap := collector.Snapshot()
	require.EqualValues(t, 5, snap.Submitted)
}

func TestCoordinatorSkipsBlankLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := &sliceSource{batches: [][]string{
		{"", srv.URL, "   ", srv.URL},
		{"\t"},
	}}

	cfg := netindexer.NewConfig()
	cfg.Workers = 2
	cfg.BatchSize = 4

	collector := stats.New(zap.NewNop().Sugar(), time.Hour)
	coord := NewCoordinator(cfg, src, collector, zap.NewNop().Sugar())

	out := make(chan netindexer.FetchResult, 8)
	err := coord.Run(context.Background(), out)
	require.NoError(t, err)

	var got []netindexer.FetchResult
	for r := range out {
		got = append(got, r)
	}
	require.Len(t, got, 2)
	for _, r := range got {
		require.Equal(t, srv.URL, r.URL)
	}

	snap := collector.Snapshot()
	require.EqualValues(t, 2, snap.Submitted)
}

func TestCoordinatorHandlesEmptySource(t *testing.T) {
	src := &sliceSource{}
	cfg := netindexer.NewConfig()
	collector := stats.New(zap.NewNop().Sugar(), time.Hour)
	coord := NewCoordinator(cfg, src, collector, zap.NewNop().Sugar())

	out := make(chan netindexer.FetchResult, 1)
	err := coord.Run(context.Background(), out)
	require.NoError(t, err)

	count := 0
	for range out {
		count++
	}
	require.Zero(t, count)
}
