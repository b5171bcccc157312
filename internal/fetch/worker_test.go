package fetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BumpyClock/netindexer"
	"github.com/stretchr/testify/require"
)

func testConfig() *netindexer.Config {
	return netindexer.NewConfig()
}

func TestWorkerFetchesSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<title>Hello</title>"))
	}))
	defer srv.Close()

	cfg := testConfig()
	w := NewWorker(0, []string{srv.URL}, cfg)
	results, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 200, results[0].HTTPCode)
	require.Empty(t, results[0].Error)
	require.Equal(t, "<title>Hello</title>", string(results[0].Body))
}

func TestWorkerRecordsGzipEncodedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<title>Hi</title>"))
		gz.Close()
	}))
	defer srv.Close()

	cfg := testConfig()
	w := NewWorker(0, []string{srv.URL}, cfg)
	results, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 200, results[0].HTTPCode)
	enc, ok := results[0].Headers.Get("Content-Encoding")
	require.True(t, ok)
	require.Equal(t, "gzip", enc)
}

func TestWorkerRecordsNetworkErrorForUnreachableHost(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 500 * time.Millisecond
	cfg.ConnectTimeout = 200 * time.Millisecond
	w := NewWorker(0, []string{"http://127.0.0.1:1"}, cfg)
	results, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Error)
	require.Equal(t, 0, results[0].HTTPCode)
}

func TestWorkerTruncatesBodyAtContentBufferSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(make([]byte, 2000))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.ContentBufferSize = 100
	w := NewWorker(0, []string{srv.URL}, cfg)
	results, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.LessOrEqual(t, len(results[0].Body), cfg.ContentBufferSize)
	require.Empty(t, results[0].Error)
}

func TestWorkerHandlesEmptyBatch(t *testing.T) {
	cfg := testConfig()
	w := NewWorker(0, nil, cfg)
	results, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, results)
}
