// Command netindexer drives the crawler's two pipelines: `run` fetches a
// list of URLs into rotated batch files, and `analyse` re-reads those batch
// files through a pluggable extraction function.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BumpyClock/netindexer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backend        string
	urlFile        string
	workers        int
	batchSize      int
	timeout        time.Duration
	connectTimeout time.Duration
	logfile        string
	datafile       string
	nsserver       string
	useragent      string
	outputBatch    int
	maxHandles     int
	readInterval   time.Duration
	enabledAres    bool
	maxBodySize    int
	maxHeaderSize  int
	lastFillWait   time.Duration
	maxSpawns      int
	metricsAddr    string

	fileGlob   string
	maxWorkers int
	function   string
	userRegexp string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "netindexer",
		Short: "netindexer - bulk HTTP fetcher and batch extraction pipeline",
		Long:  "netindexer fetches large URL lists concurrently into rotated batch files, and extracts structured signal from them with pluggable regex classifiers.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every URL in --urlfile, persisting results into rotated batch files",
		RunE:  runFetch,
	}
	runCmd.Flags().StringVar(&backend, "backend", "pycurl", "fetch backend (pycurl|requests)")
	runCmd.Flags().StringVar(&urlFile, "urlfile", "", "path to a newline-delimited list of URLs")
	runCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent fetch workers")
	runCmd.Flags().IntVar(&batchSize, "batchsize", 64, "URLs assigned to a worker per spawn")
	runCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "total request timeout")
	runCmd.Flags().DurationVar(&connectTimeout, "connect-timeout", 3*time.Second, "connection timeout")
	runCmd.Flags().StringVar(&logfile, "logfile", "", "path to the summary log")
	runCmd.Flags().StringVar(&datafile, "datafile", "", "batch file name prefix")
	runCmd.Flags().StringVar(&nsserver, "nsserver", "127.0.0.1", "DNS resolver address")
	runCmd.Flags().StringVar(&useragent, "useragent", "netindexer/1.0", "User-Agent header")
	runCmd.Flags().IntVar(&outputBatch, "output-batchsize", 100000, "records buffered before a batch file is rotated")
	runCmd.Flags().IntVar(&maxHandles, "pycurl-maxhandles", 100, "max in-flight requests per worker")
	runCmd.Flags().DurationVar(&readInterval, "pycurl-readinterval", 10*time.Millisecond, "accepted for compatibility; not used by the fetch worker")
	runCmd.Flags().BoolVar(&enabledAres, "pycurl-enabled-ares", false, "use --nsserver as a custom DNS resolver")
	runCmd.Flags().IntVar(&maxBodySize, "pycurl-maxbodysize", 4096, "per-response body capture cap in bytes")
	runCmd.Flags().IntVar(&maxHeaderSize, "pycurl-maxheadersize", 4096, "per-response header capture cap in bytes")
	runCmd.Flags().DurationVar(&lastFillWait, "pycurl-lastfill_waittime", 100*time.Millisecond, "accepted for compatibility; not used by the fetch worker")
	runCmd.Flags().IntVar(&maxSpawns, "pycurl-max-spawns-per-iteration", 3, "worker spawns admitted per coordinator pass")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus /metrics on this address (e.g. :9090)")

	analyseCmd := &cobra.Command{
		Use:   "analyse",
		Short: "Run an extraction function over every batch file matched by --file-glob",
		RunE:  runAnalyse,
	}
	analyseCmd.Flags().StringVar(&fileGlob, "file-glob", "", "glob pattern matching batch files")
	analyseCmd.Flags().IntVar(&maxWorkers, "max-workers", 4, "concurrent extraction workers")
	analyseCmd.Flags().StringVar(&function, "function", "title", "extraction function to apply")
	analyseCmd.Flags().StringVar(&userRegexp, "regexp", "", "pattern for --function=regexmatch")

	rootCmd.AddCommand(runCmd, analyseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "netindexer: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// serveMetrics starts a /metrics listener on addr in the background, if
// addr is non-empty. It logs and gives up rather than aborting the run if
// the listener fails to bind.
func serveMetrics(addr string, logger *zap.SugaredLogger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warnw("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := netindexer.NewConfig(
		netindexer.WithUserAgent(useragent),
		netindexer.WithTimeout(timeout),
		netindexer.WithConnectTimeout(connectTimeout),
		netindexer.WithWorkers(workers),
		netindexer.WithBatchSize(batchSize),
		netindexer.WithMaxHandles(maxHandles),
		netindexer.WithReadInterval(readInterval),
		netindexer.WithLastFillWait(lastFillWait),
		netindexer.WithMaxSpawnsPerIteration(maxSpawns),
		netindexer.WithContentBufferSize(maxBodySize),
		netindexer.WithHeaderBufferSize(maxHeaderSize),
		netindexer.WithOutputBatchSize(outputBatch),
		netindexer.WithNSServer(nsserver),
		netindexer.WithDatafilePrefix(datafile),
		netindexer.WithLogfile(logfile),
	)
	cfg.URLFile = urlFile
	cfg.Backend = backend
	cfg.EnabledAres = enabledAres

	logger := newLogger()
	defer logger.Sync()
	serveMetrics(metricsAddr, logger)

	engine, err := netindexer.NewFetchEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return engine.Run(ctx)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	cfg := &netindexer.AnalyseConfig{
		FileGlob:   fileGlob,
		MaxWorkers: maxWorkers,
		Function:   function,
		Regexp:     userRegexp,
	}

	logger := newLogger()
	defer logger.Sync()

	engine, err := netindexer.NewAnalyseEngine(cfg, logger, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return engine.Run(ctx)
}
