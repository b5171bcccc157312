// Package netindexer implements a high-throughput bulk HTTP fetcher and a
// companion batch-extraction pipeline.
//
// The fetch side reads a newline-delimited URL file, issues GET requests
// across a pool of concurrent workers, and persists results into rotated
// gzip-compressed batch files alongside a plain-text summary log. The
// extraction side replays those batch files through pluggable regex
// classifiers and streams matches to stdout.
//
// # Basic usage
//
//	cfg := netindexer.NewConfig(
//	    netindexer.WithWorkers(8),
//	    netindexer.WithTimeout(5*time.Second),
//	)
//	cfg.URLFile = "urls.txt"
//	cfg.DatafilePrefix = "out/batch"
//	cfg.Logfile = "summary.log"
//	engine, err := netindexer.NewFetchEngine(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error handling
//
// Errors are typed for programmatic handling:
//
//	var engErr *netindexer.EngineError
//	if errors.As(err, &engErr) {
//	    switch engErr.Code {
//	    case netindexer.ErrNetwork:
//	        // per-URL network failure, already recorded on the FetchResult
//	    case netindexer.ErrWorkerFatal:
//	        // a fetch worker panicked; the run must abort
//	    }
//	}
//
// # Concurrency
//
// Fetch Workers are goroutines, not OS processes: the Fetch Coordinator owns
// a pool of them, staggers how many start per scheduling pass, and drains
// completed workers onto a Result Sink that rotates batch files by record
// count. See the fetch, sink, batch, and extract subpackages for the
// individual stages.
package netindexer
