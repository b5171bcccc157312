package netindexer

import "time"

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithUserAgent sets the User-Agent header sent with every fetch request.
//
// Example:
//
//	cfg := netindexer.NewConfig(netindexer.WithUserAgent("netindexer/1.0"))
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithTimeout sets the total per-request timeout, covering connect, redirect
// following, and body read.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithConnectTimeout sets the per-request connect-phase timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = timeout
	}
}

// WithWorkers sets the number of concurrent fetch workers the Coordinator
// keeps in flight.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithBatchSize sets the number of URLs handed to each spawned fetch worker.
func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// WithMaxHandles sets the width of a fetch worker's in-flight slot pool.
func WithMaxHandles(n int) Option {
	return func(c *Config) {
		c.MaxHandles = n
	}
}

// WithReadInterval sets Config.ReadInterval. The field is kept for CLI
// compatibility; the fetch worker does not read it and has no poll loop.
func WithReadInterval(d time.Duration) Option {
	return func(c *Config) {
		c.ReadInterval = d
	}
}

// WithLastFillWait sets Config.LastFillWait. The field is kept for CLI
// compatibility; the fetch worker does not read it and refills a slot as
// soon as it frees up.
func WithLastFillWait(d time.Duration) Option {
	return func(c *Config) {
		c.LastFillWait = d
	}
}

// WithMaxSpawnsPerIteration caps how many new worker goroutines the
// Coordinator may start in a single scheduling pass.
func WithMaxSpawnsPerIteration(n int) Option {
	return func(c *Config) {
		c.MaxSpawnsPerIteration = n
	}
}

// WithContentBufferSize sets the per-slot cap, in bytes, on captured
// response body.
func WithContentBufferSize(n int) Option {
	return func(c *Config) {
		c.ContentBufferSize = n
	}
}

// WithHeaderBufferSize sets the per-slot cap, in bytes, on captured
// (serialized) response headers.
func WithHeaderBufferSize(n int) Option {
	return func(c *Config) {
		c.HeaderBufferSize = n
	}
}

// WithOutputBatchSize sets the record-count threshold at which the Result
// Sink rotates to a new BatchFile.
func WithOutputBatchSize(n int) Option {
	return func(c *Config) {
		c.OutputBatchSize = n
	}
}

// WithLogErrors controls whether error-tagged FetchResults are persisted
// into batch files (they are always written to the summary log regardless).
func WithLogErrors(log bool) Option {
	return func(c *Config) {
		c.LogErrors = log
	}
}

// WithNSServer sets an explicit DNS resolver address. It is used for lookups
// only when EnabledAres is set; otherwise, or when the address is empty, the
// system resolver is used.
func WithNSServer(addr string) Option {
	return func(c *Config) {
		c.NSServer = addr
	}
}

// WithDatafilePrefix sets the path prefix for rotated BatchFile output
// (files are named "<prefix>_<iteration>.gob.gz").
func WithDatafilePrefix(prefix string) Option {
	return func(c *Config) {
		c.DatafilePrefix = prefix
	}
}

// WithLogfile sets the path of the per-URL summary log.
func WithLogfile(path string) Option {
	return func(c *Config) {
		c.Logfile = path
	}
}
