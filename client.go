package netindexer

import (
	"fmt"
	"time"
)

// Config holds every tunable of the fetch and extraction pipelines. Build one
// with NewConfig, which applies defaults and then the supplied Options.
type Config struct {
	// Fetch CLI inputs.
	URLFile        string
	Backend        string // "pycurl" or "requests" — selects multiplexed vs. sequential worker behavior
	Workers        int
	BatchSize      int
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Logfile        string
	DatafilePrefix string
	NSServer       string
	UserAgent      string

	OutputBatchSize int
	LogErrors       bool

	// Fetch-worker internals.
	MaxHandles            int
	ReadInterval          time.Duration
	LastFillWait          time.Duration
	MaxSpawnsPerIteration int
	ContentBufferSize     int
	HeaderBufferSize      int
	EnabledAres           bool
}

// NewConfig builds a Config with the reference defaults, then applies opts.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		Backend:               "pycurl",
		Workers:               4,
		BatchSize:             64,
		Timeout:               5 * time.Second,
		ConnectTimeout:        3 * time.Second,
		NSServer:              "127.0.0.1",
		UserAgent:             "netindexer/1.0",
		OutputBatchSize:       100000,
		LogErrors:             true,
		MaxHandles:            100,
		ReadInterval:          10 * time.Millisecond,
		LastFillWait:          100 * time.Millisecond,
		MaxSpawnsPerIteration: 3,
		ContentBufferSize:     4096,
		HeaderBufferSize:      4096,
		EnabledAres:           false,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate reports a ConfigError describing the first invalid field found,
// or nil if the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.URLFile == "":
		return configErr("urlfile is required")
	case c.Logfile == "":
		return configErr("logfile is required")
	case c.DatafilePrefix == "":
		return configErr("datafile is required")
	case c.Backend != "pycurl" && c.Backend != "requests":
		return configErr(fmt.Sprintf("unknown backend %q", c.Backend))
	case c.Workers < 1:
		return configErr("workers must be >= 1")
	case c.BatchSize < 1:
		return configErr("batchsize must be >= 1")
	case c.MaxHandles < 1 || c.MaxHandles > 1_000_000:
		return configErr("pycurl-maxhandles must be in [1, 1000000]")
	case c.MaxSpawnsPerIteration < 1:
		return configErr("pycurl-max-spawns-per-iteration must be >= 1")
	case c.OutputBatchSize < 1:
		return configErr("output-batchsize must be >= 1")
	case c.ContentBufferSize < 0:
		return configErr("pycurl-maxbodysize must be >= 0")
	case c.HeaderBufferSize < 0:
		return configErr("pycurl-maxheadersize must be >= 0")
	}
	return nil
}

func configErr(msg string) error {
	return &EngineError{Code: ErrConfig, Op: "Validate", Err: fmt.Errorf("%s", msg)}
}

// AnalyseConfig holds the inputs to the extraction pipeline (the `analyse`
// CLI surface).
type AnalyseConfig struct {
	FileGlob   string
	MaxWorkers int
	Function   string
	Regexp     string
}

// Validate reports a ConfigError for a missing glob, non-positive worker
// count, or unknown extraction function name.
func (a *AnalyseConfig) Validate(validFunctions map[string]bool) error {
	switch {
	case a.FileGlob == "":
		return configErr("file-glob is required")
	case a.MaxWorkers < 1:
		return configErr("max-workers must be >= 1")
	case !validFunctions[a.Function]:
		return configErr(fmt.Sprintf("unknown function %q", a.Function))
	}
	return nil
}
