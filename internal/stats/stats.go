// Package stats implements the Stat Collector: running counters over a
// fetch or extraction run, with rate-limited periodic status emission.
package stats

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	processedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netindexer_fetch_processed_total",
		Help: "Total FetchResults processed by the coordinator.",
	})
	successTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netindexer_fetch_success_total",
		Help: "Total successful FetchResults.",
	})
	errorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netindexer_fetch_errors_total",
		Help: "Total errored FetchResults by error tag.",
	}, []string{"error"})
)

func init() {
	prometheus.MustRegister(processedTotal, successTotal, errorTotal)
}

// Snapshot is a point-in-time view of a Collector's counters.
type Snapshot struct {
	Submitted    int64
	Processed    int64
	Successes    int64
	Errors       int64
	ErrorTypes   map[string]int64
	StartedAt    time.Time
	LastStatusAt time.Time
}

// Collector accumulates submitted/processed/success/error counters and
// gates periodic status emission to at most one print per Limiter interval.
type Collector struct {
	mu         sync.Mutex
	submitted  int64
	processed  int64
	successes  int64
	errors     int64
	errorTypes map[string]int64
	startedAt  time.Time

	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// New returns a Collector whose periodic status line is limited to at most
// one emission per interval (the reference default is 1 s).
func New(logger *zap.SugaredLogger, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Second
	}
	return &Collector{
		errorTypes: make(map[string]int64),
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		logger:     logger,
	}
}

// StartClock marks the beginning of the run for rate calculations.
func (c *Collector) StartClock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startedAt = time.Now()
}

// AddSubmitted records n additional submitted URLs.
func (c *Collector) AddSubmitted(n int64) {
	c.mu.Lock()
	c.submitted += n
	c.mu.Unlock()
}

// AddSuccess records one successful FetchResult.
func (c *Collector) AddSuccess() {
	c.mu.Lock()
	c.successes++
	c.mu.Unlock()
	successTotal.Inc()
}

// AddError records one errored FetchResult under the given short error tag.
func (c *Collector) AddError(errTag string) {
	c.mu.Lock()
	c.errors++
	c.errorTypes[errTag]++
	c.mu.Unlock()
	errorTotal.WithLabelValues(errTag).Inc()
}

// AddProcessed records n additional processed records.
func (c *Collector) AddProcessed(n int64) {
	c.mu.Lock()
	c.processed += n
	c.mu.Unlock()
	processedTotal.Add(float64(n))
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make(map[string]int64, len(c.errorTypes))
	for k, v := range c.errorTypes {
		types[k] = v
	}
	return Snapshot{
		Submitted:  c.submitted,
		Processed:  c.processed,
		Successes:  c.successes,
		Errors:     c.errors,
		ErrorTypes: types,
		StartedAt:  c.startedAt,
	}
}

// PrintPeriodic logs a status line reporting numWorkers in flight, but only
// if the rate limiter allows it (≥ 1 interval since the last emission).
func (c *Collector) PrintPeriodic(numWorkers int) {
	if !c.limiter.Allow() {
		return
	}
	snap := c.Snapshot()
	elapsed := time.Since(snap.StartedAt).Seconds()
	var rate, successRate float64
	if elapsed > 0 {
		rate = float64(snap.Processed) / elapsed
	}
	if snap.Processed > 0 {
		successRate = float64(snap.Successes) / float64(snap.Processed) * 100
	}
	c.logger.Infow("status",
		"workers", numWorkers,
		"processed", snap.Processed,
		"successes", snap.Successes,
		"errors", snap.Errors,
		"req_per_sec", rate,
		"success_rate_pct", successRate,
	)
}

// PrintFinal logs the terminal summary line once a run completes.
func (c *Collector) PrintFinal() {
	snap := c.Snapshot()
	delta := time.Since(snap.StartedAt).Seconds()
	var avg, errPct float64
	if delta > 0 {
		avg = float64(snap.Processed) / delta
	}
	if snap.Processed > 0 {
		errPct = float64(snap.Errors) / float64(snap.Processed) * 100
	}
	c.logger.Infow("final",
		"processed", snap.Processed,
		"seconds", delta,
		"avg_req_per_sec", avg,
		"error_pct", errPct,
	)
}
