// Package fetch implements the Fetch Worker and Fetch Coordinator: a bounded
// pool of concurrent HTTP requests per worker, and a goroutine-pool
// coordinator that feeds URL batches to workers and drains their results.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/BumpyClock/netindexer"
)

const maxRedirects = 20

// acceptHeaders mirrors the fixed request headers the reference fetcher
// always sends.
var acceptHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml",
	"Accept-Encoding": "gzip",
}

// Worker owns one bounded slot pool (a semaphore of width maxHandles) and a
// fixed URL batch. Run fetches every URL concurrently, bounded by the slot
// pool, and returns once all have completed.
type Worker struct {
	id         int
	urls       []string
	cfg        *netindexer.Config
	maxHandles int
	client     *http.Client
}

// NewWorker builds a Worker with its own http.Client tuned per cfg: no
// connection reuse (fresh-connect/forbid-reuse), IPv4-preferred dialing, and
// an optional explicit DNS server.
//
// cfg.Backend selects the concurrency shape within the worker: "pycurl"
// multiplexes up to cfg.MaxHandles requests at once (the reference engine's
// libcurl multi-handle behavior); "requests" forces a 1-wide slot pool, one
// request at a time, matching the reference engine_requests_* sequential
// fetcher. cfg.Validate rejects any other backend, so this is exhaustive.
func NewWorker(id int, urls []string, cfg *netindexer.Config) *Worker {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}
	if cfg.EnabledAres && cfg.NSServer != "" {
		resolverAddr := cfg.NSServer
		if _, _, err := net.SplitHostPort(resolverAddr); err != nil {
			resolverAddr = net.JoinHostPort(resolverAddr, "53")
		}
		dialer.Resolver = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{Timeout: cfg.ConnectTimeout}
				return d.DialContext(ctx, "udp", resolverAddr)
			},
		}
	}

	transport := &http.Transport{
		DisableKeepAlives:   true,
		DisableCompression:  true, // body is stored still-compressed; extraction decodes it
		TLSClientConfig:     &tls.Config{},
		MaxIdleConnsPerHost: -1,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr) // prefer IPv4, per worker contract
		},
	}

	// CheckRedirect is set per-request in fetchOne (each request needs its
	// own redirect counter); fetchOne copies Timeout and Transport from this
	// shared client.
	client := &http.Client{Timeout: cfg.Timeout, Transport: transport}

	maxHandles := cfg.MaxHandles
	if cfg.Backend == "requests" {
		maxHandles = 1
	}

	return &Worker{id: id, urls: urls, cfg: cfg, maxHandles: maxHandles, client: client}
}

// Run fetches every URL in the worker's batch concurrently, bounded by
// maxHandles in-flight requests at a time (1 for the "requests" backend,
// cfg.MaxHandles for "pycurl"). A panic inside the fetch loop is recovered
// and reported as WorkerFatal, the closest Go analogue to the reference
// engine's per-process exception capture.
func (w *Worker) Run(ctx context.Context) (results []netindexer.FetchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = &netindexer.EngineError{
				Code: netindexer.ErrWorkerFatal,
				Op:   fmt.Sprintf("fetch.Worker[%d]", w.id),
				Err:  fmt.Errorf("panic: %v", r),
			}
		}
	}()

	sem := make(chan struct{}, w.maxHandles)
	out := make(chan netindexer.FetchResult, len(w.urls))
	var wg sync.WaitGroup
	var panicOnce sync.Once
	var panicVal any

	for _, u := range w.urls {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicVal = r })
				}
			}()
			out <- w.fetchOne(ctx, url)
		}(u)
	}

	wg.Wait()
	if panicVal != nil {
		panic(panicVal) // re-raised here so the deferred recover reports WorkerFatal
	}
	close(out)
	for r := range out {
		results = append(results, r)
	}
	return results, nil
}

func (w *Worker) fetchOne(ctx context.Context, url string) netindexer.FetchResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errorResult(url, &netindexer.EngineError{Code: netindexer.ErrClientEncoding, URL: url, Op: "fetch", Err: err})
	}
	for k, v := range acceptHeaders {
		req.Header.Set(k, v)
	}
	if w.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", w.cfg.UserAgent)
	}

	var remoteAddr string
	var redirects int
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Conn != nil {
				remoteAddr = info.Conn.RemoteAddr().String()
			}
		},
	}))

	client := &http.Client{
		Timeout:   w.client.Timeout,
		Transport: w.client.Transport,
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			redirects = len(via)
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return errorResult(url, classifyNetworkError(url, err))
	}
	defer resp.Body.Close()

	bodyBuf := newBoundedBuffer(w.cfg.ContentBufferSize)
	chunk := make([]byte, chunkSize(w.cfg.ContentBufferSize))
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			bodyBuf.Write(chunk[:n])
		}
		if rerr != nil {
			break
		}
	}

	headers := collectHeaders(resp.Header, w.cfg.HeaderBufferSize)

	ip, port := splitRemoteAddr(remoteAddr)
	elapsed := time.Since(start).Seconds()
	size := int64(bodyBuf.Len())
	var speed float64
	if elapsed > 0 {
		speed = float64(size) / elapsed
	}

	return netindexer.FetchResult{
		CreatedAt: time.Now().UTC(),
		URL:       url,
		Body:      bodyBuf.Bytes(),
		Headers:   headers,
		HTTPCode:  resp.StatusCode,
		Size:      size,
		Speed:     speed,
		IP:        ip,
		Port:      port,
		Redirects: redirects,
	}
}

func errorResult(url string, err *netindexer.EngineError) netindexer.FetchResult {
	return netindexer.FetchResult{
		CreatedAt: time.Now().UTC(),
		URL:       url,
		Error:     err.Tag(),
	}
}

// classifyNetworkError distinguishes a context timeout from a generic
// network failure so the error tag reflects the right family.
func classifyNetworkError(url string, err error) *netindexer.EngineError {
	if errors.Is(err, context.DeadlineExceeded) || isTimeoutError(err) {
		return &netindexer.EngineError{Code: netindexer.ErrNetwork, URL: url, Op: "fetch-timeout", Err: errors.New("timeout")}
	}
	return &netindexer.EngineError{Code: netindexer.ErrNetwork, URL: url, Op: "fetch", Err: err}
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func chunkSize(contentBufferSize int) int {
	if contentBufferSize <= 0 || contentBufferSize > 65536 {
		return 4096
	}
	return contentBufferSize
}

func splitRemoteAddr(addr string) (string, int) {
	if addr == "" {
		return "", 0
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return host, port
}

func collectHeaders(h http.Header, maxBytes int) netindexer.Headers {
	var hdrs netindexer.Headers
	used := 0
	for name, values := range h {
		for _, v := range values {
			entry := len(name) + len(v) + 2
			if maxBytes > 0 && used+entry > maxBytes {
				return hdrs
			}
			hdrs.Set(name, v)
			used += entry
		}
	}
	return hdrs
}

// boundedBuffer appends writes up to max bytes; the part of a write that
// would cross max, and every later write, is silently dropped. This mirrors the
// reference fetcher's truncate-don't-fail write callback.
type boundedBuffer struct {
	buf      []byte
	max      int
	exceeded bool
}

func newBoundedBuffer(max int) *boundedBuffer {
	return &boundedBuffer{max: max}
}

func (b *boundedBuffer) Write(p []byte) {
	if b.exceeded {
		return
	}
	if len(b.buf) >= b.max {
		b.exceeded = true
		return
	}
	remaining := b.max - len(b.buf)
	if len(p) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		b.exceeded = true
		return
	}
	b.buf = append(b.buf, p...)
}

func (b *boundedBuffer) Bytes() []byte { return b.buf }
func (b *boundedBuffer) Len() int      { return len(b.buf) }
