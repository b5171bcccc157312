// Package urlsource implements the lazy, line-batched reader over the input
// URL file (component: URL Source).
package urlsource

import (
	"io"
	"os"
	"strings"

	"github.com/BumpyClock/netindexer"
)

// DefaultBatchReadBytes is the chunk size used when a caller does not
// specify one.
const DefaultBatchReadBytes = 10 * 1024 * 1024

// Source is a single-consumer, line-batched reader. Concurrent GetBatch
// calls are not safe.
type Source struct {
	f              *os.File
	batchReadBytes int
	finished       bool
	readErr        error

	oldbuf   string
	used     int
	bufLines []string
}

// Open opens path for reading and returns a Source that reads it in chunks
// of batchReadBytes (DefaultBatchReadBytes if <= 0).
func Open(path string, batchReadBytes int) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &netindexer.EngineError{Code: netindexer.ErrConfig, Op: "urlsource.Open", URL: path, Err: err}
	}
	if batchReadBytes <= 0 {
		batchReadBytes = DefaultBatchReadBytes
	}
	return &Source{f: f, batchReadBytes: batchReadBytes}, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.f.Close()
}

// GetBatch returns up to n lines, without their terminating newline. It
// returns fewer than n (possibly zero) only once the file is exhausted, or
// after a prior read error is surfaced once.
func (s *Source) GetBatch(n int) ([]string, error) {
	ret := make([]string, 0, n)
	for {
		need := n - len(ret)
		if need == 0 {
			break
		}

		end := s.used + need
		if end > len(s.bufLines) {
			end = len(s.bufLines)
		}
		ret = append(ret, s.bufLines[s.used:end]...)
		s.used = end

		if s.used == len(s.bufLines) {
			if s.finished {
				break
			}
			added, err := s.fillbuf()
			if err != nil {
				return ret, err
			}
			if added == 0 {
				s.finished = true
			}
		}
	}
	return ret, nil
}

// fillbuf reads chunks, merging each with any carried-forward partial line,
// until it produces at least one complete line or hits true EOF. A single
// chunk with no newline in it is not treated as exhaustion: the partial
// line is carried forward and another chunk is read, so a line longer than
// batchReadBytes is still read in full rather than silently truncating the
// rest of the file.
func (s *Source) fillbuf() (int, error) {
	s.used = 0
	s.bufLines = nil

	for {
		buf := make([]byte, s.batchReadBytes)
		n, err := s.f.Read(buf)
		if err != nil && err != io.EOF {
			s.readErr = &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "urlsource.GetBatch", Err: err}
			return 0, s.readErr
		}
		atEOF := err == io.EOF || n == 0

		combined := s.oldbuf + string(buf[:n])
		if combined == "" {
			return 0, nil
		}

		parts := strings.Split(combined, "\n")
		switch {
		case len(parts) > 1:
			s.oldbuf = parts[len(parts)-1]
			parts = parts[:len(parts)-1]
		case atEOF:
			s.oldbuf = ""
		default:
			// No newline in this chunk and not at EOF yet: carry the whole
			// thing forward and read another chunk instead of reporting
			// zero lines added (which the caller would read as EOF).
			s.oldbuf = combined
			continue
		}

		s.bufLines = parts
		return len(s.bufLines), nil
	}
}
