package batch

import (
	"encoding/gob"
	"os"

	"github.com/BumpyClock/netindexer"
	"github.com/klauspost/compress/gzip"
)

// Reader iterates the Batch objects in a single BatchFile, tolerating bad
// gzip framing and truncated tails: any decode error, including one in the
// first Batch, simply ends iteration rather than propagating.
type Reader struct {
	f   *os.File
	gz  *gzip.Reader
	dec *gob.Decoder
}

// OpenReader opens path for reading. A failure to open the file at all, or
// to read even the gzip header, is reported as a BadBatchRecord error;
// corruption discovered mid-stream is handled by Next instead.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &netindexer.EngineError{Code: netindexer.ErrBadBatchRecord, Op: "batch.OpenReader", Err: err}
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, &netindexer.EngineError{Code: netindexer.ErrBadBatchRecord, Op: "batch.OpenReader", Err: err}
	}
	return &Reader{f: f, gz: gz, dec: gob.NewDecoder(gz)}, nil
}

// Close releases the underlying file and decompressor.
func (r *Reader) Close() error {
	r.gz.Close()
	return r.f.Close()
}

// Next decodes one Batch. It returns (batch, true) on success, and
// (nil, false) both on clean end-of-stream and on any
// decode error (malformed gzip, truncated gob record) — robustness over
// strictness, per the tolerant-reader contract.
func (r *Reader) Next() (*Batch, bool) {
	var b Batch
	if err := r.dec.Decode(&b); err != nil {
		return nil, false
	}
	return &b, true
}

// ReadAll drains every record from every Batch in the file at path,
// stopping silently at the first unreadable Batch.
func ReadAll(path string) ([]netindexer.FetchResult, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []netindexer.FetchResult
	for {
		b, ok := r.Next()
		if !ok {
			break
		}
		out = append(out, b.Records...)
	}
	return out, nil
}
