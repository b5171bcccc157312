package batch

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/BumpyClock/netindexer"
	"github.com/klauspost/compress/gzip"
)

// Writer rotates a sequence of compressed BatchFiles under a shared name
// prefix, naming each "<prefix>_<iteration>.gob.gz".
type Writer struct {
	prefix    string
	iteration int

	f   *os.File
	gz  *gzip.Writer
	enc *gob.Encoder
}

// NewWriter opens iteration 0 of prefix for writing.
func NewWriter(prefix string) (*Writer, error) {
	w := &Writer{prefix: prefix}
	if err := w.openCurrent(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) fileName() string {
	return fmt.Sprintf("%s_%d.gob.gz", w.prefix, w.iteration)
}

func (w *Writer) openCurrent() error {
	f, err := os.Create(w.fileName())
	if err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "batch.Writer.open", Err: err}
	}
	gz, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		f.Close()
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "batch.Writer.open", Err: err}
	}
	w.f = f
	w.gz = gz
	w.enc = gob.NewEncoder(gz)
	return nil
}

// WriteBatch gob-encodes b into the current BatchFile's gzip stream.
func (w *Writer) WriteBatch(b Batch) error {
	if err := w.enc.Encode(&b); err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "batch.Writer.WriteBatch", Err: err}
	}
	return nil
}

// Rotate closes the current BatchFile, advances the iteration counter, and
// opens a fresh one. The counter advances after the old file is fully
// closed and before the new one is created, so names are never reused.
func (w *Writer) Rotate() error {
	if err := w.closeCurrent(); err != nil {
		return err
	}
	w.iteration++
	return w.openCurrent()
}

func (w *Writer) closeCurrent() error {
	if err := w.gz.Close(); err != nil {
		w.f.Close()
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "batch.Writer.close", Err: err}
	}
	if err := w.f.Close(); err != nil {
		return &netindexer.EngineError{Code: netindexer.ErrOutputIO, Op: "batch.Writer.close", Err: err}
	}
	return nil
}

// Close flushes and closes the current BatchFile.
func (w *Writer) Close() error {
	return w.closeCurrent()
}

// Iteration returns the number of BatchFiles closed so far (the index of
// the file currently open).
func (w *Writer) Iteration() int {
	return w.iteration
}
