// Package batch implements the Batch and BatchFile data model: ordered
// groups of FetchResults persisted as gob-encoded objects inside a
// gzip-compressed stream, and the writer/reader pair that produces and
// consumes that stream.
package batch

import "github.com/BumpyClock/netindexer"

// Batch is an ordered list of FetchResults persisted as one gob-encoded
// object inside a BatchFile.
type Batch struct {
	Records []netindexer.FetchResult
}
