package netindexer

import "context"

// Runner is implemented by the top-level coordinators (fetch and
// extraction) so the CLI layer can drive either one identically.
type Runner interface {
	// Run executes the coordinator to completion or until ctx is canceled.
	Run(ctx context.Context) error
}
