// Package docstore provides the document-store destination for the
// docstore output mode: one document inserted per exported record.
package docstore

import (
	"context"
)

// Sink accepts one converted document per exported record. No batching
// contract is imposed; implementations may buffer internally as long as
// Close flushes.
type Sink interface {
	// Insert stores one record document.
	Insert(ctx context.Context, doc map[string]interface{}) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
