package pipeline

import (
	"github.com/biblioworks/marcflow/pkg/marc"
)

// Batcher slices an identifier sequence into retrieval batches of at
// most size identifiers, preserving original order. It is lazy, finite
// and non-restartable: each Next call consumes a chunk of the sequence.
type Batcher struct {
	remaining []marc.RecordID
	size      int
}

// NewBatcher creates a batcher over ids. The batcher takes ownership of
// the slice and consumes it destructively.
func NewBatcher(ids []marc.RecordID, size int) *Batcher {
	if size < 1 {
		size = 1
	}
	return &Batcher{remaining: ids, size: size}
}

// Next returns the next batch. ok is false once the sequence is
// exhausted; the final batch may be smaller than the configured size.
func (b *Batcher) Next() (batch []marc.RecordID, ok bool) {
	if len(b.remaining) == 0 {
		return nil, false
	}

	n := b.size
	if n > len(b.remaining) {
		n = len(b.remaining)
	}
	batch = b.remaining[:n]
	b.remaining = b.remaining[n:]
	return batch, true
}

// Remaining returns how many identifiers have not been batched yet.
func (b *Batcher) Remaining() int {
	return len(b.remaining)
}
