package pipeline

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioworks/marcflow/pkg/marc"
)

func makeIDs(n int) []marc.RecordID {
	if n == 0 {
		return nil
	}
	ids := make([]marc.RecordID, n)
	for i := range ids {
		ids[i] = marc.RecordID(strconv.Itoa(i + 1))
	}
	return ids
}

func TestBatcherCoversSequenceInOrder(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		size    int
		batches []int
	}{
		{name: "empty", n: 0, size: 1000, batches: nil},
		{name: "single partial", n: 7, size: 1000, batches: []int{7}},
		{name: "exact batch", n: 1000, size: 1000, batches: []int{1000}},
		{name: "final batch smaller", n: 2500, size: 1000, batches: []int{1000, 1000, 500}},
		{name: "size one", n: 3, size: 1, batches: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := makeIDs(tt.n)
			b := NewBatcher(ids, tt.size)

			var sizes []int
			var concat []marc.RecordID
			for {
				batch, ok := b.Next()
				if !ok {
					break
				}
				sizes = append(sizes, len(batch))
				concat = append(concat, batch...)
			}

			assert.Equal(t, tt.batches, sizes)
			assert.Equal(t, makeIDs(tt.n), concat)
			assert.Equal(t, 0, b.Remaining())
		})
	}
}

func TestBatcherConsumesDestructively(t *testing.T) {
	b := NewBatcher(makeIDs(5), 2)

	batch, ok := b.Next()
	require.True(t, ok)
	assert.Len(t, batch, 2)
	assert.Equal(t, 3, b.Remaining())

	// Exhausted batchers stay exhausted.
	for {
		if _, ok := b.Next(); !ok {
			break
		}
	}
	_, ok = b.Next()
	assert.False(t, ok)
}
