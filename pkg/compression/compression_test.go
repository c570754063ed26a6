package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFilename(t *testing.T) {
	tests := []struct {
		name string
		alg  Algorithm
	}{
		{"export.xml", None},
		{"export.xml.gz", Gzip},
		{"export.mrc.zst", Zstd},
		{"export.json.lz4", LZ4},
		{"export", None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.alg, ForFilename(tt.name))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("<record>catalog export payload</record>\n"), 200)

	for _, alg := range []Algorithm{None, Gzip, Zstd, LZ4} {
		t.Run(string(alg), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := NewWriter(&buf, alg)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if alg != None {
				assert.Less(t, buf.Len(), len(payload), "compressed output should shrink")
			}

			r, err := NewReader(bytes.NewReader(buf.Bytes()), alg)
			require.NoError(t, err)
			out, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())

			assert.Equal(t, payload, out)
		})
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := NewWriter(io.Discard, Algorithm("brotli"))
	require.Error(t, err)

	_, err = NewReader(bytes.NewReader(nil), Algorithm("brotli"))
	require.Error(t, err)
}

func TestCloseLeavesUnderlyingWriterOpen(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, None)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// The destination stream stays usable after the compression layer
	// closes.
	_, err = buf.Write([]byte("trailer"))
	require.NoError(t, err)
}
