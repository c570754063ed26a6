package marc

import (
	"strconv"
	"strings"

	"github.com/biblioworks/marcflow/pkg/errors"
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// ISO 2709 structure characters.
const (
	fieldTerminator    = 0x1e
	recordTerminator   = 0x1d
	subfieldDelimiter  = 0x1f
	directoryEntryLen  = 12
	maxFieldLen        = 9999
	maxRecordLen       = 99999
	leaderBaseAddrFrom = 12
	leaderBaseAddrTo   = 17
)

// ISO2709 serializes the record in ISO 2709 binary transmission format:
// a 24-byte leader with recomputed record length and base address, a
// directory of 12-byte entries, then field data. Control fields precede
// data fields, matching the record model's serialization order.
func (r *Record) ISO2709() ([]byte, error) {
	type entry struct {
		tag  string
		data []byte
	}

	fieldCount := len(r.Control) + len(r.Fields)
	entries := make([]entry, 0, fieldCount)

	for _, cf := range r.Control {
		data := make([]byte, 0, len(cf.Value)+1)
		data = append(data, cf.Value...)
		data = append(data, fieldTerminator)
		entries = append(entries, entry{tag: cf.Tag, data: data})
	}

	for _, f := range r.Fields {
		b := stringpool.GetBuilder(stringpool.Small)
		b.WriteString(normalizeIndicator(f.Ind1))
		b.WriteString(normalizeIndicator(f.Ind2))
		for _, sf := range f.Subfields {
			b.WriteByte(subfieldDelimiter)
			b.WriteString(sf.Code)
			b.WriteString(sf.Value)
		}
		b.WriteByte(fieldTerminator)

		data := make([]byte, b.Len())
		copy(data, b.Bytes())
		stringpool.PutBuilder(b, stringpool.Small)

		entries = append(entries, entry{tag: f.Tag, data: data})
	}

	baseAddress := LeaderLen + directoryEntryLen*len(entries) + 1

	out := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(out, stringpool.Medium)

	// Leader placeholder; length and base address are patched below.
	leader := r.Leader
	if len(leader) < LeaderLen {
		leader += strings.Repeat(" ", LeaderLen-len(leader))
	}
	out.WriteString(leader[:LeaderLen])

	offset := 0
	for _, e := range entries {
		if len(e.data) > maxFieldLen {
			return nil, errors.Newf(errors.ErrorTypeData,
				"field %s exceeds ISO 2709 length limit (%d > %d)", e.tag, len(e.data), maxFieldLen)
		}
		out.WriteString(e.tag)
		writeZeroPadded(out, len(e.data), 4)
		writeZeroPadded(out, offset, 5)
		offset += len(e.data)
	}
	out.WriteByte(fieldTerminator)

	for _, e := range entries {
		out.WriteBytes(e.data)
	}
	out.WriteByte(recordTerminator)

	total := out.Len()
	if total > maxRecordLen {
		return nil, errors.Newf(errors.ErrorTypeData,
			"record %s exceeds ISO 2709 length limit (%d > %d)", r.ID(), total, maxRecordLen)
	}

	result := make([]byte, total)
	copy(result, out.Bytes())
	patchZeroPadded(result[0:5], total)
	patchZeroPadded(result[leaderBaseAddrFrom:leaderBaseAddrTo], baseAddress)

	return result, nil
}

// ParseISO2709 parses a single ISO 2709 record. Used by tests and by
// callers round-tripping binary exports; sources in this repo store
// MARCXML, not binary.
func ParseISO2709(data []byte) (*Record, error) {
	if len(data) < LeaderLen+1 {
		return nil, errors.New(errors.ErrorTypeData, "ISO 2709 record shorter than leader")
	}

	leader := string(data[:LeaderLen])
	baseAddress, err := strconv.Atoi(leader[leaderBaseAddrFrom:leaderBaseAddrTo])
	if err != nil || baseAddress < LeaderLen+1 || baseAddress > len(data) {
		return nil, errors.New(errors.ErrorTypeData, "ISO 2709 leader has invalid base address")
	}

	rec := NewRecord(leader)

	directory := data[LeaderLen : baseAddress-1]
	if len(directory)%directoryEntryLen != 0 {
		return nil, errors.New(errors.ErrorTypeData, "ISO 2709 directory length not a multiple of 12")
	}

	body := data[baseAddress:]
	for i := 0; i < len(directory); i += directoryEntryLen {
		tag := string(directory[i : i+3])
		fieldLen, lenErr := strconv.Atoi(string(directory[i+3 : i+7]))
		start, startErr := strconv.Atoi(string(directory[i+7 : i+12]))
		if lenErr != nil || startErr != nil || start+fieldLen > len(body) {
			return nil, errors.Newf(errors.ErrorTypeData, "ISO 2709 directory entry for %s is invalid", tag)
		}

		// Strip the trailing field terminator.
		field := body[start : start+fieldLen]
		if n := len(field); n > 0 && field[n-1] == fieldTerminator {
			field = field[:n-1]
		}

		if tag < "010" {
			rec.AddControlField(tag, string(field))
			continue
		}

		if len(field) < 2 {
			return nil, errors.Newf(errors.ErrorTypeData, "ISO 2709 data field %s missing indicators", tag)
		}
		df := DataField{Tag: tag, Ind1: string(field[0]), Ind2: string(field[1])}
		for _, raw := range splitSubfields(field[2:]) {
			if len(raw) == 0 {
				continue
			}
			df.Subfields = append(df.Subfields, Subfield{
				Code:  string(raw[0]),
				Value: string(raw[1:]),
			})
		}
		rec.Fields = append(rec.Fields, df)
	}

	return rec, nil
}

func splitSubfields(data []byte) [][]byte {
	var parts [][]byte
	start := -1
	for i, c := range data {
		if c == subfieldDelimiter {
			if start >= 0 {
				parts = append(parts, data[start:i])
			}
			start = i + 1
		}
	}
	if start >= 0 {
		parts = append(parts, data[start:])
	}
	return parts
}

func writeZeroPadded(b *stringpool.Builder, n, width int) {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}

func patchZeroPadded(dst []byte, n int) {
	s := strconv.Itoa(n)
	for i := range dst {
		dst[i] = '0'
	}
	copy(dst[len(dst)-len(s):], s)
}
