package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	tests := []struct {
		name   string
		leader string
		want   string
	}{
		{
			name:   "empty leader uses default",
			leader: "",
			want:   DefaultLeader,
		},
		{
			name:   "short leader is padded to 24",
			leader: "00000nam",
			want:   "00000nam                ",
		},
		{
			name:   "full leader kept as is",
			leader: "00062nam a2200049 a 4500",
			want:   "00062nam a2200049 a 4500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(tt.leader)
			assert.Equal(t, tt.want, rec.Leader)
			assert.Len(t, rec.Leader, LeaderLen)
		})
	}
}

func TestRecord_ID(t *testing.T) {
	rec := NewRecord("")
	assert.Equal(t, RecordID(""), rec.ID())

	rec.AddControlField("001", "1042")
	assert.Equal(t, RecordID("1042"), rec.ID())
}

func TestRecord_SetControlField(t *testing.T) {
	rec := NewRecord("")
	rec.SetControlField("003", "NO-OsNB")
	rec.SetControlField("003", "DLC")

	v, ok := rec.ControlFieldValue("003")
	require.True(t, ok)
	assert.Equal(t, "DLC", v)
	assert.Len(t, rec.Control, 1)

	rec.SetControlField("005", "20060102150405.0")
	assert.Len(t, rec.Control, 2)
}

func TestRecord_AddDataField(t *testing.T) {
	rec := NewRecord("")
	rec.AddDataField("245", "1", "0",
		Subfield{Code: "a", Value: "The Go programming language"},
		Subfield{Code: "c", Value: "Donovan"},
	)
	rec.AddDataField("100", "", "", Subfield{Code: "a", Value: "Kernighan"})

	require.Len(t, rec.Fields, 2)
	assert.Equal(t, "1", rec.Fields[0].Ind1)
	assert.Equal(t, "0", rec.Fields[0].Ind2)

	// Empty indicators normalize to blanks.
	assert.Equal(t, " ", rec.Fields[1].Ind1)
	assert.Equal(t, " ", rec.Fields[1].Ind2)

	title, ok := rec.Fields[0].Subfield("a")
	require.True(t, ok)
	assert.Equal(t, "The Go programming language", title)

	_, ok = rec.Fields[0].Subfield("z")
	assert.False(t, ok)
}

func TestRecord_FieldsByTag(t *testing.T) {
	rec := NewRecord("")
	rec.AddDataField("952", "", "", Subfield{Code: "a", Value: "MAIN"})
	rec.AddDataField("650", "", "0", Subfield{Code: "a", Value: "Computer science"})
	rec.AddDataField("952", "", "", Subfield{Code: "a", Value: "BRANCH"})

	holdings := rec.FieldsByTag("952")
	require.Len(t, holdings, 2)
	first, _ := holdings[0].Subfield("a")
	second, _ := holdings[1].Subfield("a")
	assert.Equal(t, "MAIN", first)
	assert.Equal(t, "BRANCH", second)

	assert.True(t, rec.HasTag("650"))
	assert.False(t, rec.HasTag("999"))
}

func TestRecord_RemoveTag(t *testing.T) {
	rec := NewRecord("")
	rec.AddControlField("001", "1042")
	rec.AddControlField("008", "120105s2012")
	rec.AddDataField("245", "1", "0", Subfield{Code: "a", Value: "Title"})
	rec.AddDataField("942", "", "", Subfield{Code: "n", Value: "1"})
	rec.AddDataField("942", "", "", Subfield{Code: "c", Value: "BK"})

	assert.Equal(t, 2, rec.RemoveTag("942"))
	assert.False(t, rec.HasTag("942"))
	assert.Len(t, rec.Fields, 1)

	assert.Equal(t, 1, rec.RemoveTag("008"))
	_, ok := rec.ControlFieldValue("008")
	assert.False(t, ok)

	assert.Equal(t, 0, rec.RemoveTag("999"))
	assert.Equal(t, RecordID("1042"), rec.ID())
}
