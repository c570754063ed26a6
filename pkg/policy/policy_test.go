package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioworks/marcflow/pkg/marc"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func bibRecord(id string) *marc.Record {
	rec := marc.NewRecord("00000nam a2200000 a 4500")
	rec.AddControlField("001", id)
	rec.AddDataField("245", "1", "0", marc.Subfield{Code: "a", Value: "Title " + id})
	return rec
}

func TestNewAudit(t *testing.T) {
	ids := []marc.RecordID{"1", "2", "3"}
	audit := NewAudit("Bib", ids)

	assert.NotEmpty(t, audit.ID)
	assert.Equal(t, "bib", audit.Kind)
	assert.Equal(t, ids, audit.RecordIDs)
	assert.False(t, audit.CreatedAt.IsZero())
	assert.NotNil(t, audit.Counts)

	second := NewAudit("Auth", nil)
	assert.NotEqual(t, audit.ID, second.ID)
	assert.Equal(t, "auth", second.Kind)
}

func TestItems_Count(t *testing.T) {
	items := NewItems()
	items.Count("MAIN")
	items.Count("MAIN")
	items.Count("EAST")
	items.Count("")

	assert.Equal(t, 4, items.Total)
	assert.Equal(t, map[string]int{"MAIN": 2, "EAST": 1}, items.ByBranch)
}

func TestBibPolicy_Exclude(t *testing.T) {
	p := NewBibPolicy("NO-OsNB")

	tests := []struct {
		name string
		rec  *marc.Record
		want bool
	}{
		{
			name: "plain record kept",
			rec:  bibRecord("1"),
			want: false,
		},
		{
			name: "deleted leader excluded",
			rec:  marc.NewRecord("00000dam a2200000 a 4500"),
			want: true,
		},
		{
			name: "suppressed via 942n excluded",
			rec: func() *marc.Record {
				rec := bibRecord("2")
				rec.AddDataField("942", "", "", marc.Subfield{Code: "n", Value: "1"})
				return rec
			}(),
			want: true,
		},
		{
			name: "unsuppressed 942n kept",
			rec: func() *marc.Record {
				rec := bibRecord("3")
				rec.AddDataField("942", "", "", marc.Subfield{Code: "n", Value: "0"})
				return rec
			}(),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Exclude(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBibPolicy_Transform(t *testing.T) {
	p := NewBibPolicy("NO-OsNB")
	p.now = fixedClock

	rec := bibRecord("1042")
	rec.AddDataField("952", "", "",
		marc.Subfield{Code: "a", Value: "MAIN"},
		marc.Subfield{Code: "p", Value: "31042000123456"},
	)
	rec.AddDataField("952", "", "", marc.Subfield{Code: "a", Value: "EAST"})

	audit := NewAudit("Bib", []marc.RecordID{"1042"})
	items := NewItems()
	require.NoError(t, p.Transform(rec, audit, items))

	org, ok := rec.ControlFieldValue("003")
	require.True(t, ok)
	assert.Equal(t, "NO-OsNB", org)

	ts, ok := rec.ControlFieldValue("005")
	require.True(t, ok)
	assert.Equal(t, "20240315103000.0", ts)

	assert.Equal(t, 1, audit.Counts["records"])
	assert.Equal(t, 2, audit.Counts["items"])
	assert.Equal(t, 2, items.Total)
	assert.Equal(t, map[string]int{"MAIN": 1, "EAST": 1}, items.ByBranch)
}

func TestBibPolicy_TransformKeepsExistingOrg(t *testing.T) {
	p := NewBibPolicy("NO-OsNB")
	p.now = fixedClock

	rec := bibRecord("7")
	rec.SetControlField("003", "DLC")
	require.NoError(t, p.Transform(rec, NewAudit("Bib", nil), nil))

	org, _ := rec.ControlFieldValue("003")
	assert.Equal(t, "DLC", org)
}

func TestAuthPolicy(t *testing.T) {
	p := NewAuthPolicy("NO-OsNB")
	p.now = fixedClock

	deleted := marc.NewRecord("00000dz  a2200000n  4500")
	excluded, err := p.Exclude(deleted)
	require.NoError(t, err)
	assert.True(t, excluded)

	rec := marc.NewRecord("00000nz  a2200000n  4500")
	rec.AddControlField("001", "304")
	rec.AddDataField("150", "", "", marc.Subfield{Code: "a", Value: "Distributed databases"})

	excluded, err = p.Exclude(rec)
	require.NoError(t, err)
	assert.False(t, excluded)

	audit := NewAudit("Auth", []marc.RecordID{"304"})
	require.NoError(t, p.Transform(rec, audit, nil))

	ts, ok := rec.ControlFieldValue("005")
	require.True(t, ok)
	assert.Equal(t, "20240315103000.0", ts)
	assert.Equal(t, 1, audit.Counts["records"])
}
