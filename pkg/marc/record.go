// Package marc implements the MARC 21 record model and the serializations
// the export pipeline emits: MARCXML, MARCMaker mnemonic text, ISO 2709
// binary, MARC-in-JSON, and the document form used by document-store
// destinations.
//
// # Record Model
//
// A Record carries a 24-character leader, ordered control fields (tags
// 001-009, bare values) and ordered data fields (tags 010-999 with two
// indicators and subfields). Field order is preserved within each group;
// control fields serialize before data fields.
//
// # Mutation
//
// Records retrieved from a source are transiently owned by the pipeline:
// export policies mutate them in place (SetControlField, AddDataField,
// RemoveTag) before serialization. Records are not safe for concurrent
// use.
package marc

import (
	"strings"
)

// RecordID is an opaque catalog record identifier as issued by the record
// source (biblionumber, authid, or equivalent).
type RecordID string

// String returns the identifier as a string.
func (id RecordID) String() string {
	return string(id)
}

// DefaultLeader is the leader assigned to records built without one.
// Length and base address (positions 0-4 and 12-16) are recomputed during
// ISO 2709 serialization.
const DefaultLeader = "00000nam a2200000 a 4500"

// LeaderLen is the fixed leader size mandated by MARC 21.
const LeaderLen = 24

// ControlField is a variable control field (tags 001-009): a bare value
// with no indicators or subfields.
type ControlField struct {
	Tag   string
	Value string
}

// Subfield is a single subfield of a data field.
type Subfield struct {
	Code  string
	Value string
}

// DataField is a variable data field (tags 010-999) with two indicator
// characters and ordered subfields.
type DataField struct {
	Tag       string
	Ind1      string
	Ind2      string
	Subfields []Subfield
}

// Subfield returns the value of the first subfield with the given code.
func (f *DataField) Subfield(code string) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// Record is a single MARC 21 bibliographic or authority record.
type Record struct {
	Leader  string
	Control []ControlField
	Fields  []DataField
}

// NewRecord creates an empty record. An empty leader is replaced with
// DefaultLeader; shorter leaders are space-padded to LeaderLen.
func NewRecord(leader string) *Record {
	if leader == "" {
		leader = DefaultLeader
	}
	if len(leader) < LeaderLen {
		leader += strings.Repeat(" ", LeaderLen-len(leader))
	}
	return &Record{Leader: leader}
}

// ID returns the record identifier from the 001 control field, or the
// empty RecordID when no 001 is present.
func (r *Record) ID() RecordID {
	if v, ok := r.ControlFieldValue("001"); ok {
		return RecordID(v)
	}
	return ""
}

// ControlFieldValue returns the value of the first control field with the
// given tag.
func (r *Record) ControlFieldValue(tag string) (string, bool) {
	for _, cf := range r.Control {
		if cf.Tag == tag {
			return cf.Value, true
		}
	}
	return "", false
}

// SetControlField replaces the value of the control field with the given
// tag, appending the field if it does not exist.
func (r *Record) SetControlField(tag, value string) {
	for i, cf := range r.Control {
		if cf.Tag == tag {
			r.Control[i].Value = value
			return
		}
	}
	r.Control = append(r.Control, ControlField{Tag: tag, Value: value})
}

// AddControlField appends a control field.
func (r *Record) AddControlField(tag, value string) {
	r.Control = append(r.Control, ControlField{Tag: tag, Value: value})
}

// AddDataField appends a data field. Blank indicators may be given as
// empty strings; they normalize to a single space.
func (r *Record) AddDataField(tag, ind1, ind2 string, subfields ...Subfield) {
	r.Fields = append(r.Fields, DataField{
		Tag:       tag,
		Ind1:      normalizeIndicator(ind1),
		Ind2:      normalizeIndicator(ind2),
		Subfields: subfields,
	})
}

// FieldsByTag returns all data fields with the given tag, in record order.
func (r *Record) FieldsByTag(tag string) []DataField {
	var out []DataField
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// HasTag reports whether any control or data field carries the tag.
func (r *Record) HasTag(tag string) bool {
	for _, cf := range r.Control {
		if cf.Tag == tag {
			return true
		}
	}
	for _, f := range r.Fields {
		if f.Tag == tag {
			return true
		}
	}
	return false
}

// RemoveTag deletes every control and data field with the given tag and
// returns the number of fields removed.
func (r *Record) RemoveTag(tag string) int {
	removed := 0

	control := r.Control[:0]
	for _, cf := range r.Control {
		if cf.Tag == tag {
			removed++
			continue
		}
		control = append(control, cf)
	}
	r.Control = control

	fields := r.Fields[:0]
	for _, f := range r.Fields {
		if f.Tag == tag {
			removed++
			continue
		}
		fields = append(fields, f)
	}
	r.Fields = fields

	return removed
}

func normalizeIndicator(ind string) string {
	if ind == "" {
		return " "
	}
	return ind
}
