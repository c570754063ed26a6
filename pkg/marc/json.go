package marc

import (
	"github.com/biblioworks/marcflow/pkg/json"
)

type jsonRecord struct {
	Leader string        `json:"leader"`
	Fields []interface{} `json:"fields"`
}

// JSON serializes the record in the MARC-in-JSON interchange shape: the
// leader string followed by an ordered array of single-key field objects.
func (r *Record) JSON() ([]byte, error) {
	return json.Marshal(jsonRecord{Leader: r.Leader, Fields: r.jsonFields()})
}

func (r *Record) jsonFields() []interface{} {
	fields := make([]interface{}, 0, len(r.Control)+len(r.Fields))
	for _, cf := range r.Control {
		fields = append(fields, map[string]interface{}{cf.Tag: cf.Value})
	}
	for _, f := range r.Fields {
		subfields := make([]interface{}, 0, len(f.Subfields))
		for _, sf := range f.Subfields {
			subfields = append(subfields, map[string]interface{}{sf.Code: sf.Value})
		}
		fields = append(fields, map[string]interface{}{f.Tag: map[string]interface{}{
			"ind1":      normalizeIndicator(f.Ind1),
			"ind2":      normalizeIndicator(f.Ind2),
			"subfields": subfields,
		}})
	}
	return fields
}

// Document returns the record as a document-store payload: the
// MARC-in-JSON shape plus the record identifier for keyed lookups.
func (r *Record) Document() map[string]interface{} {
	return map[string]interface{}{
		"record_id": string(r.ID()),
		"leader":    r.Leader,
		"fields":    r.jsonFields(),
	}
}
