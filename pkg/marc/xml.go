package marc

import (
	"encoding/xml"

	"github.com/biblioworks/marcflow/pkg/errors"
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// MARCXML framing. The export pipeline writes XMLHeader and CollectionOpen
// before each batch and CollectionClose after it, so a multi-batch export
// contains one complete wrapped collection per batch.
const (
	// XMLHeader is the declaration plus the structural schema comment.
	XMLHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<!-- MARC21slim http://www.loc.gov/standards/marcxml/schema/MARC21slim.xsd -->\n"

	// CollectionOpen starts a MARCXML collection.
	CollectionOpen = "<collection xmlns=\"http://www.loc.gov/MARC21/slim\">\n"

	// CollectionClose ends a MARCXML collection.
	CollectionClose = "</collection>\n"
)

// XML serializes the record as a MARCXML <record> element, indented for
// embedding inside a collection wrapper, with a trailing newline.
func (r *Record) XML() ([]byte, error) {
	b := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(b, stringpool.Medium)

	b.WriteString("  <record>\n    <leader>")
	writeEscaped(b, r.Leader)
	b.WriteString("</leader>\n")

	for _, cf := range r.Control {
		b.WriteString("    <controlfield tag=\"")
		writeEscaped(b, cf.Tag)
		b.WriteString("\">")
		writeEscaped(b, cf.Value)
		b.WriteString("</controlfield>\n")
	}

	for _, f := range r.Fields {
		b.WriteString("    <datafield tag=\"")
		writeEscaped(b, f.Tag)
		b.WriteString("\" ind1=\"")
		writeEscaped(b, normalizeIndicator(f.Ind1))
		b.WriteString("\" ind2=\"")
		writeEscaped(b, normalizeIndicator(f.Ind2))
		b.WriteString("\">\n")
		for _, sf := range f.Subfields {
			b.WriteString("      <subfield code=\"")
			writeEscaped(b, sf.Code)
			b.WriteString("\">")
			writeEscaped(b, sf.Value)
			b.WriteString("</subfield>\n")
		}
		b.WriteString("    </datafield>\n")
	}

	b.WriteString("  </record>\n")

	out := make([]byte, b.Len())
	copy(out, b.Bytes())
	return out, nil
}

// writeEscaped writes s with XML entity escaping. Builder.Write never
// returns an error.
func writeEscaped(b *stringpool.Builder, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

type xmlSubfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

type xmlControlField struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

type xmlDataField struct {
	Tag       string        `xml:"tag,attr"`
	Ind1      string        `xml:"ind1,attr"`
	Ind2      string        `xml:"ind2,attr"`
	Subfields []xmlSubfield `xml:"subfield"`
}

type xmlRecord struct {
	XMLName       xml.Name          `xml:"record"`
	Leader        string            `xml:"leader"`
	ControlFields []xmlControlField `xml:"controlfield"`
	DataFields    []xmlDataField    `xml:"datafield"`
}

// ParseXML parses a single MARCXML <record> element, namespaced or not.
// Record sources store catalog records in this form.
func ParseXML(data []byte) (*Record, error) {
	var xr xmlRecord
	if err := xml.Unmarshal(data, &xr); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to parse MARCXML record")
	}

	rec := NewRecord(xr.Leader)
	for _, cf := range xr.ControlFields {
		rec.AddControlField(cf.Tag, cf.Value)
	}
	for _, df := range xr.DataFields {
		subfields := make([]Subfield, 0, len(df.Subfields))
		for _, sf := range df.Subfields {
			subfields = append(subfields, Subfield{Code: sf.Code, Value: sf.Value})
		}
		rec.AddDataField(df.Tag, df.Ind1, df.Ind2, subfields...)
	}
	return rec, nil
}
