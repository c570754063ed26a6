package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioworks/marcflow/pkg/errors"
)

func TestRecord_XML(t *testing.T) {
	rec := NewRecord("00000nam a2200000 a 4500")
	rec.AddControlField("001", "1042")
	rec.AddDataField("245", "1", "0",
		Subfield{Code: "a", Value: "Go & practice"},
		Subfield{Code: "c", Value: "Alan <A. A.> Donovan"},
	)

	out, err := rec.XML()
	require.NoError(t, err)

	want := "  <record>\n" +
		"    <leader>00000nam a2200000 a 4500</leader>\n" +
		"    <controlfield tag=\"001\">1042</controlfield>\n" +
		"    <datafield tag=\"245\" ind1=\"1\" ind2=\"0\">\n" +
		"      <subfield code=\"a\">Go &amp; practice</subfield>\n" +
		"      <subfield code=\"c\">Alan &lt;A. A.&gt; Donovan</subfield>\n" +
		"    </datafield>\n" +
		"  </record>\n"
	assert.Equal(t, want, string(out))
}

func TestRecord_XMLRoundTrip(t *testing.T) {
	rec := NewRecord("00000nam a2200000 a 4500")
	rec.AddControlField("001", "2077")
	rec.AddControlField("008", "120105s2012    nyua")
	rec.AddDataField("100", "1", "", Subfield{Code: "a", Value: "Kernighan, Brian W."})
	rec.AddDataField("952", "", "",
		Subfield{Code: "a", Value: "MAIN"},
		Subfield{Code: "p", Value: "31042000123456"},
	)

	out, err := rec.XML()
	require.NoError(t, err)

	parsed, err := ParseXML(out)
	require.NoError(t, err)

	assert.Equal(t, rec.Leader, parsed.Leader)
	assert.Equal(t, rec.Control, parsed.Control)
	assert.Equal(t, rec.Fields, parsed.Fields)
}

func TestParseXML_Namespaced(t *testing.T) {
	data := []byte(`<record xmlns="http://www.loc.gov/MARC21/slim">
  <leader>00000nz  a2200000n  4500</leader>
  <controlfield tag="001">304</controlfield>
  <datafield tag="150" ind1=" " ind2=" ">
    <subfield code="a">Distributed databases</subfield>
  </datafield>
</record>`)

	rec, err := ParseXML(data)
	require.NoError(t, err)

	assert.Equal(t, RecordID("304"), rec.ID())
	require.Len(t, rec.Fields, 1)
	heading, ok := rec.Fields[0].Subfield("a")
	require.True(t, ok)
	assert.Equal(t, "Distributed databases", heading)
}

func TestParseXML_Invalid(t *testing.T) {
	_, err := ParseXML([]byte("<record><leader>unclosed"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestFramingConstants(t *testing.T) {
	assert.Equal(t,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
			"<!-- MARC21slim http://www.loc.gov/standards/marcxml/schema/MARC21slim.xsd -->\n",
		XMLHeader)
	assert.Equal(t, "<collection xmlns=\"http://www.loc.gov/MARC21/slim\">\n", CollectionOpen)
	assert.Equal(t, "</collection>\n", CollectionClose)
}
