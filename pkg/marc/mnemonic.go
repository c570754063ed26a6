package marc

import (
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// Mnemonic serializes the record in MARCMaker mnemonic format, the
// line-oriented text form used for record editing and diffing. Blanks in
// the leader and in indicator positions are written as backslashes.
// Output ends with a single trailing newline; stream writers add the
// blank line that separates consecutive records.
func (r *Record) Mnemonic() string {
	b := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(b, stringpool.Medium)

	b.WriteString("=LDR  ")
	writeBlanksEscaped(b, r.Leader)
	b.WriteByte('\n')

	for _, cf := range r.Control {
		b.WriteByte('=')
		b.WriteString(cf.Tag)
		b.WriteString("  ")
		writeBlanksEscaped(b, cf.Value)
		b.WriteByte('\n')
	}

	for _, f := range r.Fields {
		b.WriteByte('=')
		b.WriteString(f.Tag)
		b.WriteString("  ")
		writeBlanksEscaped(b, normalizeIndicator(f.Ind1))
		writeBlanksEscaped(b, normalizeIndicator(f.Ind2))
		for _, sf := range f.Subfields {
			b.WriteByte('$')
			b.WriteString(sf.Code)
			b.WriteString(sf.Value)
		}
		b.WriteByte('\n')
	}

	return stringpool.Clone(b.String())
}

func writeBlanksEscaped(b *stringpool.Builder, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			b.WriteByte('\\')
		} else {
			b.WriteByte(s[i])
		}
	}
}
