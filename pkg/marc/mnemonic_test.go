package marc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Mnemonic(t *testing.T) {
	rec := NewRecord("00000nam a2200000 a 4500")
	rec.AddControlField("001", "1042")
	rec.AddControlField("008", "120105s2012    nyua")
	rec.AddDataField("245", "1", "0",
		Subfield{Code: "a", Value: "The Go programming language /"},
		Subfield{Code: "c", Value: "Alan A. A. Donovan."},
	)
	rec.AddDataField("100", "1", "", Subfield{Code: "a", Value: "Donovan, Alan A. A."})

	want := "=LDR  00000nam\\a2200000\\a\\4500\n" +
		"=001  1042\n" +
		"=008  120105s2012\\\\\\\\nyua\n" +
		"=245  10$aThe Go programming language /$cAlan A. A. Donovan.\n" +
		"=100  1\\$aDonovan, Alan A. A.\n"
	assert.Equal(t, want, rec.Mnemonic())
}

func TestRecord_MnemonicBlankIndicators(t *testing.T) {
	rec := NewRecord("")
	rec.AddDataField("952", "", "", Subfield{Code: "a", Value: "MAIN"})

	out := rec.Mnemonic()
	assert.Contains(t, out, "=952  \\\\$aMAIN\n")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}
