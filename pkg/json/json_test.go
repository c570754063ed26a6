package json

import (
	"bytes"
	"testing"
)

func TestMarshalUnmarshal(t *testing.T) {
	in := map[string]interface{}{
		"leader": "00714cam a2200205 a 4500",
		"fields": []interface{}{
			map[string]interface{}{"001": "1042"},
		},
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out map[string]interface{}
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out["leader"] != in["leader"] {
		t.Errorf("leader mismatch: got %v, want %v", out["leader"], in["leader"])
	}
}

func TestMarshalToWriterNoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := MarshalToWriter(&buf, map[string]string{"a": "Smith & Sons <firm>"}); err != nil {
		t.Fatalf("MarshalToWriter failed: %v", err)
	}

	got := buf.String()
	want := "{\"a\":\"Smith & Sons <firm>\"}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("scratch")
	PutBuffer(buf)

	again := GetBuffer()
	if again.Len() != 0 {
		t.Errorf("expected reset buffer, got length %d", again.Len())
	}
	PutBuffer(again)
}
