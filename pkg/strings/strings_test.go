package strings

import (
	"testing"
)

func TestBytesToString(t *testing.T) {
	s := BytesToString([]byte("880-01"))
	if s != "880-01" {
		t.Errorf("expected '880-01', got '%s'", s)
	}

	if empty := BytesToString(nil); empty != "" {
		t.Errorf("expected empty string, got '%s'", empty)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(32)

	b.WriteString("=245")
	b.WriteByte(' ')
	b.WriteString("10")
	b.WriteInt(7)

	if got := b.String(); got != "=245 107" {
		t.Errorf("expected '=245 107', got '%s'", got)
	}
	if b.Len() != 8 {
		t.Errorf("expected length 8, got %d", b.Len())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("expected length 0 after reset, got %d", b.Len())
	}
}

func TestPooledBuilders(t *testing.T) {
	for _, size := range []BuilderSize{Small, Medium, Large} {
		b := GetBuilder(size)
		if b == nil {
			t.Fatalf("expected non-nil builder for size %d", size)
		}
		b.WriteString("leader")
		PutBuilder(b, size)

		again := GetBuilder(size)
		if again.Len() != 0 {
			t.Errorf("expected reset builder for size %d, got length %d", size, again.Len())
		}
		PutBuilder(again, size)
	}
}

func TestSprintf(t *testing.T) {
	got := Sprintf("%d / %d ", 5, 12)
	if got != "5 / 12 " {
		t.Errorf("expected '5 / 12 ', got '%s'", got)
	}

	// No-arg formats pass through unchanged.
	if got := Sprintf("plain"); got != "plain" {
		t.Errorf("expected 'plain', got '%s'", got)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		parts     []string
		delimiter string
		expected  string
	}{
		{nil, ",", ""},
		{[]string{"42"}, ",", "42"},
		{[]string{"1", "2", "3"}, ",", "1,2,3"},
		{[]string{"a", "b"}, " OR ", "a OR b"},
	}

	for _, test := range tests {
		if got := Join(test.parts, test.delimiter); got != test.expected {
			t.Errorf("Join(%v, %q) = %q, expected %q", test.parts, test.delimiter, got, test.expected)
		}
	}
}

func TestValueToString(t *testing.T) {
	tests := []struct {
		value    interface{}
		expected string
	}{
		{nil, ""},
		{"303", "303"},
		{42, "42"},
		{int32(7), "7"},
		{int64(2500), "2500"},
		{uint64(12), "12"},
		{3.5, "3.5"},
		{true, "true"},
		{[]byte("1001"), "1001"},
	}

	for _, test := range tests {
		if got := ValueToString(test.value); got != test.expected {
			t.Errorf("ValueToString(%v) = %q, expected %q", test.value, got, test.expected)
		}
	}
}

func TestValueToStringOwnsBytes(t *testing.T) {
	buf := []byte("123")
	s := ValueToString(buf)
	buf[0] = 'X'
	if s != "123" {
		t.Errorf("expected converted string to own its memory, got '%s'", s)
	}
}
