// Package strings provides pooled string building utilities for marcflow.
// Record serialization formats a large number of short fields per record;
// the pooled builders here keep that off the allocator's hot path.
package strings

import (
	"fmt"
	"strconv"
	"sync"
	"unsafe"
)

// BytesToString converts a byte slice to a string without allocation.
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

// Builder accumulates bytes for string assembly. The zero value is not
// usable; obtain builders from NewBuilder or the pools below.
type Builder struct {
	buf []byte
}

// NewBuilder creates a builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteBytes appends bytes to the builder.
func (b *Builder) WriteBytes(data []byte) {
	b.buf = append(b.buf, data...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// WriteInt appends the decimal representation of n.
func (b *Builder) WriteInt(n int) {
	b.buf = strconv.AppendInt(b.buf, int64(n), 10)
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string using zero-copy conversion. The result
// is only valid until the builder is reused; Clone it to keep it.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Bytes returns the underlying byte slice.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset truncates the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// BuilderSize selects a pool by expected output size.
type BuilderSize int

const (
	// Small covers status lines, error strings, criterion clauses.
	Small BuilderSize = iota
	// Medium covers single serialized records.
	Medium
	// Large covers whole-batch assembly.
	Large
)

var (
	smallBuilderPool = &sync.Pool{
		New: func() interface{} { return NewBuilder(1024) },
	}
	mediumBuilderPool = &sync.Pool{
		New: func() interface{} { return NewBuilder(16 * 1024) },
	}
	largeBuilderPool = &sync.Pool{
		New: func() interface{} { return NewBuilder(64 * 1024) },
	}
)

func poolFor(size BuilderSize) *sync.Pool {
	switch size {
	case Medium:
		return mediumBuilderPool
	case Large:
		return largeBuilderPool
	default:
		return smallBuilderPool
	}
}

// GetBuilder retrieves a pooled builder of the specified size class.
func GetBuilder(size BuilderSize) *Builder {
	b := poolFor(size).Get().(*Builder)
	b.Reset()
	return b
}

// PutBuilder returns a builder to its pool.
func PutBuilder(b *Builder, size BuilderSize) {
	if b == nil {
		return
	}
	b.Reset()
	poolFor(size).Put(b)
}

// Clone copies s into freshly owned memory.
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}

// Sprintf is a pooled alternative to fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	size := Small
	if estimated := len(format) + len(args)*16; estimated > 16*1024 {
		size = Large
	} else if estimated > 1024 {
		size = Medium
	}

	b := GetBuilder(size)
	defer PutBuilder(b, size)

	fmt.Fprintf(b, format, args...)
	return Clone(b.String())
}

// Join joins strings with a delimiter using a pooled builder.
func Join(parts []string, delimiter string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	total := (len(parts) - 1) * len(delimiter)
	for _, s := range parts {
		total += len(s)
	}

	size := Small
	if total > 16*1024 {
		size = Large
	} else if total > 1024 {
		size = Medium
	}

	b := GetBuilder(size)
	defer PutBuilder(b, size)

	b.WriteString(parts[0])
	for _, s := range parts[1:] {
		b.WriteString(delimiter)
		b.WriteString(s)
	}
	return Clone(b.String())
}

// ValueToString converts a scalar value to its string form without the
// reflection overhead of fmt. Database drivers hand back identifiers as
// any of these types depending on the column definition.
func ValueToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return Clone(BytesToString(v))
	default:
		return Sprintf("%v", value)
	}
}
