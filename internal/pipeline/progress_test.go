package pipeline

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTerminalReporterRedraw(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalReporter(&buf)

	r.Progress(5, 12)
	assert.Equal(t, "5 / 12 ", buf.String())

	r.Progress(10, 12)
	out := buf.String()
	// The second update erases the first seven characters before
	// printing.
	assert.Equal(t, "5 / 12 "+strings.Repeat("\b", 7)+"10 / 12 ", out)
}

func TestTerminalReporterSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalReporter(&buf)

	r.Progress(12, 12)
	r.Summary(12, 1500*time.Millisecond)
	assert.Contains(t, buf.String(), "\nExported 12 records in 1.50 seconds\n")
}

func TestTerminalReporterSummaryWithoutProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalReporter(&buf)

	r.Summary(0, 10*time.Millisecond)
	// No progress line was drawn, so nothing needs a separating newline.
	assert.Equal(t, "Exported 0 records in 0.01 seconds\n", buf.String())
}

func TestNopReporter(t *testing.T) {
	var r NopReporter
	r.Progress(1, 2)
	r.Summary(1, time.Second)
}
