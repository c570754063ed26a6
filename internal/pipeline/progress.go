package pipeline

import (
	"io"
	"time"

	"go.uber.org/zap"

	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// Reporter receives the pipeline's presentation events: throttled
// progress updates during streaming and one summary at the end of the
// run. Reporters are visual only and never influence control flow.
type Reporter interface {
	// Progress reports done of total records processed.
	Progress(done, total int)

	// Summary reports the written count and elapsed time once per run.
	Summary(written int, elapsed time.Duration)
}

// TerminalReporter redraws a single status line in place: it erases the
// previously printed string with backspaces, prints "<done> / <total> ",
// and remembers the printed width for the next erase.
type TerminalReporter struct {
	w         io.Writer
	lastWidth int
}

// NewTerminalReporter creates a terminal reporter writing to w,
// typically standard output.
func NewTerminalReporter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{w: w}
}

// Progress redraws the status line.
func (r *TerminalReporter) Progress(done, total int) {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)

	for i := 0; i < r.lastWidth; i++ {
		b.WriteByte('\b')
	}
	erase := b.Len()
	b.WriteInt(done)
	b.WriteString(" / ")
	b.WriteInt(total)
	b.WriteByte(' ')

	_, _ = r.w.Write(b.Bytes())
	r.lastWidth = b.Len() - erase
}

// Summary prints the final count and elapsed seconds on its own line.
func (r *TerminalReporter) Summary(written int, elapsed time.Duration) {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)

	if r.lastWidth > 0 {
		b.WriteByte('\n')
	}
	b.WriteString("Exported ")
	b.WriteInt(written)
	b.WriteString(" records in ")
	b.WriteString(stringpool.Sprintf("%.2f", elapsed.Seconds()))
	b.WriteString(" seconds\n")

	_, _ = r.w.Write(b.Bytes())
	r.lastWidth = 0
}

// LogReporter emits progress and summary as structured log events, for
// non-interactive runs.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a log reporter on the given logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Progress logs the current position.
func (r *LogReporter) Progress(done, total int) {
	r.logger.Info("export progress", zap.Int("done", done), zap.Int("total", total))
}

// Summary logs the final counts.
func (r *LogReporter) Summary(written int, elapsed time.Duration) {
	r.logger.Info("export complete",
		zap.Int("written", written),
		zap.Duration("elapsed", elapsed))
}

// NopReporter discards all events.
type NopReporter struct{}

// Progress discards the event.
func (NopReporter) Progress(done, total int) {}

// Summary discards the event.
func (NopReporter) Summary(written int, elapsed time.Duration) {}
