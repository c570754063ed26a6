package pipeline

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/biblioworks/marcflow/pkg/compression"
	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/docstore"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/marc"
)

// encodeFunc serializes one record for a stream destination.
type encodeFunc func(*marc.Record) ([]byte, error)

// dispatcher routes each surviving record to exactly one destination: a
// configured document sink takes precedence over the serialization path;
// otherwise the encoder selected at construction writes to the stream
// destination. XML collection framing also goes to the stream
// destination, driven by the resolved output type alone.
type dispatcher struct {
	sink   docstore.Sink
	encode encodeFunc

	out  io.Writer
	comp io.WriteCloser
	bufw *bufio.Writer
	file *os.File
}

// newDispatcher selects the encoder for the resolved output type and
// opens the stream destination: the configured file (its directory must
// already exist; a compression suffix wraps the writer) or fallback,
// normally standard output.
func newDispatcher(cfg *config.ExportConfig, outputType config.OutputType, sink docstore.Sink, fallback io.Writer) (*dispatcher, error) {
	d := &dispatcher{sink: sink}

	switch outputType {
	case config.OutputTypeXML:
		d.encode = func(rec *marc.Record) ([]byte, error) { return rec.XML() }
	case config.OutputTypeJSON:
		d.encode = func(rec *marc.Record) ([]byte, error) {
			data, err := rec.JSON()
			if err != nil {
				return nil, err
			}
			return append(data, '\n'), nil
		}
	case config.OutputTypeISO2709:
		d.encode = func(rec *marc.Record) ([]byte, error) { return rec.ISO2709() }
	case config.OutputTypeMnemonic:
		// Trailing blank line separates consecutive mnemonic records.
		d.encode = func(rec *marc.Record) ([]byte, error) {
			return append([]byte(rec.Mnemonic()), '\n'), nil
		}
	case config.OutputTypeDocStore:
		if sink == nil {
			return nil, errors.New(errors.ErrorTypeConfig, "docstore output requires a docstore destination")
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown output type %q", string(outputType))
	}

	if cfg.FileDestination() {
		info, err := os.Stat(cfg.OutputDir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeFile, "output directory %s does not exist", cfg.OutputDir)
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.ErrorTypeFile, "output path %s is not a directory", cfg.OutputDir)
		}

		file, err := os.Create(cfg.OutputPath())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to create output file %s", cfg.OutputPath())
		}
		d.file = file
		d.bufw = bufio.NewWriter(file)

		comp, err := compression.NewWriter(d.bufw, compression.ForFilename(cfg.OutputFile))
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		d.comp = comp
		d.out = comp
	} else {
		d.out = fallback
	}

	return d, nil
}

// BeginCollection writes the XML preamble and collection opener for one
// batch.
func (d *dispatcher) BeginCollection() error {
	if _, err := io.WriteString(d.out, marc.XMLHeader+marc.CollectionOpen); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write collection header")
	}
	return nil
}

// EndCollection closes one batch's collection wrapper.
func (d *dispatcher) EndCollection() error {
	if _, err := io.WriteString(d.out, marc.CollectionClose); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write collection close")
	}
	return nil
}

// Dispatch writes one record to its single destination.
func (d *dispatcher) Dispatch(ctx context.Context, rec *marc.Record) error {
	if d.sink != nil {
		return d.sink.Insert(ctx, rec.Document())
	}

	data, err := d.encode(rec)
	if err != nil {
		return errors.Wrapf(err, errors.ErrorTypeData, "failed to serialize record %s", rec.ID())
	}
	if _, err := d.out.Write(data); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write record %s", rec.ID())
	}
	return nil
}

// Close flushes and closes the destination chain. The fallback stream is
// left open; the document sink is closed by its owner.
func (d *dispatcher) Close() error {
	if d.comp != nil {
		if err := d.comp.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to finalize compressed output")
		}
	}
	if d.bufw != nil {
		if err := d.bufw.Flush(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush output file")
		}
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output file")
		}
	}
	return nil
}
