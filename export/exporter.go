package export

import (
	"bytes"
	"io"
	"time"

	"github.com/rustyeddy/stratfolio/pkg/logger"
	"github.com/rustyeddy/stratfolio/strategy"
)

// Exporter builds archives. Output is assembled in memory and written to
// the destination only once it is complete, so a failed export never
// leaves a truncated zip behind.
type Exporter struct {
	MaxArchiveBytes int64 // 0 means unlimited
	Now             func() time.Time
	NewID           func() string
	Logger          *logger.Logger
}

// ArchivePortfolio writes p, grouped by symbol and period, with metadata.
func (e *Exporter) ArchivePortfolio(w io.Writer, p strategy.Portfolio) error {
	meta := NewMetadata(p, e.now())
	return e.archive(w, p.Name, p.Members, meta, ArchiveOptions{NewID: e.NewID})
}

// ArchiveStrategies writes a loose selection as flat entries without
// metadata.
func (e *Exporter) ArchiveStrategies(w io.Writer, ss []strategy.Strategy) error {
	return e.archive(w, "strategies", ss, nil, ArchiveOptions{Flat: true})
}

func (e *Exporter) archive(w io.Writer, name string, ss []strategy.Strategy, meta *Metadata, opts ArchiveOptions) error {
	var buf bytes.Buffer
	lw := &limitWriter{w: &buf, n: e.MaxArchiveBytes}

	if err := WriteArchive(lw, ss, meta, opts); err != nil {
		e.log().WithField("name", name).WithError(err).Error("archive failed")
		return &ExportError{Op: "archive", Name: name, Err: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return &ExportError{Op: "write", Name: name, Err: err}
	}

	e.log().WithFields(map[string]interface{}{
		"name":       name,
		"strategies": len(ss),
		"bytes":      lw.written,
	}).Info("archive written")
	return nil
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e *Exporter) log() *logger.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.Nop()
}

type limitWriter struct {
	w       io.Writer
	n       int64
	written int64
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.n > 0 && l.written+int64(len(p)) > l.n {
		return 0, ErrTooLarge
	}
	n, err := l.w.Write(p)
	l.written += int64(n)
	return n, err
}
