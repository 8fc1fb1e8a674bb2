package export

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratfolio/strategy"
)

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []strategy.Strategy{member("EURUSD", "H1")}))

	want := `"Symbol","Timeframe","Profit Factor","Max Drawdown (%)","SQN","Win Rate (%)","Total Return (%)"` + "\n" +
		`"EURUSD","H1","1.25","3.46","2.10","55.5","12.35"`
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryEmptyAndQuotes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, nil))
	assert.Equal(t, quoteRow(SummaryHeader), buf.String())

	assert.Equal(t, `"a""b","c"`, quoteRow([]string{`a"b`, "c"}))
}

func TestWriteCurveCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCurveCSV(&buf, []float64{100000, 110000, 99000}))

	var rows []*CurvePoint
	require.NoError(t, gocsv.Unmarshal(bytes.NewReader(buf.Bytes()), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[2].Index)
	assert.Equal(t, 99000.0, rows[2].Equity)
	assert.InDelta(t, 10.0, rows[2].Drawdown, 1e-9)
}

func TestNames(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("X", -5*3600))

	assert.Equal(t, "my_portfolio__v2_", SanitizeName("My Portfolio (v2)"))
	assert.Equal(t, "a-b_c", SanitizeName("A-b_C"))
	assert.Equal(t, "my_mix-2025-01-01.zip", ArchiveFileName("My Mix", at))
	assert.Equal(t, "my_mix-stats-2025-01-01.csv", SummaryFileName("My Mix", at))
	assert.Equal(t, "my_mix-curve-2025-01-01.csv", CurveFileName("My Mix", at))
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	boom := errors.New("boom")
	err = WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data), "previous file untouched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed")
}
