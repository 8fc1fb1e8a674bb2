package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratfolio/ingest"
	"github.com/rustyeddy/stratfolio/strategy"
)

func member(symbol, period string) strategy.Strategy {
	return strategy.Strategy{
		DataID:  strategy.DataID{Symbol: symbol, Period: period},
		Equity:  []float64{100, 101},
		Balance: []float64{100, 100.5},
		BacktestStats: strategy.BacktestStats{
			strategy.MetricProfitFactor: 1.25,
			strategy.MetricMaxDrawdown:  -3.456,
			strategy.MetricSQN:          2.1,
			strategy.MetricTotalReturn:  12.346,
			strategy.MetricWinRate:      55.55,
		},
	}
}

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%04d", n)
	}
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = b
	}
	return out
}

func names(entries map[string][]byte) []string {
	var out []string
	for n := range entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func TestArchivePortfolioLayout(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	exported := time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC)
	p, err := strategy.NewPortfolio("portfolio_1", "Majors", []strategy.Strategy{
		member("EURUSD", "H1"),
		member("GBPUSD", "H4"),
		member("EURUSD", "H1"),
		member("EURUSD", "D1"),
	}, created)
	require.NoError(t, err)

	ex := &Exporter{Now: func() time.Time { return exported }, NewID: counter()}
	var buf bytes.Buffer
	require.NoError(t, ex.ArchivePortfolio(&buf, p))

	entries := readZip(t, buf.Bytes())
	assert.Equal(t, []string{
		"EURUSD/D1/strategy-0003.json",
		"EURUSD/H1/strategy-0001.json",
		"EURUSD/H1/strategy-0002.json",
		"GBPUSD/H4/strategy-0004.json",
		MetadataFile,
	}, names(entries))

	var meta Metadata
	require.NoError(t, json.Unmarshal(entries[MetadataFile], &meta))
	assert.Equal(t, Metadata{
		PortfolioName: "Majors",
		CreatedAt:     created,
		ExportedAt:    exported,
		StrategyCount: 4,
		Symbols:       []string{"EURUSD", "GBPUSD"},
		Timeframes:    []string{"H1", "H4", "D1"},
	}, meta)

	entry := entries["GBPUSD/H4/strategy-0004.json"]
	assert.True(t, strings.HasPrefix(string(entry), "{\n  \"dataId\""), "two-space indented")
	assert.Contains(t, string(entry), `"strategy": {}`)
	assert.NotContains(t, string(entry), "openFilters")
}

func TestArchiveUsesUUIDNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, []strategy.Strategy{member("X", "M5")}, nil, ArchiveOptions{}))

	entries := readZip(t, buf.Bytes())
	require.Len(t, entries, 1)
	for name := range entries {
		assert.Regexp(t, `^X/M5/strategy-[0-9a-f-]{36}\.json$`, name)
	}
}

func TestArchiveSanitizesPathSegments(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ss := []strategy.Strategy{member("../etc", ".."), member("A/B", "H1")}
	require.NoError(t, WriteArchive(&buf, ss, nil, ArchiveOptions{NewID: counter()}))

	assert.Equal(t, []string{
		".._etc/_/strategy-0001.json",
		"A_B/H1/strategy-0002.json",
	}, names(readZip(t, buf.Bytes())))
}

func TestArchiveStrategiesFlat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ex := &Exporter{}
	require.NoError(t, ex.ArchiveStrategies(&buf, []strategy.Strategy{member("EURUSD", "H1"), member("EURUSD", "H1")}))

	assert.Equal(t, []string{"EURUSD_H1_1.json", "EURUSD_H1_2.json"}, names(readZip(t, buf.Bytes())))
}

func TestArchiveSizeLimit(t *testing.T) {
	t.Parallel()

	ex := &Exporter{MaxArchiveBytes: 64}
	var buf bytes.Buffer
	err := ex.ArchiveStrategies(&buf, []strategy.Strategy{member("EURUSD", "H1")})
	require.Error(t, err)

	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "archive", ee.Op)
	assert.True(t, errors.Is(err, ErrTooLarge))
	assert.Zero(t, buf.Len(), "nothing reaches the destination on failure")
}

// An exported entry fed back through ingestion reproduces the source
// document's series and headline metrics. Stats keys come back in sorted
// order with numbers in shortest form, so metrics are compared by value.
func TestArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	input := `{"dataId":{"symbol":"EURUSD","period":"H1"},"equity":[100000,100250.5,99875],` +
		`"balance":[100000,100100,99900],"backtestStats":{"PF":1.80,"win_rate":47.50,"DD":-4.25,` +
		`"trades":112,"SQN":"2.4","return":-0.125},"strategy":{"entry":{"indicator":"RSI","level":30}},` +
		`"openFilters":[{"name":"spread","max":20}]}`

	ss, err := ingest.NormalizePayload([]byte(input), "orig.json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, ss, nil, ArchiveOptions{NewID: counter()}))
	out := readZip(t, buf.Bytes())["EURUSD/H1/strategy-0001.json"]
	require.NotNil(t, out)

	var in, back map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(input), &in))
	require.NoError(t, json.Unmarshal(out, &back))

	for _, key := range []string{"dataId", "equity", "balance", "strategy", "openFilters"} {
		assert.Equal(t, string(in[key]), compact(t, back[key]), key)
	}

	var stats map[string]float64
	require.NoError(t, json.Unmarshal(back["backtestStats"], &stats))
	want := map[string]float64{
		strategy.MetricProfitFactor: 1.8,
		strategy.MetricMaxDrawdown:  -4.25,
		strategy.MetricSQN:          2.4,
		strategy.MetricTotalReturn:  -0.125,
		strategy.MetricWinRate:      47.5,
	}
	for metric, v := range want {
		assert.Equal(t, v, stats[metric], metric)
	}
	assert.Equal(t, 112.0, stats["trades"])
	assert.Equal(t, 1.8, stats["PF"], "vendor spelling is exported too")

	reparsed, err := ingest.NormalizePayload(out, "back.json")
	require.NoError(t, err)
	ss[0].ID, reparsed[0].ID = "", ""
	if diff := cmp.Diff(canonical(t, ss[0]), canonical(t, reparsed[0])); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func compact(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.Compact(&buf, raw))
	return buf.String()
}

func canonical(t *testing.T, s strategy.Strategy) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}
