//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// writeExport writes a one-strategy export whose equity rises by step per
// sample.
func writeExport(t *testing.T, dir, name, symbol, period string, step float64) string {
	t.Helper()

	var equity []string
	for i := 0; i < 10; i++ {
		equity = append(equity, fmt.Sprintf("%.2f", 10000+step*float64(i*i%7)))
	}
	series := "[" + strings.Join(equity, ",") + "]"
	doc := fmt.Sprintf(`{"dataId":{"symbol":%q,"period":%q},"equity":%s,"balance":%s,"backtestStats":{"PF":1.5,"DD":-7.5,"SQN":2.2}}`,
		symbol, period, series, series)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
