//go:build blackbox

package blackbox

import (
	"path/filepath"
	"regexp"
	"testing"
)

func TestImportAnalyzeExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "lib.sqlite")

	a := writeExport(t, dir, "eurusd.json", "eurusd", "H1", 25)
	b := writeExport(t, dir, "usdjpy.json", "usdjpy", "M15", -10)

	out := run(t, "--db", db, "import", a, b)
	if !contains(out, "eurusd.json: 1 strategies") || !contains(out, "usdjpy.json: 1 strategies") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	out = run(t, "--db", db, "list", "--symbol", "EURUSD")
	if !contains(out, "EURUSD") || contains(out, "USDJPY") {
		t.Fatalf("filter not applied:\n%s", out)
	}

	out = run(t, "--db", db, "analyze")
	if !contains(out, "EURUSD H1") || !contains(out, "USDJPY M15") {
		t.Fatalf("missing correlation pair:\n%s", out)
	}

	ids := regexp.MustCompile(`[0-9A-HJKMNP-TV-Z]{26}`).FindAllString(run(t, "--db", db, "list"), -1)
	if len(ids) != 2 {
		t.Fatalf("want 2 ids, got %v", ids)
	}

	out = run(t, "--db", db, "portfolio", "create", "Blackbox", ids[0], ids[1])
	pid := regexp.MustCompile(`portfolio_[0-9A-Z]{26}`).FindString(out)
	if pid == "" {
		t.Fatalf("no portfolio id in:\n%s", out)
	}

	out = run(t, "--db", db, "portfolio", "export", pid, "-o", dir)
	if !contains(out, "blackbox-") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
}

func TestImportRejectsEverything(t *testing.T) {
	dir := t.TempDir()
	out := runFail(t, "--db", filepath.Join(dir, "lib.sqlite"), "import", filepath.Join(dir, "missing.csv"))
	if out == "" {
		t.Fatal("expected an error message")
	}
}
