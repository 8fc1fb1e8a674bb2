package export

import (
	"regexp"
	"strings"
	"time"
)

var unsafeName = regexp.MustCompile(`(?i)[^a-z0-9\-_]`)

// SanitizeName replaces every character outside [a-z0-9-_] with an
// underscore and lowercases the result.
func SanitizeName(name string) string {
	return strings.ToLower(unsafeName.ReplaceAllString(name, "_"))
}

// ArchiveFileName is "<name>-YYYY-MM-DD.zip" for the UTC date of t.
func ArchiveFileName(name string, t time.Time) string {
	return SanitizeName(name) + "-" + day(t) + ".zip"
}

// SummaryFileName is "<name>-stats-YYYY-MM-DD.csv" for the UTC date of t.
func SummaryFileName(name string, t time.Time) string {
	return SanitizeName(name) + "-stats-" + day(t) + ".csv"
}

// CurveFileName is "<name>-curve-YYYY-MM-DD.csv" for the UTC date of t.
func CurveFileName(name string, t time.Time) string {
	return SanitizeName(name) + "-curve-" + day(t) + ".csv"
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// pathSegment makes a symbol or period safe to use as one archive
// directory level.
func pathSegment(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
