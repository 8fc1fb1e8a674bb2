package ingest

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat reads a JSON number, or a string holding one, as a finite float.
func toFloat(field string, raw json.RawMessage) (float64, error) {
	t := bytes.TrimSpace(raw)
	fail := &CoercionError{Field: field, Value: string(t)}
	if len(t) == 0 {
		return 0, fail
	}

	text := string(t)
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return 0, fail
		}
		text = strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
	default:
		return 0, fail
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fail
	}
	return v, nil
}

// toSeries reads a JSON array of numbers.
func toSeries(field string, raw json.RawMessage) ([]float64, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		v, err := toFloat(field+"["+strconv.Itoa(i)+"]", item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// toLabel reads a dataId component. Strings and numbers are accepted; the
// result must not be blank.
func toLabel(raw json.RawMessage) (string, bool) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return "", false
	}
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		v, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

func kind(raw json.RawMessage) byte {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

func isObject(raw json.RawMessage) bool { return kind(raw) == '{' }
func isArray(raw json.RawMessage) bool  { return kind(raw) == '[' }

// isFalsy matches the JSON values an absent definition may arrive as.
func isFalsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}
