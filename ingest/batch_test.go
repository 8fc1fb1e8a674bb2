package ingest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecord = `{"dataId":{"symbol":"eurusd","period":"H1"},"equity":[100,110],"balance":[100,105],"backtestStats":{"PF":1.4}}`

func sequence(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func TestCheckUploadEligible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		info    FileInfo
		reasons []string
	}{
		{"ok", FileInfo{Name: "a.json", Size: 10}, nil},
		{"upper case suffix", FileInfo{Name: "A.JSON", Size: 10}, nil},
		{"exactly at limit", FileInfo{Name: "a.json", Size: MaxUploadSize}, nil},
		{"wrong suffix", FileInfo{Name: "a.csv", Size: 10}, []string{"File must have .json extension"}},
		{"too large", FileInfo{Name: "a.json", Size: MaxUploadSize + 1}, []string{"File size must be less than 50MB"}},
		{"both", FileInfo{Name: "a.txt", Size: MaxUploadSize + 1}, []string{"File must have .json extension", "File size must be less than 50MB"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckUploadEligible(tt.info)
			if tt.reasons == nil {
				assert.NoError(t, err)
				return
			}
			var ee *EligibilityError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.reasons, ee.Reasons)
		})
	}
}

func TestNormalizeBatchPartialFailure(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := &Normalizer{Workers: 2, IDFunc: sequence("id"), Now: func() time.Time { return at }}

	res, err := n.NormalizeBatch([]Upload{
		{Name: "first.json", Data: []byte(validRecord)},
		{Name: "broken.json", Data: []byte(`{"dataId":`)},
		{Name: "third.json", Data: []byte("[" + validRecord + "]")},
	})
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "first.json", res.Files[0].Name)
	assert.Equal(t, "third.json", res.Files[1].Name)
	assert.Equal(t, at, res.Files[0].UploadedAt)
	assert.Len(t, res.Strategies(), 2)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "broken.json", res.Errors[0].Name)
	assert.True(t, IsRejected(res.Errors[0]))
}

func TestNormalizeBatchAllFail(t *testing.T) {
	t.Parallel()

	res, err := NormalizeBatch([]Upload{
		{Name: "notes.txt", Data: []byte("hello")},
		{Name: "bad.json", Data: []byte(`{"equity":[]}`)},
	})
	require.Error(t, err)

	var be *BatchError
	require.True(t, errors.As(err, &be))
	assert.Len(t, be.Errors, 2)
	assert.Empty(t, res.Files)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "Failed to parse any files:\n"))
	assert.Contains(t, msg, "notes.txt: File must have .json extension")
	assert.Contains(t, msg, "Missing or invalid dataId in bad.json[0]")
}

func TestNormalizeBatchEmpty(t *testing.T) {
	t.Parallel()

	res, err := NormalizeBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Empty(t, res.Errors)
}

func TestNormalizeBatchSizeLimit(t *testing.T) {
	t.Parallel()

	n := &Normalizer{MaxUploadBytes: 16}
	_, err := n.NormalizeBatch([]Upload{{Name: "big.json", Data: []byte(validRecord)}})

	var ee *EligibilityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "big.json", ee.Name)
}
