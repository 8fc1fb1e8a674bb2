package id

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniqueAndSorted(t *testing.T) {
	t.Parallel()

	const n = 1000
	ids := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		v := New()
		require.Len(t, v, 26)
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
		ids = append(ids, v)
	}

	assert.True(t, sort.StringsAreSorted(ids))
}

func TestWithPrefix(t *testing.T) {
	t.Parallel()

	v := WithPrefix("portfolio")
	assert.True(t, strings.HasPrefix(v, "portfolio_"))
	assert.Len(t, v, len("portfolio_")+26)

	assert.Len(t, WithPrefix(""), 26)
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC().Add(-time.Second)
	v := WithPrefix("portfolio")

	ts, ok := Time(v)
	require.True(t, ok)
	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(time.Now().UTC().Add(time.Second)))

	_, ok = Time("not-an-id")
	assert.False(t, ok)
}
