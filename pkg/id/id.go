package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Entropy is seeded from crypto/rand; the monotonic reader keeps ids
	// minted within the same millisecond strictly increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string. Ids are unique for the lifetime of the
// process and sort by creation time, so strategies and portfolios listed by
// id come back in ingestion order.
func New() string {
	return at(time.Now().UTC())
}

// WithPrefix returns a new id joined to prefix with an underscore,
// e.g. "portfolio_01HV...".
func WithPrefix(prefix string) string {
	if prefix == "" {
		return New()
	}
	return prefix + "_" + New()
}

// Time extracts the creation time embedded in an id produced by New.
// The prefix of a WithPrefix id is ignored.
func Time(s string) (time.Time, bool) {
	if n := len(s); n > ulid.EncodedSize {
		s = s[n-ulid.EncodedSize:]
	}
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()).UTC(), true
}

func at(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(t), mono)
	if err != nil {
		// Only possible if the clock runs backwards past the monotonic window.
		panic(err)
	}
	return u.String()
}
