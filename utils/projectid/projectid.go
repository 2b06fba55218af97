package projectid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a proj_* ULID string.
func New() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return "proj_" + strings.ToLower(id.String())
}

// NewFilename returns a fresh ULID-derived filename with the given extension.
// Mirrors how project ids are generated so stored blobs sort by creation time.
func NewFilename(ext string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return strings.ToLower(id.String())
	}
	return strings.ToLower(id.String()) + "." + ext
}

// IsValid reports whether the string is a proj_* ULID.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, "proj_") {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the proj_ prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "proj_")
	value = strings.TrimPrefix(value, "PROJ_")
	return ulid.Parse(value)
}
