// Package id generates time-sortable identifiers for persisted simulation
// runs. ULIDs sort lexicographically by creation time, which keeps SQLite
// indexes on run_id naturally ordered.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	// Seed the monotonic entropy source from crypto/rand so IDs generated in
	// the same millisecond stay strictly increasing and unpredictable.
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh ULID string.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		// only possible if the clock or entropy source fails
		panic(err)
	}
	return u.String()
}
