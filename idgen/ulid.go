package idgen

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	_ulidMu      sync.Mutex
	_ulidEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

var _ulidGenerator = func() string {
	_ulidMu.Lock()
	defer _ulidMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), _ulidEntropy).String()
}

// NewULID returns a ULID. IDs generated by one process sort in creation order.
func NewULID() string {
	return _ulidGenerator()
}

// UseULID replaces the generator, mostly for tests. Pass nil to restore it.
func UseULID(fn func() string) (restore func()) {
	prev := _ulidGenerator
	if fn != nil {
		_ulidGenerator = fn
	}
	return func() { _ulidGenerator = prev }
}
