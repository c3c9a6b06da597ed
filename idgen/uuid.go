package idgen

import "github.com/google/uuid"

var _uuidGenerator = func() string {
	return uuid.NewString()
}

func NewUUID() string {
	return _uuidGenerator()
}

// UseUUID replaces the generator and returns a func restoring the previous one.
func UseUUID(fn func() string) (restore func()) {
	prev := _uuidGenerator
	if fn != nil {
		_uuidGenerator = fn
	}
	return func() { _uuidGenerator = prev }
}
