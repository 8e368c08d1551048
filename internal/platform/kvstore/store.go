// Package kvstore provides the persisted key-value adapter backing the cart
// and favorites stores. It is the only code that touches the underlying
// persistence medium; callers depend on the Store interface, not the medium.
package kvstore

import (
	"context"
	"errors"
	"regexp"
)

// ErrInvalidKey indicates a key outside the allowed character set.
var ErrInvalidKey = errors.New("kvstore: invalid key")

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Store persists JSON-serialisable values under string keys.
//
// Load decodes the stored value into dest and reports whether a usable value
// was found. Absent keys and malformed stored data both yield (false, nil):
// corruption is recovered by treating the key as absent, never by failing the
// caller. Save replaces the stored value for the key.
type Store interface {
	Load(ctx context.Context, key string, dest any) (bool, error)
	Save(ctx context.Context, key string, value any) error
}

// ValidKey reports whether the key is acceptable to every Store implementation.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
