package config

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested resource does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable is returned when the key store cannot be loaded. Both
// ErrStoreMissing and ErrStoreCorrupt wrap it.
var ErrStoreUnavailable = errors.New("key store unavailable")

var (
	ErrStoreMissing = fmt.Errorf("%w: file does not exist", ErrStoreUnavailable)
	ErrStoreCorrupt = fmt.Errorf("%w: malformed document", ErrStoreUnavailable)
)
