package registry

import "github.com/cockroachdb/errors"

// Sentinel kinds for registry errors.
var (
	// ErrUnknownEnumValue marks a lookup of a name or id outside a registry.
	// It always indicates a programming error in the caller.
	ErrUnknownEnumValue = errors.New("unknown enum value")
	// ErrDuplicateName is returned when an enum would contain the same name twice.
	ErrDuplicateName = errors.New("duplicate enum name")
)
