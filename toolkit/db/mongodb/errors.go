// toolkit/db/mongodb/errors.go
package mongodb

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a missing or malformed connection setting.
	// Nothing is cached when it is returned.
	ErrConfiguration = errors.New("mongodb: invalid configuration")

	// ErrConnection reports that the driver could not build a client or,
	// for providers created with WithPing, could not reach the server.
	// Nothing is cached when it is returned.
	ErrConnection = errors.New("mongodb: connection failed")

	// ErrLegacyUUID is returned when decoding a UUID stored with the legacy
	// binary subtype 3 instead of the standard subtype 4.
	ErrLegacyUUID = errors.New("mongodb: legacy uuid representation")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func wrapConfig(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

func wrapConnection(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}
