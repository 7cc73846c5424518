package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication means the MAC did not match: wrong password or corrupted data.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNoPayload means the password unlocks nothing in the given backup.
	ErrNoPayload = errors.New("no data for this password")

	// ErrUnsupportedAccount is returned when a single-wallet backup is requested
	// for an account that is never exported (hardware cards).
	ErrUnsupportedAccount = errors.New("account type cannot be backed up")
)

var (
	ErrUnsupportedFormat = errors.New("unsupported backup format")
	ErrUnsupportedCipher = errors.New("unsupported cipher")
	ErrUnsupportedKdf    = errors.New("unsupported kdf")
)

// FormatError is returned when encoded secret bytes do not fit their declared type.
type FormatError struct {
	Type   SecretType
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s data: %s", e.Type, e.Reason)
}

// IsFormatError checks if error is FormatError
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// ContainerBuildError is returned when a v4 container could not be laid out
// without slot collisions within the attempt budget.
type ContainerBuildError struct {
	Attempts int
}

func (e *ContainerBuildError) Error() string {
	return fmt.Sprintf("failed to build container: slots collided in all %d attempts", e.Attempts)
}
