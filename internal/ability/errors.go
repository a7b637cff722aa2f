package ability

import "errors"

var (
	// ErrInvalidState is returned by State.Validate for inconsistent phase/flag combinations.
	ErrInvalidState = errors.New("invalid ability state")

	// ErrUnknownEffect is returned when an effect type has no registered executor.
	ErrUnknownEffect = errors.New("unknown effect type")
)
