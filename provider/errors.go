package provider

import "errors"

var (
	// ErrAPIKeyRequired is returned when no API key is configured.
	ErrAPIKeyRequired = errors.New("provider config: API key is required")

	// ErrBaseURLRequired is returned when no base URL is configured.
	ErrBaseURLRequired = errors.New("provider config: base URL is required")

	// ErrInvalidMaxInFlight is returned when MaxInFlight is < 1.
	ErrInvalidMaxInFlight = errors.New("provider config: MaxInFlight must be at least 1")

	// ErrInvalidTimeout is returned when Timeout is not positive.
	ErrInvalidTimeout = errors.New("provider config: Timeout must be positive")
)
