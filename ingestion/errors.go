package ingestion

import "errors"

var (
	// ErrProviderRequired is returned when an enabled importer has no provider.
	ErrProviderRequired = errors.New("provider required")

	// ErrMockGeneratorRequired is returned when mock import has no generator.
	ErrMockGeneratorRequired = errors.New("mock generator required")

	// ErrInvalidProgressInterval is returned for a non-positive progress interval.
	ErrInvalidProgressInterval = errors.New("progress interval must be positive")

	// ErrTaskPanic marks a query whose task or continuation panicked.
	ErrTaskPanic = errors.New("import task panicked")
)
