package component

import "context"

// Component is a lifecycle-managed part of a bg process, such as the launch
// API server or the launcher.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error
}
