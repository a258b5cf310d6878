package worker

import (
	"context"
)

// Worker - a long-running background process
type Worker interface {
	// Start runs the worker until Stop is called or ctx is done
	Start(ctx context.Context) error

	// Stop signals the worker to finish
	Stop() error

	// Name returns the worker name
	Name() string
}
