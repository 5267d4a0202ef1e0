package driving

import "context"

// Scheduler drives the periodic source refresh in the background.
type Scheduler interface {
	// Start runs due tasks until ctx is done or Stop is called. It returns
	// immediately when scheduling is disabled.
	Start(ctx context.Context) error
	// Stop waits for in-flight runs to finish.
	Stop() error
}
