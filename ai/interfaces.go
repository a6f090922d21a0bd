package ai

import "context"

// Agent answers a free-text request by planning and calling tools.
// Implementations must be safe for concurrent use; each Run gets its own
// tool session.
type Agent interface {
	// Run answers request. The answer carries the records returned by the
	// last successful tool call, so callers do not have to parse the model's
	// prose. A request that exhausts the tool budget fails with an error
	// wrapping tool.ErrInvocationLimit.
	Run(ctx context.Context, request string) (*Answer, error)
}
