// Package delivery contains the entry points that drive the relay: the HTTP API and the retention sweeper.
package delivery

import "context"

// Delivery is a long-running process component started after the fx graph is built.
// Serve blocks until the component stops; shutdown is driven by fx OnStop hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
