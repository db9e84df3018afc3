// Package delivery defines the contract shared by the process entrypoints.
package delivery

import "context"

// Delivery is a long-running server started by the application container.
type Delivery interface {
	Serve(ctx context.Context) error
}
