// Package lifecycle holds shared constants for component startup and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown of infrastructure
// components (HTTP servers, database pings, publisher teardown).
const DefaultTimeout = 10 * time.Second
