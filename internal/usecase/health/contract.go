package health

import "context"

// UpstreamChecker probes the listings search backend.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) error
}
