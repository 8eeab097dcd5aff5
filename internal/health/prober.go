// Package health classifies application reachability through HTTP health
// endpoints. A probe never fails with an error: anything short of an HTTP
// 200 within the timeout, including connection errors, is classified as
// down, because an unreachable application is a state to report, not an
// orchestration failure.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"
)

// Status is the reported reachability of an application endpoint.
type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusUnknown Status = "unknown"
)

// DefaultTimeout bounds a single probe request.
const DefaultTimeout = 10 * time.Second

// Prober performs HTTP GET health checks.
type Prober struct {
	client *http.Client
}

// NewProber returns a prober whose requests time out after the given
// duration. A non-positive timeout selects DefaultTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Check issues a GET against url and classifies the result. Malformed URLs,
// timeouts, connection errors and non-200 responses all classify as down.
func (p *Prober) Check(ctx context.Context, url string) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logging.Warn("HealthProber", "Invalid health URL %q: %v", url, err)
		return StatusDown
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logging.Info("HealthProber", "Probe of %s failed: %v", url, err)
		return StatusDown
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		logging.Debug("HealthProber", "Probe of %s succeeded", url)
		return StatusUp
	}
	logging.Info("HealthProber", "Probe of %s returned HTTP %d", url, resp.StatusCode)
	return StatusDown
}
