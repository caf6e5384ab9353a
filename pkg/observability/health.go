package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

// Health status values.
const (
	HealthOK          = "ok"
	HealthUnavailable = "unavailable"
)

// HealthStatus is the JSON body of the liveness and readiness endpoints.
// Failed and Reason name the first readiness check that did not pass.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Failed  string `json:"failed,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ReadyCheck is a named readiness condition. Check returns nil when the
// condition holds.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler answers liveness probes: 200 with the running version for as
// long as the process serves HTTP.
func HealthHandler(version string) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, HealthStatus{Status: HealthOK, Version: version})
	})
}

// ReadyHandler answers readiness probes. Checks run in order and the first
// failure yields 503 naming the check, so load balancers stop routing to an
// instance that is draining.
func ReadyHandler(version string, checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		for _, rc := range checks {
			err := rc.Check(hr.Context())
			if err == nil {
				continue
			}

			writeHealth(rw, http.StatusServiceUnavailable, HealthStatus{
				Status:  HealthUnavailable,
				Version: version,
				Failed:  rc.Name,
				Reason:  err.Error(),
			})

			return
		}

		writeHealth(rw, http.StatusOK, HealthStatus{Status: HealthOK, Version: version})
	})
}

func writeHealth(rw http.ResponseWriter, code int, status HealthStatus) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Cache-Control", "no-store")
	rw.WriteHeader(code)

	_ = json.NewEncoder(rw).Encode(status)
}
