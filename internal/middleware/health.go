package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HealthChecker checks one dependency (database, object store, identity provider).
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the report store.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus is the result of one check.
type CheckStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler checks every dependency in parallel and answers 503 when any
// of them is down.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		checks := make(map[string]CheckStatus, len(checkers))
		for name, checker := range checkers {
			wg.Add(1)
			go func(name string, c HealthChecker) {
				defer wg.Done()
				start := time.Now()
				err := c.Check(ctx)
				st := CheckStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
				if err != nil {
					st.Status = "unhealthy"
					st.Message = err.Error()
				}
				mu.Lock()
				checks[name] = st
				mu.Unlock()
			}(name, checker)
		}
		wg.Wait()

		health := HealthStatus{Status: "healthy", Timestamp: time.Now().UTC(), Checks: checks}
		code := http.StatusOK
		for _, st := range checks {
			if st.Status != "healthy" {
				health.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, code, health)
	}
}

// Readiness flips to not-ready once shutdown starts so load balancers stop
// routing new uploads to a draining instance.
type Readiness struct {
	draining atomic.Bool
}

// Drain marks the instance as shutting down.
func (rd *Readiness) Drain() { rd.draining.Store(true) }

func (rd *Readiness) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	if rd.draining.Load() {
		status, code = "draining", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// LivenessHandler only proves the process answers.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
