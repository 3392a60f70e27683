package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
	"github.com/aussiebroadwan/tenantry/pkg/httpx"
	"github.com/aussiebroadwan/tenantry/pkg/tenantsdk"
)

// dependency is a named check run by readyz.
type dependency struct {
	name  string
	check func(r *http.Request) error
}

// writeHealth reports "ok" with 200 when every dependency answers and "degraded"
// with 503 otherwise. A nil checks map is left out of the body.
func writeHealth(w http.ResponseWriter, r *http.Request, startTime time.Time, version string, deps ...dependency) {
	resp := tenantsdk.HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(startTime).String(),
		Version: version,
	}
	code := http.StatusOK

	if len(deps) > 0 {
		resp.Checks = make(map[string]string, len(deps))
	}
	for _, d := range deps {
		if err := d.check(r); err != nil {
			resp.Checks[d.name] = "error: " + err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[d.name] = "ok"
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, code, resp)
}

// LivezHandler godoc
//
//	@Summary		Liveness Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tenantsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, r, startTime, version)
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe that pings the store.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tenantsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	tenantsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	database := dependency{name: "database", check: func(r *http.Request) error {
		return st.Ping(r.Context())
	}}
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, r, startTime, version, database)
	}
}
