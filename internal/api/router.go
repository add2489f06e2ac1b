package api

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the chi router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/", s.handleInfo)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/objects", func(r chi.Router) {
			r.Get("/", s.handleListObjects)
			r.Get("/{id}", s.handleGetObject)
		})
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r
}

var infoPage = template.Must(template.New("info").Parse(`<!DOCTYPE html>
<html>
<head><title>BrewLogic {{.DeviceID}}</title></head>
<body>
<h1>BrewLogic controller</h1>
<p>Device <b>{{.DeviceID}}</b>{{with .Name}} ({{.}}){{end}}, version {{.Version}}.</p>
<p>This device is configured through its command protocol, not through this page.
Connect a BrewLogic service to the TCP port, serial port or MQTT command topic.</p>
<p><a href="/api/v1/status">status</a> | <a href="/healthz">health</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`))

// handleInfo serves the landing page for people who browse to the device.
func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	//nolint:errcheck // Best-effort write to response
	infoPage.Execute(w, map[string]string{
		"DeviceID": s.device.ID,
		"Name":     s.device.Name,
		"Version":  s.version,
	})
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// handleHealth reports "ok", or "degraded" with 503 when a dependency check
// fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: s.version}
	code := http.StatusOK

	if len(s.checkers) > 0 {
		resp.Dependencies = make(map[string]string, len(s.checkers))
		for name, c := range s.checkers {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := c.HealthCheck(ctx)
			cancel()
			if err != nil {
				resp.Dependencies[name] = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[name] = "ok"
		}
	}

	writeJSON(w, code, resp)
}

// StatusResponse summarises the controller.
type StatusResponse struct {
	DeviceID        string    `json:"device_id"`
	Name            string    `json:"name,omitempty"`
	Version         string    `json:"version"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
	CapturedAt      time.Time `json:"captured_at"`
	ActiveProfiles  uint8     `json:"active_profiles"`
	Connections     int       `json:"connections"`
	Objects         int       `json:"objects"`
	InactiveObjects int       `json:"inactive_objects"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.status.Current()
	if snap == nil {
		writeUnavailable(w, "controller not started")
		return
	}

	inactive := 0
	for _, o := range snap.Objects {
		if o.Inactive {
			inactive++
		}
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		DeviceID:        s.device.ID,
		Name:            s.device.Name,
		Version:         s.version,
		UptimeSeconds:   int64(time.Since(s.startTime).Seconds()),
		CapturedAt:      snap.CapturedAt,
		ActiveProfiles:  snap.ActiveProfiles,
		Connections:     snap.Connections,
		Objects:         len(snap.Objects),
		InactiveObjects: inactive,
	})
}

func (s *Server) handleListObjects(w http.ResponseWriter, _ *http.Request) {
	snap := s.status.Current()
	if snap == nil {
		writeUnavailable(w, "controller not started")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"objects": snap.Objects,
		"count":   len(snap.Objects),
	})
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 16)
	if err != nil {
		writeBadRequest(w, "object id must be an integer between 0 and 65535")
		return
	}

	snap := s.status.Current()
	if snap == nil {
		writeUnavailable(w, "controller not started")
		return
	}

	obj, ok := snap.Find(uint16(id))
	if !ok {
		writeNotFound(w, "object not found")
		return
	}
	writeJSON(w, http.StatusOK, obj)
}
