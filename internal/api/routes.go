package api

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/anilblsn/sevenappsCase/internal/config"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Settings, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/clips", listClipsHandler(cfg))
		r.Post("/clips", createClipHandler(cfg))
		r.Get("/clips/export.edl", exportEDLHandler(cfg))
		r.Get("/clips/{id}", getClipHandler(cfg))
		r.Patch("/clips/{id}", editClipHandler(cfg))
		r.Delete("/clips/{id}", deleteClipHandler(cfg))
		r.Get("/clips/{id}/media", clipMediaHandler(cfg))

		r.Post("/sessions", openSessionHandler(cfg))
		r.Get("/sessions/{id}", getSessionHandler(cfg))
		r.Delete("/sessions/{id}", closeSessionHandler(cfg))
		r.Put("/sessions/{id}/window", setWindowHandler(cfg))
		r.Post("/sessions/{id}/seek", seekHandler(cfg))
		r.Post("/sessions/{id}/play", playHandler(cfg))
		r.Post("/sessions/{id}/pause", pauseHandler(cfg))
		r.Post("/sessions/{id}/preview", previewHandler(cfg))
		r.Post("/sessions/{id}/clip", commitSessionHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := cfg.Version
		if version == "" {
			version = config.Version
		}
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  version,
			UptimeS:  int64(time.Since(cfg.StartTime).Seconds()),
			DeviceID: cfg.DeviceID,
		})
	}
}

// statusHandler never probes ffmpeg itself; it reports whatever the doctor
// last cached.
func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			State:  "ready",
			Uptime: humanize.RelTime(cfg.StartTime, time.Now(), "", ""),
		}
		if cfg.Clips != nil {
			resp.ClipsCached = cfg.Clips.CachedCount()
		}
		if cfg.Sessions != nil {
			resp.SessionsOpen = cfg.Sessions.Len()
		}

		if cfg.Doctor != nil {
			caps := cfg.Doctor.Peek()
			resp.FFmpeg = CapabilitiesToStatus(caps)
			if caps != nil && !caps.CanTrim() {
				resp.State = "degraded"
			}
		}

		if cfg.SchemaVersion != nil {
			version, err := cfg.SchemaVersion(r.Context())
			if err != nil {
				resp.State = "storage_unavailable"
				resp.StorageError = err.Error()
			} else {
				resp.SchemaVersion = version
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
