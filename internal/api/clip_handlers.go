package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/export"
	"github.com/anilblsn/sevenappsCase/internal/media"
	"github.com/anilblsn/sevenappsCase/internal/playback"
	"github.com/anilblsn/sevenappsCase/internal/selector"
)

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		if r.URL.Query().Get("source") == "cache" {
			cached := cfg.Clips.ListCachedClips()
			resp := ClipsResponse{Source: "cache", Clips: make([]ClipResponse, len(cached))}
			for i := range cached {
				resp.Clips[i] = ClipToResponse(&cached[i], now)
			}
			WriteJSON(w, http.StatusOK, resp)
			return
		}

		all, err := cfg.Clips.ListClips(r.Context())
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		resp := ClipsResponse{Source: "store", Clips: make([]ClipResponse, len(all))}
		for i, c := range all {
			resp.Clips[i] = ClipToResponse(c, now)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// createClipHandler creates a clip without a session. The requested start
// is clamped against the probed source duration exactly as a selector
// would clamp it.
func createClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateClipRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		locator, err := media.Resolve(body.SourceLocator)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		duration, err := cfg.Prober.Duration(r.Context(), locator)
		if err != nil {
			cfg.Logger.Warn("duration probe failed", "error", err)
			WriteError(w, http.StatusUnprocessableEntity, "cannot read source duration", "PROBE_FAILED")
			return
		}

		window := selector.ClampWindow(duration, body.StartTime)
		if window.Length() <= 0 {
			WriteError(w, http.StatusBadRequest, "source has no playable duration", "BAD_REQUEST")
			return
		}

		req := diary.CreateRequest{
			SourceLocator: locator,
			StartTime:     window.Start,
			EndTime:       window.End,
			Name:          body.Name,
			Description:   body.Description,
		}
		if err := req.Normalize(); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		clip, err := cfg.Clips.CreateClip(r.Context(), req)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ClipToResponse(clip, time.Now()))
	}
}

func getClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ClipToResponse(clip, time.Now()))
	}
}

func editClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body EditClipRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		req := diary.EditRequest{Name: body.Name, Description: body.Description}
		if err := req.Normalize(); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		clip, err := cfg.Clips.EditClip(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, ClipToResponse(clip, time.Now()))
	}
}

// deleteClipHandler answers 204 whether or not the clip existed.
func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Clips.RemoveClip(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clipMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}

		if err := cfg.PlaybackServer.ServeFile(w, r, clip.ArtifactLocator); err != nil {
			if errors.Is(err, playback.ErrOutsideRoot) {
				WriteError(w, http.StatusForbidden, "artifact is not servable", "FORBIDDEN")
				return
			}
			cfg.Logger.Error("playback error", "error", err, "clip_id", clip.ID)
		}
	}
}

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := export.Options{Title: r.URL.Query().Get("title")}
		if fps := r.URL.Query().Get("fps"); fps != "" {
			rate, err := strconv.ParseFloat(fps, 64)
			if err != nil || rate <= 0 || rate > 240 {
				WriteError(w, http.StatusBadRequest, "fps must be a positive number", "BAD_REQUEST")
				return
			}
			opts.FrameRate = rate
		}

		all, err := cfg.Clips.ListClips(r.Context())
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		items := make([]clips.Clip, len(all))
		for i, c := range all {
			items[i] = *c
		}

		filename := export.SanitizeName(opts.Title, 64)
		if filename == "" {
			filename = "diary"
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".edl"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(export.GenerateEDL(items, opts)))
	}
}

func lookupClip(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*clips.Clip, bool) {
	clip, err := cfg.Clips.GetClip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, cfg.Logger, err)
		return nil, false
	}
	if clip == nil {
		WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
		return nil, false
	}
	return clip, true
}
