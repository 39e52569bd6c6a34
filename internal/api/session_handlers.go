package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/logging"
	"github.com/anilblsn/sevenappsCase/internal/media"
	"github.com/anilblsn/sevenappsCase/internal/session"
)

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves {id} to an open session or answers 404.
func withSession(cfg ServerConfig, fn sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		fn(w, r, sess)
	}
}

func openSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body OpenSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, err := cfg.Sessions.Open(r.Context(), body.SourceLocator)
		if err != nil {
			if errors.Is(err, media.ErrUnsupported) {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			cfg.Logger.Warn("failed to open session", "error", err)
			WriteError(w, http.StatusUnprocessableEntity, "cannot open source", "PROBE_FAILED")
			return
		}
		WriteJSON(w, http.StatusCreated, SessionToResponse(sess))
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	})
}

func closeSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Sessions.Close(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func setWindowHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		var body WindowRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		sess.Selector.SetStartTime(body.StartTime)
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	})
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		var body SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		sess.Selector.Seek(body.Position)
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	})
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		sess.Selector.Play()
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	})
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		sess.Selector.Pause()
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	})
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		sess.Selector.Preview()
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	})
}

// commitSessionHandler turns the session's current window into a clip. The
// session is closed only when the clip was created, so a failed trim can be
// retried against the same selection.
func commitSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return withSession(cfg, func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		var body CommitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess.Selector.Pause()
		window := sess.Selector.Window()

		req := diary.CreateRequest{
			SourceLocator: sess.Source,
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
			writeServiceError(w, logging.WithSessionID(cfg.Logger, sess.ID), err)
			return
		}

		cfg.Sessions.Close(sess.ID)
		WriteJSON(w, http.StatusCreated, ClipToResponse(clip, time.Now()))
	})
}
