package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/media"
	"github.com/anilblsn/sevenappsCase/internal/trim"
)

// writeServiceError maps core error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *diary.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid input", Code: "BAD_REQUEST", Details: verr.Problems})
	case errors.Is(err, trim.ErrInvalidWindow), errors.Is(err, media.ErrUnsupported):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, trim.ErrTrimFailed):
		logger.Warn("trim failed", "error", err)
		WriteError(w, http.StatusUnprocessableEntity, "trim failed", "TRIM_FAILED")
	case errors.Is(err, clips.ErrStorageUnavailable), errors.Is(err, clips.ErrInitializationFailed):
		logger.Error("storage unavailable", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "storage unavailable", "STORAGE_UNAVAILABLE")
	case errors.Is(err, clips.ErrDuplicateID):
		WriteError(w, http.StatusConflict, "clip already exists", "DUPLICATE_ID")
	case errors.Is(err, clips.ErrNotFound):
		WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
