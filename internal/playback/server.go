// Package playback streams clip artifacts over HTTP with byte-range
// support, so players can seek without downloading the whole file.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/anilblsn/sevenappsCase/internal/logging"
)

// ErrOutsideRoot is returned for paths the server is not allowed to serve.
var ErrOutsideRoot = errors.New("path outside served directory")

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".3gp":  "video/3gpp",
}

type Server struct {
	root   string
	logger *slog.Logger
}

// NewServer serves files below root. An empty root disables the check.
func NewServer(root string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{root: root, logger: logger}
}

// ServeFile writes the file, or the requested range of it, to w. Errors
// that were already answered (missing file, unsatisfiable range) return
// nil; other errors are left for the caller to report.
func (s *Server) ServeFile(w http.ResponseWriter, r *http.Request, path string) error {
	if !s.allowed(path) {
		return ErrOutsideRoot
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if !stat.Mode().IsRegular() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	size := stat.Size()
	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType(path))
	h.Set("Last-Modified", stat.ModTime().UTC().Format(http.TimeFormat))

	span, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		// A malformed header is ignored and the whole file is sent.
		span = nil
	case err != nil:
		return err
	}

	if span == nil {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		n, _ := io.Copy(w, file)
		s.logger.Debug("served artifact", "file", filepath.Base(path), "bytes", humanize.Bytes(uint64(n)))
		return nil
	}

	if _, err := file.Seek(span.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	h.Set("Content-Length", strconv.FormatInt(span.ContentLength(), 10))
	h.Set("Content-Range", span.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	n, _ := io.CopyN(w, file, span.ContentLength())
	s.logger.Debug("served artifact range",
		"file", filepath.Base(path),
		"range", span.ContentRange(size),
		"bytes", humanize.Bytes(uint64(n)),
	)
	return nil
}

func (s *Server) allowed(path string) bool {
	if s.root == "" {
		return true
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
