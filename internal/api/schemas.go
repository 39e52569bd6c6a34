package api

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/ffmpeg"
	"github.com/anilblsn/sevenappsCase/internal/selector"
	"github.com/anilblsn/sevenappsCase/internal/session"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State         string        `json:"state"`
	ClipsCached   int           `json:"clips_cached"`
	SessionsOpen  int           `json:"sessions_open"`
	SchemaVersion int64         `json:"schema_version,omitempty"`
	StorageError  string        `json:"storage_error,omitempty"`
	Uptime        string        `json:"uptime"`
	FFmpeg        *FFmpegStatus `json:"ffmpeg,omitempty"`
}

type FFmpegStatus struct {
	HasFFmpeg      bool   `json:"has_ffmpeg"`
	HasFFprobe     bool   `json:"has_ffprobe"`
	FFmpegVersion  string `json:"ffmpeg_version,omitempty"`
	FFprobeVersion string `json:"ffprobe_version,omitempty"`
	LastProbeAt    string `json:"last_probe_at"`
}

// CreateClipRequest creates a clip directly from a source and start time.
// The end of the window is derived from the source duration.
type CreateClipRequest struct {
	SourceLocator string  `json:"source_locator"`
	StartTime     float64 `json:"start_time"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
}

type EditClipRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ClipResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	SourceLocator   string  `json:"source_locator"`
	ArtifactLocator string  `json:"artifact_locator"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	Duration        float64 `json:"duration"`
	Window          string  `json:"window"`
	ArtifactSize    string  `json:"artifact_size,omitempty"`
	CreatedAt       string  `json:"created_at"`
	CreatedLabel    string  `json:"created_label"`
	UpdatedAt       string  `json:"updated_at"`
}

type ClipsResponse struct {
	Clips  []ClipResponse `json:"clips"`
	Source string         `json:"source"`
}

type OpenSessionRequest struct {
	SourceLocator string `json:"source_locator"`
}

type WindowRequest struct {
	StartTime float64 `json:"start_time"`
}

type SeekRequest struct {
	Position float64 `json:"position"`
}

type CommitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SessionResponse struct {
	ID            string         `json:"id"`
	SourceLocator string         `json:"source_locator"`
	CreatedAt     string         `json:"created_at"`
	State         selector.State `json:"state"`
	Window        string         `json:"window"`
	Playhead      string         `json:"playhead"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

func ClipToResponse(c *clips.Clip, now time.Time) ClipResponse {
	resp := ClipResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		SourceLocator:   c.SourceLocator,
		ArtifactLocator: c.ArtifactLocator,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		Duration:        c.Duration,
		Window:          windowLabel(c.StartTime, c.EndTime),
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		CreatedLabel:    clips.RelativeDate(c.CreatedAt, now),
		UpdatedAt:       c.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if info, err := os.Stat(c.ArtifactLocator); err == nil {
		resp.ArtifactSize = humanize.Bytes(uint64(info.Size()))
	}
	return resp
}

func SessionToResponse(s *session.Session) SessionResponse {
	state := s.Selector.State()
	return SessionResponse{
		ID:            s.ID,
		SourceLocator: s.Source,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		State:         state,
		Window:        windowLabel(state.StartTime, state.EndTime),
		Playhead:      selector.FormatClock(state.Playhead),
	}
}

func CapabilitiesToStatus(caps *ffmpeg.Capabilities) *FFmpegStatus {
	if caps == nil {
		return nil
	}
	return &FFmpegStatus{
		HasFFmpeg:      caps.HasFFmpeg,
		HasFFprobe:     caps.HasFFprobe,
		FFmpegVersion:  caps.FFmpegVersion,
		FFprobeVersion: caps.FFprobeVersion,
		LastProbeAt:    caps.ProbedAt.UTC().Format(time.RFC3339),
	}
}

func windowLabel(start, end float64) string {
	return fmt.Sprintf("%s-%s", selector.FormatClock(start), selector.FormatClock(end))
}
