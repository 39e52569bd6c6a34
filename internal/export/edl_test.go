package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anilblsn/sevenappsCase/internal/clips"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clipAt(id, name string, start, end float64, created time.Time) clips.Clip {
	return clips.Clip{
		ID:              id,
		Name:            name,
		SourceLocator:   "/videos/" + id + ".mp4",
		ArtifactLocator: "/data/clips/" + id + ".mp4",
		StartTime:       start,
		EndTime:         end,
		Duration:        end - start,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func TestGenerateEDL_SingleClip(t *testing.T) {
	edl := GenerateEDL([]clips.Clip{clipAt("clip_a", "Intro", 0, 2, base)}, Options{Title: "Summer", FrameRate: 30})

	for _, want := range []string{
		"TITLE: Summer",
		"FCM: NON-DROP FRAME",
		"001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00",
		"* FROM CLIP NAME:  Intro",
		"* SOURCE FILE:  /videos/clip_a.mp4",
		"* CLIP FILE:  /data/clips/clip_a.mp4",
	} {
		if !strings.Contains(edl, want) {
			t.Fatalf("EDL missing %q:\n%s", want, edl)
		}
	}
}

func TestGenerateEDL_OldestFirstBackToBack(t *testing.T) {
	newer := clipAt("clip_b", "Second", 1, 2.5, base.Add(time.Hour))
	older := clipAt("clip_a", "First", 7, 12, base)

	// Input arrives newest first, as the store lists it.
	edl := GenerateEDL([]clips.Clip{newer, older}, Options{})

	first := strings.Index(edl, "* FROM CLIP NAME:  First")
	second := strings.Index(edl, "* FROM CLIP NAME:  Second")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("events not ordered oldest first:\n%s", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:07:00 00:00:12:00 00:00:00:00 00:00:05:00") {
		t.Fatalf("first event line mismatch:\n%s", edl)
	}
	if !strings.Contains(edl, "002  AX       V     C        00:00:01:00 00:00:02:15 00:00:05:00 00:00:06:15") {
		t.Fatalf("second event line mismatch or bad record offset:\n%s", edl)
	}
}

func TestGenerateEDL_Defaults(t *testing.T) {
	edl := GenerateEDL(nil, Options{})
	if !strings.HasPrefix(edl, "TITLE: Video Diary\nFCM: NON-DROP FRAME\n") {
		t.Fatalf("unexpected header: %q", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	edl := GenerateEDL([]clips.Clip{clipAt("clip_a", "Clip", 0, 1, base)}, Options{FrameRate: 29.97})
	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestGenerateEDL_SanitizesNames(t *testing.T) {
	edl := GenerateEDL([]clips.Clip{clipAt("clip_a", "bad\nname<>", 0, 1, base)}, Options{Title: "T\r1"})
	if !strings.Contains(edl, "* FROM CLIP NAME:  badname__") {
		t.Fatalf("clip name not sanitized:\n%s", edl)
	}
	if !strings.Contains(edl, "TITLE: T1\n") {
		t.Fatalf("title not sanitized:\n%s", edl)
	}
}

func TestWriteEDL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diary.edl")

	if err := WriteEDL(path, []clips.Clip{clipAt("clip_a", "A", 0, 5, base)}, Options{}); err != nil {
		t.Fatalf("WriteEDL() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "* FROM CLIP NAME:  A") {
		t.Fatalf("unexpected file content: %q", data)
	}

	if err := WriteEDL(filepath.Join(dir, "missing", "x.edl"), nil, Options{}); err == nil {
		t.Fatal("WriteEDL() into a missing directory succeeded")
	}
}

func TestTimecode(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		fps     int
		want    string
	}{
		{name: "zero", seconds: 0, fps: 30, want: "00:00:00:00"},
		{name: "one second", seconds: 1, fps: 30, want: "00:00:01:00"},
		{name: "half second", seconds: 0.5, fps: 30, want: "00:00:00:15"},
		{name: "one minute", seconds: 60, fps: 30, want: "00:01:00:00"},
		{name: "one hour", seconds: 3600, fps: 30, want: "01:00:00:00"},
		{name: "25 fps", seconds: 1.2, fps: 25, want: "00:00:01:05"},
		{name: "negative clamps", seconds: -3, fps: 30, want: "00:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := timecode(tc.seconds, tc.fps); got != tc.want {
				t.Fatalf("timecode(%v, %d) = %q, want %q", tc.seconds, tc.fps, got, tc.want)
			}
		})
	}
}
