package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLimitedWriter_KeepsTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	n, err := lw.Write([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 16 {
		t.Errorf("Write() n = %d, want 16", n)
	}
	if got := buf.String(); got != "6789abcdef" {
		t.Errorf("buffer = %q, want %q", got, "6789abcdef")
	}

	lw.Write([]byte("XY"))
	if got := buf.String(); got != "89abcdefXY" {
		t.Errorf("buffer = %q, want %q", got, "89abcdefXY")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want short", got)
	}
	if got := truncate("0123456789", 4); got != "...6789" {
		t.Errorf("truncate() = %q, want ...6789", got)
	}
}

func TestFmtSeconds(t *testing.T) {
	if got := fmtSeconds(7); got != "7.000" {
		t.Errorf("fmtSeconds(7) = %q, want 7.000", got)
	}
	if got := fmtSeconds(2.5); got != "2.500" {
		t.Errorf("fmtSeconds(2.5) = %q, want 2.500", got)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	result := run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	if result.IsSuccess() {
		t.Fatal("run() of missing binary reported success")
	}
	if result.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", result.ExitCode)
	}
	if result.StderrTail == "" {
		t.Error("StderrTail is empty, want start error")
	}
}

func TestTool_TrimMissingBinary(t *testing.T) {
	outDir := t.TempDir()
	tool, err := New(Config{
		FFmpegPath: filepath.Join(t.TempDir(), "no-ffmpeg"),
		OutputDir:  outDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = tool.Trim(context.Background(), "/videos/in.mp4", 0, 5)
	if err == nil {
		t.Fatal("Trim() should fail when ffmpeg is missing")
	}
	if !strings.Contains(err.Error(), "ffmpeg exited -1") {
		t.Errorf("Trim() error = %v, want exit -1 message", err)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries after failed trim, want 0", len(entries))
	}
}

func TestTool_CapabilitiesMissingBinaries(t *testing.T) {
	tool, err := New(Config{
		FFmpegPath:  filepath.Join(t.TempDir(), "no-ffmpeg"),
		FFprobePath: filepath.Join(t.TempDir(), "no-ffprobe"),
		OutputDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	caps, err := tool.Capabilities(context.Background())
	if err != nil {
		t.Fatalf("Capabilities() error = %v", err)
	}
	if caps.HasFFmpeg || caps.HasFFprobe || caps.CanTrim() {
		t.Errorf("Capabilities() = %+v, want nothing available", caps)
	}
}

type fakeProber struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProber) Capabilities(ctx context.Context) (*Capabilities, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &Capabilities{HasFFmpeg: true, HasFFprobe: true, ProbedAt: time.Now()}, nil
}

func TestDoctor_CachesWithinTTL(t *testing.T) {
	prober := &fakeProber{}
	doctor := NewDoctor(prober, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		caps, err := doctor.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !caps.CanTrim() {
			t.Error("CanTrim() = false, want true")
		}
	}
	if got := prober.calls.Load(); got != 1 {
		t.Errorf("probe calls = %d, want 1", got)
	}

	doctor.Invalidate()
	if doctor.Peek() != nil {
		t.Error("Peek() after Invalidate() should be nil")
	}
	doctor.Get(ctx)
	if got := prober.calls.Load(); got != 2 {
		t.Errorf("probe calls after Invalidate() = %d, want 2", got)
	}
}

func TestDoctor_RefreshFallsBackToStale(t *testing.T) {
	prober := &fakeProber{}
	doctor := NewDoctor(prober, nil)
	ctx := context.Background()

	if _, err := doctor.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	prober.err = errors.New("boom")
	caps, err := doctor.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() with stale cache error = %v", err)
	}
	if caps == nil || !caps.HasFFmpeg {
		t.Errorf("Refresh() = %+v, want stale capabilities", caps)
	}

	doctor.Invalidate()
	if _, err := doctor.Refresh(ctx); err == nil {
		t.Error("Refresh() without cache should return the probe error")
	}
}
