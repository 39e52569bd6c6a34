package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/media"
)

type fakePicker struct {
	sel media.Selection
	err error
}

func (p fakePicker) Pick(ctx context.Context) (media.Selection, error) {
	return p.sel, p.err
}

type fakeProber struct {
	duration float64
	err      error
	calls    int
}

func (p *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	p.calls++
	return p.duration, p.err
}

type recordingCreator struct {
	got []diary.CreateRequest
}

func (c *recordingCreator) CreateClip(ctx context.Context, req diary.CreateRequest) (*clips.Clip, error) {
	c.got = append(c.got, req)
	return &clips.Clip{
		ID:            "clip_1",
		Name:          req.Name,
		Description:   req.Description,
		SourceLocator: req.SourceLocator,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Duration:      req.EndTime - req.StartTime,
	}, nil
}

func TestPickAndCreate_ClampsWindow(t *testing.T) {
	prober := &fakeProber{duration: 9}
	creator := &recordingCreator{}

	clip, err := pickAndCreate(context.Background(),
		fakePicker{sel: media.Selection{Locator: "/videos/a.mp4"}},
		prober, creator,
		createOptions{start: 12, name: "  Morning  ", description: "walk"})

	require.NoError(t, err)
	require.Len(t, creator.got, 1)
	assert.Equal(t, 4.0, creator.got[0].StartTime)
	assert.Equal(t, 9.0, creator.got[0].EndTime)
	assert.Equal(t, "Morning", creator.got[0].Name)
	assert.Equal(t, "0:04-0:09", windowText(clip))
}

func TestPickAndCreate_ShortSource(t *testing.T) {
	creator := &recordingCreator{}

	_, err := pickAndCreate(context.Background(),
		fakePicker{sel: media.Selection{Locator: "/videos/short.mp4"}},
		&fakeProber{duration: 3}, creator,
		createOptions{start: 2, name: "short", description: "d"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, creator.got[0].StartTime)
	assert.Equal(t, 3.0, creator.got[0].EndTime)
}

func TestPickAndCreate_Cancelled(t *testing.T) {
	prober := &fakeProber{duration: 30}
	creator := &recordingCreator{}

	_, err := pickAndCreate(context.Background(),
		fakePicker{sel: media.Selection{Cancelled: true}},
		prober, creator, createOptions{name: "a", description: "b"})

	assert.ErrorIs(t, err, errCancelled)
	assert.Zero(t, prober.calls)
	assert.Empty(t, creator.got)
}

func TestPickAndCreate_Errors(t *testing.T) {
	t.Run("picker error", func(t *testing.T) {
		_, err := pickAndCreate(context.Background(),
			fakePicker{err: media.ErrUnsupported},
			&fakeProber{duration: 30}, &recordingCreator{},
			createOptions{name: "a", description: "b"})
		assert.ErrorIs(t, err, media.ErrUnsupported)
	})

	t.Run("probe failure", func(t *testing.T) {
		creator := &recordingCreator{}
		_, err := pickAndCreate(context.Background(),
			fakePicker{sel: media.Selection{Locator: "/v.mp4"}},
			&fakeProber{err: errors.New("no streams")}, creator,
			createOptions{name: "a", description: "b"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no streams")
		assert.Empty(t, creator.got)
	})

	t.Run("zero duration", func(t *testing.T) {
		_, err := pickAndCreate(context.Background(),
			fakePicker{sel: media.Selection{Locator: "/v.mp4"}},
			&fakeProber{duration: 0}, &recordingCreator{},
			createOptions{name: "a", description: "b"})
		assert.ErrorIs(t, err, media.ErrUnsupported)
	})

	t.Run("invalid name", func(t *testing.T) {
		creator := &recordingCreator{}
		_, err := pickAndCreate(context.Background(),
			fakePicker{sel: media.Selection{Locator: "/v.mp4"}},
			&fakeProber{duration: 30}, creator,
			createOptions{name: strings.Repeat("x", 101), description: "b"})
		assert.ErrorIs(t, err, diary.ErrInvalidInput)
		assert.Empty(t, creator.got)
	})
}

func TestPrintClipTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		printClipTable(&buf, nil, time.Now())
		assert.Equal(t, "No clips yet.\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		dir := t.TempDir()
		artifact := filepath.Join(dir, "clip.mp4")
		require.NoError(t, os.WriteFile(artifact, make([]byte, 2048), 0o644))

		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		items := []clips.Clip{
			{ID: "clip_b", Name: "Beach", StartTime: 65, EndTime: 70, ArtifactLocator: artifact, CreatedAt: now},
			{ID: "clip_a", Name: "Park", StartTime: 0, EndTime: 5, ArtifactLocator: filepath.Join(dir, "gone.mp4"), CreatedAt: now.Add(-24 * time.Hour)},
		}

		var buf bytes.Buffer
		printClipTable(&buf, items, now)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "ID"))
		assert.Contains(t, lines[1], "Beach")
		assert.Contains(t, lines[1], "1:05-1:10")
		assert.Contains(t, lines[1], "Today")
		assert.Contains(t, lines[1], "2.0 kB")
		assert.Contains(t, lines[2], "Yesterday")
		assert.Contains(t, lines[2], "missing")
	})
}

func TestPrintClip(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := &clips.Clip{
		ID:              "clip_x",
		Name:            "Sunset",
		Description:     "on the pier",
		SourceLocator:   "/videos/pier.mov",
		ArtifactLocator: "/nowhere/clip_x.mp4",
		StartTime:       10,
		EndTime:         15,
		Duration:        5,
		CreatedAt:       now.Add(-3 * 24 * time.Hour),
		UpdatedAt:       now.Add(-2 * time.Hour),
	}

	var buf bytes.Buffer
	printClip(&buf, c, now)
	out := buf.String()

	assert.Contains(t, out, "clip_x")
	assert.Contains(t, out, "on the pier")
	assert.Contains(t, out, "0:10-0:15 (5.0s)")
	assert.Contains(t, out, "3 days ago")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "missing")
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "create", "clips", "export"} {
		assert.True(t, names[want], "missing command %q", want)
	}

	clipsCmd, _, err := root.Find([]string{"clips", "edit"})
	require.NoError(t, err)
	assert.Equal(t, "edit", clipsCmd.Name())
	assert.NotNil(t, clipsCmd.Flags().Lookup("name"))
	assert.NotNil(t, clipsCmd.Flags().Lookup("description"))

	createCmd, _, err := root.Find([]string{"create"})
	require.NoError(t, err)
	assert.NotNil(t, createCmd.Flags().Lookup("start"))
}

func TestCreateCommand_RequiresName(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"create", "/videos/a.mp4", "--description", "d"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestClipsEdit_RejectsBlankName(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"clips", "edit", "clip_1", "--name", "   "})

	err := root.Execute()
	assert.ErrorIs(t, err, diary.ErrInvalidInput)
}
