package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anilblsn/sevenappsCase/internal/clips"
	"github.com/anilblsn/sevenappsCase/internal/diary"
	"github.com/anilblsn/sevenappsCase/internal/logging"
	"github.com/anilblsn/sevenappsCase/internal/playback"
	"github.com/anilblsn/sevenappsCase/internal/session"
	"github.com/anilblsn/sevenappsCase/internal/settings"
)

const testToken = "test-token"

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memSettings) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memSettings) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type fixedProber struct {
	duration float64
	err      error
}

func (p fixedProber) Duration(ctx context.Context, path string) (float64, error) {
	return p.duration, p.err
}

// fakeClips is an in-memory ClipService.
type fakeClips struct {
	mu      sync.Mutex
	items   map[string]*clips.Clip
	order   []string
	created []diary.CreateRequest
	seq     int

	createErr error
	listErr   error
}

func newFakeClips() *fakeClips {
	return &fakeClips{items: make(map[string]*clips.Clip)}
}

func (f *fakeClips) CreateClip(ctx context.Context, req diary.CreateRequest) (*clips.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.seq++
	now := time.Now().UTC()
	c := &clips.Clip{
		ID:              fmt.Sprintf("clip_%d", f.seq),
		Name:            req.Name,
		Description:     req.Description,
		SourceLocator:   req.SourceLocator,
		ArtifactLocator: filepath.Join(os.TempDir(), fmt.Sprintf("missing-%d.mp4", f.seq)),
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Duration:        req.EndTime - req.StartTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.items[c.ID] = c
	f.order = append(f.order, c.ID)
	cp := *c
	return &cp, nil
}

func (f *fakeClips) put(c clips.Clip) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[c.ID] = &c
	f.order = append(f.order, c.ID)
}

func (f *fakeClips) ListClips(ctx context.Context) ([]*clips.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*clips.Clip, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		if c, ok := f.items[f.order[i]]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeClips) ListCachedClips() []clips.Clip {
	all, _ := f.ListClips(context.Background())
	out := make([]clips.Clip, len(all))
	for i, c := range all {
		out[i] = *c
	}
	return out
}

func (f *fakeClips) CachedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakeClips) GetClip(ctx context.Context, id string) (*clips.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClips) EditClip(ctx context.Context, id string, req diary.EditRequest) (*clips.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", clips.ErrNotFound, id)
	}
	now := time.Now().UTC()
	*c = clips.Patch{Name: req.Name, Description: req.Description, UpdatedAt: &now}.Apply(*c)
	cp := *c
	return &cp, nil
}

func (f *fakeClips) RemoveClip(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

type testAPI struct {
	router   http.Handler
	clips    *fakeClips
	sessions *session.Manager
	artifact string
	source   string
}

func newTestAPI(t *testing.T, prober fixedProber) *testAPI {
	t.Helper()

	dir := t.TempDir()
	source := filepath.Join(dir, "beach.mp4")
	require.NoError(t, os.WriteFile(source, []byte("video"), 0o644))

	logger := logging.Discard()
	sessions := session.NewManager(prober, logger)
	t.Cleanup(sessions.CloseAll)

	fc := newFakeClips()
	cfg := ServerConfig{
		Clips:          fc,
		Sessions:       sessions,
		Prober:         prober,
		PlaybackServer: playback.NewServer(dir, logger),
		Settings:       &memSettings{values: map[string]string{settings.KeyAuthToken: testToken}},
		Logger:         logger,
		StartTime:      time.Now(),
		DeviceID:       "device-1",
	}

	return &testAPI{
		router:   NewRouter(cfg),
		clips:    fc,
		sessions: sessions,
		artifact: dir,
		source:   source,
	}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body
}
