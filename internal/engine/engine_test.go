package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/playback"
)

const testDebounce = 25 * time.Millisecond

// memCollection is an in-memory Collection keeping insertion order.
type memCollection struct {
	mu    sync.Mutex
	items []*library.Voizy
}

func (m *memCollection) FetchPage(ctx context.Context, keyword, cursor string, size int) (*library.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*library.Voizy
	for _, item := range m.items {
		if keyword == "" || strings.Contains(strings.ToLower(item.Name), keyword) {
			matched = append(matched, item)
		}
	}

	offset := 0
	if cursor != "" {
		var err error
		if offset, err = strconv.Atoi(cursor); err != nil {
			return nil, fmt.Errorf("bad cursor %q", cursor)
		}
	}
	if offset >= len(matched) {
		return &library.Page{}, nil
	}

	end := offset + size
	next := ""
	if end >= len(matched) {
		end = len(matched)
	} else {
		next = strconv.Itoa(end)
	}
	return &library.Page{Items: matched[offset:end], NextCursor: next}, nil
}

func (m *memCollection) SaveItem(item *library.Voizy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *memCollection) GetItem(id string) (*library.Voizy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("item %s not found", id)
}

func (m *memCollection) DeleteItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not found", id)
}

func (m *memCollection) Close() error { return nil }

func (m *memCollection) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type fakePlayer struct {
	mu      sync.Mutex
	playing string
	stops   int
}

func (p *fakePlayer) Play(url string, onFinished func()) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = url
	return 1000, nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = ""
	p.stops++
	return nil
}

type fakeStorage struct{}

func (fakeStorage) Upload(localPath string) (string, string, error) {
	return "https://blobs.example.com/" + localPath, "blobs/" + localPath, nil
}

func (fakeStorage) GetDownloadURL(remotePath string) (string, error) {
	return "https://blobs.example.com/" + remotePath, nil
}

func (fakeStorage) Download(remotePath, destPath string) error { return nil }

type fakeProber struct{}

func (fakeProber) ComputeDuration(path string) (int64, error) { return 4200, nil }

func newTestEngine(t *testing.T, coll *memCollection) (*Engine, *fakePlayer) {
	t.Helper()

	player := &fakePlayer{}
	e, err := New(Options{
		Collection: coll,
		Storage:    fakeStorage{},
		Player:     player,
		Prober:     fakeProber{},
		Debounce:   testDebounce,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, player
}

func seeded(names ...string) *memCollection {
	coll := &memCollection{}
	for i, name := range names {
		coll.items = append(coll.items, &library.Voizy{
			ID:          fmt.Sprintf("id-%d", i),
			Name:        name,
			PlaybackURL: fmt.Sprintf("https://blobs.example.com/%d.mp3", i),
		})
	}
	return coll
}

func TestNew_RequiredCollaborators(t *testing.T) {
	_, err := New(Options{Storage: fakeStorage{}, Player: &fakePlayer{}})
	assert.Error(t, err)
	_, err = New(Options{Collection: &memCollection{}, Player: &fakePlayer{}})
	assert.Error(t, err)
	_, err = New(Options{Collection: &memCollection{}, Storage: fakeStorage{}})
	assert.Error(t, err)
}

func TestEngine_StartsOnUnfilteredLibrary(t *testing.T) {
	e, _ := newTestEngine(t, seeded("jazz set", "field notes", "jazz outro"))

	require.Eventually(t, func() bool {
		l := e.CurrentListing()
		return l != nil && len(l.Items()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "", e.CurrentListing().Keyword())
}

func TestEngine_SearchNarrowsListing(t *testing.T) {
	e, _ := newTestEngine(t, seeded("jazz set", "field notes", "jazz outro"))

	e.SetSearchKeyword("JAZZ")

	require.Eventually(t, func() bool {
		l := e.CurrentListing()
		return l != nil && l.Keyword() == "jazz" && len(l.Items()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngine_TogglePlay(t *testing.T) {
	coll := seeded("jazz set", "field notes")
	e, player := newTestEngine(t, coll)

	item := coll.items[0]

	info, err := e.TogglePlay(item)
	require.NoError(t, err)
	assert.Equal(t, playback.EventStart, info.Event)
	assert.Equal(t, item.ID, e.PlayingID())

	info, err = e.TogglePlay(item)
	require.NoError(t, err)
	assert.Equal(t, playback.EventStop, info.Event)
	assert.Equal(t, "", e.PlayingID())
	assert.Equal(t, 1, player.stops)
}

func TestEngine_EnqueueSave(t *testing.T) {
	coll := &memCollection{}
	e, _ := newTestEngine(t, coll)

	lastCh, cancel := e.LastSaved().Subscribe()
	defer cancel()

	item, err := e.EnqueueSave("morning take", []string{"sketch"}, "take.mp3")
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)

	require.Eventually(t, func() bool { return coll.count() == 1 },
		2*time.Second, 10*time.Millisecond)

	select {
	case last := <-lastCh:
		assert.Equal(t, item.ID, last.ID)
		assert.Equal(t, int64(4200), last.DurationMillis)
	case <-time.After(time.Second):
		t.Fatal("lastSaved never emitted")
	}

	saved, err := coll.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "blobs/take.mp3", saved.RemotePath)
}

func TestEngine_EnqueueSaveRejectsBadName(t *testing.T) {
	e, _ := newTestEngine(t, &memCollection{})

	_, err := e.EnqueueSave("   ", nil, "take.mp3")
	assert.Error(t, err)
}

func TestEngine_DownloadRequiresUpload(t *testing.T) {
	e, _ := newTestEngine(t, &memCollection{})

	local := &library.Voizy{ID: "x", Name: "unsynced"}
	if _, err := e.DownloadURL(local); err == nil {
		t.Error("expected error for item without remote path")
	}
	if err := e.DownloadVoizy(local, "out.mp3"); err == nil {
		t.Error("expected error for item without remote path")
	}

	uploaded := &library.Voizy{ID: "y", Name: "synced", RemotePath: "blobs/y.mp3"}
	url, err := e.DownloadURL(uploaded)
	require.NoError(t, err)
	assert.Equal(t, "https://blobs.example.com/blobs/y.mp3", url)
}

func TestEngine_DeleteRemovesRowFromListing(t *testing.T) {
	coll := seeded("jazz set", "field notes")
	e, _ := newTestEngine(t, coll)

	require.Eventually(t, func() bool {
		l := e.CurrentListing()
		return l != nil && len(l.Items()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	item := coll.items[0]
	require.NoError(t, e.DeleteVoizy(item))

	// The listing refreshes on its own; no keyword change required.
	require.Eventually(t, func() bool {
		l := e.CurrentListing()
		return l != nil && len(l.Items()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	for _, it := range e.CurrentListing().Items() {
		assert.NotEqual(t, item.ID, it.ID, "deleted row must not stay visible")
	}
}

func TestEngine_DeleteStopsPlayback(t *testing.T) {
	coll := seeded("jazz set")
	e, _ := newTestEngine(t, coll)

	item := coll.items[0]
	_, err := e.TogglePlay(item)
	require.NoError(t, err)

	require.NoError(t, e.DeleteVoizy(item))
	assert.Equal(t, "", e.PlayingID())
	assert.Equal(t, 0, coll.count())
}
