package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetyshop/internal/config"
)

// fakeBunny emulates the subset of the Bunny storage API the store uses.
type fakeBunny struct {
	mu       sync.Mutex
	objects  map[string][]byte
	key      string
	failPuts bool
}

func (f *fakeBunny) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("AccessKey") != f.key {
		http.Error(w, `{"HttpCode":401,"Message":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			http.Error(w, `{"HttpCode":404,"Message":"Object Not Found"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	case http.MethodPut:
		if f.failPuts {
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeBunny) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

func (f *fakeBunny) setFailPuts(v bool) {
	f.mu.Lock()
	f.failPuts = v
	f.mu.Unlock()
}

func newBunnyTestStore(t *testing.T, accessKey string) (*BunnyStore, *fakeBunny) {
	t.Helper()
	fake := &fakeBunny{objects: map[string][]byte{}, key: "secret"}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s := NewBunnyStore(config.BunnyConfig{
		StorageZone: "sweety",
		StorageKey:  accessKey,
		Endpoint:    srv.URL + "/",
		Timeout:     5 * time.Second,
	}, "menu-data")
	return s, fake
}

func TestBunnyStore_MissingObjectIsEmpty(t *testing.T) {
	s, _ := newBunnyTestStore(t, "secret")

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Found)
	assert.Empty(t, snap.Document.Items)
}

func TestBunnyStore_SaveThenLoad(t *testing.T) {
	s, fake := newBunnyTestStore(t, "secret")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleDocument("a", "b"), ""))
	assert.True(t, fake.has("/sweety/menu-data.json"))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Found)
	assert.NotEmpty(t, snap.Revision)
	assert.Equal(t, []string{"a", "b"}, snap.Document.ItemIDs())
}

func TestBunnyStore_ErrorsAreSurfaced(t *testing.T) {
	t.Run("bad access key", func(t *testing.T) {
		s, _ := newBunnyTestStore(t, "wrong")
		_, err := s.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("failed upload", func(t *testing.T) {
		s, fake := newBunnyTestStore(t, "secret")
		fake.setFailPuts(true)
		err := s.Save(context.Background(), sampleDocument("a"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestBunnyEscapePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"menu-data.json", "menu-data.json"},
		{"/shops/sweety/menu data.json", "shops/sweety/menu%20data.json"},
		{"a//b/", "a/b"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := bunnyEscapePath(tt.in); got != tt.want {
			t.Errorf("bunnyEscapePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
