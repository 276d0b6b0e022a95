package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sweetyshop/internal/api"
	"sweetyshop/internal/config"
	"sweetyshop/internal/menusync"
	"sweetyshop/internal/store"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "menuctl", cmd.Use)

	for _, name := range []string{"push", "pull", "hash-password"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("server"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("key"))
}

func newBackend(t *testing.T) (string, store.Store) {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "menu-data.json"))
	cfg := config.Config{SyncKey: "k1", SyncMaxBodyBytes: 1 << 20}
	ts := httptest.NewServer(api.NewServer(cfg, menusync.NewService(st, nil), nil).Routes())
	t.Cleanup(ts.Close)
	return ts.URL, st
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPushJSONThenPull(t *testing.T) {
	url, st := newBackend(t)

	path := writeFile(t, "menu.json", `{"menu": [{"id": "a", "name": "Cake", "stock": 3}], "isOpen": true}`)
	out, err := execute(t, "", "push", path, "--action", "init", "--server", url, "--key", "k1")
	require.NoError(t, err)
	assert.Contains(t, out, "action=init")

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, snap.Document.ItemIDs())

	out, err = execute(t, "", "pull", "--server", url)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, true, doc["isOpen"])
}

func TestPushYAMLItemList(t *testing.T) {
	url, st := newBackend(t)
	_, err := execute(t, "", "push", writeFile(t, "seed.json", `{"menu": [{"id": "a"}, {"id": "b"}]}`), "--server", url, "--key", "k1")
	require.NoError(t, err)

	path := writeFile(t, "update.yaml", "- id: a\n  name: Cake\n  stock: 0\n- id: c\n  price: 2.5\n")
	out, err := execute(t, "", "push", path, "--server", url, "--key", "k1")
	require.NoError(t, err)
	assert.Contains(t, out, "action=append")

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, snap.Document.ItemIDs())
	price, _ := snap.Document.Items[2].Price()
	assert.Equal(t, 2.5, price)
}

func TestPushFromStdin(t *testing.T) {
	url, st := newBackend(t)

	_, err := execute(t, `[{"id": 7}]`, "push", "-", "--server", url, "--key", "k1")
	require.NoError(t, err)

	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, snap.Document.ItemIDs())
}

func TestPushErrors(t *testing.T) {
	url, _ := newBackend(t)
	valid := writeFile(t, "menu.json", `{"menu": [{"id": "a"}]}`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad action", []string{"push", valid, "--action", "merge", "--server", url, "--key", "k1"}, "invalid action"},
		{"no server", []string{"push", valid, "--server", "", "--key", "k1"}, "no server"},
		{"wrong key", []string{"push", valid, "--server", url, "--key", "nope"}, "401"},
		{"item without id", []string{"push", writeFile(t, "bad.json", `{"menu": [{"name": "x"}]}`), "--server", url, "--key", "k1"}, "no id"},
		{"missing file", []string{"push", filepath.Join(t.TempDir(), "none.json"), "--server", url}, "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPullYAML(t *testing.T) {
	url, _ := newBackend(t)

	out, err := execute(t, "", "pull", "--server", url, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "menu: []")
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "", "hash-password", "s3cret", "--cost", "4")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	out, err = execute(t, "from-stdin\n", "hash-password", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = execute(t, "", "hash-password")
	assert.Error(t, err)
}
