package pkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	assert.Nil(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	assert.Nil(t, err)
	assert.True(t, info.IsDir())
	// calling again is a no-op
	assert.Nil(t, EnsureDir(dir))
}

func TestDownloadToFile(t *testing.T) {
	payload := []byte("stream me without buffering")
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(payload)
	}))
	defer src.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	assert.Nil(t, DownloadToFile(context.Background(), nil, src.URL+"/file", dest))
	data, err := os.ReadFile(dest)
	assert.Nil(t, err)
	assert.Equal(t, payload, data)

	missing := filepath.Join(t.TempDir(), "missing.bin")
	err = DownloadToFile(context.Background(), nil, src.URL+"/missing", missing)
	assert.NotNil(t, err)
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}

func TestListDirs(t *testing.T) {
	base := t.TempDir()
	assert.Nil(t, os.MkdirAll(filepath.Join(base, "one"), 0755))
	assert.Nil(t, os.MkdirAll(filepath.Join(base, "two"), 0755))
	assert.Nil(t, os.WriteFile(filepath.Join(base, "file.txt"), []byte("x"), 0644))

	dirs, err := ListDirs(base)
	assert.Nil(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, dirs)

	none, err := ListDirs(filepath.Join(base, "does-not-exist"))
	assert.Nil(t, err)
	assert.Nil(t, none)
}

func TestSafeChild(t *testing.T) {
	base := t.TempDir()
	joined, err := SafeChild(base, "a.png")
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(base, "a.png"), joined)

	joined, err = SafeChild(base, filepath.Join("nested", "a.png"))
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(base, "nested", "a.png"), joined)

	_, err = SafeChild(base, "../escape.png")
	assert.NotNil(t, err)
	_, err = SafeChild(base, "..")
	assert.NotNil(t, err)
}
