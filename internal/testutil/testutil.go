// Package testutil provides shared test helpers for setting up content
// directories and the index stack.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dagaz/internal/i18n"
	"github.com/starford/dagaz/internal/indexstore"
	"github.com/starford/dagaz/internal/render"
	"github.com/starford/dagaz/internal/storage"
)

// BaseURL is the canonical base URL used by index fixtures.
const BaseURL = "http://blog.test"

// Silent returns a logger that discards everything.
func Silent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestContent creates a temporary content directory with an empty posts
// subdirectory and a storage.Provider rooted at it.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	contentDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(contentDir, indexstore.PostsDir), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	return contentDir, files
}

// WritePost drops a post file into the posts directory and returns its
// absolute path.
func WritePost(t *testing.T, contentDir, name, body string) string {
	t.Helper()
	path := filepath.Join(contentDir, indexstore.PostsDir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestStore builds an index store over a fresh content dir plus a cache dir.
func TestStore(t *testing.T) (string, *indexstore.Store) {
	t.Helper()
	contentDir, files := TestContent(t)
	store, err := indexstore.New(files, t.TempDir(), BaseURL, Silent())
	if err != nil {
		t.Fatal(err)
	}
	return contentDir, store
}

// TestBundle builds an i18n bundle with English as the default language.
func TestBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	bundle, err := i18n.NewBundle("en", Silent())
	if err != nil {
		t.Fatal(err)
	}
	return bundle
}

// TestRenderer returns the production Markdown renderer.
func TestRenderer() render.Renderer {
	return render.NewGoldmark()
}
