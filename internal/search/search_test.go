package search_test

import (
	"testing"
	"time"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/search"
	"github.com/starford/dagaz/internal/testutil"
)

func buildWith(t *testing.T, posts []models.Post) *search.Builder {
	t.Helper()
	b := search.NewBuilder(t.TempDir(), testutil.TestRenderer(), testutil.Silent())
	if err := b.Build(posts); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

func seedPost(t *testing.T, title, status, body string) models.Post {
	t.Helper()
	contentDir, _ := testutil.TestContent(t)
	path := testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: "+title+"\nstatus: "+status+"\n---\n"+body)
	return models.Post{
		ID:        1,
		Title:     title,
		Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Unix(),
		Status:    models.ParseStatus(status),
		Path:      path,
		URL:       testutil.BaseURL + "/posts/1",
	}
}

func TestBuild_StripsMarkupAndCollapsesWhitespace(t *testing.T) {
	post := seedPost(t, "Fancy Post", "published",
		"# Heading\n\nSome **bold** text\nover two lines.\n")
	b := buildWith(t, []models.Post{post})

	entries, err := b.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entry, ok := entries["1"]
	if !ok {
		t.Fatalf("entry for id 1 missing: %v", entries)
	}
	if entry.OriginalContent != "Heading Some bold text over two lines." {
		t.Errorf("content = %q", entry.OriginalContent)
	}
	if entry.Content != "heading some bold text over two lines." {
		t.Errorf("lowercase content = %q", entry.Content)
	}
	if entry.Title != "fancy post" || entry.OriginalTitle != "Fancy Post" {
		t.Errorf("titles = %q / %q", entry.Title, entry.OriginalTitle)
	}
	if entry.URL != testutil.BaseURL+"/posts/1" {
		t.Errorf("url = %q", entry.URL)
	}
}

func TestBuild_PublishedOnly(t *testing.T) {
	draft := seedPost(t, "Secret Draft", "draft", "hidden")
	private := seedPost(t, "Private Entry", "private", "hidden")
	private.ID = 2
	b := buildWith(t, []models.Post{draft, private})

	entries, err := b.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestBuild_SkipsUnreadableFiles(t *testing.T) {
	good := seedPost(t, "Readable", "published", "fine")
	bad := models.Post{ID: 2, Title: "Gone", Status: models.StatusPublished, Path: "/nonexistent/2.md"}
	b := buildWith(t, []models.Post{good, bad})

	entries, err := b.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v, want only the readable post", entries)
	}
	if _, ok := entries["1"]; !ok {
		t.Errorf("entry for id 1 missing")
	}
}

func TestLoad_MissingArtifact(t *testing.T) {
	b := search.NewBuilder(t.TempDir(), testutil.TestRenderer(), testutil.Silent())
	entries, err := b.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty map", entries)
	}
}

func TestQuery(t *testing.T) {
	post := seedPost(t, "Gopher Diary", "published", "Today I wrote some Go code.")
	b := buildWith(t, []models.Post{post})

	hits, err := b.Query("GO CODE", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 || hits[0].OriginalTitle != "Gopher Diary" {
		t.Errorf("hits = %v", hits)
	}

	hits, err = b.Query("unmatched needle", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v, want none", hits)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := search.CollapseWhitespace("  a\t b\n\nc  ")
	if got != "a b c" {
		t.Errorf("got %q, want %q", got, "a b c")
	}
}
