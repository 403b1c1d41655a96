package indexstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/indexstore"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/testutil"
)

func TestRebuild_ScansPosts(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: First\nstatus: published\ntags: [go]\n---\nbody one")
	testutil.WritePost(t, contentDir, "2024-02-01T0900.2.md",
		"---\ntitle: Second\nstatus: published\n---\nbody two")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	posts, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
	// Newest first.
	if posts[0].ID != 2 || posts[1].ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", posts[0].ID, posts[1].ID)
	}
	if posts[0].URL != testutil.BaseURL+"/posts/2" {
		t.Errorf("url = %q", posts[0].URL)
	}
}

func TestRebuild_SkipsBrokenFiles(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: Good\n---\nbody")
	testutil.WritePost(t, contentDir, "not-a-post.md", "---\ntitle: Bad name\n---\nbody")
	testutil.WritePost(t, contentDir, "2024-01-02T0900.2.md", "no title here")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	posts, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != 1 {
		t.Errorf("posts = %v, want only id 1", posts)
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md", "---\ntitle: A\ntags: [x]\n---\na")
	testutil.WritePost(t, contentDir, "2024-01-01T0900.2.md", "---\ntitle: B\ntags: [y]\n---\nb")

	indexPath := filepath.Join(store.CacheDir(), indexstore.IndexFile)
	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	first, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if err := store.Rebuild(); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	second, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if checksum.Sum(first) != checksum.Sum(second) {
		t.Error("repeated rebuilds produced different artifacts")
	}
}

func TestRebuild_RenameKeepsIDUpdatesTimestamp(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	path := testutil.WritePost(t, contentDir, "2024-01-01T0900.7.md", "---\ntitle: Moved\n---\nbody")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	before, err := store.GetByID(7)
	if err != nil || before == nil {
		t.Fatalf("GetByID: %v %v", before, err)
	}

	// Same id, new date portion.
	if err := os.Rename(path, filepath.Join(filepath.Dir(path), "2024-06-15T1230.7.md")); err != nil {
		t.Fatal(err)
	}
	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	after, err := store.GetByID(7)
	if err != nil || after == nil {
		t.Fatalf("GetByID: %v %v", after, err)
	}
	if after.ID != 7 {
		t.Errorf("id = %d, want 7", after.ID)
	}
	if after.Timestamp == before.Timestamp {
		t.Error("timestamp unchanged after rename")
	}
}

func TestGet_ImplicitFirstRebuild(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md", "---\ntitle: Lazy\n---\nbody")

	// No explicit Rebuild: the first Get must build the artifact.
	posts, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1", len(posts))
	}
	if _, err := os.Stat(filepath.Join(store.CacheDir(), indexstore.IndexFile)); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
}

func TestGet_CorruptArtifactSelfHeals(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md", "---\ntitle: Healed\n---\nbody")
	indexPath := filepath.Join(store.CacheDir(), indexstore.IndexFile)
	if err := os.WriteFile(indexPath, []byte("{{{ not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	posts, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Healed" {
		t.Errorf("posts = %v, want rebuilt index", posts)
	}
}

func TestScan_StatusAndToken(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: Open\nstatus: published\ntoken: leak\n---\nbody")
	testutil.WritePost(t, contentDir, "2024-01-02T0900.2.md",
		"---\ntitle: Hidden\nstatus: private\ntoken: s3cret\n---\nbody")
	testutil.WritePost(t, contentDir, "2024-01-03T0900.3.md",
		"---\ntitle: Unstated\n---\nbody")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	byID := func(id int64) *models.Post {
		p, err := store.GetByID(id)
		if err != nil || p == nil {
			t.Fatalf("GetByID(%d): %v %v", id, p, err)
		}
		return p
	}
	if p := byID(1); p.Status != models.StatusPublished || p.Token != "" {
		t.Errorf("published post carries token: %+v", p)
	}
	if p := byID(2); p.Status != models.StatusPrivate || p.Token != "s3cret" {
		t.Errorf("private post = %+v, want token s3cret", p)
	}
	// Missing status defaults to draft.
	if p := byID(3); p.Status != models.StatusDraft {
		t.Errorf("status = %v, want draft", p.Status)
	}
}

func TestGetByID_Miss(t *testing.T) {
	_, store := testutil.TestStore(t)
	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	p, err := store.GetByID(999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p != nil {
		t.Errorf("p = %+v, want nil", p)
	}
}

func TestGetByTag(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: Go Post\nstatus: published\ntags: [Go]\n---\nbody")
	testutil.WritePost(t, contentDir, "2024-01-02T0900.2.md",
		"---\ntitle: Untagged\nstatus: published\n---\nbody")
	testutil.WritePost(t, contentDir, "2024-01-03T0900.3.md",
		"---\ntitle: Draft Go\ntags: [go]\n---\nbody")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// Case-insensitive match, drafts excluded.
	posts, err := store.GetByTag("go")
	if err != nil {
		t.Fatalf("GetByTag: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != 1 {
		t.Errorf("go posts = %v, want only id 1", posts)
	}

	// Unknown tag silently resolves to the untagged bucket.
	posts, err = store.GetByTag("never-used")
	if err != nil {
		t.Fatalf("GetByTag: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != 2 {
		t.Errorf("fallback posts = %v, want only id 2", posts)
	}

	// The sentinel name and the empty string select untagged posts too.
	for _, tag := range []string{"", indexstore.UncategorizedTag} {
		posts, err = store.GetByTag(tag)
		if err != nil {
			t.Fatalf("GetByTag(%q): %v", tag, err)
		}
		if len(posts) != 1 || posts[0].ID != 2 {
			t.Errorf("GetByTag(%q) = %v, want only id 2", tag, posts)
		}
	}
}

func TestTagCloud_OrderAndSentinel(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: A\nstatus: published\ntags: [tag10, tag2]\n---\na")
	testutil.WritePost(t, contentDir, "2024-01-02T0900.2.md",
		"---\ntitle: B\nstatus: published\ntags: [Apple]\n---\nb")
	testutil.WritePost(t, contentDir, "2024-01-03T0900.3.md",
		"---\ntitle: C\nstatus: published\n---\nc")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	cloud, err := store.TagCloud()
	if err != nil {
		t.Fatalf("TagCloud: %v", err)
	}
	got := make([]string, len(cloud))
	for i, tc := range cloud {
		got[i] = tc.Name
	}
	// Natural order: numeric-aware, case-insensitive, sentinel last.
	want := []string{"Apple", "tag2", "tag10", indexstore.UncategorizedTag}
	if len(got) != len(want) {
		t.Fatalf("cloud = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cloud = %v, want %v", got, want)
		}
	}
	if cloud[len(cloud)-1].Count != 1 {
		t.Errorf("sentinel count = %d, want 1", cloud[len(cloud)-1].Count)
	}
}

func TestTagCloud_ExcludesDrafts(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md",
		"---\ntitle: Draft\ntags: [ghost]\n---\na")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	cloud, err := store.TagCloud()
	if err != nil {
		t.Fatalf("TagCloud: %v", err)
	}
	if len(cloud) != 0 {
		t.Errorf("cloud = %v, want empty", cloud)
	}
}

func TestRebuild_RunsHooks(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md", "---\ntitle: Hooked\n---\nbody")

	var seen int
	store.OnRebuild(func(posts []models.Post) error {
		seen = len(posts)
		return nil
	})
	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if seen != 1 {
		t.Errorf("hook saw %d posts, want 1", seen)
	}
}

func TestAllURLs(t *testing.T) {
	contentDir, store := testutil.TestStore(t)
	testutil.WritePost(t, contentDir, "2024-01-01T0900.1.md", "---\ntitle: A\n---\na")
	testutil.WritePost(t, contentDir, "2024-01-02T0900.2.md", "---\ntitle: B\n---\nb")

	if err := store.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	urls, err := store.AllURLs()
	if err != nil {
		t.Fatalf("AllURLs: %v", err)
	}
	if len(urls) != 2 || urls[0] != testutil.BaseURL+"/posts/2" {
		t.Errorf("urls = %v", urls)
	}
}
