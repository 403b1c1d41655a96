// Package indexstore scans the posts directory, derives post identity from
// filenames, and maintains the persisted index artifact plus the memoized
// in-process views over it (index, tag cloud).
package indexstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/starford/dagaz/internal/frontmatter"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/postfile"
	"github.com/starford/dagaz/internal/storage"
)

const (
	// PostsDir is the subdirectory of the content root holding posts.
	PostsDir = "posts"
	// IndexFile is the name of the persisted index artifact.
	IndexFile = "index.json"
	// UncategorizedTag is the sentinel bucket for posts without tags.
	UncategorizedTag = "uncategorized"
)

// RebuildHook is called with the fresh index after every successful
// artifact replacement. Hooks regenerate derived artifacts (search index,
// overview pages); their failures are logged, never allowed to abort the
// rebuild that already produced a good index.
type RebuildHook func(posts []models.Post) error

// Store owns the persisted index artifact and its memoized copy.
type Store struct {
	files     storage.Provider
	cacheDir  string
	indexPath string
	baseURL   string
	logger    *slog.Logger
	hooks     []RebuildHook

	mu       sync.RWMutex
	index    []models.Post
	tagCloud []TagCount
}

// New creates a Store writing its artifact into cacheDir. Failure to
// create the cache directory indicates a broken deployment and is fatal.
func New(files storage.Provider, cacheDir, baseURL string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("indexstore: create cache dir: %w", err)
	}
	return &Store{
		files:     files,
		cacheDir:  cacheDir,
		indexPath: filepath.Join(cacheDir, IndexFile),
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}, nil
}

// OnRebuild registers a hook to run after each successful rebuild.
func (s *Store) OnRebuild(h RebuildHook) {
	s.hooks = append(s.hooks, h)
}

// CacheDir returns the directory holding the persisted artifacts.
func (s *Store) CacheDir() string {
	return s.cacheDir
}

// PostURL returns the canonical link for a post id.
func (s *Store) PostURL(id int64) string {
	return fmt.Sprintf("%s/posts/%d", s.baseURL, id)
}

// Rebuild rescans the posts directory, replaces the index artifact
// atomically, regenerates derived artifacts, and invalidates the memoized
// views. Malformed or unreadable files are skipped, never fatal.
func (s *Store) Rebuild() error {
	metas, err := s.files.List(PostsDir)
	if err != nil {
		return fmt.Errorf("indexstore: scan posts: %w", err)
	}

	posts := make([]models.Post, 0, len(metas))
	skips := make(map[string]int)
	for _, meta := range metas {
		post, skip := s.scanFile(meta)
		if skip != "" {
			skips[skip]++
			continue
		}
		posts = append(posts, *post)
	}

	// Strictly descending by timestamp; id breaks ties so repeated
	// rebuilds serialize identically.
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Timestamp != posts[j].Timestamp {
			return posts[i].Timestamp > posts[j].Timestamp
		}
		return posts[i].ID > posts[j].ID
	})

	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("indexstore: encode index: %w", err)
	}
	if err := storage.WriteFileAtomic(s.indexPath, data); err != nil {
		return fmt.Errorf("indexstore: write index: %w", err)
	}

	s.mu.Lock()
	s.index = posts
	s.tagCloud = nil
	s.mu.Unlock()

	s.logger.Info("index rebuilt",
		slog.Int("posts", len(posts)),
		slog.Int("skipped", len(metas)-len(posts)),
		slog.Any("skip_reasons", skips))

	for _, h := range s.hooks {
		if hookErr := h(posts); hookErr != nil {
			s.logger.Warn("derived artifact regeneration failed",
				slog.String("error", hookErr.Error()))
		}
	}
	return nil
}

// scanFile turns one markdown file into a Post, or a non-empty skip reason.
func (s *Store) scanFile(meta storage.FileInfo) (*models.Post, string) {
	stem := strings.TrimSuffix(filepath.Base(meta.Path), filepath.Ext(meta.Path))
	id, ok := postfile.ExtractID(stem)
	if !ok {
		return nil, "malformed filename"
	}

	raw, err := s.files.Read(meta.Path)
	if err != nil {
		s.logger.Warn("rebuild: read failed",
			slog.String("path", meta.Path),
			slog.String("error", err.Error()))
		return nil, "read error"
	}

	fm, _ := frontmatter.Parse(string(raw))
	title := fm.String("title")
	if title == "" {
		return nil, "missing title"
	}

	status := models.ParseStatus(strings.ToLower(fm.String("status")))
	abs, err := s.files.Abs(meta.Path)
	if err != nil {
		return nil, "path error"
	}

	post := &models.Post{
		ID:        id,
		Title:     title,
		Timestamp: postfile.InferTimestamp(stem, meta.ModTime).Unix(),
		Status:    status,
		Tags:      fm.StringList("tags"),
		Path:      abs,
		URL:       s.PostURL(id),
	}
	// A token is only a capability for private posts; it never leaks into
	// a published record even if the front matter still carries one.
	if status == models.StatusPrivate {
		post.Token = fm.String("token")
	}
	return post, ""
}

// Get returns the current index, loading the persisted artifact on first
// access. A missing artifact triggers an implicit first-time rebuild. The
// returned slice is shared; callers must not mutate it.
func (s *Store) Get() ([]models.Post, error) {
	s.mu.RLock()
	if s.index != nil {
		defer s.mu.RUnlock()
		return s.index, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("indexstore: read index: %w", err)
		}
		if rebuildErr := s.Rebuild(); rebuildErr != nil {
			return nil, rebuildErr
		}
	} else {
		var posts []models.Post
		if jsonErr := json.Unmarshal(data, &posts); jsonErr != nil {
			// Corrupt artifact: the source of truth is still on disk,
			// so rescan instead of failing every read.
			s.logger.Warn("index artifact corrupt, rebuilding",
				slog.String("error", jsonErr.Error()))
			if rebuildErr := s.Rebuild(); rebuildErr != nil {
				return nil, rebuildErr
			}
		} else {
			s.mu.Lock()
			if s.index == nil {
				if posts == nil {
					posts = []models.Post{}
				}
				s.index = posts
			}
			s.mu.Unlock()
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, nil
}

// GetByID returns the indexed record for id, or nil when no post carries
// it. The lookup is a linear scan over the memoized index; it never falls
// back to a filesystem scan.
func (s *Store) GetByID(id int64) (*models.Post, error) {
	index, err := s.Get()
	if err != nil {
		return nil, err
	}
	for i := range index {
		if index[i].ID == id {
			post := index[i]
			return &post, nil
		}
	}
	return nil, nil
}

// GetByTag returns the published posts carrying tag, in index order. The
// empty string and the sentinel name select untagged posts. A tag that
// does not exist in the tag cloud is silently reinterpreted as untagged
// so that stale tag links keep resolving.
func (s *Store) GetByTag(tag string) ([]models.Post, error) {
	index, err := s.Get()
	if err != nil {
		return nil, err
	}

	folded := foldTag(tag)
	wantUntagged := tag == "" || folded == foldTag(UncategorizedTag)

	if !wantUntagged {
		cloud, cloudErr := s.TagCloud()
		if cloudErr != nil {
			return nil, cloudErr
		}
		exists := false
		for _, tc := range cloud {
			if foldTag(tc.Name) == folded {
				exists = true
				break
			}
		}
		if !exists {
			wantUntagged = true
		}
	}

	var out []models.Post
	for _, post := range index {
		if !post.Published() {
			continue
		}
		if wantUntagged {
			if len(post.Tags) == 0 {
				out = append(out, post)
			}
			continue
		}
		for _, t := range post.Tags {
			if foldTag(t) == folded {
				out = append(out, post)
				break
			}
		}
	}
	return out, nil
}

// AllURLs returns the canonical link of every indexed post.
func (s *Store) AllURLs() ([]string, error) {
	index, err := s.Get()
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(index))
	for i, post := range index {
		urls[i] = post.URL
	}
	return urls, nil
}
