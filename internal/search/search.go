// Package search builds the client-side search artifact: for every
// published post a lowercase title/content pair for matching plus the
// original casing for display.
package search

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/dagaz/internal/frontmatter"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/render"
	"github.com/starford/dagaz/internal/storage"
)

// ArtifactFile is the name of the search artifact inside the cache dir.
const ArtifactFile = "search-index.json"

// Builder regenerates the search artifact from the index. Every build is a
// full rebuild; it only runs on explicit index rebuilds, not per request.
type Builder struct {
	cacheDir string
	renderer render.Renderer
	strip    *bluemonday.Policy
	logger   *slog.Logger
}

// NewBuilder creates a Builder writing into cacheDir.
func NewBuilder(cacheDir string, renderer render.Renderer, logger *slog.Logger) *Builder {
	return &Builder{
		cacheDir: cacheDir,
		renderer: renderer,
		strip:    bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// ArtifactPath returns the absolute path of the search artifact.
func (b *Builder) ArtifactPath() string {
	return filepath.Join(b.cacheDir, ArtifactFile)
}

// Build regenerates the artifact for the published subset of posts.
// Unreadable backing files are skipped so one bad post cannot empty the
// search index for the rest.
func (b *Builder) Build(posts []models.Post) error {
	entries := make(map[string]models.SearchEntry, len(posts))

	for _, post := range posts {
		if !post.Published() {
			continue
		}
		raw, err := os.ReadFile(post.Path)
		if err != nil {
			b.logger.Warn("search: read failed",
				slog.String("path", post.Path),
				slog.String("error", err.Error()))
			continue
		}
		_, body := frontmatter.Parse(string(raw))
		rendered, err := b.renderer.Render(body)
		if err != nil {
			b.logger.Warn("search: render failed",
				slog.Int64("id", post.ID),
				slog.String("error", err.Error()))
			continue
		}
		// Strip markup, then decode the entities the sanitizer escaped so
		// the artifact holds plain readable text.
		plain := CollapseWhitespace(html.UnescapeString(b.strip.Sanitize(rendered)))

		entries[strconv.FormatInt(post.ID, 10)] = models.SearchEntry{
			Title:           strings.ToLower(post.Title),
			Content:         strings.ToLower(plain),
			OriginalTitle:   post.Title,
			OriginalContent: plain,
			URL:             post.URL,
			Date:            post.Timestamp,
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("search: encode artifact: %w", err)
	}
	if err := storage.WriteFileAtomic(b.ArtifactPath(), data); err != nil {
		return fmt.Errorf("search: write artifact: %w", err)
	}
	b.logger.Debug("search artifact rebuilt", slog.Int("entries", len(entries)))
	return nil
}

// Load reads the current artifact. A missing artifact yields an empty map.
func (b *Builder) Load() (map[string]models.SearchEntry, error) {
	data, err := os.ReadFile(b.ArtifactPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.SearchEntry{}, nil
		}
		return nil, fmt.Errorf("search: read artifact: %w", err)
	}
	var entries map[string]models.SearchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("search: decode artifact: %w", err)
	}
	return entries, nil
}

// Query returns the entries whose lowercased title or content contains the
// lowercased query, for server-side consumers (MCP, API). Matching is
// plain substring containment, same as the client-side search.
func (b *Builder) Query(query string, limit int) ([]models.SearchEntry, error) {
	entries, err := b.Load()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	needle := strings.ToLower(query)
	var out []models.SearchEntry
	for _, entry := range entries {
		if strings.Contains(entry.Title, needle) || strings.Contains(entry.Content, needle) {
			out = append(out, entry)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// CollapseWhitespace trims the text and squeezes every run of whitespace
// (spaces, tabs, newlines) into a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
