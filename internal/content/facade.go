// Package content is the orchestration layer over the index, the search
// builder, and the page generator. It owns the rebuild trigger and exposes
// the read API consumed by the HTTP and MCP surfaces.
package content

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/frontmatter"
	"github.com/starford/dagaz/internal/indexstore"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/pagegen"
	"github.com/starford/dagaz/internal/render"
	"github.com/starford/dagaz/internal/search"
	"github.com/starford/dagaz/internal/storage"
)

// Page is a rendered static page from the pages directory.
type Page struct {
	Meta frontmatter.Meta `json:"meta"`
	HTML string           `json:"html"`
}

// Facade ties the content subsystems together.
type Facade struct {
	store    *indexstore.Store
	searcher *search.Builder
	pages    *pagegen.Generator
	renderer render.Renderer
	files    storage.Provider
	logger   *slog.Logger
}

// New wires the facade and registers the derived-artifact hooks, so every
// index rebuild also refreshes the search artifact, the overview pages,
// and the signatures.
func New(store *indexstore.Store, searcher *search.Builder, pages *pagegen.Generator, renderer render.Renderer, files storage.Provider, logger *slog.Logger) *Facade {
	f := &Facade{
		store:    store,
		searcher: searcher,
		pages:    pages,
		renderer: renderer,
		files:    files,
		logger:   logger,
	}
	store.OnRebuild(searcher.Build)
	store.OnRebuild(pages.GenerateOverview)
	store.OnRebuild(pages.GenerateChronological)
	store.OnRebuild(pages.GenerateSignatures)
	return f
}

// RebuildAll rescans the posts directory and regenerates every derived
// artifact. Call it after any mutation of the backing files.
func (f *Facade) RebuildAll() error {
	return f.store.Rebuild()
}

// Index returns the full ordered index.
func (f *Facade) Index() ([]models.Post, error) {
	return f.store.Get()
}

// PostByID returns one post with rendered HTML and raw front matter
// attached, or apperr.ErrNotFound.
func (f *Facade) PostByID(id int64) (*models.RenderedPost, error) {
	post, err := f.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.ErrNotFound
	}

	raw, err := os.ReadFile(post.Path)
	if err != nil {
		// Indexed but gone from disk: stale index. Treat as a miss; the
		// next rebuild reconciles.
		return nil, apperr.ErrNotFound
	}
	meta, body := frontmatter.Parse(string(raw))
	html := f.renderSafe(post.ID, body)

	return &models.RenderedPost{Post: *post, HTML: html, Meta: meta}, nil
}

// PostsPage returns one page of published posts (newest first) with HTML
// attached, plus the total page count. HTML is rendered only for the
// requested slice, never for the rest of the index.
func (f *Facade) PostsPage(page, perPage int) ([]models.RenderedPost, int, error) {
	published, err := f.published()
	if err != nil {
		return nil, 0, err
	}
	totalPages := (len(published) + perPage - 1) / perPage
	slice := paginate(published, page, perPage)
	return f.attachHTML(slice), totalPages, nil
}

// PostsByTag returns one page of published posts carrying tag. The page
// number is clamped into the valid range; unknown tags resolve to the
// untagged bucket (see indexstore.GetByTag).
func (f *Facade) PostsByTag(tag string, page, perPage int) ([]models.RenderedPost, int, error) {
	posts, err := f.store.GetByTag(tag)
	if err != nil {
		return nil, 0, err
	}
	totalPages := (len(posts) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	slice := paginate(posts, page, perPage)
	return f.attachHTML(slice), totalPages, nil
}

// RecentPosts returns the newest published posts without rendered HTML.
func (f *Facade) RecentPosts(limit int) ([]models.Post, error) {
	published, err := f.published()
	if err != nil {
		return nil, err
	}
	if limit < len(published) {
		published = published[:limit]
	}
	return published, nil
}

// PostTitlesPage returns only the titles of one page of published posts.
// No file is touched; this feeds tooltips cheaply.
func (f *Facade) PostTitlesPage(page, perPage int) ([]string, error) {
	published, err := f.published()
	if err != nil {
		return nil, err
	}
	return titles(paginate(published, page, perPage)), nil
}

// PostTitlesByTag returns only the titles of one page of posts for tag.
func (f *Facade) PostTitlesByTag(tag string, page, perPage int) ([]string, error) {
	posts, err := f.store.GetByTag(tag)
	if err != nil {
		return nil, err
	}
	return titles(paginate(posts, page, perPage)), nil
}

// TagCloud returns the ordered published-post tag counts.
func (f *Facade) TagCloud() ([]indexstore.TagCount, error) {
	return f.store.TagCloud()
}

// AllURLs returns every post URL for sitemap generation.
func (f *Facade) AllURLs() ([]string, error) {
	return f.store.AllURLs()
}

// Search runs a substring query against the search artifact.
func (f *Facade) Search(query string, limit int) ([]models.SearchEntry, error) {
	return f.searcher.Query(query, limit)
}

// SearchArtifactPath exposes the artifact location for static serving.
func (f *Facade) SearchArtifactPath() string {
	return f.searcher.ArtifactPath()
}

// SignatureHTML returns the cached signature fragment for lang.
func (f *Facade) SignatureHTML(lang string) string {
	return f.pages.SignatureHTML(lang)
}

// GetPage loads and renders a static page from the pages directory, or
// apperr.ErrNotFound.
func (f *Facade) GetPage(name string) (*Page, error) {
	raw, err := f.files.Read(filepath.Join(pagegen.PagesDir, name+".md"))
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	meta, body := frontmatter.Parse(string(raw))
	html, err := f.renderer.Render(body)
	if err != nil {
		return nil, err
	}
	return &Page{Meta: meta, HTML: html}, nil
}

// published returns the published subset of the index, in index order.
func (f *Facade) published() ([]models.Post, error) {
	index, err := f.store.Get()
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(index))
	for _, post := range index {
		if post.Published() {
			out = append(out, post)
		}
	}
	return out, nil
}

// attachHTML renders the body of each post in the slice. A post whose file
// cannot be read or rendered gets empty HTML instead of failing the whole
// listing.
func (f *Facade) attachHTML(posts []models.Post) []models.RenderedPost {
	out := make([]models.RenderedPost, len(posts))
	for i, post := range posts {
		out[i] = models.RenderedPost{Post: post}
		raw, err := os.ReadFile(post.Path)
		if err != nil {
			f.logger.Warn("post body unreadable",
				slog.Int64("id", post.ID),
				slog.String("error", err.Error()))
			continue
		}
		_, body := frontmatter.Parse(string(raw))
		out[i].HTML = f.renderSafe(post.ID, body)
	}
	return out
}

// renderSafe renders markdown, falling back to empty content on failure.
func (f *Facade) renderSafe(id int64, body string) string {
	html, err := f.renderer.Render(body)
	if err != nil {
		f.logger.Warn("render failed", slog.Int64("id", id), slog.String("error", err.Error()))
		return ""
	}
	return html
}

func paginate(posts []models.Post, page, perPage int) []models.Post {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(posts) {
		return nil
	}
	end := start + perPage
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, post := range posts {
		out[i] = post.Title
	}
	return out
}
