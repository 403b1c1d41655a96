package httpapi

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/content"
	"github.com/starford/dagaz/internal/i18n"
	"github.com/starford/dagaz/internal/models"
)

// Handler holds the API route handlers.
type Handler struct {
	facade  *content.Facade
	bundle  *i18n.Bundle
	perPage int
}

// NewHandler creates a Handler. perPage is the default page size.
func NewHandler(facade *content.Facade, bundle *i18n.Bundle, perPage int) *Handler {
	if perPage <= 0 {
		perPage = 10
	}
	return &Handler{facade: facade, bundle: bundle, perPage: perPage}
}

func (h *Handler) pageParams(r *http.Request) (page, perPage int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 50 {
		perPage = h.perPage
	}
	return page, perPage
}

// ListPosts handles GET /posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, perPage := h.pageParams(r)
	posts, totalPages, err := h.facade.PostsPage(page, perPage)
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":       posts,
		"page":        page,
		"total_pages": totalPages,
	})
}

// GetPost handles GET /posts/{id}. Private posts require the matching
// capability token as a query parameter; drafts are never served.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid post id"))
		return
	}
	post, err := h.facade.PostByID(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get post failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	switch post.Status {
	case models.StatusPublished:
	case models.StatusPrivate:
		supplied := r.URL.Query().Get("token")
		if post.Token == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(post.Token)) != 1 {
			writeJSON(w, http.StatusForbidden, errorBody("forbidden"))
			return
		}
	default:
		// Drafts look like missing posts to the outside.
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// ListTags handles GET /tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	cloud, err := h.facade.TagCloud()
	if err != nil {
		slog.Error("tag cloud failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": cloud})
}

// PostsByTag handles GET /tags/{tag}.
func (h *Handler) PostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	page, perPage := h.pageParams(r)
	posts, totalPages, err := h.facade.PostsByTag(tag, page, perPage)
	if err != nil {
		slog.Error("posts by tag failed", slog.String("tag", tag), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tag":         tag,
		"posts":       posts,
		"page":        page,
		"total_pages": totalPages,
	})
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.facade.Search(query, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// SearchIndex handles GET /search-index.json: serves the client-side
// search artifact with an ETag so browsers revalidate cheaply.
func (h *Handler) SearchIndex(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.facade.SearchArtifactPath())
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			slog.Error("search artifact read failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
	}
	etag := `"` + checksum.Sum(data) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("ETag", etag)
	_, _ = w.Write(data)
}

// Sitemap handles GET /sitemap.txt: one post URL per line.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	urls, err := h.facade.AllURLs()
	if err != nil {
		slog.Error("sitemap failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(strings.Join(urls, "\n") + "\n"))
}

// Signature handles GET /signature: the language is taken from the lang
// query parameter or negotiated from Accept-Language.
func (h *Handler) Signature(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.bundle.Match(r.Header.Get("Accept-Language"))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(h.facade.SignatureHTML(lang)))
}

// GetPage handles GET /pages/{name}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	page, err := h.facade.GetPage(name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get page failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Rebuild handles POST /rebuild (auth-protected).
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.RebuildAll(); err != nil {
		slog.Error("rebuild failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("rebuild failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}
