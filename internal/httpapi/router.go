package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/content"
	"github.com/starford/dagaz/internal/i18n"
)

// NewRouter creates a chi router with all content routes mounted.
// The rebuild trigger and the SSE stream are guarded by the Bearer-token
// middleware when authEnabled is true; the read path stays open.
func NewRouter(facade *content.Facade, bundle *i18n.Bundle, perPage int, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(facade, bundle, perPage)

	r := chi.NewRouter()

	// Public read path.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{id}", h.GetPost)
	r.Get("/tags", h.ListTags)
	r.Get("/tags/{tag}", h.PostsByTag)
	r.Get("/search", h.Search)
	r.Get("/search-index.json", h.SearchIndex)
	r.Get("/sitemap.txt", h.Sitemap)
	r.Get("/signature", h.Signature)
	r.Get("/pages/{name}", h.GetPage)

	// Admin surface.
	r.Group(func(admin chi.Router) {
		admin.Use(AuthMiddleware(authEnabled, token))
		admin.Post("/rebuild", h.Rebuild)
		if sseHandler != nil {
			admin.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
