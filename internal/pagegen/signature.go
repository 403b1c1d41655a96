package pagegen

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/dagaz/internal/frontmatter"
	"github.com/starford/dagaz/internal/indexstore"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/storage"
)

// signatureFile returns the cache file name of a language's signature.
func signatureFile(lang string) string {
	return "signature-" + lang + ".html"
}

// GenerateSignatures regenerates the signature fragment for every
// supported language.
func (g *Generator) GenerateSignatures(posts []models.Post) error {
	langs := g.bundle.Languages()
	sort.Strings(langs)
	for _, lang := range langs {
		if err := g.GenerateSignature(posts, lang); err != nil {
			return err
		}
	}
	return nil
}

// GenerateSignature writes the signature fragment for one language: the
// source markdown from pages/signature-<lang>.md (falling back to the
// generic pages/signature.md, then to a minimal hardcoded fragment) with
// the category-link list substituted in.
func (g *Generator) GenerateSignature(posts []models.Post, lang string) error {
	fragment, err := g.signatureSource(lang)
	if err != nil {
		return err
	}
	fragment = strings.ReplaceAll(fragment, categoriesPlaceholder, g.categoryLinks(posts, lang))

	target := filepath.Join(g.cacheDir, signatureFile(lang))
	if err := storage.WriteFileAtomic(target, []byte(fragment)); err != nil {
		return fmt.Errorf("pagegen: write signature: %w", err)
	}
	g.logger.Debug("signature generated", slog.String("lang", lang))
	return nil
}

// signatureSource loads and renders the signature template for lang,
// walking the fallback chain.
func (g *Generator) signatureSource(lang string) (string, error) {
	for _, name := range []string{"signature-" + lang, "signature"} {
		raw, err := g.files.Read(filepath.Join(PagesDir, name+".md"))
		if err != nil {
			continue
		}
		_, body := frontmatter.Parse(string(raw))
		body = strings.ReplaceAll(body, baseURLPlaceholder, g.baseURL)
		html, renderErr := g.renderer.Render(body)
		if renderErr != nil {
			return "", fmt.Errorf("pagegen: render signature: %w", renderErr)
		}
		return html, nil
	}
	// No template at all: fall back to the minimal fragment.
	return "<p>" + g.bundle.Translate(lang, "built_with") + "</p>", nil
}

// categoryLinks builds the bullet-separated horizontal list of category
// links for published posts. The uncategorized bucket keeps the sentinel
// name in its URL so the link resolves regardless of UI language.
func (g *Generator) categoryLinks(posts []models.Post, lang string) string {
	uncategorized := g.bundle.Translate(lang, "uncategorized")

	counts := make(map[string]int)
	var names []string
	untagged := 0
	for _, post := range posts {
		if !post.Published() {
			continue
		}
		if len(post.Tags) == 0 {
			untagged++
			continue
		}
		for _, tag := range post.Tags {
			if counts[tag] == 0 {
				names = append(names, tag)
			}
			counts[tag]++
		}
	}

	indexstore.SortNatural(names)
	if untagged > 0 {
		names = append(names, uncategorized)
	}

	links := make([]string, 0, len(names))
	for _, name := range names {
		urlTag := name
		if name == uncategorized {
			urlTag = indexstore.UncategorizedTag
		}
		links = append(links, fmt.Sprintf(`<a href="%s/tags/%s">%s</a>`,
			g.baseURL, url.PathEscape(urlTag), template.HTMLEscapeString(name)))
	}
	return strings.Join(links, " • ")
}

// SignatureHTML returns the cached signature for lang, falling back to the
// default language's file and finally to the minimal fragment.
func (g *Generator) SignatureHTML(lang string) string {
	for _, l := range []string{lang, g.bundle.DefaultLanguage()} {
		data, err := os.ReadFile(filepath.Join(g.cacheDir, signatureFile(l)))
		if err == nil {
			return string(data)
		}
	}
	return "<p>" + g.bundle.Translate(lang, "built_with") + "</p>"
}
