// Package pagegen produces the derived static artifacts: category and
// chronological overview pages (public and editor variants) and the
// per-language signature fragments with category links.
package pagegen

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/i18n"
	"github.com/starford/dagaz/internal/indexstore"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/render"
	"github.com/starford/dagaz/internal/storage"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Artifact file names. Regeneration fully overwrites previous content.
const (
	OverviewFile          = "overview.html"
	OverviewEditFile      = "overview-edit.html"
	ChronologicalFile     = "chronological.html"
	ChronologicalEditFile = "chronological-edit.html"
)

const (
	baseURLPlaceholder    = "<!-- BASE_URL_PLACEHOLDER -->"
	categoriesPlaceholder = "<!-- CATEGORIES_PLACEHOLDER -->"
)

// PagesDir is the content subdirectory holding static pages and the
// signature source fragments.
const PagesDir = "pages"

// Generator writes the derived artifacts. It is constructed once with its
// collaborators; the translation bundle is asked for a language per call.
type Generator struct {
	files    storage.Provider
	cacheDir string
	siteDir  string
	baseURL  string
	renderer render.Renderer
	bundle   *i18n.Bundle
	logger   *slog.Logger
	tmpl     *template.Template
}

// New creates a Generator. Overview pages are written to siteDir,
// signature fragments next to the index artifact in cacheDir.
func New(files storage.Provider, cacheDir, siteDir, baseURL string, renderer render.Renderer, bundle *i18n.Bundle, logger *slog.Logger) (*Generator, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("pagegen: parse templates: %w", err)
	}
	return &Generator{
		files:    files,
		cacheDir: cacheDir,
		siteDir:  siteDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		renderer: renderer,
		bundle:   bundle,
		logger:   logger,
		tmpl:     tmpl,
	}, nil
}

type postLink struct {
	Title  string
	URL    string
	Date   string
	NewTab bool
	Tags   []tagLink
}

type tagLink struct {
	Name string
	URL  string
}

type categoryGroup struct {
	Name  string
	URL   string
	Count int
	Posts []postLink
}

type overviewData struct {
	Lang       string
	Title      string
	BackLabel  string
	BackURL    string
	Stats      string
	Categories []categoryGroup
}

type chronologicalData struct {
	Lang        string
	Title       string
	BackLabel   string
	BackURL     string
	Stats       string
	DateLabel   string
	TitleLabel  string
	TagsLabel   string
	Posts       []postLink
}

// GenerateOverview writes the category-grouped overview artifact in both
// the public and the editor variant. The two files must stay in sync, so
// they are always produced together.
func (g *Generator) GenerateOverview(posts []models.Post) error {
	if err := g.generateOverviewVariant(posts, false, OverviewFile); err != nil {
		return err
	}
	return g.generateOverviewVariant(posts, true, OverviewEditFile)
}

func (g *Generator) generateOverviewVariant(posts []models.Post, edit bool, file string) error {
	// Static overview files are always rendered in the default language.
	lang := g.bundle.DefaultLanguage()
	uncategorized := g.bundle.Translate(lang, "uncategorized")

	groups := make(map[string][]models.Post)
	published := 0
	for _, post := range posts {
		if !post.Published() {
			continue
		}
		published++
		if len(post.Tags) == 0 {
			groups[uncategorized] = append(groups[uncategorized], post)
			continue
		}
		// A post with N tags appears under N groups. Intentional fan-out.
		for _, tag := range post.Tags {
			groups[tag] = append(groups[tag], post)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		if name != uncategorized {
			names = append(names, name)
		}
	}
	indexstore.SortNatural(names)
	if _, ok := groups[uncategorized]; ok {
		names = append(names, uncategorized)
	}

	categories := make([]categoryGroup, 0, len(names))
	for _, name := range names {
		urlTag := name
		if name == uncategorized {
			urlTag = indexstore.UncategorizedTag
		}
		group := categoryGroup{
			Name:  name,
			URL:   g.tagURL(urlTag),
			Count: len(groups[name]),
		}
		for _, post := range groups[name] {
			group.Posts = append(group.Posts, g.postLink(post, edit))
		}
		categories = append(categories, group)
	}

	titleKey := "categories_overview"
	if edit {
		titleKey = "admin_categories_overview"
	}
	data := overviewData{
		Lang:       lang,
		Title:      g.bundle.Translate(lang, titleKey),
		BackLabel:  g.bundle.Translate(lang, "back_to_blog"),
		BackURL:    g.baseURL + "/",
		Stats:      g.bundle.Translatef(lang, "posts_in_categories", published, len(categories)),
		Categories: categories,
	}
	return g.writeTemplate("overview.tmpl", file, data)
}

// GenerateChronological writes the flat timestamp-descending overview in
// both variants.
func (g *Generator) GenerateChronological(posts []models.Post) error {
	if err := g.generateChronologicalVariant(posts, false, ChronologicalFile); err != nil {
		return err
	}
	return g.generateChronologicalVariant(posts, true, ChronologicalEditFile)
}

func (g *Generator) generateChronologicalVariant(posts []models.Post, edit bool, file string) error {
	lang := g.bundle.DefaultLanguage()

	published := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if post.Published() {
			published = append(published, post)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].Timestamp > published[j].Timestamp
	})

	links := make([]postLink, 0, len(published))
	for _, post := range published {
		links = append(links, g.postLink(post, edit))
	}

	titleKey := "chronological_overview"
	if edit {
		titleKey = "admin_chronological_overview"
	}
	data := chronologicalData{
		Lang:       lang,
		Title:      g.bundle.Translate(lang, titleKey),
		BackLabel:  g.bundle.Translate(lang, "back_to_blog"),
		BackURL:    g.baseURL + "/",
		Stats:      g.bundle.Translatef(lang, "total_posts_chronological", len(published)),
		DateLabel:  g.bundle.Translate(lang, "date"),
		TitleLabel: g.bundle.Translate(lang, "title"),
		TagsLabel:  g.bundle.Translate(lang, "tags"),
		Posts:      links,
	}
	return g.writeTemplate("chronological.tmpl", file, data)
}

func (g *Generator) postLink(post models.Post, edit bool) postLink {
	lang := g.bundle.DefaultLanguage()
	link := postLink{
		Title:  post.Title,
		URL:    post.URL,
		Date:   time.Unix(post.Timestamp, 0).UTC().Format("02.01.2006"),
		NewTab: edit,
	}
	if edit {
		link.URL = fmt.Sprintf("%s/admin/editor?id=%d", g.baseURL, post.ID)
	}
	if len(post.Tags) == 0 {
		link.Tags = []tagLink{{
			Name: g.bundle.Translate(lang, "uncategorized"),
			URL:  g.tagURL(indexstore.UncategorizedTag),
		}}
	} else {
		for _, tag := range post.Tags {
			link.Tags = append(link.Tags, tagLink{Name: tag, URL: g.tagURL(tag)})
		}
	}
	return link
}

func (g *Generator) tagURL(tag string) string {
	return g.baseURL + "/tags/" + url.PathEscape(tag)
}

func (g *Generator) writeTemplate(name, file string, data any) error {
	var buf strings.Builder
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("pagegen: render %s: %w", name, err)
	}
	target := filepath.Join(g.siteDir, file)
	if err := storage.WriteFileAtomic(target, []byte(buf.String())); err != nil {
		return fmt.Errorf("pagegen: write %s: %w", file, err)
	}
	g.logger.Debug("page generated", slog.String("file", file))
	return nil
}
