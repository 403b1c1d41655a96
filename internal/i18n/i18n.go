// Package i18n provides the translation service used when generating
// language-specific artifacts and rendering UI strings. The bundle is an
// explicitly constructed dependency: callers pass the target language per
// call, so generating a German artifact never disturbs the language of the
// surrounding request.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Bundle holds the translation catalogs for all supported languages.
// Catalogs are loaded once at construction and are read-only afterwards.
type Bundle struct {
	catalogs    map[string]map[string]string // lang → key → translation
	defaultLang string
	tags        []language.Tag
	matcher     language.Matcher
}

// NewBundle loads every embedded catalog. A deployment without a single
// catalog is broken, so that case is a hard error rather than a fallback.
func NewBundle(defaultLang string, logger *slog.Logger) (*Bundle, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	b := &Bundle{
		catalogs:    make(map[string]map[string]string, len(entries)),
		defaultLang: defaultLang,
	}

	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), ".json")
		data, readErr := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if readErr != nil {
			return nil, fmt.Errorf("i18n: read catalog %s: %w", lang, readErr)
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("i18n: parse catalog %s: %w", lang, err)
		}
		b.catalogs[lang] = messages
		b.tags = append(b.tags, language.Make(lang))
		if logger != nil {
			logger.Debug("i18n catalog loaded",
				slog.String("lang", lang),
				slog.Int("keys", len(messages)))
		}
	}

	if len(b.catalogs) == 0 {
		return nil, fmt.Errorf("i18n: no translation catalogs found")
	}
	if _, ok := b.catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q has no catalog", defaultLang)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Languages returns every language with a loaded catalog.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.catalogs))
	for lang := range b.catalogs {
		out = append(out, lang)
	}
	return out
}

// DefaultLanguage returns the configured fallback language.
func (b *Bundle) DefaultLanguage() string {
	return b.defaultLang
}

// Translate returns the translation of key in lang, falling back to the
// default language and finally to the key itself.
func (b *Bundle) Translate(lang, key string) string {
	if catalog, ok := b.catalogs[lang]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if lang != b.defaultLang {
		if msg, ok := b.catalogs[b.defaultLang][key]; ok {
			return msg
		}
	}
	return key
}

// Translatef returns the translation of key in lang formatted with args.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	return fmt.Sprintf(b.Translate(lang, key), args...)
}

// Match picks the best supported language for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return b.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.defaultLang
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.defaultLang
	}
	base, _ := b.tags[idx].Base()
	return base.String()
}
