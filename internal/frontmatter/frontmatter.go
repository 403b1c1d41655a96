// Package frontmatter parses the restricted YAML-like metadata block at the
// top of a markdown file. The grammar is deliberately line-oriented and much
// smaller than YAML: one "key: value" pair per line, quoted strings,
// bracketed lists, and the bare literals true/false/null/~. Unparsable lines
// are skipped rather than reported; Parse never fails.
package frontmatter

import (
	"html"
	"regexp"
	"strings"
)

var quotedRe = regexp.MustCompile(`^(["'])(.*)(["'])$`)

// Meta is the parsed key/value mapping of a front-matter block.
type Meta map[string]any

// String returns the value for key coerced to a string, or "" when the key
// is absent or not a scalar string.
func (m Meta) String(key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Has reports whether key is present.
func (m Meta) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// StringList returns the value for key as a list of strings. Lists are
// converted element-wise; a scalar string is split on commas so that
// "tags: a, b" behaves like "tags: [a, b]". Empty elements are dropped.
func (m Meta) StringList(key string) []string {
	v, ok := m[key]
	if !ok {
		return []string{}
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		out := []string{}
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Parse splits raw into front-matter metadata and body. The header block is
// recognised only when the text starts with a "---" line and a later line
// starts with "---"; otherwise the metadata is empty and the whole input is
// body. Line endings are normalised before delimiter detection.
func Parse(raw string) (Meta, string) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	if !strings.HasPrefix(normalized, "---\n") {
		return Meta{}, normalized
	}
	end := strings.Index(normalized[4:], "\n---")
	if end < 0 {
		return Meta{}, normalized
	}
	end += 4

	block := normalized[4:end]
	body := strings.TrimLeft(normalized[end+4:], "\n")

	return parseBlock(block), body
}

// parseBlock parses the header line by line. Blank lines, comments, and
// lines without a colon are skipped.
func parseBlock(block string) Meta {
	meta := Meta{}
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		meta[key] = parseValue(strings.TrimSpace(value))
	}
	return meta
}

// parseValue evaluates the scalar grammar in precedence order: quoted
// string, bracketed list, bare literal, raw string. HTML entities are
// decoded in every string result.
func parseValue(value string) any {
	if m := quotedRe.FindStringSubmatch(value); m != nil && m[1] == m[3] {
		unquoted := m[2]
		if m[1] == `"` {
			// Order matters: backslash pairs first, then escaped quotes.
			unquoted = strings.ReplaceAll(unquoted, `\\`, `\`)
			unquoted = strings.ReplaceAll(unquoted, `\"`, `"`)
		}
		return html.UnescapeString(unquoted)
	}

	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		inner := strings.TrimSpace(value[1 : len(value)-1])
		if inner == "" {
			return []any{}
		}
		items := []any{}
		for _, part := range strings.Split(inner, ",") {
			parsed := parseValue(strings.TrimSpace(part))
			if s, ok := parsed.(string); ok && s == "" {
				continue
			}
			items = append(items, parsed)
		}
		return items
	}

	switch value {
	case "true":
		return true
	case "false":
		return false
	case "null", "~":
		return nil
	}
	return html.UnescapeString(value)
}
