// Package models defines the domain types for Dagaz.
package models

// Status is the publication state of a post.
type Status string

// Post statuses. Anything unrecognised in front matter maps to StatusDraft.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusPrivate   Status = "private"
)

// ParseStatus maps a raw front-matter value to a Status, defaulting to draft.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPublished:
		return StatusPublished
	case StatusPrivate:
		return StatusPrivate
	default:
		return StatusDraft
	}
}

// Post is the indexed metadata of one markdown file. The body is not part
// of the index; it is loaded lazily from Path when a view needs it.
type Post struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Timestamp int64    `json:"timestamp"` // unix seconds, UTC, derived from the filename
	Status    Status   `json:"status"`
	Tags      []string `json:"tags"`
	Path      string   `json:"path"`
	URL       string   `json:"url"`
	Token     string   `json:"token,omitempty"` // capability secret, private posts only
}

// Published reports whether the post is publicly visible.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// RenderedPost is a Post with its body rendered to HTML and the raw
// front-matter mapping attached, as returned by point lookups.
type RenderedPost struct {
	Post
	HTML string         `json:"html"`
	Meta map[string]any `json:"meta,omitempty"`
}

// SearchEntry is one record of the client-side search artifact.
// Title and Content are lowercased for matching; the Original* fields
// keep the display casing.
type SearchEntry struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	OriginalTitle   string `json:"original_title"`
	OriginalContent string `json:"original_content"`
	URL             string `json:"url"`
	Date            int64  `json:"date"`
}
