// Package postfile encodes and decodes post identity from the fixed
// filename pattern "YYYY-MM-DDTHHMM.<id>.md". The filename is the only
// source of truth for a post's id and timestamp, so the index can never
// disagree with the on-disk ordering.
package postfile

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/starford/dagaz/internal/models"
)

var (
	stemRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{4}\.(\d+)$`)
	dateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2})(\d{2})\.`)
)

// ExtractID returns the id embedded in a filename stem (no extension).
// Stems that do not match the pattern yield false, which tells the scanner
// to skip the file: helper or asset files dropped into the posts directory
// must not corrupt the index.
func ExtractID(stem string) (int64, bool) {
	m := stemRe.FindStringSubmatch(stem)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// InferTimestamp derives the post timestamp from the stem's date component,
// interpreted as UTC with zero seconds. Stems without the date prefix fall
// back to the file's mtime; valid posts always carry the prefix, so the
// fallback only fires for legacy files.
func InferTimestamp(stem string, fallback time.Time) time.Time {
	m := dateRe.FindStringSubmatch(stem)
	if m == nil {
		return fallback.UTC()
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

// Filename builds the canonical post filename for a UTC instant and id.
// It is the inverse of ExtractID+InferTimestamp.
func Filename(t time.Time, id int64) string {
	return fmt.Sprintf("%s.%d.md", t.UTC().Format("2006-01-02T1504"), id)
}

// NextID returns the id for a newly created post: one past the highest id
// in the index. Ids are never reused, even after deletion.
func NextID(posts []models.Post) int64 {
	var max int64
	for i := range posts {
		if posts[i].ID > max {
			max = posts[i].ID
		}
	}
	return max + 1
}
