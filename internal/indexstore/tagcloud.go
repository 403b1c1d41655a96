package indexstore

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TagCount is one entry of the ordered tag cloud.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagCloud counts tags across published posts. Untagged posts are counted
// under the sentinel bucket, which sorts last regardless of count; the
// rest are ordered naturally (numeric-aware) and case-insensitively.
// The result is memoized until the next rebuild.
func (s *Store) TagCloud() ([]TagCount, error) {
	s.mu.RLock()
	cached := s.tagCloud
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	index, err := s.Get()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	untagged := 0
	for _, post := range index {
		if !post.Published() {
			continue
		}
		if len(post.Tags) == 0 {
			untagged++
			continue
		}
		for _, tag := range post.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	SortNatural(order)

	cloud := make([]TagCount, 0, len(order)+1)
	for _, tag := range order {
		cloud = append(cloud, TagCount{Name: tag, Count: counts[tag]})
	}
	if untagged > 0 {
		cloud = append(cloud, TagCount{Name: UncategorizedTag, Count: untagged})
	}

	s.mu.Lock()
	s.tagCloud = cloud
	s.mu.Unlock()
	return cloud, nil
}

// SortNatural orders names case-insensitively with numeric awareness, so
// "tag2" sorts before "Tag10".
func SortNatural(names []string) {
	c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	c.SortStrings(names)
}

// foldTag normalizes a tag for case-insensitive comparison.
func foldTag(tag string) string {
	return cases.Fold().String(norm.NFC.String(tag))
}
