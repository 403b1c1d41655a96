package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"published": StatusPublished,
		"private":   StatusPrivate,
		"draft":     StatusDraft,
		"":          StatusDraft,
		"hidden":    StatusDraft,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPost_TokenOmittedFromJSON(t *testing.T) {
	data, err := json.Marshal(Post{ID: 1, Title: "T", Status: StatusPublished})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "token") {
		t.Errorf("empty token serialized: %s", data)
	}

	data, err = json.Marshal(Post{ID: 2, Status: StatusPrivate, Token: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"token":"s"`) {
		t.Errorf("token missing for private post: %s", data)
	}
}
