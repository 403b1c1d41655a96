package frontmatter

import (
	"reflect"
	"testing"
)

func TestParse_HeaderAndBody(t *testing.T) {
	raw := "---\ntitle: Hello World\ntags: [go, blog]\n---\n# Hello\nBody text.\n"
	meta, body := Parse(raw)
	if meta.String("title") != "Hello World" {
		t.Errorf("title = %q, want %q", meta.String("title"), "Hello World")
	}
	if got := meta.StringList("tags"); !reflect.DeepEqual(got, []string{"go", "blog"}) {
		t.Errorf("tags = %v, want [go blog]", got)
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NoHeader(t *testing.T) {
	raw := "# Just a heading\nSome text.\n"
	meta, body := Parse(raw)
	if len(meta) != 0 {
		t.Errorf("expected empty meta, got %v", meta)
	}
	if body != raw {
		t.Errorf("body = %q, want input unchanged", body)
	}
}

func TestParse_UnterminatedHeader(t *testing.T) {
	raw := "---\ntitle: Dangling\nno closing delimiter\n"
	meta, body := Parse(raw)
	if len(meta) != 0 {
		t.Errorf("expected empty meta, got %v", meta)
	}
	if body != raw {
		t.Errorf("body = %q, want input unchanged", body)
	}
}

func TestParse_CRLFNormalized(t *testing.T) {
	raw := "---\r\ntitle: Windows\r\n---\r\nBody\r\n"
	meta, body := Parse(raw)
	if meta.String("title") != "Windows" {
		t.Errorf("title = %q", meta.String("title"))
	}
	if body != "Body\n" {
		t.Errorf("body = %q, want %q", body, "Body\n")
	}
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	raw := "---\ntitle: Good\nthis line has no colon\n: \n# a comment\nstatus: published\n---\nbody"
	meta, _ := Parse(raw)
	if len(meta) != 2 {
		t.Errorf("meta = %v, want exactly title and status", meta)
	}
	if meta.String("status") != "published" {
		t.Errorf("status = %q", meta.String("status"))
	}
}

func TestParseValue_QuotedStrings(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{`"double"`, "double"},
		{`'single'`, "single"},
		{`"esc \" quote"`, `esc " quote`},
		{`"back\\slash"`, `back\slash`},
		{`'no \" unescape'`, `no \" unescape`},
		{`"mismatched'`, `"mismatched'`},
	}
	for _, tc := range cases {
		if got := parseValue(tc.in); got != tc.want {
			t.Errorf("parseValue(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseValue_Literals(t *testing.T) {
	if got := parseValue("true"); got != true {
		t.Errorf("true = %v", got)
	}
	if got := parseValue("false"); got != false {
		t.Errorf("false = %v", got)
	}
	if got := parseValue("null"); got != nil {
		t.Errorf("null = %v", got)
	}
	if got := parseValue("~"); got != nil {
		t.Errorf("~ = %v", got)
	}
}

func TestParseValue_List(t *testing.T) {
	got := parseValue(`[alpha, "beta", , true]`)
	want := []any{"alpha", "beta", true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v, want %v", got, want)
	}
	if got := parseValue("[]"); !reflect.DeepEqual(got, []any{}) {
		t.Errorf("empty list = %v", got)
	}
}

func TestParseValue_HTMLEntities(t *testing.T) {
	if got := parseValue("Fish &amp; Chips"); got != "Fish & Chips" {
		t.Errorf("entity decode = %v", got)
	}
	if got := parseValue(`"&lt;b&gt;"`); got != "<b>" {
		t.Errorf("quoted entity decode = %v", got)
	}
}

func TestStringList_ScalarCommaSplit(t *testing.T) {
	meta, _ := Parse("---\ntags: go, blog , \n---\nbody")
	got := meta.StringList("tags")
	if !reflect.DeepEqual(got, []string{"go", "blog"}) {
		t.Errorf("tags = %v, want [go blog]", got)
	}
}

func TestStringList_MissingKey(t *testing.T) {
	meta := Meta{}
	if got := meta.StringList("tags"); len(got) != 0 {
		t.Errorf("missing key = %v, want empty", got)
	}
}

func TestString_NonScalar(t *testing.T) {
	meta, _ := Parse("---\ntags: [a, b]\n---\nbody")
	if got := meta.String("tags"); got != "" {
		t.Errorf("String on list = %q, want \"\"", got)
	}
}
