package markdown

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/frametran/internal/frame"
)

func loadFrame(t *testing.T) *frame.Definition {
	t.Helper()
	def, err := frame.LoadFile(filepath.Join("..", "frame", "testdata", "commerce-buy-frame.json"))
	if err != nil {
		t.Fatalf("load frame: %v", err)
	}
	return def
}

func TestToHTML(t *testing.T) {
	got := ToHTML([]byte("# Title\n\nSome *text* and a [link](https://example.com)."))

	for _, want := range []string{"<h1", "Title</h1>", "<em>text</em>", `target="_blank"`} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML output missing %q:\n%s", want, got)
		}
	}
}

func TestFrame(t *testing.T) {
	def := loadFrame(t)

	md := Frame(def)

	for _, want := range []string{
		"# Commerce\\_buy\n",
		"## Lexical units\n",
		"- buy (v)\n",
		"## Core elements\n",
		"| Buyer | ",
		"## Non-core elements\n",
		"| Purpose | ",
		"## Examples\n",
		"- Chuck bought a car from Jerry for $1000.\n",
		"## Japanese\n",
		"**Lexical units:** 買う, 購入する, 買い求める",
		"- 彼は友達から古い自転車を五千円で買った。\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Frame markdown missing %q", want)
		}
	}

	if strings.Index(md, "## English") > strings.Index(md, "## Japanese") {
		t.Error("variations should be sorted by language")
	}
}

func TestFrame_RendersToHTML(t *testing.T) {
	html := ToHTML([]byte(Frame(loadFrame(t))))

	for _, want := range []string{"<h1", "Commerce_buy", "<table>", "<td>Buyer</td>"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestFrame_Minimal(t *testing.T) {
	md := Frame(&frame.Definition{Name: "Bare"})

	if md != "# Bare\n\n" {
		t.Errorf("unexpected markdown for bare frame: %q", md)
	}
}

func TestFrame_EscapesFields(t *testing.T) {
	def := &frame.Definition{
		ID:           "<script>alert(1)</script>",
		Name:         "Injected",
		LexicalUnits: []frame.LexicalUnit{{Lemma: "buy", POS: "<b>v</b>"}},
	}

	html := ToHTML([]byte(Frame(def)))

	for _, raw := range []string{"<script>", "<b>"} {
		if strings.Contains(html, raw) {
			t.Errorf("HTML contains unescaped %q:\n%s", raw, html)
		}
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("frame ID should be rendered as text:\n%s", html)
	}
}

func TestFrame_VariationExamplesFallBack(t *testing.T) {
	def := &frame.Definition{
		Name:             "Giving",
		ExampleSentences: []json.RawMessage{json.RawMessage(`"Kim gave Pat a book."`)},
		Variations: map[string]frame.Variation{
			"English": {GrammaticalNotes: "Double object construction."},
			"Klingon": {Examples: []json.RawMessage{json.RawMessage(`"nob"`)}},
		},
	}

	md := Frame(def)

	if n := strings.Count(md, "- Kim gave Pat a book.\n"); n != 2 {
		t.Errorf("shared example should appear under Examples and English, got %d:\n%s", n, md)
	}
	if !strings.Contains(md, "## Klingon\n\n- nob\n") {
		t.Errorf("unknown language should keep its own examples:\n%s", md)
	}
}

func TestIndex(t *testing.T) {
	got := Index([]string{"commerce-buy-frame", "giving frame"})

	if !strings.Contains(got, "- [commerce-buy-frame](/frames/commerce-buy-frame)\n") {
		t.Errorf("missing link: %s", got)
	}
	if !strings.Contains(got, "(/frames/giving%20frame)") {
		t.Errorf("names should be path-escaped: %s", got)
	}

	empty := Index(nil)
	if !strings.Contains(empty, "No frame files found.") {
		t.Errorf("unexpected empty index: %s", empty)
	}
}

func TestPage(t *testing.T) {
	got, err := Page("Frames <&>", "# Hello")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(got, "<title>Frames &lt;&amp;&gt;</title>") {
		t.Errorf("title not escaped: %s", got)
	}
	if !strings.Contains(got, "Hello</h1>") {
		t.Errorf("body not rendered: %s", got)
	}
}

func TestExampleText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"plain sentence"`, "plain sentence"},
		{`{"text": "from text", "annotations": {}}`, "from text"},
		{`{"sentence": "from sentence"}`, "from sentence"},
		{`{"other": 1}`, `{"other":1}`},
		{`[1, 2]`, `[1,2]`},
	}
	for _, tt := range tests {
		if got := exampleText(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("exampleText(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
