// Package markdown renders frame overview pages: a frame is written out as
// Markdown and converted to HTML with gomarkdown.
package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/lang"
)

// ToHTML converts Markdown to an HTML fragment.
func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	}
	renderer := html.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Attributes)
	return string(markdown.Render(p.Parse(md), renderer))
}

// Frame writes def as a Markdown document.
func Frame(def *frame.Definition) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", escape(def.Name))
	if def.ID != "" && def.ID != def.Name {
		fmt.Fprintf(&sb, "*Frame ID:* %s\n\n", escape(def.ID))
	}
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", escape(def.Description))
	}

	if lemmas := def.Lemmas(); len(lemmas) > 0 {
		sb.WriteString("## Lexical units\n\n")
		for _, lu := range def.LexicalUnits {
			if lu.POS != "" {
				fmt.Fprintf(&sb, "- %s (%s)\n", escape(lu.Lemma), escape(lu.POS))
			} else {
				fmt.Fprintf(&sb, "- %s\n", escape(lu.Lemma))
			}
		}
		sb.WriteString("\n")
	}

	writeElements(&sb, "Core elements", def.Elements.Core)
	writeElements(&sb, "Non-core elements", def.Elements.NonCore)

	if len(def.ExampleSentences) > 0 {
		sb.WriteString("## Examples\n\n")
		for _, ex := range def.ExampleSentences {
			fmt.Fprintf(&sb, "- %s\n", escape(exampleText(ex)))
		}
		sb.WriteString("\n")
	}

	if len(def.Variations) > 0 {
		langs := make([]string, 0, len(def.Variations))
		for l := range def.Variations {
			langs = append(langs, l)
		}
		sort.Strings(langs)

		for _, l := range langs {
			v := def.Variations[l]
			fmt.Fprintf(&sb, "## %s\n\n", escape(l))
			if len(v.LexicalUnits) > 0 {
				fmt.Fprintf(&sb, "**Lexical units:** %s\n\n", escape(strings.Join(v.LexicalUnits, ", ")))
			}
			if v.GrammaticalNotes != "" {
				fmt.Fprintf(&sb, "**Grammar:** %s\n\n", escape(v.GrammaticalNotes))
			}
			if v.CulturalNotes != "" {
				fmt.Fprintf(&sb, "**Culture:** %s\n\n", escape(v.CulturalNotes))
			}
			examples := v.Examples
			if known, err := lang.Parse(l); err == nil {
				examples = def.Examples(known)
			}
			for _, ex := range examples {
				fmt.Fprintf(&sb, "- %s\n", escape(exampleText(ex)))
			}
			if len(examples) > 0 {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

func writeElements(sb *strings.Builder, title string, elements []frame.Element) {
	if len(elements) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	sb.WriteString("| Name | Description |\n|------|-------------|\n")
	for _, el := range elements {
		fmt.Fprintf(sb, "| %s | %s |\n", cell(el.Name), cell(el.Description))
	}
	sb.WriteString("\n")
}

// Index writes the frame list as Markdown with a link per frame.
func Index(names []string) string {
	var sb strings.Builder
	sb.WriteString("# Frames\n\n")
	if len(names) == 0 {
		sb.WriteString("No frame files found.\n")
		return sb.String()
	}
	for _, n := range names {
		fmt.Fprintf(&sb, "- [%s](/frames/%s)\n", escape(n), url.PathEscape(n))
	}
	sb.WriteString("\nTranslate with `POST /api/translate`.\n")
	return sb.String()
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page renders md as a standalone HTML document.
func Page(title, md string) (string, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(ToHTML([]byte(md))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return buf.String(), nil
}

// exampleText picks a readable line out of an example record: the string
// itself, its "text" or "sentence" field, or the compact JSON.
func exampleText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err == nil {
		for _, key := range []string{"text", "sentence", "example"} {
			if v, ok := rec[key].(string); ok && v != "" {
				return v
			}
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "&", `\&`,
)

func escape(s string) string { return mdEscaper.Replace(s) }

func cell(s string) string {
	return strings.ReplaceAll(escape(strings.ReplaceAll(s, "\n", " ")), "|", `\|`)
}
