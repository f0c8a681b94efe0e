package editor

import (
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/pyomin/bluecool-admin/internal/document"
)

// RenderHighlighted serialises the document like document.Render but
// wraps code-block tokens in classed spans for syntax colouring. The
// canonical JSON never carries the spans; they are derived output.
func RenderHighlighted(d document.Document) string {
	var sb strings.Builder
	for _, b := range d.Blocks {
		if b.Type != document.BlockCode {
			sb.WriteString(document.Render(document.Document{Version: d.Version, Blocks: []document.Block{b}}))
			continue
		}
		renderHighlightedCode(&sb, b)
	}
	return sb.String()
}

// HighlightHTML re-derives the highlighted form from stored HTML. The
// parser drops span wrappers, so applying this twice yields the same
// output as applying it once.
func HighlightHTML(stored string) (string, error) {
	doc, err := document.Parse(stored)
	if err != nil {
		return "", fmt.Errorf("highlight content: %w", err)
	}
	return RenderHighlighted(document.Normalize(doc)), nil
}

func renderHighlightedCode(sb *strings.Builder, b document.Block) {
	if b.Language != "" {
		fmt.Fprintf(sb, `<pre data-language="%s">`, html.EscapeString(b.Language))
	} else {
		sb.WriteString("<pre>")
	}
	sb.WriteString("<code>")
	sb.WriteString(highlightSource(b.Language, codeSource(b.Children)))
	sb.WriteString("</code></pre>")
}

func codeSource(nodes []document.Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case document.InlineText:
			sb.WriteString(n.Text)
		case document.InlineLineBreak:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func highlightSource(lang, source string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return html.EscapeString(source)
	}

	var sb strings.Builder
	for _, tok := range it.Tokens() {
		class := tokenClass(tok.Type)
		if class == "" {
			sb.WriteString(html.EscapeString(tok.Value))
			continue
		}
		fmt.Fprintf(&sb, `<span class="%s">%s</span>`, class, html.EscapeString(tok.Value))
	}
	return sb.String()
}

func tokenClass(t chroma.TokenType) string {
	if c, ok := chroma.StandardTypes[t]; ok && c != "" {
		return c
	}
	if c, ok := chroma.StandardTypes[t.SubCategory()]; ok && c != "" {
		return c
	}
	if c, ok := chroma.StandardTypes[t.Category()]; ok && c != "" {
		return c
	}
	return ""
}
