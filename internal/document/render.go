package document

import (
	"fmt"
	"html"
	"strings"
)

// Render serialises the document to its presentation HTML. The output
// is deterministic: fixed attribute order, fixed tag nesting, no
// inter-tag whitespace. It never fails for a well-formed tree.
func Render(d Document) string {
	var sb strings.Builder
	for _, b := range d.Blocks {
		renderBlock(&sb, b)
	}
	return sb.String()
}

func renderBlock(sb *strings.Builder, b Block) {
	switch b.Type {
	case BlockParagraph:
		if b.Align != "" && b.Align != AlignLeft {
			fmt.Fprintf(sb, `<p style="text-align: %s;">`, b.Align)
		} else {
			sb.WriteString("<p>")
		}
		renderInlines(sb, b.Children)
		sb.WriteString("</p>")

	case BlockHeading:
		level := b.Level
		if level < 1 || level > 3 {
			level = 1
		}
		fmt.Fprintf(sb, "<h%d>", level)
		renderInlines(sb, b.Children)
		fmt.Fprintf(sb, "</h%d>", level)

	case BlockQuote:
		sb.WriteString("<blockquote>")
		renderInlines(sb, b.Children)
		sb.WriteString("</blockquote>")

	case BlockList:
		renderList(sb, b)

	case BlockCode:
		if b.Language != "" {
			fmt.Fprintf(sb, `<pre data-language="%s">`, html.EscapeString(b.Language))
		} else {
			sb.WriteString("<pre>")
		}
		sb.WriteString("<code>")
		sb.WriteString(html.EscapeString(codeText(b.Children)))
		sb.WriteString("</code></pre>")

	case BlockHorizontalRule:
		sb.WriteString("<hr>")

	case BlockImage:
		if b.Caption != "" {
			sb.WriteString("<figure>")
			renderImg(sb, b)
			sb.WriteString("<figcaption>")
			sb.WriteString(html.EscapeString(b.Caption))
			sb.WriteString("</figcaption></figure>")
		} else {
			renderImg(sb, b)
		}

	default:
		// Unknown blocks degrade to paragraphs
		sb.WriteString("<p>")
		renderInlines(sb, b.Children)
		sb.WriteString("</p>")
	}
}

func renderImg(sb *strings.Builder, b Block) {
	if b.Alt != "" {
		fmt.Fprintf(sb, `<img src="%s" alt="%s">`, html.EscapeString(b.Src), html.EscapeString(b.Alt))
		return
	}
	fmt.Fprintf(sb, `<img src="%s">`, html.EscapeString(b.Src))
}

func renderList(sb *strings.Builder, b Block) {
	var open, closing string
	switch b.ListKind {
	case ListOrdered:
		open, closing = "<ol>", "</ol>"
	case ListCheck:
		open, closing = `<ul data-list="check">`, "</ul>"
	default:
		open, closing = "<ul>", "</ul>"
	}

	sb.WriteString(open)
	for _, item := range b.Items {
		if b.ListKind == ListCheck {
			checked := item.Checked != nil && *item.Checked
			fmt.Fprintf(sb, `<li data-checked="%t">`, checked)
		} else {
			sb.WriteString("<li>")
		}
		renderInlines(sb, item.Children)
		sb.WriteString("</li>")
	}
	sb.WriteString(closing)
}

func renderInlines(sb *strings.Builder, nodes []Inline) {
	for _, n := range nodes {
		renderInline(sb, n)
	}
}

func renderInline(sb *strings.Builder, n Inline) {
	switch n.Type {
	case InlineText:
		renderText(sb, n)

	case InlineLink:
		if n.Target != "" {
			fmt.Fprintf(sb, `<a href="%s" target="%s">`, html.EscapeString(n.Href), html.EscapeString(n.Target))
		} else {
			fmt.Fprintf(sb, `<a href="%s">`, html.EscapeString(n.Href))
		}
		renderInlines(sb, n.Children)
		sb.WriteString("</a>")

	case InlineLineBreak:
		sb.WriteString("<br>")
	}
}

// renderText nests format tags in a fixed order so the output is
// stable: strong > em > u > s > code, text innermost.
func renderText(sb *strings.Builder, n Inline) {
	var open, closing []string
	if n.Bold {
		open, closing = append(open, "<strong>"), append(closing, "</strong>")
	}
	if n.Italic {
		open, closing = append(open, "<em>"), append(closing, "</em>")
	}
	if n.Underline {
		open, closing = append(open, "<u>"), append(closing, "</u>")
	}
	if n.Strike {
		open, closing = append(open, "<s>"), append(closing, "</s>")
	}
	if n.Code {
		open, closing = append(open, "<code>"), append(closing, "</code>")
	}

	for _, tag := range open {
		sb.WriteString(tag)
	}
	sb.WriteString(html.EscapeString(n.Text))
	for i := len(closing) - 1; i >= 0; i-- {
		sb.WriteString(closing[i])
	}
}

// codeText flattens a code block's children to raw text
func codeText(nodes []Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case InlineText:
			sb.WriteString(n.Text)
		case InlineLineBreak:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
