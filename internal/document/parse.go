package document

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document tree from rendered HTML. Parsing is
// lossy-tolerant: unknown block elements degrade to paragraphs and
// unknown inline styling is dropped, so foreign markup still loads.
// The result is normalized; Parse(Render(T)) == T for normalized T.
func Parse(src string) (Document, error) {
	doc := New()
	if strings.TrimSpace(src) == "" {
		return doc, nil
	}

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return doc, err
	}

	if body := findBody(root); body != nil {
		doc.Blocks = parseBlocks(body)
	}
	return Normalize(doc), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func parseBlocks(parent *html.Node) []Block {
	var blocks []Block

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			// Naked text between blocks becomes its own paragraph
			if trimmed := strings.TrimSpace(c.Data); trimmed != "" {
				blocks = append(blocks, Paragraph(Text(trimmed)))
			}

		case html.ElementNode:
			blocks = append(blocks, parseBlockElement(c)...)
		}
	}
	return blocks
}

func parseBlockElement(n *html.Node) []Block {
	switch n.DataAtom {
	case atom.P:
		b := Block{Type: BlockParagraph, Align: styleAlign(attr(n, "style")), Children: parseInlines(n, Inline{})}
		return []Block{b}

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		return []Block{Heading(level, parseInlines(n, Inline{})...)}

	case atom.Blockquote:
		return []Block{{Type: BlockQuote, Children: parseInlines(n, Inline{})}}

	case atom.Ul, atom.Ol:
		return []Block{parseListElement(n)}

	case atom.Pre:
		return []Block{parseCodeElement(n)}

	case atom.Hr:
		return []Block{{Type: BlockHorizontalRule}}

	case atom.Figure:
		if b, ok := parseFigure(n); ok {
			return []Block{b}
		}
		return nil

	case atom.Img:
		return []Block{imageBlock(n, "")}

	case atom.Script, atom.Style:
		return nil

	default:
		// Unknown containers: recurse when they hold blocks,
		// otherwise their inline content becomes a paragraph.
		if containsBlockElement(n) {
			return parseBlocks(n)
		}
		children := parseInlines(n, Inline{})
		if len(children) == 0 {
			return nil
		}
		return []Block{Paragraph(children...)}
	}
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Ul: true,
	atom.Ol: true, atom.Pre: true, atom.Blockquote: true,
	atom.Hr: true, atom.Figure: true, atom.Div: true,
}

func containsBlockElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockAtoms[c.DataAtom] || containsBlockElement(c)) {
			return true
		}
	}
	return false
}

func parseListElement(n *html.Node) Block {
	b := Block{Type: BlockList}
	switch {
	case n.DataAtom == atom.Ol:
		b.ListKind = ListOrdered
	case attr(n, "data-list") == "check":
		b.ListKind = ListCheck
	default:
		b.ListKind = ListUnordered
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		item := ListItem{Children: parseInlines(c, Inline{})}
		if b.ListKind == ListCheck {
			checked := attr(c, "data-checked") == "true"
			item.Checked = &checked
		}
		b.Items = append(b.Items, item)
	}
	return b
}

func parseCodeElement(pre *html.Node) Block {
	b := Block{Type: BlockCode, Language: attr(pre, "data-language")}

	if b.Language == "" {
		// Fall back to the common <code class="language-x"> form
		for c := pre.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Code {
				if class := attr(c, "class"); strings.HasPrefix(class, "language-") {
					b.Language = strings.TrimPrefix(class, "language-")
				}
			}
		}
	}

	lines := strings.Split(textContent(pre), "\n")
	for i, line := range lines {
		if i > 0 {
			b.Children = append(b.Children, LineBreak())
		}
		if line != "" {
			b.Children = append(b.Children, Text(line))
		}
	}
	return b
}

func parseFigure(n *html.Node) (Block, bool) {
	var img *html.Node
	caption := ""

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Img:
			img = c
		case atom.Figcaption:
			caption = textContent(c)
		}
	}

	if img == nil {
		return Block{}, false
	}
	return imageBlock(img, caption), true
}

func imageBlock(img *html.Node, caption string) Block {
	return Block{
		Type:    BlockImage,
		Src:     attr(img, "src"),
		Alt:     attr(img, "alt"),
		Caption: caption,
	}
}

// parseInlines walks n's children carrying the accumulated format
// flags in the prototype node.
func parseInlines(parent *html.Node, proto Inline) []Inline {
	var out []Inline

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			// Whitespace inside a block is content; indentation
			// between blocks is trimmed in parseBlocks
			t := proto
			t.Type = InlineText
			t.Text = c.Data
			out = append(out, t)

		case html.ElementNode:
			out = append(out, parseInlineElement(c, proto)...)
		}
	}
	return out
}

func parseInlineElement(n *html.Node, proto Inline) []Inline {
	switch n.DataAtom {
	case atom.Br:
		return []Inline{LineBreak()}

	case atom.Strong, atom.B:
		proto.Bold = true
		return parseInlines(n, proto)

	case atom.Em, atom.I:
		proto.Italic = true
		return parseInlines(n, proto)

	case atom.U:
		proto.Underline = true
		return parseInlines(n, proto)

	case atom.S, atom.Strike, atom.Del:
		proto.Strike = true
		return parseInlines(n, proto)

	case atom.Code:
		proto.Code = true
		return parseInlines(n, proto)

	case atom.A:
		link := Inline{
			Type:     InlineLink,
			Href:     attr(n, "href"),
			Target:   attr(n, "target"),
			Children: parseInlines(n, proto),
		}
		return []Inline{link}

	case atom.Img, atom.Script, atom.Style:
		return nil

	default:
		// Unknown inline wrappers contribute their children;
		// the styling itself is dropped
		return parseInlines(n, proto)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// styleAlign extracts a text-align value from an inline style
func styleAlign(style string) string {
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "text-align" {
			continue
		}
		switch v := strings.TrimSpace(parts[1]); v {
		case AlignCenter, AlignRight, AlignJustify:
			return v
		}
	}
	return ""
}
