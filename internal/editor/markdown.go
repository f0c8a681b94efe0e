package editor

import (
	"strings"

	"github.com/pyomin/bluecool-admin/internal/document"
)

// Markdown shortcuts: typing a marker at the start of a paragraph and
// then a space converts the block. The marker is consumed; text after
// the caret stays as the block's content.

// blockTransform rewrites the caret block (already stripped of its
// marker) into one or more replacement blocks.
type blockTransform func(b document.Block) []document.Block

type shortcutEntry struct {
	marker string
	// dynamic entries match the marker as a prefix; the remainder is
	// passed to build (code fences carry a language this way)
	dynamic bool
	build   func(rest string) blockTransform
}

// The longest matching marker wins; ties keep table order.
var shortcuts = []shortcutEntry{
	{marker: "#", build: func(string) blockTransform { return headingTransform(1) }},
	{marker: "##", build: func(string) blockTransform { return headingTransform(2) }},
	{marker: "###", build: func(string) blockTransform { return headingTransform(3) }},
	{marker: "-", build: func(string) blockTransform { return listTransform(document.ListUnordered, nil) }},
	{marker: "*", build: func(string) blockTransform { return listTransform(document.ListUnordered, nil) }},
	{marker: "1.", build: func(string) blockTransform { return listTransform(document.ListOrdered, nil) }},
	{marker: "- [ ]", build: func(string) blockTransform { return listTransform(document.ListCheck, boolPtr(false)) }},
	{marker: "- [x]", build: func(string) blockTransform { return listTransform(document.ListCheck, boolPtr(true)) }},
	{marker: ">", build: func(string) blockTransform { return quoteTransform }},
	{marker: "---", build: func(string) blockTransform { return ruleTransform }},
	{marker: "```", dynamic: true, build: func(lang string) blockTransform { return codeTransform(lang) }},
}

func boolPtr(v bool) *bool { return &v }

func headingTransform(level int) blockTransform {
	return func(b document.Block) []document.Block {
		return []document.Block{document.Heading(level, b.Children...)}
	}
}

func listTransform(kind string, checked *bool) blockTransform {
	return func(b document.Block) []document.Block {
		item := document.ListItem{Children: b.Children}
		if kind == document.ListCheck {
			if checked == nil {
				checked = boolPtr(false)
			}
			item.Checked = checked
		}
		return []document.Block{{Type: document.BlockList, ListKind: kind, Items: []document.ListItem{item}}}
	}
}

func quoteTransform(b document.Block) []document.Block {
	return []document.Block{{Type: document.BlockQuote, Children: b.Children}}
}

func ruleTransform(b document.Block) []document.Block {
	return []document.Block{
		{Type: document.BlockHorizontalRule},
		document.Paragraph(b.Children...),
	}
}

func codeTransform(lang string) blockTransform {
	return func(b document.Block) []document.Block {
		return []document.Block{{Type: document.BlockCode, Language: lang, Children: b.Children}}
	}
}

// lookupShortcut matches the text before the caret against the table
func lookupShortcut(marker string) (blockTransform, bool) {
	var best blockTransform
	bestLen := -1
	for _, s := range shortcuts {
		if s.dynamic {
			if !strings.HasPrefix(marker, s.marker) {
				continue
			}
			rest := marker[len(s.marker):]
			if strings.ContainsAny(rest, " \t") {
				continue
			}
			if len(s.marker) > bestLen {
				best, bestLen = s.build(rest), len(s.marker)
			}
			continue
		}
		if marker == s.marker && len(s.marker) > bestLen {
			best, bestLen = s.build(""), len(s.marker)
		}
	}
	return best, best != nil
}

// markdownShortcut is the command a matched marker expands to: the
// insertion is applied, the marker and its trailing space are
// stripped, then the block is rewritten.
type markdownShortcut struct {
	text      string
	marker    string
	transform blockTransform
}

func (c markdownShortcut) Name() string { return "markdown-shortcut:" + c.marker }

func (c markdownShortcut) apply(d *document.Document, sel *Selection) error {
	if err := (InsertText{Text: c.text}).apply(d, sel); err != nil {
		return err
	}
	at := sel.Focus.Block
	// The marker and its space leave with the transform
	strip := len([]rune(c.marker)) + 1
	b := d.Blocks[at]
	b.Children = deleteTextRange(b.Children, 0, strip)

	repl := c.transform(b)
	var out []document.Block
	out = append(out, d.Blocks[:at]...)
	out = append(out, repl...)
	out = append(out, d.Blocks[at+1:]...)
	d.Blocks = out

	*sel = clampSelection(*d, Caret(at+len(repl)-1, sel.Focus.Offset-strip))
	return nil
}

// checkListShortcut converts a bullet list whose last item reads
// exactly like a checkbox marker into a check list.
type checkListShortcut struct {
	checked bool
}

func (c checkListShortcut) Name() string { return "markdown-shortcut:checkbox" }

func (c checkListShortcut) apply(d *document.Document, sel *Selection) error {
	at := sel.Focus.Block
	b := &d.Blocks[at]
	b.ListKind = document.ListCheck
	for i := range b.Items {
		if b.Items[i].Checked == nil {
			v := false
			b.Items[i].Checked = &v
		}
	}
	last := len(b.Items) - 1
	v := c.checked
	b.Items[last].Children = nil
	b.Items[last].Checked = &v
	*sel = clampSelection(*d, Caret(at, 0))
	return nil
}

// expandShortcut rewrites a text insertion that completes a marker at
// the start of a paragraph, and converts a bullet item whose content
// is exactly a checkbox marker. Callers hold e.mu.
func (e *Editor) expandShortcut(ins InsertText) (Command, bool) {
	if ins.Text == "" || !e.sel.IsCaret() {
		return nil, false
	}
	at := e.sel.Focus
	if at.Block >= len(e.doc.Blocks) {
		return nil, false
	}
	b := e.doc.Blocks[at.Block]

	switch b.Type {
	case document.BlockParagraph:
		text := blockText(b)
		if at.Offset > len(text) {
			return nil, false
		}
		combined := append(append([]rune{}, text[:at.Offset]...), []rune(ins.Text)...)
		// Only a space arriving with this insertion completes a marker
		for i := at.Offset; i < len(combined); i++ {
			if combined[i] != ' ' {
				continue
			}
			marker := string(combined[:i])
			transform, ok := lookupShortcut(marker)
			if !ok {
				return nil, false
			}
			return markdownShortcut{text: ins.Text, marker: marker, transform: transform}, true
		}
	case document.BlockList:
		// "- [x]" typed key by key becomes a bullet list at the first
		// space; the checkbox marker is matched inside the item.
		if b.ListKind != document.ListUnordered || len(b.Items) == 0 {
			return nil, false
		}
		item := b.Items[len(b.Items)-1]
		itemText := string(blockText(document.Block{Children: item.Children}))
		switch itemText + ins.Text {
		case "[ ] ":
			return checkListShortcut{checked: false}, true
		case "[x] ", "[X] ":
			return checkListShortcut{checked: true}, true
		}
	}
	return nil, false
}
