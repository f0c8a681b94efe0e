package editor

import (
	"fmt"

	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/internal/document"
)

// Command a single edit applied atomically through Dispatch. Commands
// mutate the cloned tree in place; returning an error leaves the
// editor state untouched.
type Command interface {
	Name() string
	apply(d *document.Document, sel *Selection) error
}

// Text format names accepted by ToggleFormat
const (
	FormatBold      = "bold"
	FormatItalic    = "italic"
	FormatUnderline = "underline"
	FormatStrike    = "strike"
	FormatCode      = "code"
)

func formatGet(n document.Inline, format string) bool {
	switch format {
	case FormatBold:
		return n.Bold
	case FormatItalic:
		return n.Italic
	case FormatUnderline:
		return n.Underline
	case FormatStrike:
		return n.Strike
	case FormatCode:
		return n.Code
	}
	return false
}

func formatSet(n *document.Inline, format string, v bool) {
	switch format {
	case FormatBold:
		n.Bold = v
	case FormatItalic:
		n.Italic = v
	case FormatUnderline:
		n.Underline = v
	case FormatStrike:
		n.Strike = v
	case FormatCode:
		n.Code = v
	}
}

// blockRange yields the selected offset window within block i for a
// selection spanning [from, to].
func blockRange(d document.Document, from, to Position, i int) (start, end int) {
	size := len(blockText(d.Blocks[i]))
	start, end = 0, size
	if i == from.Block {
		start = from.Offset
	}
	if i == to.Block {
		end = to.Offset
	}
	return start, end
}

// ToggleFormat toggles a text format over the selection. When every
// rune in range already carries the format it is removed, otherwise
// applied. A caret toggles the whole block.
type ToggleFormat struct {
	Format string
}

func (c ToggleFormat) Name() string { return "toggle-format:" + c.Format }

func (c ToggleFormat) apply(d *document.Document, sel *Selection) error {
	from, to := c.bounds(*d, *sel)

	// Removal only when the entire range is already formatted
	remove := true
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		b := d.Blocks[i]
		if b.Type == document.BlockCode || b.Type == document.BlockHorizontalRule || b.Type == document.BlockImage {
			continue
		}
		start, end := blockRange(*d, from, to, i)
		if b.Type == document.BlockList {
			for _, item := range b.Items {
				if !textRangeAll(item.Children, 0, inlinesSize(item.Children), func(n document.Inline) bool {
					return formatGet(n, c.Format)
				}) {
					remove = false
				}
			}
			continue
		}
		if !textRangeAll(b.Children, start, end, func(n document.Inline) bool {
			return formatGet(n, c.Format)
		}) {
			remove = false
		}
	}

	set := func(n document.Inline) document.Inline {
		formatSet(&n, c.Format, !remove)
		return n
	}
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		b := &d.Blocks[i]
		if b.Type == document.BlockCode || b.Type == document.BlockHorizontalRule || b.Type == document.BlockImage {
			continue
		}
		if b.Type == document.BlockList {
			for j := range b.Items {
				b.Items[j].Children = mapTextRange(b.Items[j].Children, 0, inlinesSize(b.Items[j].Children), set)
			}
			continue
		}
		start, end := blockRange(*d, from, to, i)
		b.Children = mapTextRange(b.Children, start, end, set)
	}
	return nil
}

func (c ToggleFormat) bounds(d document.Document, sel Selection) (Position, Position) {
	from, to := sel.ordered()
	if sel.IsCaret() && from.Block < len(d.Blocks) {
		from.Offset = 0
		to.Offset = len(blockText(d.Blocks[to.Block]))
	}
	return from, to
}

func inlinesSize(nodes []document.Inline) int {
	size := 0
	for _, n := range nodes {
		size += inlineSize(n)
	}
	return size
}

// SetBlockType converts the selected blocks to a paragraph, heading,
// quote or code block. List items are flattened into the new type,
// one block per item.
type SetBlockType struct {
	Type  string
	Level int
}

func (c SetBlockType) Name() string { return "set-block-type:" + c.Type }

func (c SetBlockType) apply(d *document.Document, sel *Selection) error {
	switch c.Type {
	case document.BlockParagraph, document.BlockHeading, document.BlockQuote, document.BlockCode:
	default:
		return fmt.Errorf("editor: cannot convert block to %q", c.Type)
	}

	from, to := sel.ordered()
	var out []document.Block
	out = append(out, d.Blocks[:from.Block]...)
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		b := d.Blocks[i]
		if b.Type == document.BlockHorizontalRule || b.Type == document.BlockImage {
			out = append(out, b)
			continue
		}
		if b.Type == document.BlockList {
			for _, item := range b.Items {
				out = append(out, c.make(item.Children))
			}
			continue
		}
		out = append(out, c.make(b.Children))
	}
	if to.Block+1 < len(d.Blocks) {
		out = append(out, d.Blocks[to.Block+1:]...)
	}
	d.Blocks = out
	return nil
}

func (c SetBlockType) make(children []document.Inline) document.Block {
	switch c.Type {
	case document.BlockHeading:
		return document.Heading(c.Level, children...)
	case document.BlockQuote:
		return document.Block{Type: document.BlockQuote, Children: children}
	case document.BlockCode:
		return document.Block{Type: document.BlockCode, Children: children}
	}
	return document.Paragraph(children...)
}

// ToggleList wraps the selected blocks into a single list of Kind, or
// unwraps them back to paragraphs when they already form such a list.
type ToggleList struct {
	Kind string
}

func (c ToggleList) Name() string { return "toggle-list:" + c.Kind }

func (c ToggleList) apply(d *document.Document, sel *Selection) error {
	switch c.Kind {
	case document.ListUnordered, document.ListOrdered, document.ListCheck:
	default:
		return fmt.Errorf("editor: unknown list kind %q", c.Kind)
	}

	from, to := sel.ordered()
	if from.Block >= len(d.Blocks) {
		return nil
	}

	allSame := true
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		if d.Blocks[i].Type != document.BlockList || d.Blocks[i].ListKind != c.Kind {
			allSame = false
		}
	}

	var out []document.Block
	out = append(out, d.Blocks[:from.Block]...)

	if allSame {
		for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
			for _, item := range d.Blocks[i].Items {
				out = append(out, document.Paragraph(item.Children...))
			}
		}
	} else {
		list := document.Block{Type: document.BlockList, ListKind: c.Kind}
		for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
			b := d.Blocks[i]
			if b.Type == document.BlockList {
				for _, item := range b.Items {
					list.Items = append(list.Items, c.item(item.Children, item.Checked))
				}
				continue
			}
			if b.Type == document.BlockHorizontalRule || b.Type == document.BlockImage {
				continue
			}
			list.Items = append(list.Items, c.item(b.Children, nil))
		}
		if len(list.Items) == 0 {
			list.Items = []document.ListItem{c.item(nil, nil)}
		}
		out = append(out, list)
	}

	if to.Block+1 < len(d.Blocks) {
		out = append(out, d.Blocks[to.Block+1:]...)
	}
	d.Blocks = out
	*sel = clampSelection(*d, Caret(from.Block, 0))
	return nil
}

func (c ToggleList) item(children []document.Inline, checked *bool) document.ListItem {
	item := document.ListItem{Children: children}
	if c.Kind == document.ListCheck {
		if checked == nil {
			v := false
			checked = &v
		}
		item.Checked = checked
	}
	return item
}

// SetAlignment aligns the selected paragraph and heading blocks.
// AlignLeft clears the attribute, keeping the canonical form minimal.
type SetAlignment struct {
	Align string
}

func (c SetAlignment) Name() string { return "set-alignment:" + c.Align }

func (c SetAlignment) apply(d *document.Document, sel *Selection) error {
	switch c.Align {
	case document.AlignLeft, document.AlignCenter, document.AlignRight, document.AlignJustify:
	default:
		return fmt.Errorf("editor: unknown alignment %q", c.Align)
	}
	align := c.Align
	if align == document.AlignLeft {
		align = ""
	}
	from, to := sel.ordered()
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		switch d.Blocks[i].Type {
		case document.BlockParagraph, document.BlockHeading:
			d.Blocks[i].Align = align
		}
	}
	return nil
}

// InsertRule inserts a horizontal rule after the caret block and moves
// the caret into the block that follows it.
type InsertRule struct{}

func (InsertRule) Name() string { return "insert-rule" }

func (InsertRule) apply(d *document.Document, sel *Selection) error {
	at := sel.Focus.Block
	if len(d.Blocks) == 0 {
		d.Blocks = []document.Block{document.Paragraph()}
		at = 0
	}
	rule := document.Block{Type: document.BlockHorizontalRule}
	rest := append([]document.Block{rule}, d.Blocks[at+1:]...)
	d.Blocks = append(d.Blocks[:at+1], rest...)

	if at+2 >= len(d.Blocks) {
		d.Blocks = append(d.Blocks, document.Paragraph())
	}
	*sel = Caret(at+2, 0)
	return nil
}

// InsertLink wraps the selected text in a link. The target must pass
// the shared link safety check; selections spanning blocks are
// rejected.
type InsertLink struct {
	Href   string
	Target string
}

func (c InsertLink) Name() string { return "insert-link" }

func (c InsertLink) apply(d *document.Document, sel *Selection) error {
	if err := common.ValidateLink(c.Href); err != nil {
		return err
	}
	if sel.IsCaret() {
		return fmt.Errorf("editor: link needs a selection")
	}
	from, to := sel.ordered()
	if from.Block != to.Block {
		return fmt.Errorf("editor: link selection must stay within one block")
	}
	b := &d.Blocks[from.Block]
	switch b.Type {
	case document.BlockParagraph, document.BlockHeading, document.BlockQuote:
	default:
		return fmt.Errorf("editor: cannot link inside a %s block", b.Type)
	}

	left, rest := splitInlinesAt(b.Children, from.Offset)
	mid, right := splitInlinesAt(rest, to.Offset-from.Offset)

	link := document.Inline{
		Type:     document.InlineLink,
		Href:     c.Href,
		Target:   c.Target,
		Children: unwrapLinks(mid),
	}
	if len(link.Children) == 0 {
		return fmt.Errorf("editor: link selection holds no text")
	}
	b.Children = append(append(left, link), right...)
	return nil
}

// unwrapLinks hoists nested link children; links never nest
func unwrapLinks(nodes []document.Inline) []document.Inline {
	var out []document.Inline
	for _, n := range nodes {
		if n.Type == document.InlineLink {
			out = append(out, unwrapLinks(n.Children)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// SetCodeLanguage sets the syntax language of the caret's code block
type SetCodeLanguage struct {
	Language string
}

func (c SetCodeLanguage) Name() string { return "set-code-language:" + c.Language }

func (c SetCodeLanguage) apply(d *document.Document, sel *Selection) error {
	at := sel.Focus.Block
	if at >= len(d.Blocks) || d.Blocks[at].Type != document.BlockCode {
		return fmt.Errorf("editor: caret is not in a code block")
	}
	d.Blocks[at].Language = c.Language
	return nil
}

// InsertImage inserts an image block after the caret block. The editor
// only dispatches this once the upload has produced a served URL.
type InsertImage struct {
	Src     string
	Alt     string
	Caption string
}

func (c InsertImage) Name() string { return "insert-image" }

func (c InsertImage) apply(d *document.Document, sel *Selection) error {
	if c.Src == "" {
		return fmt.Errorf("editor: image needs a source URL")
	}
	at := sel.Focus.Block
	img := document.Block{Type: document.BlockImage, Src: c.Src, Alt: c.Alt, Caption: c.Caption}
	if len(d.Blocks) == 0 {
		d.Blocks = []document.Block{img, document.Paragraph()}
		*sel = Caret(1, 0)
		return nil
	}
	rest := append([]document.Block{img}, d.Blocks[at+1:]...)
	d.Blocks = append(d.Blocks[:at+1], rest...)
	*sel = clampSelection(*d, Caret(at+2, 0))
	return nil
}

// InsertText inserts text at the caret, replacing the selection first
// when one is open.
type InsertText struct {
	Text string
}

func (c InsertText) Name() string { return "insert-text" }

func (c InsertText) apply(d *document.Document, sel *Selection) error {
	if c.Text == "" {
		return fmt.Errorf("editor: empty insertion")
	}
	if !sel.IsCaret() {
		deleteSelection(d, sel)
	}
	at := sel.Focus
	if len(d.Blocks) == 0 {
		d.Blocks = []document.Block{document.Paragraph()}
		at = Position{}
	}
	b := &d.Blocks[at.Block]
	switch b.Type {
	case document.BlockHorizontalRule, document.BlockImage:
		return fmt.Errorf("editor: cannot type into a %s block", b.Type)
	case document.BlockList:
		if len(b.Items) == 0 {
			b.Items = []document.ListItem{{}}
		}
		last := len(b.Items) - 1
		b.Items[last].Children = insertTextAt(b.Items[last].Children, inlinesSize(b.Items[last].Children), c.Text)
	default:
		b.Children = insertTextAt(b.Children, at.Offset, c.Text)
	}
	*sel = Caret(at.Block, at.Offset+len([]rune(c.Text)))
	return nil
}

// InsertParagraph splits the caret block in two. In a list it appends
// a fresh item instead.
type InsertParagraph struct{}

func (InsertParagraph) Name() string { return "insert-paragraph" }

func (InsertParagraph) apply(d *document.Document, sel *Selection) error {
	if !sel.IsCaret() {
		deleteSelection(d, sel)
	}
	at := sel.Focus
	if len(d.Blocks) == 0 {
		d.Blocks = []document.Block{document.Paragraph(), document.Paragraph()}
		*sel = Caret(1, 0)
		return nil
	}
	b := d.Blocks[at.Block]
	switch b.Type {
	case document.BlockList:
		item := document.ListItem{}
		if b.ListKind == document.ListCheck {
			v := false
			item.Checked = &v
		}
		d.Blocks[at.Block].Items = append(d.Blocks[at.Block].Items, item)
		return nil
	case document.BlockHorizontalRule, document.BlockImage:
		rest := append([]document.Block{document.Paragraph()}, d.Blocks[at.Block+1:]...)
		d.Blocks = append(d.Blocks[:at.Block+1], rest...)
		*sel = Caret(at.Block+1, 0)
		return nil
	}

	left, right := splitInlinesAt(b.Children, at.Offset)
	first := b
	first.Children = left
	second := b
	second.Children = right
	// Splitting a heading continues as a paragraph, matching how
	// pressing Enter at the end of a title should behave
	if b.Type == document.BlockHeading && len(right) == 0 {
		second = document.Paragraph()
	}

	rest := append([]document.Block{second}, d.Blocks[at.Block+1:]...)
	d.Blocks = append(append(d.Blocks[:at.Block], first), rest...)
	*sel = Caret(at.Block+1, 0)
	return nil
}

// InsertLineBreak inserts a soft break at the caret
type InsertLineBreak struct{}

func (InsertLineBreak) Name() string { return "insert-line-break" }

func (InsertLineBreak) apply(d *document.Document, sel *Selection) error {
	if !sel.IsCaret() {
		deleteSelection(d, sel)
	}
	at := sel.Focus
	if len(d.Blocks) == 0 {
		d.Blocks = []document.Block{document.Paragraph()}
		at = Position{}
	}
	b := &d.Blocks[at.Block]
	switch b.Type {
	case document.BlockHorizontalRule, document.BlockImage, document.BlockList:
		return fmt.Errorf("editor: cannot break inside a %s block", b.Type)
	}
	left, right := splitInlinesAt(b.Children, at.Offset)
	b.Children = append(append(left, document.LineBreak()), right...)
	*sel = Caret(at.Block, at.Offset+1)
	return nil
}

// DeleteBackward removes the selection, or the rune before the caret.
// At the start of a block it merges the block into the previous one.
type DeleteBackward struct{}

func (DeleteBackward) Name() string { return "delete-backward" }

func (DeleteBackward) apply(d *document.Document, sel *Selection) error {
	if !sel.IsCaret() {
		deleteSelection(d, sel)
		return nil
	}
	at := sel.Focus
	if len(d.Blocks) == 0 {
		return nil
	}
	if at.Offset > 0 {
		b := &d.Blocks[at.Block]
		b.Children = deleteTextRange(b.Children, at.Offset-1, at.Offset)
		*sel = Caret(at.Block, at.Offset-1)
		return nil
	}
	if at.Block == 0 {
		return nil
	}

	prev := &d.Blocks[at.Block-1]
	cur := d.Blocks[at.Block]
	switch {
	case prev.Type == document.BlockHorizontalRule || prev.Type == document.BlockImage:
		// Deleting into a rule or image removes it
		d.Blocks = append(d.Blocks[:at.Block-1], d.Blocks[at.Block:]...)
		*sel = Caret(at.Block-1, 0)
	case prev.Type == document.BlockList || cur.Type == document.BlockList:
		*sel = clampSelection(*d, Caret(at.Block-1, len(blockText(*prev))))
	default:
		offset := len(blockText(*prev))
		prev.Children = append(prev.Children, cur.Children...)
		d.Blocks = append(d.Blocks[:at.Block], d.Blocks[at.Block+1:]...)
		*sel = Caret(at.Block-1, offset)
	}
	return nil
}

// deleteSelection removes the selected range, merging boundary blocks
// when the selection spans more than one, and collapses the selection
// to its start.
func deleteSelection(d *document.Document, sel *Selection) {
	from, to := sel.ordered()
	if from.Block >= len(d.Blocks) {
		*sel = clampSelection(*d, Caret(from.Block, from.Offset))
		return
	}

	if from.Block == to.Block {
		b := &d.Blocks[from.Block]
		if b.Type != document.BlockList && b.Type != document.BlockHorizontalRule && b.Type != document.BlockImage {
			b.Children = deleteTextRange(b.Children, from.Offset, to.Offset)
		}
		*sel = Caret(from.Block, from.Offset)
		return
	}

	first := d.Blocks[from.Block]
	last := d.Blocks[to.Block]

	if first.Type != document.BlockList && first.Type != document.BlockHorizontalRule && first.Type != document.BlockImage {
		first.Children, _ = splitInlinesAt(first.Children, from.Offset)
	}
	if last.Type != document.BlockList && last.Type != document.BlockHorizontalRule && last.Type != document.BlockImage &&
		first.Type != document.BlockList && first.Type != document.BlockHorizontalRule && first.Type != document.BlockImage {
		_, tail := splitInlinesAt(last.Children, to.Offset)
		first.Children = append(first.Children, tail...)
	}

	var out []document.Block
	out = append(out, d.Blocks[:from.Block]...)
	out = append(out, first)
	if to.Block+1 < len(d.Blocks) {
		out = append(out, d.Blocks[to.Block+1:]...)
	}
	d.Blocks = out
	*sel = Caret(from.Block, from.Offset)
}
