package editor

import "github.com/pyomin/bluecool-admin/internal/document"

// Position a point in the tree: a block index plus a rune offset into
// the block's flattened text. Offsets survive inline-node splits, so
// format toggles that only restructure inline nodes preserve the
// selection.
type Position struct {
	Block  int
	Offset int
}

// Selection an anchor/focus pair. Anchor == Focus is a caret.
type Selection struct {
	Anchor Position
	Focus  Position
}

// Caret builds a collapsed selection
func Caret(block, offset int) Selection {
	p := Position{Block: block, Offset: offset}
	return Selection{Anchor: p, Focus: p}
}

// IsCaret reports whether the selection is collapsed
func (s Selection) IsCaret() bool {
	return s.Anchor == s.Focus
}

// ordered returns the selection endpoints in document order
func (s Selection) ordered() (Position, Position) {
	if s.Anchor.Block < s.Focus.Block {
		return s.Anchor, s.Focus
	}
	if s.Anchor.Block > s.Focus.Block {
		return s.Focus, s.Anchor
	}
	if s.Anchor.Offset <= s.Focus.Offset {
		return s.Anchor, s.Focus
	}
	return s.Focus, s.Anchor
}

// blockText flattens a block's inline content to runes; line breaks
// count as one rune ('\n') so offsets are well-defined across them.
func blockText(b document.Block) []rune {
	var out []rune
	var walk func(nodes []document.Inline)
	walk = func(nodes []document.Inline) {
		for _, n := range nodes {
			switch n.Type {
			case document.InlineText:
				out = append(out, []rune(n.Text)...)
			case document.InlineLineBreak:
				out = append(out, '\n')
			case document.InlineLink:
				walk(n.Children)
			}
		}
	}
	walk(b.Children)
	return out
}

// clampSelection snaps a selection into the document's bounds
func clampSelection(d document.Document, s Selection) Selection {
	s.Anchor = clampPosition(d, s.Anchor)
	s.Focus = clampPosition(d, s.Focus)
	return s
}

func clampPosition(d document.Document, p Position) Position {
	if len(d.Blocks) == 0 {
		return Position{}
	}
	if p.Block < 0 {
		p.Block = 0
	}
	if p.Block >= len(d.Blocks) {
		p.Block = len(d.Blocks) - 1
	}
	max := len(blockText(d.Blocks[p.Block]))
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset > max {
		p.Offset = max
	}
	return p
}
