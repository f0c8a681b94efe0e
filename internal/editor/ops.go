package editor

import "github.com/pyomin/bluecool-admin/internal/document"

// Inline-range helpers. All offsets are rune offsets into a block's
// flattened text (see blockText). Helpers return fresh slices; callers
// work on cloned trees, so partially applied edits never leak.

// mapTextRange applies f to every text node (or part of one) within
// [start, end), splitting nodes at the boundaries. Line breaks are
// atomic and pass through untouched. Links are descended into.
func mapTextRange(nodes []document.Inline, start, end int, f func(document.Inline) document.Inline) []document.Inline {
	out, _ := mapTextRangeAt(nodes, 0, start, end, f)
	return out
}

func mapTextRangeAt(nodes []document.Inline, base, start, end int, f func(document.Inline) document.Inline) ([]document.Inline, int) {
	var out []document.Inline
	offset := base

	for _, n := range nodes {
		switch n.Type {
		case document.InlineLineBreak:
			offset++
			out = append(out, n)

		case document.InlineLink:
			children, next := mapTextRangeAt(n.Children, offset, start, end, f)
			offset = next
			link := n
			link.Children = children
			out = append(out, link)

		case document.InlineText:
			runes := []rune(n.Text)
			nodeStart, nodeEnd := offset, offset+len(runes)
			offset = nodeEnd

			overlapStart := maxInt(start, nodeStart)
			overlapEnd := minInt(end, nodeEnd)
			if overlapStart >= overlapEnd {
				out = append(out, n)
				continue
			}

			if overlapStart > nodeStart {
				left := n
				left.Text = string(runes[:overlapStart-nodeStart])
				out = append(out, left)
			}

			mid := n
			mid.Text = string(runes[overlapStart-nodeStart : overlapEnd-nodeStart])
			out = append(out, f(mid))

			if overlapEnd < nodeEnd {
				right := n
				right.Text = string(runes[overlapEnd-nodeStart:])
				out = append(out, right)
			}
		}
	}
	return out, offset
}

// textRangeAll reports whether every text rune in [start, end) comes
// from a node satisfying pred. Used by toggles: only when the whole
// range already has a format is the toggle a removal.
func textRangeAll(nodes []document.Inline, start, end int, pred func(document.Inline) bool) bool {
	all := true
	inspect := func(n document.Inline) document.Inline {
		if !pred(n) {
			all = false
		}
		return n
	}
	mapTextRange(nodes, start, end, inspect)
	return all
}

// insertTextAt inserts plain text at offset, inheriting the format of
// the node it lands in.
func insertTextAt(nodes []document.Inline, offset int, text string) []document.Inline {
	out, inserted, _ := insertTextRec(nodes, 0, offset, text)
	if !inserted {
		out = append(out, document.Text(text))
	}
	return out
}

func insertTextRec(nodes []document.Inline, base, offset int, text string) ([]document.Inline, bool, int) {
	var out []document.Inline
	pos := base
	inserted := false

	for _, n := range nodes {
		switch n.Type {
		case document.InlineLineBreak:
			if !inserted && offset == pos {
				out = append(out, document.Text(text))
				inserted = true
			}
			pos++
			out = append(out, n)

		case document.InlineLink:
			children, ok, next := insertTextRec(n.Children, pos, offset, text)
			pos = next
			link := n
			link.Children = children
			out = append(out, link)
			inserted = inserted || ok

		case document.InlineText:
			runes := []rune(n.Text)
			nodeEnd := pos + len(runes)
			if !inserted && offset >= pos && offset <= nodeEnd {
				at := offset - pos
				grown := n
				grown.Text = string(runes[:at]) + text + string(runes[at:])
				out = append(out, grown)
				inserted = true
			} else {
				out = append(out, n)
			}
			pos = nodeEnd
		}
	}
	return out, inserted, pos
}

// deleteTextRange removes [start, end) from the inline sequence.
// Nodes emptied by the deletion disappear.
func deleteTextRange(nodes []document.Inline, start, end int) []document.Inline {
	mapped := mapTextRange(nodes, start, end, func(n document.Inline) document.Inline {
		n.Text = ""
		return n
	})
	return dropEmpty(mapped)
}

func dropEmpty(nodes []document.Inline) []document.Inline {
	var out []document.Inline
	for _, n := range nodes {
		if n.Type == document.InlineText && n.Text == "" {
			continue
		}
		if n.Type == document.InlineLink {
			n.Children = dropEmpty(n.Children)
			if len(n.Children) == 0 {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// splitInlinesAt cuts the sequence at offset into left and right parts
func splitInlinesAt(nodes []document.Inline, offset int) (left, right []document.Inline) {
	pos := 0
	for _, n := range nodes {
		size := inlineSize(n)
		switch {
		case pos+size <= offset:
			left = append(left, n)
		case pos >= offset:
			right = append(right, n)
		default:
			// The cut lands inside this node
			if n.Type == document.InlineText {
				runes := []rune(n.Text)
				at := offset - pos
				l, r := n, n
				l.Text = string(runes[:at])
				r.Text = string(runes[at:])
				if l.Text != "" {
					left = append(left, l)
				}
				if r.Text != "" {
					right = append(right, r)
				}
			} else if n.Type == document.InlineLink {
				cl, cr := splitInlinesAt(n.Children, offset-pos)
				if len(cl) > 0 {
					l := n
					l.Children = cl
					left = append(left, l)
				}
				if len(cr) > 0 {
					r := n
					r.Children = cr
					right = append(right, r)
				}
			}
		}
		pos += size
	}
	return left, right
}

func inlineSize(n document.Inline) int {
	switch n.Type {
	case document.InlineText:
		return len([]rune(n.Text))
	case document.InlineLineBreak:
		return 1
	case document.InlineLink:
		size := 0
		for _, c := range n.Children {
			size += inlineSize(c)
		}
		return size
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
