package document

// Normalize produces the canonical shape of a document:
//   - adjacent text nodes with identical formatting merge
//   - empty text nodes are dropped
//   - code blocks keep only plain text and line breaks
//   - list items and link children are normalized recursively
//
// Render and Parse both operate on normalized shapes; the round-trip
// law Parse(Render(T)) == T holds for normalized T.
func Normalize(d Document) Document {
	out := Document{Version: d.Version}
	if out.Version == 0 {
		out.Version = CurrentVersion
	}

	for _, b := range d.Blocks {
		out.Blocks = append(out.Blocks, normalizeBlock(b))
	}
	return out
}

func normalizeBlock(b Block) Block {
	c := cloneBlock(b)

	switch c.Type {
	case BlockCode:
		c.Children = stripFormatting(mergeInlines(c.Children))
	case BlockList:
		for i, item := range c.Items {
			c.Items[i].Children = mergeInlines(item.Children)
		}
		c.Children = nil
	case BlockHorizontalRule, BlockImage:
		c.Children = nil
	default:
		c.Children = mergeInlines(c.Children)
	}
	return c
}

func mergeInlines(nodes []Inline) []Inline {
	var out []Inline
	for _, n := range nodes {
		if n.Type == InlineText && n.Text == "" {
			continue
		}
		if n.Type == InlineLink {
			n.Children = mergeInlines(n.Children)
			if len(n.Children) == 0 {
				continue
			}
		}

		if n.Type == InlineText && len(out) > 0 {
			last := &out[len(out)-1]
			if last.Type == InlineText && last.SameFormat(n) {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// stripFormatting flattens code-block content to bare text runs
func stripFormatting(nodes []Inline) []Inline {
	var out []Inline
	for _, n := range nodes {
		switch n.Type {
		case InlineText:
			out = append(out, Text(n.Text))
		case InlineLineBreak:
			out = append(out, LineBreak())
		case InlineLink:
			out = append(out, stripFormatting(n.Children)...)
		}
	}
	return mergeInlines(out)
}
