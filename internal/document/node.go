package document

import "encoding/json"

// Block node kinds
const (
	BlockParagraph      = "paragraph"
	BlockHeading        = "heading"
	BlockList           = "list"
	BlockCode           = "code"
	BlockQuote          = "quote"
	BlockHorizontalRule = "horizontalRule"
	BlockImage          = "image"
)

// Inline node kinds
const (
	InlineText      = "text"
	InlineLink      = "link"
	InlineLineBreak = "lineBreak"
)

// List kinds
const (
	ListUnordered = "unordered"
	ListOrdered   = "ordered"
	ListCheck     = "check"
)

// Paragraph alignments; the zero value means unaligned (left)
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

// Inline an inline node. Type discriminates; unused fields stay zero
// and are omitted from the canonical JSON.
type Inline struct {
	Type string `json:"type"`

	// text
	Text      string `json:"text,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Strike    bool   `json:"strike,omitempty"`
	Code      bool   `json:"code,omitempty"`

	// link
	Href     string   `json:"href,omitempty"`
	Target   string   `json:"target,omitempty"`
	Children []Inline `json:"children,omitempty"`
}

// SameFormat reports whether two text nodes carry identical formatting
func (n Inline) SameFormat(o Inline) bool {
	return n.Bold == o.Bold && n.Italic == o.Italic &&
		n.Underline == o.Underline && n.Strike == o.Strike && n.Code == o.Code
}

// ListItem one entry of a list block. Checked is meaningful only for
// check lists.
type ListItem struct {
	Checked  *bool    `json:"checked,omitempty"`
	Children []Inline `json:"children,omitempty"`
}

// Block a block node. Type discriminates; unused fields stay zero.
type Block struct {
	Type string `json:"type"`

	// heading
	Level int `json:"level,omitempty"`

	// list
	ListKind string     `json:"listKind,omitempty"`
	Items    []ListItem `json:"items,omitempty"`

	// code
	Language string `json:"language,omitempty"`

	// paragraph
	Align string `json:"align,omitempty"`

	// image
	Src     string `json:"src,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`

	// paragraph / heading / quote / code content
	Children []Inline `json:"children,omitempty"`
}

// Document the ordered block sequence of a post body
type Document struct {
	Version int     `json:"version"`
	Blocks  []Block `json:"blocks"`
}

// CurrentVersion canonical JSON schema version
const CurrentVersion = 1

// New returns an empty document
func New() Document {
	return Document{Version: CurrentVersion}
}

// Text builds a plain text node
func Text(s string) Inline {
	return Inline{Type: InlineText, Text: s}
}

// LineBreak builds a line break node
func LineBreak() Inline {
	return Inline{Type: InlineLineBreak}
}

// Paragraph builds a paragraph block
func Paragraph(children ...Inline) Block {
	return Block{Type: BlockParagraph, Children: children}
}

// Heading builds a heading block; level is clamped to 1..3
func Heading(level int, children ...Inline) Block {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return Block{Type: BlockHeading, Level: level, Children: children}
}

// Clone returns a structural copy sharing no slices with the receiver.
// History snapshots rely on this: entries must not retain references
// back into the live tree.
func (d Document) Clone() Document {
	out := Document{Version: d.Version}
	if d.Blocks == nil {
		return out
	}
	out.Blocks = make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		out.Blocks[i] = cloneBlock(b)
	}
	return out
}

func cloneBlock(b Block) Block {
	c := b
	c.Children = cloneInlines(b.Children)
	if b.Items != nil {
		c.Items = make([]ListItem, len(b.Items))
		for i, item := range b.Items {
			ci := ListItem{Children: cloneInlines(item.Children)}
			if item.Checked != nil {
				v := *item.Checked
				ci.Checked = &v
			}
			c.Items[i] = ci
		}
	}
	return c
}

func cloneInlines(nodes []Inline) []Inline {
	if nodes == nil {
		return nil
	}
	out := make([]Inline, len(nodes))
	for i, n := range nodes {
		c := n
		c.Children = cloneInlines(n.Children)
		out[i] = c
	}
	return out
}

// MarshalCanonical returns the canonical JSON form, the round-trip
// authority. Serialisation never fails for a well-formed tree.
func (d Document) MarshalCanonical() string {
	data, err := json.Marshal(d)
	if err != nil {
		return `{"version":1,"blocks":[]}`
	}
	return string(data)
}

// UnmarshalCanonical parses the canonical JSON form
func UnmarshalCanonical(data string) (Document, error) {
	var d Document
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return Document{}, err
	}
	if d.Version == 0 {
		d.Version = CurrentVersion
	}
	return d, nil
}

// Equal compares two documents on their canonical JSON forms
func (d Document) Equal(o Document) bool {
	return d.MarshalCanonical() == o.MarshalCanonical()
}

// IsEmpty reports whether the document holds no content blocks
func (d Document) IsEmpty() bool {
	return len(d.Blocks) == 0
}
