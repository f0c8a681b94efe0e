package domain

// Category a node of the category tree.
// Depth-0 entries are group headers and cannot be assigned to posts.
type Category struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	ParentID *int       `json:"parentId,omitempty"`
	Children []Category `json:"children,omitempty"`
}

// CategoryOption a depth-indented flat entry derived from the tree,
// the shape the publish modal renders.
type CategoryOption struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Depth      int    `json:"depth"`
	Selectable bool   `json:"selectable"`
}

// FlattenCategories walks the tree depth-first and produces the indented
// flat list. Depth-0 entries stay non-selectable headers.
func FlattenCategories(tree []Category) []CategoryOption {
	var out []CategoryOption
	var walk func(nodes []Category, depth int)

	walk = func(nodes []Category, depth int) {
		for _, n := range nodes {
			out = append(out, CategoryOption{
				ID:         n.ID,
				Name:       n.Name,
				Depth:      depth,
				Selectable: depth >= 1,
			})
			walk(n.Children, depth+1)
		}
	}

	walk(tree, 0)
	return out
}
