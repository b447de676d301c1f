package content

import "strconv"

// Node is a neutral structural representation of a rendered block. It carries
// no markup; clients map node types to their own presentation.
type Node struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Render converts a block into its structural node tree. Unsupported kinds
// render as a diagnostic placeholder carrying the unknown tag; they never
// abort rendering of sibling blocks.
func Render(b Block) *Node {
	switch b.Kind {
	case KindParagraph:
		return &Node{Type: "paragraph", Text: b.Text}

	case KindImage:
		return &Node{Type: "image", Attrs: map[string]string{"url": b.URL, "alt": b.Alt}}

	case KindTable:
		return renderTable(b)

	case KindList:
		n := &Node{Type: "list"}
		for _, item := range b.Items {
			n.Children = append(n.Children, &Node{Type: "item", Text: item})
		}
		return n

	case KindDropdown:
		n := &Node{Type: "dropdown", Attrs: map[string]string{"placeholder": b.Placeholder}}
		for _, opt := range b.Options {
			n.Children = append(n.Children, &Node{Type: "option", Text: opt})
		}
		return n

	case KindNumeric:
		return &Node{Type: "numeric", Attrs: map[string]string{"placeholder": b.Placeholder}}

	case KindMatrix, KindDSGrid:
		return renderGrid(b)

	default:
		tag := b.RawKind
		if tag == "" {
			tag = string(b.Kind)
		}
		return &Node{Type: "unsupported", Attrs: map[string]string{"kind": tag}}
	}
}

func renderTable(b Block) *Node {
	n := &Node{Type: "table"}
	if len(b.Headers) > 0 {
		head := &Node{Type: "header_row"}
		for _, h := range b.Headers {
			head.Children = append(head.Children, &Node{Type: "cell", Text: h})
		}
		n.Children = append(n.Children, head)
	}
	for _, row := range b.Rows {
		r := &Node{Type: "row"}
		for _, cell := range row {
			r.Children = append(r.Children, &Node{Type: "cell", Text: cell})
		}
		n.Children = append(n.Children, r)
	}
	return n
}

func renderGrid(b Block) *Node {
	n := &Node{
		Type: "grid",
		Attrs: map[string]string{
			"rows": strconv.Itoa(len(b.RowHeaders)),
			"cols": strconv.Itoa(len(b.ColHeaders)),
		},
	}
	for _, h := range b.RowHeaders {
		n.Children = append(n.Children, &Node{Type: "row_header", Text: h})
	}
	for _, h := range b.ColHeaders {
		n.Children = append(n.Children, &Node{Type: "col_header", Text: h})
	}
	return n
}
