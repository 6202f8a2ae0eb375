package sitetree

// Node is one output document. Directory pages carry their descendants in
// Children, Files and Media; leaves and resources leave them nil.
type Node struct {
	Name     string  `json:"name"`
	Data     string  `json:"data"`
	Children []*Node `json:"children,omitempty"`
	Files    []*Node `json:"files,omitempty"`
	Media    []*Node `json:"media,omitempty"`
}

// IsDirectory reports whether the node was emitted as a directory index.
func (n *Node) IsDirectory() bool {
	return n.Children != nil || n.Files != nil || n.Media != nil
}

// Flatten returns every document of the nested shape, parents before their
// children, children before files, files before media.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
		for _, f := range n.Files {
			walk(f)
		}
		for _, m := range n.Media {
			walk(m)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// Names returns the document names of nodes, flattened.
func Names(nodes []*Node) []string {
	flat := Flatten(nodes)
	names := make([]string, 0, len(flat))
	for _, n := range flat {
		names = append(names, n.Name)
	}
	return names
}
