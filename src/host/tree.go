package host

// ProjectNode is one project in a solution. Solution folders are projects
// too; they carry their members as children.
type ProjectNode struct {
	DisplayName string
	UniqueName  string
	Children    []int // indexes into ProjectTree.Nodes
}

// ProjectTree is an owned snapshot of the host's project hierarchy, stored
// as an arena so traversal never calls back into the host.
type ProjectTree struct {
	Nodes []ProjectNode
	Roots []int
}

// NewProjectTree returns an empty tree.
func NewProjectTree() *ProjectTree {
	return &ProjectTree{}
}

// Add appends a project under parent and returns its index.
// A negative parent adds a top-level project.
func (t *ProjectTree) Add(parent int, displayName, uniqueName string) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, ProjectNode{DisplayName: displayName, UniqueName: uniqueName})
	if parent < 0 {
		t.Roots = append(t.Roots, idx)
	} else {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	}
	return idx
}

// Len returns the number of projects in the tree.
func (t *ProjectTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// TopLevel returns the top-level projects in host order.
func (t *ProjectTree) TopLevel() []ProjectNode {
	if t == nil {
		return nil
	}
	out := make([]ProjectNode, 0, len(t.Roots))
	for _, r := range t.Roots {
		out = append(out, t.Nodes[r])
	}
	return out
}
