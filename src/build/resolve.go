package build

import (
	"strings"

	"github.com/sofmeright/idebuild/src/host"
)

// FindProject searches the project tree depth-first, in host order, for a
// project whose display name equals name case-insensitively, and returns
// its unique name. The first pre-order match wins.
func FindProject(tree *host.ProjectTree, name string) (string, bool) {
	var found string
	ok := false
	Walk(tree, func(n host.ProjectNode) bool {
		if strings.EqualFold(n.DisplayName, name) {
			found, ok = n.UniqueName, true
			return false
		}
		return true
	})
	return found, ok
}

// Walk visits the tree in pre-order, each node once, until visit returns false.
// Indexes outside the node list are skipped, and a node reached twice is
// visited only the first time.
func Walk(tree *host.ProjectTree, visit func(host.ProjectNode) bool) {
	if tree == nil {
		return
	}
	seen := make([]bool, len(tree.Nodes))
	stack := make([]int, 0, len(tree.Roots))
	for i := len(tree.Roots) - 1; i >= 0; i-- {
		stack = append(stack, tree.Roots[i])
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if idx < 0 || idx >= len(tree.Nodes) || seen[idx] {
			continue
		}
		seen[idx] = true
		n := tree.Nodes[idx]
		if !visit(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}
