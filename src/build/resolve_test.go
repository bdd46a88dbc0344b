package build

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sofmeright/idebuild/src/host"
)

// sampleTree:
//
//	App
//	Libs
//	  Core
//	    Widgets
//	  Widgets      (duplicate, later in pre-order)
//	Tests
func sampleTree() *host.ProjectTree {
	t := host.NewProjectTree()
	t.Add(-1, "App", `App\App.csproj`)
	libs := t.Add(-1, "Libs", "Libs")
	core := t.Add(libs, "Core", `Libs\Core\Core.csproj`)
	t.Add(core, "Widgets", `Libs\Core\Widgets\Widgets.csproj`)
	t.Add(libs, "Widgets", `Libs\Widgets\Widgets.csproj`)
	t.Add(-1, "Tests", `Tests\Tests.csproj`)
	return t
}

func TestFindProject(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"App", `App\App.csproj`, true},
		{"tests", `Tests\Tests.csproj`, true},
		{"CORE", `Libs\Core\Core.csproj`, true},
		{"widgets", `Libs\Core\Widgets\Widgets.csproj`, true},
		{"Gadgets", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindProject(tree, tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindProjectIdempotent(t *testing.T) {
	tree := sampleTree()
	a, okA := FindProject(tree, "Widgets")
	b, okB := FindProject(tree, "Widgets")
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestWalkPreOrderVisitsEachNodeOnce(t *testing.T) {
	var order []string
	Walk(sampleTree(), func(n host.ProjectNode) bool {
		order = append(order, n.UniqueName)
		return true
	})
	assert.Equal(t, []string{
		`App\App.csproj`,
		"Libs",
		`Libs\Core\Core.csproj`,
		`Libs\Core\Widgets\Widgets.csproj`,
		`Libs\Widgets\Widgets.csproj`,
		`Tests\Tests.csproj`,
	}, order)
}

func TestWalkStopsAtFirstMatch(t *testing.T) {
	visited := 0
	Walk(sampleTree(), func(n host.ProjectNode) bool {
		visited++
		return n.DisplayName != "Core"
	})
	assert.Equal(t, 3, visited)
}

func TestWalkNilAndEmpty(t *testing.T) {
	called := false
	Walk(nil, func(host.ProjectNode) bool { called = true; return true })
	Walk(host.NewProjectTree(), func(host.ProjectNode) bool { called = true; return true })
	assert.False(t, called)

	_, ok := FindProject(nil, "App")
	assert.False(t, ok)
}

func TestWalkSkipsBadIndexes(t *testing.T) {
	tree := sampleTree()
	tree.Roots = append([]int{42, -3}, tree.Roots...)
	tree.Nodes[0].Children = []int{len(tree.Nodes)}

	visited := 0
	assert.NotPanics(t, func() {
		Walk(tree, func(host.ProjectNode) bool { visited++; return true })
	})
	assert.Equal(t, len(tree.Nodes), visited)
}

func TestWalkStopsOnCycle(t *testing.T) {
	tree := host.NewProjectTree()
	a := tree.Add(-1, "A", "a")
	b := tree.Add(a, "B", "b")
	tree.Nodes[b].Children = append(tree.Nodes[b].Children, a)
	tree.Roots = append(tree.Roots, b)

	var order []string
	Walk(tree, func(n host.ProjectNode) bool {
		order = append(order, n.UniqueName)
		return true
	})
	assert.Equal(t, []string{"a", "b"}, order)

	_, ok := FindProject(tree, "missing")
	assert.False(t, ok)
}

func TestFindProjectDeepChain(t *testing.T) {
	tree := host.NewProjectTree()
	parent := -1
	for i := 0; i < 500; i++ {
		parent = tree.Add(parent, "Folder", "folder")
	}
	tree.Add(parent, "Leaf", "leaf-unique")

	got, ok := FindProject(tree, "leaf")
	assert.True(t, ok)
	assert.Equal(t, "leaf-unique", got)
}
