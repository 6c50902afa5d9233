package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"logictree/internal/tree"
)

// buildTree creates a tree from a parent -> children id map, adding
// children in the listed order starting from the root.
func buildTree(shape map[tree.ID][]tree.ID) *tree.Node {
	root := tree.Initialize("root content")
	queue := []tree.ID{tree.RootID}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range shape[parent] {
			root = tree.AddChildWithID(root, parent, child)
			queue = append(queue, child)
		}
	}
	return root
}

func sample() *tree.Node {
	return buildTree(map[tree.ID][]tree.ID{
		tree.RootID: {"a", "b", "c"},
		"a":         {"a1", "a2"},
		"c":         {"c1"},
		"c1":        {"c11", "c12", "c13"},
	})
}

func TestSubtreeWidth(t *testing.T) {
	root := sample()

	tests := []struct {
		id   tree.ID
		want int
	}{
		{tree.RootID, 6},
		{"a", 2},
		{"b", 1},
		{"c", 3},
		{"c1", 3},
		{"c11", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			n, _ := tree.Find(root, tt.id)
			if got := SubtreeWidth(n); got != tt.want {
				t.Errorf("SubtreeWidth(%s) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestDepth(t *testing.T) {
	root := sample()

	tests := []struct {
		id   tree.ID
		want int
	}{
		{tree.RootID, 3},
		{"a", 1},
		{"b", 0},
		{"c", 2},
		{"c1", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			n, _ := tree.Find(root, tt.id)
			if got := Depth(n); got != tt.want {
				t.Errorf("Depth(%s) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestWidthAdditivityAndDepthCorrectness(t *testing.T) {
	tree.Walk(sample(), func(n *tree.Node, _ int) bool {
		if n.IsLeaf() {
			if SubtreeWidth(n) != 1 {
				t.Errorf("leaf %s width = %d", n.ID(), SubtreeWidth(n))
			}
			if Depth(n) != 0 {
				t.Errorf("leaf %s depth = %d", n.ID(), Depth(n))
			}
			return true
		}
		sum, deepest := 0, 0
		for _, c := range n.Children() {
			sum += SubtreeWidth(c)
			deepest = max(deepest, Depth(c))
		}
		if SubtreeWidth(n) != sum {
			t.Errorf("%s width = %d, want %d", n.ID(), SubtreeWidth(n), sum)
		}
		if Depth(n) != 1+deepest {
			t.Errorf("%s depth = %d, want %d", n.ID(), Depth(n), 1+deepest)
		}
		return true
	})
}

func TestCompute_Root(t *testing.T) {
	r := Compute(sample(), DefaultOptions())

	root, ok := r.Lookup(tree.RootID)
	if !ok {
		t.Fatal("root missing from layout")
	}
	if root.SharePercent != 100 {
		t.Errorf("root share = %v, want 100", root.SharePercent)
	}
	if root.Width != 1000 {
		t.Errorf("root width = %v, want 1000", root.Width)
	}
	if root.HasParentEdge {
		t.Error("root should not have a parent edge")
	}
	if !root.HasChildEdge {
		t.Error("root with children should have a children edge")
	}
	if root.ChildrenWidth != 6 {
		t.Errorf("root children width = %d, want 6", root.ChildrenWidth)
	}
	if r.Width != 6 || r.Depth != 3 {
		t.Errorf("result width/depth = %d/%d, want 6/3", r.Width, r.Depth)
	}
}

func TestCompute_SharesAndCaps(t *testing.T) {
	r := Compute(sample(), DefaultOptions())

	tests := []struct {
		id        tree.ID
		wantShare float64
		wantWidth float64
	}{
		// 3 siblings: 70/3 % of 1000
		{"a", 70.0 / 3, 1000 * (70.0 / 3) / 100},
		// 2 siblings under a (233.33 wide): 35%
		{"a1", 35, (1000 * (70.0 / 3) / 100) * 0.35},
		// only child under c: 70%
		{"c1", 70, (1000 * (70.0 / 3) / 100) * 0.70},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			nl, ok := r.Lookup(tt.id)
			if !ok {
				t.Fatalf("%s missing", tt.id)
			}
			if math.Abs(nl.SharePercent-tt.wantShare) > 1e-9 {
				t.Errorf("share = %v, want %v", nl.SharePercent, tt.wantShare)
			}
			if math.Abs(nl.Width-tt.wantWidth) > 1e-9 {
				t.Errorf("width = %v, want %v", nl.Width, tt.wantWidth)
			}
		})
	}
}

func TestCompute_MaxNodeWidthCap(t *testing.T) {
	root := buildTree(map[tree.ID][]tree.ID{tree.RootID: {"only"}})
	r := Compute(root, Options{CanvasWidth: 2000, MaxNodeWidth: 300, ShareBase: 70, WrapColumns: 3})

	nl, _ := r.Lookup("only")
	if nl.SharePercent != 70 {
		t.Errorf("share = %v, want 70", nl.SharePercent)
	}
	if nl.Width != 300 {
		t.Errorf("width = %v, want capped 300", nl.Width)
	}
}

func TestCompute_ShareNeverExceeds100(t *testing.T) {
	root := buildTree(map[tree.ID][]tree.ID{tree.RootID: {"only"}})
	r := Compute(root, Options{CanvasWidth: 100, MaxNodeWidth: 1000, ShareBase: 250, WrapColumns: 3})

	nl, _ := r.Lookup("only")
	if nl.SharePercent != 100 {
		t.Errorf("share = %v, want 100", nl.SharePercent)
	}
}

func TestCompute_WrapsAfterThreeChildren(t *testing.T) {
	ids := []tree.ID{"k0", "k1", "k2", "k3", "k4"}
	r := Compute(buildTree(map[tree.ID][]tree.ID{tree.RootID: ids}), DefaultOptions())

	type cell struct{ Row, Column int }
	var got []cell
	for _, nl := range r.Children(tree.RootID) {
		if !nl.Wrapped {
			t.Errorf("%s should be wrapped", nl.ID)
		}
		got = append(got, cell{nl.Row, nl.Column})
	}
	want := []cell{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("grid (-want +got):\n%s", diff)
	}
}

func TestCompute_NoWrapAtThreeChildren(t *testing.T) {
	r := Compute(sample(), DefaultOptions())
	for _, nl := range r.Children(tree.RootID) {
		if nl.Wrapped || nl.Row != 0 || nl.Column != nl.Index {
			t.Errorf("%s: wrapped=%v row=%d col=%d, want single row", nl.ID, nl.Wrapped, nl.Row, nl.Column)
		}
	}
}

func TestCompute_LevelsAndEdges(t *testing.T) {
	r := Compute(sample(), DefaultOptions())

	wantLevels := map[tree.ID]int{
		tree.RootID: 0, "a": 1, "b": 1, "c": 1,
		"a1": 2, "a2": 2, "c1": 2, "c11": 3, "c12": 3, "c13": 3,
	}
	if len(r.Nodes) != len(wantLevels) {
		t.Fatalf("got %d nodes, want %d", len(r.Nodes), len(wantLevels))
	}
	for _, nl := range r.Nodes {
		if nl.Level != wantLevels[nl.ID] {
			t.Errorf("%s level = %d, want %d", nl.ID, nl.Level, wantLevels[nl.ID])
		}
		if nl.HasParentEdge != (nl.Level > 0) {
			t.Errorf("%s parent edge = %v", nl.ID, nl.HasParentEdge)
		}
	}

	wantEdges := []Edge{
		{tree.RootID, "a"}, {"a", "a1"}, {"a", "a2"},
		{tree.RootID, "b"},
		{tree.RootID, "c"}, {"c", "c1"}, {"c1", "c11"}, {"c1", "c12"}, {"c1", "c13"},
	}
	if diff := cmp.Diff(wantEdges, r.Edges); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestCompute_PerNodeMetricsMatchHelpers(t *testing.T) {
	root := sample()
	r := Compute(root, DefaultOptions())

	tree.Walk(root, func(n *tree.Node, _ int) bool {
		nl, ok := r.Lookup(n.ID())
		if !ok {
			t.Errorf("%s missing", n.ID())
			return true
		}
		if nl.SubtreeWidth != SubtreeWidth(n) {
			t.Errorf("%s subtree width = %d, want %d", n.ID(), nl.SubtreeWidth, SubtreeWidth(n))
		}
		if nl.Depth != Depth(n) {
			t.Errorf("%s depth = %d, want %d", n.ID(), nl.Depth, Depth(n))
		}
		wantChildren := 0
		for _, c := range n.Children() {
			wantChildren += SubtreeWidth(c)
		}
		if nl.ChildrenWidth != wantChildren {
			t.Errorf("%s children width = %d, want %d", n.ID(), nl.ChildrenWidth, wantChildren)
		}
		return true
	})
}

func TestCompute_IgnoresContent(t *testing.T) {
	root := sample()
	renamed := tree.UpdateContent(root, "a1", "a much much longer label than before")

	before := Compute(root, DefaultOptions())
	after := Compute(renamed, DefaultOptions())

	if diff := cmp.Diff(before, after, cmpopts.IgnoreUnexported(Result{})); diff != "" {
		t.Errorf("layout depends on content (-before +after):\n%s", diff)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	root := sample()
	first := Compute(root, DefaultOptions())
	for i := 0; i < 5; i++ {
		again := Compute(root, DefaultOptions())
		if diff := cmp.Diff(first, again, cmpopts.IgnoreUnexported(Result{})); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestCompute_SingleRoot(t *testing.T) {
	r := Compute(tree.Initialize("alone"), DefaultOptions())
	if len(r.Nodes) != 1 || len(r.Edges) != 0 {
		t.Fatalf("nodes=%d edges=%d, want 1/0", len(r.Nodes), len(r.Edges))
	}
	nl := r.Nodes[0]
	if nl.HasChildEdge || nl.HasParentEdge || nl.ChildrenWidth != 0 || nl.SubtreeWidth != 1 {
		t.Errorf("unexpected leaf root layout: %+v", nl)
	}
}

func TestEngine_LayoutSubtree(t *testing.T) {
	root := sample()
	c, _ := tree.Find(root, "c")

	r := NewEngine(DefaultOptions()).Layout(c, tree.RootID, 1, 2, 3)
	nl, _ := r.Lookup("c")
	if nl.Level != 1 || nl.Index != 2 || nl.ParentID != tree.RootID || !nl.HasParentEdge {
		t.Errorf("subtree root placement wrong: %+v", nl)
	}
	leaf, _ := r.Lookup("c13")
	if leaf.Level != 3 {
		t.Errorf("c13 level = %d, want 3", leaf.Level)
	}
}

func TestCompute_ResultTotalsMatchHelpers(t *testing.T) {
	for _, root := range []*tree.Node{tree.Initialize("alone"), sample()} {
		r := Compute(root, DefaultOptions())
		if r.Width != SubtreeWidth(root) || r.Depth != Depth(root) {
			t.Errorf("%d nodes: width/depth = %d/%d, want %d/%d",
				tree.Count(root), r.Width, r.Depth, SubtreeWidth(root), Depth(root))
		}
	}

	c, _ := tree.Find(sample(), "c")
	r := NewEngine(DefaultOptions()).Layout(c, tree.RootID, 1, 2, 3)
	if r.Width != SubtreeWidth(c) || r.Depth != Depth(c) {
		t.Errorf("subtree width/depth = %d/%d, want %d/%d", r.Width, r.Depth, SubtreeWidth(c), Depth(c))
	}
}

func TestCompute_NilRoot(t *testing.T) {
	if SubtreeWidth(nil) != 0 || Depth(nil) != 0 {
		t.Errorf("nil helpers = %d/%d, want 0/0", SubtreeWidth(nil), Depth(nil))
	}
	r := Compute(nil, DefaultOptions())
	if len(r.Nodes) != 0 || len(r.Edges) != 0 || r.Width != 0 || r.Depth != 0 {
		t.Errorf("Compute(nil) = %+v, want empty", r)
	}
	if _, ok := r.Lookup(tree.RootID); ok {
		t.Error("Lookup on empty result should fail")
	}
}

func TestNewEngine_FillsDefaults(t *testing.T) {
	got := NewEngine(Options{}).Options()
	if diff := cmp.Diff(DefaultOptions(), got); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}
}

func TestResult_LookupWithoutIndex(t *testing.T) {
	r := Compute(sample(), DefaultOptions())
	decoded := Result{Nodes: r.Nodes, Edges: r.Edges}

	for _, id := range []tree.ID{tree.RootID, "c12"} {
		if _, ok := decoded.Lookup(id); !ok {
			t.Errorf("Lookup(%s) failed without index", id)
		}
	}
	if _, ok := decoded.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func BenchmarkCompute(b *testing.B) {
	root := tree.Initialize("bench")
	for i := 0; i < 50; i++ {
		parent := tree.ID(fmt.Sprintf("n%d", i))
		root = tree.AddChildWithID(root, tree.RootID, parent)
		for j := 0; j < 10; j++ {
			root = tree.AddChildWithID(root, parent, tree.ID(fmt.Sprintf("n%d-%d", i, j)))
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compute(root, DefaultOptions())
	}
}
