package depgraph

import (
	"testing"

	"sheetcore/internal/cellid"
)

func TestPointEdges(t *testing.T) {
	r := New()
	producer := cellid.New(0, 0)
	consumer := cellid.New(1, 0)
	r.AddPoint(producer, consumer)

	children := r.ChildrenOf(producer)
	if len(children) != 1 || children[0] != consumer {
		t.Fatalf("ChildrenOf(producer) = %v, want [%v]", children, consumer)
	}

	r.RemovePoint(producer, consumer)
	if children := r.ChildrenOf(producer); len(children) != 0 {
		t.Errorf("ChildrenOf after RemovePoint = %v, want empty", children)
	}
}

func TestRemovePointIdempotent(t *testing.T) {
	r := New()
	// Removing an edge that was never added must not panic.
	r.RemovePoint(cellid.New(0, 0), cellid.New(1, 1))
}

func TestRangeEdgeCoversInterior(t *testing.T) {
	r := New()
	target := cellid.New(5, 5)
	r.AddRange(target, cellid.New(0, 0), cellid.New(2, 2))

	for _, pt := range []cellid.ID{cellid.New(0, 0), cellid.New(1, 1), cellid.New(2, 2)} {
		children := r.ChildrenOf(pt)
		if len(children) != 1 || children[0] != target {
			t.Errorf("ChildrenOf(%v) = %v, want [%v]", pt, children, target)
		}
	}
	if children := r.ChildrenOf(cellid.New(3, 3)); len(children) != 0 {
		t.Errorf("ChildrenOf outside rect = %v, want empty", children)
	}
}

func TestRemoveRange(t *testing.T) {
	r := New()
	target := cellid.New(5, 5)
	corner := cellid.New(0, 0)
	r.AddRange(target, corner, cellid.New(2, 2))
	r.RemoveRange(target)
	if children := r.ChildrenOf(corner); len(children) != 0 {
		t.Errorf("ChildrenOf after RemoveRange = %v, want empty", children)
	}
}

func TestChildrenOfMergesPointAndRangeNoDuplicates(t *testing.T) {
	r := New()
	p := cellid.New(1, 1)
	consumer := cellid.New(9, 9)
	r.AddPoint(p, consumer)
	r.AddRange(consumer, cellid.New(0, 0), cellid.New(3, 3))

	children := r.ChildrenOf(p)
	if len(children) != 1 || children[0] != consumer {
		t.Errorf("ChildrenOf = %v, want exactly one %v (deduplicated)", children, consumer)
	}
}
