// Package depgraph implements the dual dependency index — a point
// index for direct cell-to-cell references and a range index for
// aggregate-over-rectangle references — behind one Registry.
//
// Point edges are a plain producer->consumers map: cheap, and that's
// all an ADD/COPY/SLEEP formula needs. Aggregate formulas cover a
// whole rectangle, so instead of exploding SUM(A1:Z99) into thousands
// of point edges, the range side keeps one entry per aggregate
// formula in an R-tree and answers "who covers this point?" with a
// spatial query instead of a linear scan over every aggregate
// formula in the sheet.
package depgraph

import (
	"sheetcore/internal/cellid"

	"github.com/dhconnelly/rtreego"
)

// rangeEntry is the spatial payload for one aggregate formula: the
// cell it targets, and the rectangle of cells it reads.
type rangeEntry struct {
	target cellid.ID
	rect   cellid.Rect
}

// Bounds implements rtreego.Spatial.
func (e *rangeEntry) Bounds() *rtreego.Rect {
	w := float64(e.rect.MaxCol-e.rect.MinCol) + 1
	h := float64(e.rect.MaxRow-e.rect.MinRow) + 1
	r, err := rtreego.NewRect(rtreego.Point{float64(e.rect.MinCol), float64(e.rect.MinRow)}, []float64{w, h})
	if err != nil {
		// Both lengths are always >= 1 by construction; a degenerate
		// rect here means rect corners were never normalized.
		panic("depgraph: invalid range bounds: " + err.Error())
	}
	return r
}

const (
	minChildren = 25
	maxChildren = 50
)

// Registry is the combined point + range dependency index.
type Registry struct {
	point  map[cellid.ID]map[cellid.ID]struct{}
	ranges map[cellid.ID]*rangeEntry
	tree   *rtreego.Rtree
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		point:  make(map[cellid.ID]map[cellid.ID]struct{}),
		ranges: make(map[cellid.ID]*rangeEntry),
		tree:   rtreego.NewTree(2, minChildren, maxChildren),
	}
}

// AddPoint records that consumer names producer directly.
func (r *Registry) AddPoint(producer, consumer cellid.ID) {
	set, ok := r.point[producer]
	if !ok {
		set = make(map[cellid.ID]struct{})
		r.point[producer] = set
	}
	set[consumer] = struct{}{}
}

// RemovePoint undoes AddPoint. Idempotent: removing an edge that
// isn't there is a no-op.
func (r *Registry) RemovePoint(producer, consumer cellid.ID) {
	set, ok := r.point[producer]
	if !ok {
		return
	}
	delete(set, consumer)
	if len(set) == 0 {
		delete(r.point, producer)
	}
}

// AddRange records that target is an aggregate over the rectangle
// spanned by corner1 and corner2.
func (r *Registry) AddRange(target, corner1, corner2 cellid.ID) {
	entry := &rangeEntry{target: target, rect: cellid.RectFromCorners(corner1, corner2)}
	r.ranges[target] = entry
	r.tree.Insert(entry)
}

// RemoveRange undoes AddRange for target. No-op if target has no
// range edge.
func (r *Registry) RemoveRange(target cellid.ID) {
	entry, ok := r.ranges[target]
	if !ok {
		return
	}
	r.tree.Delete(entry)
	delete(r.ranges, target)
}

// ChildrenOf returns every consumer whose formula references id
// directly: point-dep targets, plus range-formula
// targets whose rectangle covers id. Order is unspecified; no
// duplicates.
func (r *Registry) ChildrenOf(id cellid.ID) []cellid.ID {
	seen := make(map[cellid.ID]struct{})
	var out []cellid.ID
	add := func(t cellid.ID) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for consumer := range r.point[id] {
		add(consumer)
	}

	col, row := id.Col(), id.Row()
	pt, err := rtreego.NewRect(rtreego.Point{float64(col), float64(row)}, []float64{1, 1})
	if err != nil {
		return out
	}
	for _, hit := range r.tree.SearchIntersect(pt) {
		entry := hit.(*rangeEntry)
		if entry.rect.Contains(id) {
			add(entry.target)
		}
	}
	return out
}
