// Package topo computes a safe recomputation order for a cascade of
// dependent cells: a recursive DFS from a root cell over the
// dependency registry's children relation, three-color vertex
// marking, reverse post-order output.
package topo

import (
	"errors"

	"sheetcore/internal/cellid"
)

// ErrCycle is returned when the walk from root reaches a cell that
// reaches itself through some chain of children.
var ErrCycle = errors.New("cycle detected")

// ChildrenOf returns the direct consumers of id — the same interface
// depgraph.Registry.ChildrenOf satisfies, kept narrow here so topo
// doesn't import depgraph directly.
type ChildrenOf func(id cellid.ID) []cellid.ID

type color uint8

const (
	white color = iota // unseen
	gray               // on-stack
	black              // finished
)

// Order returns a topological evaluation order rooted at root: root
// first, and every visited cell after all of its visited predecessors
// (producers). Only cells transitively reachable from root through
// children are included.
func Order(root cellid.ID, children ChildrenOf) ([]cellid.ID, error) {
	colors := make(map[cellid.ID]color)
	var post []cellid.ID

	var visit func(id cellid.ID) error
	visit = func(id cellid.ID) error {
		switch colors[id] {
		case gray:
			return ErrCycle
		case black:
			return nil
		}
		colors[id] = gray
		for _, child := range children(id) {
			if err := visit(child); err != nil {
				return err
			}
		}
		colors[id] = black
		post = append(post, id)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	// post is post-order (children before their parent, root last);
	// reverse it so root leads and every cell follows its producers.
	order := make([]cellid.ID, len(post))
	for i, id := range post {
		order[len(post)-1-i] = id
	}
	return order, nil
}
