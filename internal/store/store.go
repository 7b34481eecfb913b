// Package store implements the cell store: a sparse map from cell id
// to cell record, so that an untouched cell in a grid of millions of
// cells costs nothing until it is written.
package store

import (
	"errors"

	"sheetcore/internal/cellid"
	"sheetcore/internal/descriptor"
	"sheetcore/internal/value"
)

// ErrOutOfRange is returned by any accessor given an id outside the
// store's configured bounds.
var ErrOutOfRange = errors.New("cell out of range")

// record is the data kept for a cell that has been touched at least
// once. Cells that were never written are not materialized — reads of
// them are synthesized as value.Zero by Get.
type record struct {
	val   value.Value
	err   bool
	dep   *descriptor.Descriptor
	hasDep bool
}

// Store is the sparse cell map, bounded by b.
type Store struct {
	bounds cellid.Bounds
	cells  map[cellid.ID]*record
}

// New creates a store for a grid of the given dimensions.
func New(b cellid.Bounds) *Store {
	return &Store{bounds: b, cells: make(map[cellid.ID]*record)}
}

// Bounds returns the store's configured grid dimensions.
func (s *Store) Bounds() cellid.Bounds { return s.bounds }

// InRange reports whether id is addressable in this store.
func (s *Store) InRange(id cellid.ID) bool { return s.bounds.InRange(id) }

// IsInitialized reports whether id has ever been written.
func (s *Store) IsInitialized(id cellid.ID) bool {
	_, ok := s.cells[id]
	return ok
}

// Get returns id's current value. An in-range but uninitialized cell
// reads as Int(0) without being materialized, so large sparse
// aggregates stay cheap.
func (s *Store) Get(id cellid.ID) (value.Value, error) {
	if !s.bounds.InRange(id) {
		return value.Value{}, ErrOutOfRange
	}
	rec, ok := s.cells[id]
	if !ok {
		return value.Zero, nil
	}
	return rec.val, nil
}

// HasError reports id's error flag. Uninitialized cells are never
// errored.
func (s *Store) HasError(id cellid.ID) (bool, error) {
	if !s.bounds.InRange(id) {
		return false, ErrOutOfRange
	}
	rec, ok := s.cells[id]
	if !ok {
		return false, nil
	}
	return rec.err, nil
}

func (s *Store) ensure(id cellid.ID) *record {
	rec, ok := s.cells[id]
	if !ok {
		rec = &record{val: value.Zero}
		s.cells[id] = rec
	}
	return rec
}

// SetValue overwrites id's value. It does not touch the error flag —
// callers that want to clear it call SetError explicitly, per the
// evaluator's contract.
func (s *Store) SetValue(id cellid.ID, v value.Value) error {
	if !s.bounds.InRange(id) {
		return ErrOutOfRange
	}
	s.ensure(id).val = v
	return nil
}

// SetInt is a convenience wrapper around SetValue for integer literals.
func (s *Store) SetInt(id cellid.ID, i int32) error {
	return s.SetValue(id, value.Int(i))
}

// SetFloat is a convenience wrapper around SetValue for float results.
func (s *Store) SetFloat(id cellid.ID, f float32) error {
	return s.SetValue(id, value.Float(f))
}

// SetError sets id's error flag.
func (s *Store) SetError(id cellid.ID, errFlag bool) error {
	if !s.bounds.InRange(id) {
		return ErrOutOfRange
	}
	s.ensure(id).err = errFlag
	return nil
}

// GetDep returns id's current descriptor, if any.
func (s *Store) GetDep(id cellid.ID) (descriptor.Descriptor, bool) {
	rec, ok := s.cells[id]
	if !ok || !rec.hasDep {
		return descriptor.Descriptor{}, false
	}
	return *rec.dep, true
}

// ReplaceDep installs d as id's descriptor and returns the prior one,
// if any. It does not touch the registry — callers (the dispatcher)
// own rewiring the point/range indices around this call.
func (s *Store) ReplaceDep(id cellid.ID, d descriptor.Descriptor) (descriptor.Descriptor, bool) {
	rec := s.ensure(id)
	prior, hadPrior := descriptor.Descriptor{}, rec.hasDep
	if hadPrior {
		prior = *rec.dep
	}
	dCopy := d
	rec.dep = &dCopy
	rec.hasDep = true
	return prior, hadPrior
}

// ClearDep removes id's descriptor, if any, returning it.
func (s *Store) ClearDep(id cellid.ID) (descriptor.Descriptor, bool) {
	rec, ok := s.cells[id]
	if !ok || !rec.hasDep {
		return descriptor.Descriptor{}, false
	}
	prior := *rec.dep
	rec.dep = nil
	rec.hasDep = false
	return prior, true
}
