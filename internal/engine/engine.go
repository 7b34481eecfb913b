// Package engine implements the command dispatcher: it ingests a
// parsed command, snapshots and atomically rewires a cell's
// dependencies, computes a topological evaluation order rooted at the
// target, and walks it through the evaluator — rolling back to the
// pre-command state whenever a cycle is detected.
//
// A command either fully commits or has no effect at all: dependency
// rewiring, the cycle check, and evaluation all happen under one
// rollback boundary so a rejected edit never leaves the sheet
// half-updated.
package engine

import (
	"sync"

	"sheetcore/internal/cellid"
	"sheetcore/internal/command"
	"sheetcore/internal/depgraph"
	"sheetcore/internal/descriptor"
	"sheetcore/internal/eval"
	"sheetcore/internal/store"
	"sheetcore/internal/topo"
	"sheetcore/internal/value"
)

// Engine owns the cell store, the dependency registry, and the
// view-only state (viewport, running/display flags) the unified
// command stream also carries.
type Engine struct {
	mu sync.RWMutex

	Store *store.Store
	Reg   *depgraph.Registry
	Eval  *eval.Evaluator

	Running        bool
	DisplayEnabled bool
	TopLeft        cellid.ID

	// OnEvaluated, if set, is called with every cell Dispatch just
	// recomputed (including the target itself), after each successful
	// command — the seam internal/liveview hooks to broadcast deltas.
	OnEvaluated func([]cellid.ID)
}

// New creates an engine over a grid of the given dimensions.
func New(numRows, numCols int) *Engine {
	s := store.New(cellid.Bounds{NumRows: numRows, NumCols: numCols})
	return &Engine{
		Store:          s,
		Reg:            depgraph.New(),
		Eval:           eval.New(s),
		Running:        true,
		DisplayEnabled: true,
	}
}

// Get reads a cell's current value, safe to call concurrently with
// other readers (but a reader must not alias a mutable handle across
// a concurrent Dispatch — commands are still serialized one at a
// time by the Engine's own lock).
func (e *Engine) Get(id cellid.ID) (value.Value, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Store.Get(id)
}

// HasError reports a cell's error flag.
func (e *Engine) HasError(id cellid.ID) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Store.HasError(id)
}

// decodeTarget strips the parser's +1001 convention.
func decodeTarget(raw int) cellid.ID { return cellid.ID(raw - 1001) }

func decodeOperand(raw int, isCell bool) descriptor.Operand {
	if isCell {
		return descriptor.CellRef(decodeTarget(raw))
	}
	return descriptor.IntLit(int32(raw))
}

// wire installs d's index entries for target: a range edge for an
// aggregate, or a point edge per CellRef operand otherwise.
func (e *Engine) wire(target cellid.ID, d descriptor.Descriptor) {
	if d.Op.IsAggregate() {
		e.Reg.AddRange(target, d.Pre.Cell, d.Post.Cell)
		return
	}
	for _, op := range d.Operands() {
		e.Reg.AddPoint(op.Cell, target)
	}
}

// unwire removes d's index entries for target — the inverse of wire.
func (e *Engine) unwire(target cellid.ID, d descriptor.Descriptor) {
	if d.Op.IsAggregate() {
		e.Reg.RemoveRange(target)
		return
	}
	for _, op := range d.Operands() {
		e.Reg.RemovePoint(op.Cell, target)
	}
}

// Dispatch applies one parsed command and returns its status code
// (0 on success; -1 on quit; 3 on a detected cycle; 4 for a
// target/operand outside the grid). A command either fully commits
// or, on cycle detection, fully restores the pre-command state.
func (e *Engine) Dispatch(cmd command.Parsed) int {
	if cmd.Status != 0 {
		return cmd.Status
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch cmd.Func {
	case command.FuncScrollUp, command.FuncScrollRight, command.FuncScrollLeft, command.FuncScrollDown:
		e.scroll(cmd.Func)
		return command.StatusOK
	case command.FuncQuit:
		e.Running = false
		return command.StatusQuit
	case command.FuncDisableOutput:
		e.DisplayEnabled = false
		return command.StatusOK
	case command.FuncEnableOutput:
		e.DisplayEnabled = true
		return command.StatusOK
	}

	target := decodeTarget(cmd.Target)
	if !e.Store.InRange(target) {
		return command.StatusOutOfRange
	}

	if cmd.Func == command.FuncScrollTo {
		e.TopLeft = target
		return command.StatusOK
	}

	if cmd.Arg1IsCell() && !e.Store.InRange(decodeTarget(cmd.Arg1)) {
		return command.StatusOutOfRange
	}
	if cmd.Arg2IsCell() && !e.Store.InRange(decodeTarget(cmd.Arg2)) {
		return command.StatusOutOfRange
	}

	if !e.Store.IsInitialized(target) {
		_ = e.Store.SetInt(target, 0)
	}

	priorErr, _ := e.Store.HasError(target)
	priorDep, hadPriorDep := e.Store.GetDep(target)
	if hadPriorDep {
		e.unwire(target, priorDep)
	}

	rollback := func() {
		if hadPriorDep {
			_, _ = e.Store.ReplaceDep(target, priorDep)
			e.wire(target, priorDep)
		} else {
			_, _ = e.Store.ClearDep(target)
		}
		_ = e.Store.SetError(target, priorErr)
	}

	newDep, hasNewDep, immediate := e.buildDescriptor(cmd)

	switch {
	case cmd.Func == command.FuncLit:
		_, _ = e.Store.ClearDep(target)
		_ = e.Store.SetInt(target, int32(cmd.Arg1))
		_ = e.Store.SetError(target, false)
	case immediate != nil:
		_, _ = e.Store.ClearDep(target)
		_ = e.Store.SetValue(target, *immediate)
		_ = e.Store.SetError(target, false)
	case hasNewDep:
		_, _ = e.Store.ReplaceDep(target, newDep)
		e.wire(target, newDep)
	}

	order, err := computeOrder(target, e.Reg)
	if err != nil {
		// Undo the edges/descriptor we just installed, then restore
		// the prior descriptor and error flag exactly.
		if hasNewDep {
			e.unwire(target, newDep)
		}
		rollback()
		return command.StatusCycleDetected
	}

	for _, id := range order {
		e.Eval.Evaluate(id)
	}
	if e.OnEvaluated != nil {
		e.OnEvaluated(order)
	}
	return command.StatusOK
}

// buildDescriptor decides the descriptor a cell-mutating command
// installs. immediate is non-nil only for a binary op over two
// literal operands: the result is computed directly and no
// descriptor or edge is ever created, since a literal has no producer
// cell to depend on.
func (e *Engine) buildDescriptor(cmd command.Parsed) (d descriptor.Descriptor, has bool, immediate *value.Value) {
	switch cmd.Func {
	case command.FuncCopy:
		pre := decodeOperand(cmd.Arg1, cmd.Arg1IsCell())
		return descriptor.Descriptor{Op: descriptor.OpCopy, Pre: pre}, true, nil

	case command.FuncAdd, command.FuncSub, command.FuncMul, command.FuncDiv:
		pre := decodeOperand(cmd.Arg1, cmd.Arg1IsCell())
		post := decodeOperand(cmd.Arg2, cmd.Arg2IsCell())
		if !cmd.Arg1IsCell() && !cmd.Arg2IsCell() {
			a, b := operandValue(pre), operandValue(post)
			result, ok := binaryLiteral(cmd.Func, a, b)
			if ok {
				return descriptor.Descriptor{}, false, &result
			}
			// Division by a literal zero: still no descriptor, but the
			// caller must treat the target as errored. Signal that via
			// a zero-valued immediate paired with no descriptor is
			// insufficient, so fall through to a stored descriptor —
			// the evaluator will set the error flag identically.
		}
		return descriptor.Descriptor{Op: binaryOp(cmd.Func), Pre: pre, Post: post}, true, nil

	case command.FuncMin, command.FuncMax, command.FuncAvg, command.FuncSum, command.FuncStdev:
		pre := descriptor.CellRef(decodeTarget(cmd.Arg1))
		post := descriptor.CellRef(decodeTarget(cmd.Arg2))
		return descriptor.Descriptor{Op: aggregateOp(cmd.Func), Pre: pre, Post: post}, true, nil

	case command.FuncSleep:
		pre := decodeOperand(cmd.Arg1, cmd.Arg1IsCell())
		return descriptor.Descriptor{Op: descriptor.OpSleep, Pre: pre}, true, nil
	}
	return descriptor.Descriptor{}, false, nil
}

func operandValue(op descriptor.Operand) value.Value {
	if op.Kind == descriptor.KindFloatLit {
		return value.Float(op.Float)
	}
	return value.Int(op.Int)
}

// binaryLiteral computes a+b/-/*// for two literal operands. ok is
// false only for division by zero, in which case the caller falls
// back to a stored descriptor so the normal error-flag path applies.
func binaryLiteral(fn command.Func, a, b value.Value) (value.Value, bool) {
	switch fn {
	case command.FuncAdd:
		return value.Add(a, b), true
	case command.FuncSub:
		return value.Sub(a, b), true
	case command.FuncMul:
		return value.Mul(a, b), true
	case command.FuncDiv:
		return value.Div(a, b)
	}
	return value.Value{}, false
}

func binaryOp(fn command.Func) descriptor.Op {
	switch fn {
	case command.FuncAdd:
		return descriptor.OpAdd
	case command.FuncSub:
		return descriptor.OpSub
	case command.FuncMul:
		return descriptor.OpMul
	default:
		return descriptor.OpDiv
	}
}

func aggregateOp(fn command.Func) descriptor.Op {
	switch fn {
	case command.FuncMin:
		return descriptor.OpMin
	case command.FuncMax:
		return descriptor.OpMax
	case command.FuncAvg:
		return descriptor.OpAvg
	case command.FuncSum:
		return descriptor.OpSum
	default:
		return descriptor.OpStdev
	}
}

func (e *Engine) scroll(fn command.Func) {
	col, row := e.TopLeft.Col(), e.TopLeft.Row()
	switch fn {
	case command.FuncScrollUp:
		row = clampSub(row, 10)
	case command.FuncScrollDown:
		row = clampAdd(row, 10, e.Store.Bounds().NumRows)
	case command.FuncScrollLeft:
		col = clampSub(col, 10)
	case command.FuncScrollRight:
		col = clampAdd(col, 10, e.Store.Bounds().NumCols)
	}
	e.TopLeft = cellid.New(col, row)
}

func clampSub(v, delta int) int {
	if v-delta < 0 {
		return 0
	}
	return v - delta
}

func clampAdd(v, delta, max int) int {
	if v+delta > max {
		if max-delta < 0 {
			return 0
		}
		return max - delta
	}
	return v + delta
}

// computeOrder is a thin seam over topo.Order so engine doesn't need
// to construct the topo.ChildrenOf closure inline at every call site.
func computeOrder(root cellid.ID, reg *depgraph.Registry) ([]cellid.ID, error) {
	return topo.Order(root, reg.ChildrenOf)
}
