// Package eval implements the per-cell formula evaluator: copy,
// binary arithmetic, the five range aggregates, and the SLEEP
// side-effect operator, with error-flag propagation throughout.
package eval

import (
	"math"
	"time"

	"sheetcore/internal/cellid"
	"sheetcore/internal/descriptor"
	"sheetcore/internal/store"
	"sheetcore/internal/value"
)

// Evaluator runs descriptors against a cell store. Sleep is
// overridable so tests can avoid real wall-clock delays; it defaults
// to time.Sleep.
type Evaluator struct {
	Store *store.Store
	Sleep func(time.Duration)
}

// New creates an Evaluator over s with real-time SLEEP.
func New(s *store.Store) *Evaluator {
	return &Evaluator{Store: s, Sleep: time.Sleep}
}

// Evaluate runs id's descriptor and writes its result (and error
// flag) back into the store. A cell with no descriptor is left alone.
func (e *Evaluator) Evaluate(id cellid.ID) {
	d, ok := e.Store.GetDep(id)
	if !ok {
		return
	}

	switch {
	case d.Op == descriptor.OpCopy:
		e.evalCopy(id, d)
	case d.Op == descriptor.OpSleep:
		e.evalSleep(id, d)
	case d.Op.IsAggregate():
		e.evalAggregate(id, d)
	default:
		e.evalBinary(id, d)
	}
}

// resolve turns an operand into a value and an errored flag. A
// CellRef to an errored producer propagates that error; an absent
// cell reads as Int(0).
func (e *Evaluator) resolve(op descriptor.Operand) (value.Value, bool) {
	switch op.Kind {
	case descriptor.KindCellRef:
		v, _ := e.Store.Get(op.Cell)
		errored, _ := e.Store.HasError(op.Cell)
		return v, errored
	case descriptor.KindFloatLit:
		return value.Float(op.Float), false
	default: // KindIntLit, Unused
		return value.Int(op.Int), false
	}
}

func (e *Evaluator) evalCopy(id cellid.ID, d descriptor.Descriptor) {
	v, errored := e.resolve(d.Pre)
	if errored {
		_ = e.Store.SetError(id, true)
		return
	}
	_ = e.Store.SetValue(id, v)
	_ = e.Store.SetError(id, false)
}

func (e *Evaluator) evalBinary(id cellid.ID, d descriptor.Descriptor) {
	a, aErr := e.resolve(d.Pre)
	b, bErr := e.resolve(d.Post)
	if aErr || bErr {
		_ = e.Store.SetError(id, true)
		return
	}

	var result value.Value
	switch d.Op {
	case descriptor.OpAdd:
		result = value.Add(a, b)
	case descriptor.OpSub:
		result = value.Sub(a, b)
	case descriptor.OpMul:
		result = value.Mul(a, b)
	case descriptor.OpDiv:
		res, ok := value.Div(a, b)
		if !ok {
			_ = e.Store.SetError(id, true)
			return
		}
		result = res
	}
	_ = e.Store.SetValue(id, result)
	_ = e.Store.SetError(id, false)
}

func (e *Evaluator) evalAggregate(id cellid.ID, d descriptor.Descriptor) {
	rect := d.Rect()
	n := rect.Cardinality()

	var (
		sum      float64
		min, max float32
		first    = true
		errored  bool
		values   = make([]float32, 0, n)
	)

	rect.Cells(func(member cellid.ID) bool {
		memberErr, _ := e.Store.HasError(member)
		if memberErr {
			errored = true
			return false
		}
		v, _ := e.Store.Get(member)
		f := v.Float32()
		sum += float64(f)
		values = append(values, f)
		if first {
			min, max, first = f, f, false
		} else {
			if f < min {
				min = f
			}
			if f > max {
				max = f
			}
		}
		return true
	})

	if errored {
		_ = e.Store.SetError(id, true)
		return
	}

	mean := sum / float64(n)
	var result float32
	switch d.Op {
	case descriptor.OpMin:
		result = min
	case descriptor.OpMax:
		result = max
	case descriptor.OpSum:
		result = float32(sum)
	case descriptor.OpAvg:
		result = float32(mean)
	case descriptor.OpStdev:
		var sq float64
		for _, f := range values {
			diff := float64(f) - mean
			sq += diff * diff
		}
		result = float32(math.Sqrt(sq / float64(n)))
	}

	_ = e.Store.SetFloat(id, result)
	_ = e.Store.SetError(id, false)
}

func (e *Evaluator) evalSleep(id cellid.ID, d descriptor.Descriptor) {
	v, errored := e.resolve(d.Pre)
	if errored {
		_ = e.Store.SetError(id, true)
		return
	}

	seconds := v.Float32()
	if seconds < 0 {
		seconds = 0
	}
	if e.Sleep != nil {
		e.Sleep(time.Duration(float64(seconds) * float64(time.Second)))
	}

	_ = e.Store.SetValue(id, v)
	_ = e.Store.SetError(id, false)
}
