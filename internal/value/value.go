// Package value implements the tagged numeric cell value: an integer
// or a float, with the arithmetic promotion and division-by-zero rules
// the engine's formulas rely on.
package value

import (
	"math"
	"strconv"
)

// Kind distinguishes the two numeric representations a cell can hold.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
)

// Value is a tagged int32/float32. The zero Value is Int(0), matching
// an absent cell's implicit value.
type Value struct {
	kind Kind
	i    int32
	f    float32
}

// Int constructs an integer value.
func Int(i int32) Value { return Value{kind: KindInt, i: i} }

// Float constructs a float value.
func Float(f float32) Value { return Value{kind: KindFloat, f: f} }

// Zero is the value absent cells read as.
var Zero = Int(0)

// Kind reports whether v is an Int or a Float.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is numerically zero, in either representation.
func (v Value) IsZero() bool {
	if v.kind == KindInt {
		return v.i == 0
	}
	return v.f == 0
}

// Float32 returns v as a float32 regardless of its tag.
func (v Value) Float32() float32 {
	if v.kind == KindInt {
		return float32(v.i)
	}
	return v.f
}

// Int32 returns v's raw int32, valid only when Kind()==KindInt.
func (v Value) Int32() int32 { return v.i }

// Add returns v+w, promoting to Float if either operand is a Float.
func Add(v, w Value) Value {
	if v.kind == KindInt && w.kind == KindInt {
		return Int(v.i + w.i)
	}
	return Float(v.Float32() + w.Float32())
}

// Sub returns v-w under the same promotion rule as Add.
func Sub(v, w Value) Value {
	if v.kind == KindInt && w.kind == KindInt {
		return Int(v.i - w.i)
	}
	return Float(v.Float32() - w.Float32())
}

// Mul returns v*w under the same promotion rule as Add.
func Mul(v, w Value) Value {
	if v.kind == KindInt && w.kind == KindInt {
		return Int(v.i * w.i)
	}
	return Float(v.Float32() * w.Float32())
}

// Div returns v/w and reports whether the divisor was zero (either
// representation); on division by zero the result is the zero Value
// and ok is false — callers must set the cell's error flag rather
// than trust the returned value.
func Div(v, w Value) (Value, bool) {
	if w.IsZero() {
		return Value{}, false
	}
	if v.kind == KindInt && w.kind == KindInt {
		return Int(v.i / w.i), true
	}
	return Float(v.Float32() / w.Float32()), true
}

// String renders v the way the grid displays a non-errored cell.
func (v Value) String() string {
	if v.kind == KindInt {
		return strconv.FormatInt(int64(v.i), 10)
	}
	if math.IsNaN(float64(v.f)) || math.IsInf(float64(v.f), 0) {
		return "ERR"
	}
	return strconv.FormatFloat(float64(v.f), 'f', -1, 32)
}
