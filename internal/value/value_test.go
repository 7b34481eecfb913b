package value

import "testing"

func TestAddPromotion(t *testing.T) {
	if got := Add(Int(2), Int(3)); got.Kind() != KindInt || got.Int32() != 5 {
		t.Errorf("Int+Int = %v, want Int(5)", got)
	}
	got := Add(Int(2), Float(3.5))
	if got.Kind() != KindFloat || got.Float32() != 5.5 {
		t.Errorf("Int+Float = %v, want Float(5.5)", got)
	}
}

func TestDivByZero(t *testing.T) {
	if _, ok := Div(Int(4), Int(0)); ok {
		t.Error("Div by int zero should report !ok")
	}
	if _, ok := Div(Int(4), Float(0)); ok {
		t.Error("Div by float zero should report !ok")
	}
	got, ok := Div(Int(10), Int(2))
	if !ok || got.Kind() != KindInt || got.Int32() != 5 {
		t.Errorf("Div(10,2) = %v, %v", got, ok)
	}
}

func TestIsZero(t *testing.T) {
	if !Int(0).IsZero() {
		t.Error("Int(0) should be zero")
	}
	if !Float(0).IsZero() {
		t.Error("Float(0) should be zero")
	}
	if Int(1).IsZero() {
		t.Error("Int(1) should not be zero")
	}
}

func TestString(t *testing.T) {
	if Int(42).String() != "42" {
		t.Errorf("Int(42).String() = %q", Int(42).String())
	}
	if Int(-7).String() != "-7" {
		t.Errorf("Int(-7).String() = %q", Int(-7).String())
	}
}
