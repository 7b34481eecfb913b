package engine

import (
	"math"
	"testing"
	"time"

	"sheetcore/internal/cellid"
	"sheetcore/internal/command"
)

// encode mirrors the parser's +1001 convention for a cell id.
func encode(id cellid.ID) int { return int(id) + 1001 }

func newTestEngine() *Engine {
	e := New(100, 100)
	e.Eval.Sleep = func(time.Duration) {}
	return e
}

func TestLiteralAssignment(t *testing.T) {
	e := newTestEngine()
	a1 := cellid.New(0, 0)
	status := e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(a1), Arg1: 100})
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
	v, _ := e.Get(a1)
	if v.Int32() != 100 {
		t.Errorf("A1 = %v, want 100", v)
	}
}

func TestLiteralBinaryHasNoDescriptor(t *testing.T) {
	e := newTestEngine()
	a1 := cellid.New(0, 0)
	status := e.Dispatch(command.Parsed{
		Func: command.FuncAdd, Target: encode(a1), Arg1: 50, Arg2: 50,
	})
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
	v, _ := e.Get(a1)
	if v.Int32() != 100 {
		t.Errorf("A1 = %v, want 100", v)
	}
	if _, hadDep := e.Store.GetDep(a1); hadDep {
		t.Error("two-literal binary assignment must not install a descriptor")
	}
}

func TestFormulaOverAbsentCellTreatsItAsZero(t *testing.T) {
	e := newTestEngine()
	a1, b1 := cellid.New(0, 0), cellid.New(1, 0)
	status := e.Dispatch(command.Parsed{
		Func: command.FuncAdd, Target: encode(a1),
		Arg1: encode(b1), Arg2: 100, ArgType: command.Arg1IsCell,
	})
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
	v, _ := e.Get(a1)
	if v.Int32() != 100 {
		t.Errorf("A1 = %v, want 100 (B1 absent treated as 0)", v)
	}
}

func TestCascadeRecomputesDependents(t *testing.T) {
	e := newTestEngine()
	b1, c1 := cellid.New(1, 0), cellid.New(2, 0)
	a1 := cellid.New(0, 0)

	mustOK(t, e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(b1), Arg1: 2}))
	mustOK(t, e.Dispatch(command.Parsed{
		Func: command.FuncDiv, Target: encode(c1),
		Arg1: encode(a1), Arg2: encode(b1), ArgType: command.Arg1IsCell | command.Arg2IsCell,
	}))
	v, _ := e.Get(c1)
	if v.Float32() != 0 {
		t.Errorf("C1 = %v, want 0 (A1 absent / B1=2)", v)
	}

	mustOK(t, e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(b1), Arg1: 1}))
	errored, _ := e.HasError(c1)
	if errored {
		t.Fatal("C1 should not be errored while B1=1")
	}

	status := e.Dispatch(command.Parsed{
		Func: command.FuncLit, Target: encode(b1), Arg1: 0,
	})
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
	errored, _ = e.HasError(c1)
	if !errored {
		t.Error("C1 should error once B1=0 (division by zero)")
	}
}

func TestMaxAndStdevOverRectangle(t *testing.T) {
	e := newTestEngine()
	a2, b2, c2 := cellid.New(0, 1), cellid.New(1, 1), cellid.New(2, 1)
	mustOK(t, e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(a2), Arg1: 130}))
	mustOK(t, e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(b2), Arg1: 1300}))
	mustOK(t, e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(c2), Arg1: 1200}))

	a3 := cellid.New(0, 2)
	mustOK(t, e.Dispatch(command.Parsed{
		Func: command.FuncMax, Target: encode(a3),
		Arg1: encode(a2), Arg2: encode(c2), ArgType: command.Arg1IsCell | command.Arg2IsCell,
	}))
	v, _ := e.Get(a3)
	if v.Float32() != 1300 {
		t.Errorf("MAX = %v, want 1300", v)
	}

	e3 := cellid.New(4, 2)
	mustOK(t, e.Dispatch(command.Parsed{
		Func: command.FuncStdev, Target: encode(e3),
		Arg1: encode(a2), Arg2: encode(c2), ArgType: command.Arg1IsCell | command.Arg2IsCell,
	}))
	sv, _ := e.Get(e3)
	want := float32(529.5491) // population SD: sqrt(841266.67 / 3)
	if math.Abs(float64(sv.Float32()-want)) > 0.01 {
		t.Errorf("STDEV = %v, want ~%v", sv, want)
	}
}

func TestCycleDetectionRollsBack(t *testing.T) {
	e := newTestEngine()
	a1, b1 := cellid.New(0, 0), cellid.New(1, 0)

	mustOK(t, e.Dispatch(command.Parsed{
		Func: command.FuncCopy, Target: encode(a1), Arg1: encode(b1), ArgType: command.Arg1IsCell,
	}))

	status := e.Dispatch(command.Parsed{
		Func: command.FuncCopy, Target: encode(b1), Arg1: encode(a1), ArgType: command.Arg1IsCell,
	})
	if status != command.StatusCycleDetected {
		t.Fatalf("status = %d, want StatusCycleDetected", status)
	}
	if _, hadDep := e.Store.GetDep(b1); hadDep {
		t.Error("B1 must have no descriptor after a rolled-back cycle")
	}
	errored, _ := e.HasError(b1)
	if errored {
		t.Error("B1's error flag must be restored to its pre-command state")
	}
}

func TestOutOfRangeTarget(t *testing.T) {
	e := newTestEngine()
	status := e.Dispatch(command.Parsed{Func: command.FuncLit, Target: encode(cellid.New(0, 500)), Arg1: 1})
	if status != command.StatusOutOfRange {
		t.Errorf("status = %d, want StatusOutOfRange", status)
	}
}

func TestSleepCommand(t *testing.T) {
	e := newTestEngine()
	f3 := cellid.New(5, 2)
	status := e.Dispatch(command.Parsed{Func: command.FuncSleep, Target: encode(f3), Arg1: 1})
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
	v, _ := e.Get(f3)
	if v.Int32() != 1 {
		t.Errorf("F3 = %v, want 1", v)
	}

	g3 := cellid.New(6, 2)
	status = e.Dispatch(command.Parsed{
		Func: command.FuncSleep, Target: encode(g3), Arg1: encode(f3), ArgType: command.Arg1IsCell,
	})
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
	gv, _ := e.Get(g3)
	if gv.Int32() != 1 {
		t.Errorf("G3 = %v, want 1 (copied from F3)", gv)
	}
}

func TestQuitStatus(t *testing.T) {
	e := newTestEngine()
	status := e.Dispatch(command.Parsed{Func: command.FuncQuit})
	if status != command.StatusQuit {
		t.Errorf("status = %d, want StatusQuit", status)
	}
	if e.Running {
		t.Error("Running should be false after quit")
	}
}

func mustOK(t *testing.T, status int) {
	t.Helper()
	if status != command.StatusOK {
		t.Fatalf("status = %d, want OK", status)
	}
}
