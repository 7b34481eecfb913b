package parser

import (
	"testing"

	"sheetcore/internal/command"
)

func TestParseLiteral(t *testing.T) {
	p := Parse("A1=100")
	if p.Status != command.StatusOK || p.Func != command.FuncLit || p.Arg1 != 100 {
		t.Errorf("Parse(A1=100) = %+v", p)
	}
	if p.Target != 1001 { // A1 -> col 1, row 1 -> 1000*1+1 = 1001
		t.Errorf("Target = %d, want 1001", p.Target)
	}
}

func TestParseCellCopy(t *testing.T) {
	p := Parse("B2=A1")
	if p.Func != command.FuncCopy || !p.Arg1IsCell() {
		t.Errorf("Parse(B2=A1) = %+v", p)
	}
}

func TestParseBinaryCellAndLiteral(t *testing.T) {
	p := Parse("C3=A1+100")
	if p.Func != command.FuncAdd || !p.Arg1IsCell() || p.Arg2IsCell() {
		t.Errorf("Parse(C3=A1+100) = %+v", p)
	}
}

func TestParseAggregate(t *testing.T) {
	p := Parse("A3=SUM(A1:A2)")
	if p.Func != command.FuncSum || !p.Arg1IsCell() || !p.Arg2IsCell() {
		t.Errorf("Parse(A3=SUM(A1:A2)) = %+v", p)
	}
}

func TestParseSleepLiteral(t *testing.T) {
	p := Parse("F3=SLEEP(1)")
	if p.Func != command.FuncSleep || p.Arg1IsCell() || p.Arg1 != 1 {
		t.Errorf("Parse(F3=SLEEP(1)) = %+v", p)
	}
}

func TestParseSleepCellRef(t *testing.T) {
	p := Parse("G3=SLEEP(F3)")
	if p.Func != command.FuncSleep || !p.Arg1IsCell() {
		t.Errorf("Parse(G3=SLEEP(F3)) = %+v", p)
	}
}

func TestParseScrollAndQuit(t *testing.T) {
	for ch, want := range map[string]command.Func{
		"w": command.FuncScrollUp,
		"a": command.FuncScrollLeft,
		"s": command.FuncScrollDown,
		"d": command.FuncScrollRight,
		"q": command.FuncQuit,
	} {
		if p := Parse(ch); p.Func != want {
			t.Errorf("Parse(%q).Func = %v, want %v", ch, p.Func, want)
		}
	}
}

func TestParseScrollTo(t *testing.T) {
	p := Parse("scroll_to B2")
	if p.Func != command.FuncScrollTo || p.Status != command.StatusOK {
		t.Errorf("Parse(scroll_to B2) = %+v", p)
	}
}

func TestParseInvalidLineIsParserError(t *testing.T) {
	p := Parse("not a command")
	if p.Status != command.StatusParserError {
		t.Errorf("Parse(garbage).Status = %d, want StatusParserError", p.Status)
	}
}

func TestParseDisableEnableOutput(t *testing.T) {
	if p := Parse("disable_output"); p.Func != command.FuncDisableOutput {
		t.Errorf("Parse(disable_output) = %+v", p)
	}
	if p := Parse("enable_output"); p.Func != command.FuncEnableOutput {
		t.Errorf("Parse(enable_output) = %+v", p)
	}
}
