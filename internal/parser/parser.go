// Package parser turns a line of spreadsheet command text into a
// command.Parsed record. It is the text-command contract external
// collaborators (the terminal UI, scripted input) drive the engine
// through, built as small composable scanning helpers rather than one
// monolithic character walk.
package parser

import (
	"strconv"
	"strings"

	"sheetcore/internal/command"
)

// singleCharCommands maps the one-letter scroll/quit keys to their
// Func codes.
var singleCharCommands = map[byte]command.Func{
	'w': command.FuncScrollUp,
	'd': command.FuncScrollRight,
	'a': command.FuncScrollLeft,
	's': command.FuncScrollDown,
	'q': command.FuncQuit,
}

var aggregateFuncs = map[string]command.Func{
	"MIN":   command.FuncMin,
	"MAX":   command.FuncMax,
	"AVG":   command.FuncAvg,
	"SUM":   command.FuncSum,
	"STDEV": command.FuncStdev,
}

// Parse parses one line of input into a command.Parsed. A malformed
// line returns StatusParserError rather than an error value — the
// engine treats it uniformly with any other non-OK status.
func Parse(line string) command.Parsed {
	if len(line) == 0 {
		return command.Parsed{Status: command.StatusParserError}
	}

	if len(line) == 1 {
		if fn, ok := singleCharCommands[line[0]]; ok {
			return command.Parsed{Func: fn}
		}
	}

	switch line {
	case "disable_output":
		return command.Parsed{Func: command.FuncDisableOutput}
	case "enable_output":
		return command.Parsed{Func: command.FuncEnableOutput}
	}

	if strings.HasPrefix(line, "scroll_to ") {
		cell := line[len("scroll_to "):]
		if code, ok := parseCell(cell); ok {
			return command.Parsed{Func: command.FuncScrollTo, Target: code}
		}
		return command.Parsed{Status: command.StatusParserError}
	}

	eq := strings.IndexByte(line, '=')
	if eq < 2 || eq > 6 || eq == len(line)-1 {
		return command.Parsed{Status: command.StatusParserError}
	}

	target, ok := parseCell(line[:eq])
	if !ok {
		return command.Parsed{Status: command.StatusParserError}
	}

	rhs := line[eq+1:]
	if p, ok := parseRHS(rhs); ok {
		p.Target = target
		return p
	}
	return command.Parsed{Status: command.StatusParserError}
}

// parseRHS parses everything to the right of "=": a literal, a bare
// cell reference, a binary infix expression, or a function call.
func parseRHS(rhs string) (command.Parsed, bool) {
	if opIdx, op, ok := findInfixOperator(rhs); ok {
		return parseBinary(rhs, opIdx, op)
	}
	if strings.Contains(rhs, "(") {
		return parseCall(rhs)
	}
	if n, ok := parseInteger(rhs); ok {
		return command.Parsed{Func: command.FuncLit, Arg1: n}, true
	}
	if code, ok := parseCell(rhs); ok {
		return command.Parsed{Func: command.FuncCopy, Arg1: code, ArgType: command.Arg1IsCell}, true
	}
	return command.Parsed{}, false
}

// findInfixOperator scans left to right for a binary operator,
// skipping a leading unary sign so "-5+3" doesn't match its own "-".
func findInfixOperator(s string) (idx int, op byte, ok bool) {
	start := 0
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		start = 1
	}
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '+', '-', '*', '/':
			return i, s[i], true
		case '(':
			return 0, 0, false
		}
	}
	return 0, 0, false
}

func parseBinary(rhs string, opIdx int, op byte) (command.Parsed, bool) {
	left, right := rhs[:opIdx], rhs[opIdx+1:]
	if left == "" || right == "" {
		return command.Parsed{}, false
	}

	a1, a1IsCell, ok1 := parseOperand(left)
	a2, a2IsCell, ok2 := parseOperand(right)
	if !ok1 || !ok2 {
		return command.Parsed{}, false
	}

	var fn command.Func
	switch op {
	case '+':
		fn = command.FuncAdd
	case '-':
		fn = command.FuncSub
	case '*':
		fn = command.FuncMul
	case '/':
		fn = command.FuncDiv
	}

	var at command.ArgType
	if a1IsCell {
		at |= command.Arg1IsCell
	}
	if a2IsCell {
		at |= command.Arg2IsCell
	}
	return command.Parsed{Func: fn, Arg1: a1, Arg2: a2, ArgType: at}, true
}

// parseOperand resolves a token as either an integer literal or a
// cell reference, preferring the one that parses.
func parseOperand(tok string) (value int, isCell bool, ok bool) {
	if code, cellOK := parseCell(tok); cellOK {
		return code, true, true
	}
	if n, intOK := parseInteger(tok); intOK {
		return n, false, true
	}
	return 0, false, false
}

// parseCall parses FUNC(arg) or FUNC(range1:range2).
func parseCall(s string) (command.Parsed, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") || open == 0 {
		return command.Parsed{}, false
	}
	name := s[:open]
	inner := s[open+1 : len(s)-1]
	if inner == "" {
		return command.Parsed{}, false
	}

	if name == "SLEEP" {
		arg1, isCell, ok := parseOperand(inner)
		if !ok {
			return command.Parsed{}, false
		}
		at := command.ArgType(0)
		if isCell {
			at = command.Arg1IsCell
		}
		return command.Parsed{Func: command.FuncSleep, Arg1: arg1, ArgType: at}, true
	}

	fn, ok := aggregateFuncs[name]
	if !ok {
		return command.Parsed{}, false
	}
	colon := strings.IndexByte(inner, ':')
	if colon < 0 {
		return command.Parsed{}, false
	}
	c1, ok1 := parseCell(inner[:colon])
	c2, ok2 := parseCell(inner[colon+1:])
	if !ok1 || !ok2 {
		return command.Parsed{}, false
	}
	return command.Parsed{Func: fn, Arg1: c1, Arg2: c2, ArgType: command.Arg1IsCell | command.Arg2IsCell}, true
}

// parseInteger accepts an optionally-signed decimal integer with no
// leading zeros (other than the literal "0" itself).
func parseInteger(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	body := s
	if s[0] == '-' || s[0] == '+' {
		body = s[1:]
	}
	if body == "" {
		return 0, false
	}
	if len(body) > 1 && body[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseCell parses a spreadsheet cell reference like "A1" or "AB123"
// into its compact code, 1000*col+row, with both 1-based (the
// parser's convention; the engine subtracts 1001 to reach the
// zero-based cellid.ID it stores).
func parseCell(s string) (int, bool) {
	if len(s) < 2 || len(s) > 6 {
		return 0, false
	}
	split := 0
	for split < len(s) && !isDigit(s[split]) {
		split++
	}
	if split == 0 || split == len(s) {
		return 0, false
	}
	colPart, rowPart := s[:split], s[split:]

	col, ok := parseColumn(colPart)
	if !ok {
		return 0, false
	}
	row, ok := parseRow(rowPart)
	if !ok {
		return 0, false
	}
	return 1000*col + row, true
}

func parseColumn(s string) (int, bool) {
	if len(s) == 0 || len(s) > 3 {
		return 0, false
	}
	col := 0
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return 0, false
		}
		col = 26*col + int(s[i]-'A'+1)
	}
	return col, true
}

func parseRow(s string) (int, bool) {
	if len(s) == 0 || len(s) > 3 {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	row, err := strconv.Atoi(s)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
