// Run drives the interactive terminal loop: read a command line,
// dispatch it, and (unless output is disabled) render the viewport.
package tui

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"sheetcore/internal/cellid"
	"sheetcore/internal/colref"
	"sheetcore/internal/command"
	"sheetcore/internal/engine"
	"sheetcore/internal/parser"
)

// viewRows and viewCols match the wasd scroll step the engine clamps
// by in Engine.scroll.
const (
	viewRows = 10
	viewCols = 10
)

// Run reads commands until FuncQuit or EOF, dispatching each one
// through eng and printing the current viewport (while output is
// enabled) and a one-line status with the elapsed time after every
// command; SLEEP commands block the same way they do for any other
// caller.
func Run(eng *engine.Engine, in io.Reader, rawOut io.Writer) error {
	out := newCRLFWriter(rawOut)

	editor, isTTY := newLineEditor(in, rawOut)
	if isTTY {
		defer editor.Close()
	}
	var scanner *bufio.Scanner
	if !isTTY {
		scanner = bufio.NewScanner(in)
	}

	render(eng, out)
	for eng.Running {
		var line string
		var ok bool
		if isTTY {
			line, ok = editor.ReadLine("> ")
		} else {
			ok = scanner.Scan()
			line = scanner.Text()
		}
		if !ok {
			break
		}

		start := time.Now()
		p := parser.Parse(line)
		status := eng.Dispatch(p)
		elapsed := time.Since(start)

		if eng.DisplayEnabled {
			render(eng, out)
		}
		fmt.Fprintf(out, "[%.2f] %s\n", elapsed.Seconds(), commandStatusString(status))
	}
	return nil
}

// render prints the viewCols x viewRows window starting at
// eng.TopLeft, with column letters and row numbers as a header/gutter.
func render(eng *engine.Engine, out io.Writer) {
	topCol, topRow := eng.TopLeft.Col(), eng.TopLeft.Row()
	bounds := eng.Store.Bounds()

	fmt.Fprint(out, "    ")
	for c := topCol; c < topCol+viewCols && c < bounds.NumCols; c++ {
		fmt.Fprintf(out, "%10s", colref.Label(c))
	}
	fmt.Fprintln(out)

	for r := topRow; r < topRow+viewRows && r < bounds.NumRows; r++ {
		fmt.Fprintf(out, "%-4d", r+1)
		for c := topCol; c < topCol+viewCols && c < bounds.NumCols; c++ {
			id := cellid.New(c, r)
			cell := renderCell(eng, id)
			fmt.Fprintf(out, "%10s", cell)
		}
		fmt.Fprintln(out)
	}
}

func renderCell(eng *engine.Engine, id cellid.ID) string {
	errored, _ := eng.HasError(id)
	if errored {
		return "ERR"
	}
	v, _ := eng.Get(id)
	return v.String()
}

// commandStatusString maps a Dispatch status code to the text Run
// prints on its status line.
func commandStatusString(status int) string {
	switch status {
	case command.StatusOK:
		return "ok"
	case command.StatusQuit:
		return "quit"
	case command.StatusParserError:
		return "parser error"
	case command.StatusEvalError:
		return "eval error"
	case command.StatusCycleDetected:
		return "cycle detected"
	case command.StatusOutOfRange:
		return "out of range"
	default:
		return "unknown"
	}
}
