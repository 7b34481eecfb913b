// Package csvio loads and dumps a grid of literal cell values as CSV.
// Import drives the dispatcher with the same literal-assignment
// command every interactive "A1=5" keystroke produces, so a loaded
// sheet is indistinguishable from one typed in by hand — no direct
// store mutation, no bypass of the dependency-rewiring path.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"sheetcore/internal/cellid"
	"sheetcore/internal/colref"
	"sheetcore/internal/command"
	"sheetcore/internal/engine"
)

// Load reads CSV rows starting at the engine's row 0, col 0 and
// assigns each non-empty numeric field as a literal. A field that
// does not parse as an integer is skipped rather than erroring the
// whole import — matching the per-cell error model the rest of the
// engine uses instead of an all-or-nothing transaction.
func Load(r io.Reader, eng *engine.Engine) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csvio: read row %d: %w", row, err)
		}
		for col, field := range record {
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				continue
			}
			id := cellid.New(col, row)
			status := eng.Dispatch(command.Parsed{
				Func:   command.FuncLit,
				Target: int(id) + 1001,
				Arg1:   n,
			})
			if status != command.StatusOK {
				return fmt.Errorf("csvio: assign %s: dispatch status %d", cellName(id), status)
			}
		}
		row++
	}
}

// Dump writes the rectangle [0,0]-[rows-1,cols-1] as CSV, one record
// per row, rendering each cell with value.Value's String.
func Dump(w io.Writer, eng *engine.Engine, rows, cols int) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	for row := 0; row < rows; row++ {
		record := make([]string, cols)
		for col := 0; col < cols; col++ {
			id := cellid.New(col, row)
			v, err := eng.Get(id)
			if err != nil {
				return fmt.Errorf("csvio: read %s: %w", cellName(id), err)
			}
			errored, _ := eng.HasError(id)
			if errored {
				record[col] = "ERR"
				continue
			}
			record[col] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("csvio: write row %d: %w", row, err)
		}
	}
	return writer.Error()
}

func cellName(id cellid.ID) string {
	return fmt.Sprintf("%s%d", colref.Label(id.Col()), id.Row()+1)
}
