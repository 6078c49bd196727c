package cli

import (
	"fmt"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/olekukonko/tablewriter"
)

// render prints a row set as a table and anything else as its message.
func (a *App) render(resp *api.ExecResponse) error {
	if !resp.HasRows() {
		a.println(resp.Message)
		return nil
	}

	table := tablewriter.NewWriter(a.out)

	header := make([]any, len(resp.Columns))
	for i, c := range resp.Columns {
		header[i] = c
	}
	table.Header(header...)

	for _, row := range resp.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		if err := table.Append(cells); err != nil {
			return err
		}
	}

	return table.Render()
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
