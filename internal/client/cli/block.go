package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
)

// blockForm prompts for the fields of one block type.
type blockForm func(a *App, req *api.BlockRequest) error

var blockForms = map[string]struct {
	typ  api.BlockType
	form blockForm
}{
	"1": {api.BlockCreateTable, (*App).createTableForm},
	"2": {api.BlockInsert, (*App).insertForm},
	"3": {api.BlockSelect, (*App).selectForm},
	"4": {api.BlockUpdate, (*App).updateForm},
	"5": {api.BlockDelete, (*App).deleteForm},
}

func (a *App) blockMode(ctx context.Context) error {
	for {
		a.println()
		a.println("Block SQL Menu")
		a.println("1. Create table")
		a.println("2. Insert row")
		a.println("3. Select rows")
		a.println("4. Update rows")
		a.println("5. Delete rows")
		a.println("6. Back to main menu")

		choice, err := a.prompt("Choose block: ")
		if err != nil {
			return err
		}
		if choice == "6" {
			a.println("Leaving block SQL mode.")
			return nil
		}

		b, ok := blockForms[choice]
		if !ok {
			a.println("Invalid option. Try again.")
			continue
		}

		req := &api.BlockRequest{DBName: a.currentDB, Type: b.typ}
		if err := b.form(a, req); err != nil {
			if errors.Is(err, io.EOF) {
				return err
			}
			a.println("SQL Error in block: " + err.Error())
			continue
		}

		callCtx, cancel := a.withTimeout(ctx)
		resp, err := a.client.Block(callCtx, req)
		cancel()
		if err != nil {
			a.println("SQL Error in block: " + err.Error())
			a.fallBackHome(err)
			continue
		}
		if err := a.render(resp); err != nil {
			return err
		}
	}
}

func (a *App) createTableForm(req *api.BlockRequest) error {
	var err error
	if req.Table, err = a.prompt("Enter table name: "); err != nil {
		return err
	}
	n, err := GetNumber(a.reader, "How many columns (excluding id)?: ", a.out)
	if err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		name, err := a.prompt(fmt.Sprintf("Column %d name: ", i))
		if err != nil {
			return err
		}
		typ, err := a.prompt(fmt.Sprintf("Column %d type (e.g., VARCHAR(100), INT): ", i))
		if err != nil {
			return err
		}
		req.Columns = append(req.Columns, api.ColumnDef{Name: name, Type: typ})
	}
	return nil
}

func (a *App) insertForm(req *api.BlockRequest) error {
	var err error
	if req.Table, err = a.prompt("Enter table name: "); err != nil {
		return err
	}
	n, err := GetNumber(a.reader, "Number of columns you want to insert into: ", a.out)
	if err != nil {
		return err
	}
	names := make([]string, n)
	for i := range names {
		if names[i], err = a.prompt(fmt.Sprintf("Column %d name: ", i+1)); err != nil {
			return err
		}
	}
	for _, name := range names {
		v, err := a.prompt(fmt.Sprintf("Value for %s: ", name))
		if err != nil {
			return err
		}
		req.Values = append(req.Values, api.ColumnValue{Col: name, Val: api.Text(v)})
	}
	return nil
}

func (a *App) selectForm(req *api.BlockRequest) error {
	var err error
	if req.Table, err = a.prompt("Enter table name: "); err != nil {
		return err
	}
	if req.FilterCol, err = a.prompt("Filter column name (or leave empty for no filter): "); err != nil {
		return err
	}
	if strings.TrimSpace(req.FilterCol) == "" {
		return nil
	}
	v, err := a.prompt("Filter value: ")
	if err != nil {
		return err
	}
	req.FilterVal = api.Text(v)
	return nil
}

func (a *App) updateForm(req *api.BlockRequest) error {
	var err error
	if req.Table, err = a.prompt("Enter table name: "); err != nil {
		return err
	}
	if req.Col, err = a.prompt("Column to update: "); err != nil {
		return err
	}
	v, err := a.prompt("New value: ")
	if err != nil {
		return err
	}
	req.Val = api.Text(v)
	return a.filterForm(req)
}

func (a *App) deleteForm(req *api.BlockRequest) error {
	var err error
	if req.Table, err = a.prompt("Enter table name: "); err != nil {
		return err
	}
	return a.filterForm(req)
}

func (a *App) filterForm(req *api.BlockRequest) error {
	var err error
	if req.FilterCol, err = a.prompt("Filter column name (e.g., id): "); err != nil {
		return err
	}
	v, err := a.prompt("Filter value: ")
	if err != nil {
		return err
	}
	req.FilterVal = api.Text(v)
	return nil
}
