package cli

import (
	"context"
	"strings"
)

// rawMode sends each line to the server as is. A successful USE moves the
// console to the selected database and a refused one moves it back to the
// login database.
func (a *App) rawMode(ctx context.Context) error {
	for {
		line, err := a.prompt("Enter your SQL action (or type 'exit' to go back): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(line, "exit") {
			a.println("Leaving raw SQL mode.")
			return nil
		}
		if line == "" {
			continue
		}

		callCtx, cancel := a.withTimeout(ctx)
		resp, err := a.client.Raw(callCtx, a.currentDB, line)
		cancel()
		if err != nil {
			a.println("SQL Error: " + err.Error())
			a.fallBackHome(err)
			continue
		}

		if resp.Database != "" {
			a.currentDB = resp.Database
		}
		if err := a.render(resp); err != nil {
			return err
		}
	}
}
