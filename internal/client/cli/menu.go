package cli

import "context"

func (a *App) mainMenu(ctx context.Context) error {
	for {
		a.println()
		a.println("Main Menu")
		a.println("1. Raw SQL mode")
		a.println("2. Block SQL mode (no-code style)")
		a.println("3. Exit")

		choice, err := a.prompt("Choose option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = a.rawMode(ctx)
		case "2":
			err = a.blockMode(ctx)
		case "3":
			a.println("Goodbye.")
			return nil
		default:
			a.println("Invalid option. Try again.")
		}
		if err != nil {
			return err
		}
	}
}
