package cli

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Aditya-creator173/SQL-Compiler/internal/client/client"
)

var digitsRe = regexp.MustCompile(`^\d+$`)

// startMenu loops until register or login succeeds.
func (a *App) startMenu(ctx context.Context) error {
	for {
		a.println("Choose Action!")
		a.println("1. New User? Register")
		a.println("2. Already have an account? Login")

		line, err := a.prompt("")
		if err != nil {
			return err
		}
		if !digitsRe.MatchString(line) {
			a.println("Invalid input. Please enter a number.")
			continue
		}

		var done bool
		switch line {
		case "1":
			done, err = a.register(ctx)
		case "2":
			done, err = a.login(ctx)
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (a *App) readCredentials() (string, string, error) {
	username, err := a.prompt("Enter your username: ")
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return strings.ToLower(username), password, nil
}

// register returns true once the account exists and a session is open.
// Only input errors are returned; server failures are printed.
func (a *App) register(ctx context.Context) (bool, error) {
	a.println("Register Now!")

	for {
		username, password, err := a.readCredentials()
		if err != nil {
			return false, err
		}

		exists, err := a.checkUsername(ctx, username)
		if err != nil {
			a.println("Error:", err)
			return false, nil
		}

		if exists {
			if _, err := a.signIn(ctx, username, password); err == nil {
				a.println("You are already registered! Please login.")
				return false, nil
			}
			a.println("Username already exists!")
			continue
		}

		dbName, err := a.signUp(ctx, username, password)
		if errors.Is(err, client.ErrAlreadyExists) {
			a.println("Username already exists!")
			continue
		}
		if err != nil {
			a.println("Registration failed:", err)
			continue
		}

		if _, err := a.signIn(ctx, username, password); err != nil {
			a.println("Login failed:", err)
			return false, nil
		}

		a.signedIn(username, dbName)
		a.println("Your personal database: " + dbName)
		return true, nil
	}
}

// login returns true once a session is open. An unknown username goes back
// to the start menu; a wrong password asks again.
func (a *App) login(ctx context.Context) (bool, error) {
	a.println("Login Now!")

	for {
		username, password, err := a.readCredentials()
		if err != nil {
			return false, err
		}

		exists, err := a.checkUsername(ctx, username)
		if err != nil {
			a.println("Error:", err)
			return false, nil
		}
		if !exists {
			a.println("Username does not exist! Please register first.")
			return false, nil
		}

		dbName, err := a.signIn(ctx, username, password)
		if errors.Is(err, client.ErrUnauthorized) {
			a.println("Incorrect password! Please try again.")
			continue
		}
		if err != nil {
			a.println("Error:", err)
			return false, nil
		}

		a.signedIn(username, dbName)
		a.println("Login Successful!")
		a.println("Using your database: " + dbName)
		return true, nil
	}
}

func (a *App) checkUsername(ctx context.Context, username string) (bool, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.client.CheckUsername(ctx, username)
}

func (a *App) signUp(ctx context.Context, username, password string) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.client.Register(ctx, username, password)
}

func (a *App) signIn(ctx context.Context, username, password string) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	resp, err := a.client.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	return resp.DBName, nil
}
