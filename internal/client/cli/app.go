package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Aditya-creator173/SQL-Compiler/internal/client/client"
	"github.com/Aditya-creator173/SQL-Compiler/internal/client/config"
)

type App struct {
	config    *config.Config
	client    client.Client
	reader    *bufio.Reader
	out       io.Writer
	userName  string
	homeDB    string
	currentDB string
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewPlaygroundClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run shows the start menu until the user is signed in, then the main menu
// until they leave. End of input quits quietly.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	err := a.startMenu(ctx)
	if err == nil {
		err = a.mainMenu(ctx)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		log.Printf("error: %v", err)
	}
}

// withTimeout bounds a single server call.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// signedIn records the account and its database after login or sign up.
func (a *App) signedIn(userName, dbName string) {
	a.userName = userName
	a.homeDB = dbName
	a.currentDB = dbName
}

// fallBackHome returns the console to the login database when the server
// refuses the currently selected one.
func (a *App) fallBackHome(err error) {
	if !errors.Is(err, client.ErrUnauthorized) || a.currentDB == a.homeDB {
		return
	}
	a.currentDB = a.homeDB
	a.println("Using your database: " + a.homeDB)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) prompt(text string) (string, error) {
	return GetSimpleText(a.reader, text, a.out)
}
