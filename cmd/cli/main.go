package main

import (
	"context"
	"log"
	"os"

	"github.com/Aditya-creator173/SQL-Compiler/internal/buildinfo"
	"github.com/Aditya-creator173/SQL-Compiler/internal/client/cli"
	"github.com/Aditya-creator173/SQL-Compiler/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
