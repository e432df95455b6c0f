package main

import (
	"log"
	"os"
	"time"

	"github.com/joshemcr2/users-api/internal/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := initCLI().Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func initCLI() *cli.App {
	c := &cli.App{
		EnableBashCompletion: true,
		Name:                 "users-api",
		Usage:                "Users REST API server",
		Version:              cmd.Version,
		Compiled:             time.Now().UTC(),
		Action:               cmd.GetVersion,
		Commands:             cmd.Commands,
	}

	return c
}
