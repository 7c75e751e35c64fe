package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/presence/apps/container"
	"github.com/trezcool/presence/core"
	logsvc "github.com/trezcool/presence/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	// set up DB & services; migrations are run explicitly with `admin migrate`
	c, err := container.New(context.Background(), conf, logger, container.WithoutMigrations())
	if err != nil {
		logger.Fatal("setting up database", err)
	}

	// start CLI
	cli := commandLine{c: c, out: os.Stdout}
	err = cli.run(os.Args)
	if cErr := c.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin: "+core.Message(err), err)
		}
		os.Exit(1)
	}
}
