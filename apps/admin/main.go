package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/edupulse/edupulse/core"
	logsvc "github.com/edupulse/edupulse/services/logger"
	"github.com/edupulse/edupulse/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	stores, err := storage.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}

	// start CLI
	cli := commandLine{
		usrRepo:  stores.Users,
		validate: validator.New(),
	}
	if stores.SQL != nil {
		cli.db = stores.SQL.DB
	}
	err = cli.run(os.Args)
	if cErr := stores.Close(context.Background()); cErr != nil {
		logger.Error("closing database", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
