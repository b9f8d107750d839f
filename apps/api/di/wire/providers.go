// Package wire_container assembles the API server with google/wire.
package wire_container

import (
	"context"
	"log"
	"os"

	"github.com/edupulse/edupulse/core"
	emailsvc "github.com/edupulse/edupulse/services/email"
	logsvc "github.com/edupulse/edupulse/services/logger"
	"github.com/edupulse/edupulse/storage"
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStores(ctx context.Context, conf *core.Config, logger core.Logger) (*storage.Stores, func(), error) {
	stores, err := storage.Open(ctx, conf)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := stores.Close(context.Background()); err != nil {
			logger.Error("closing stores", err)
		}
	}
	if err = stores.Migrate(); err != nil {
		cleanup()
		return nil, nil, err
	}
	return stores, cleanup, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}
