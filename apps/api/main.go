package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	echoapi "github.com/edupulse/edupulse/apps/api/echo"
	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/user"
	appfs "github.com/edupulse/edupulse/fs"
)

func main() {
	di := flag.String("di", "manual", "dependency wiring: manual | wire")
	flag.Parse()

	conf := core.NewConfig()
	switch *di {
	case "wire":
		startWithWire(conf)
	default:
		startManual(conf)
	}
}

// run initializes the app around a built server and serves until shutdown.
func run(server *echoapi.Server) {
	conf, logger := server.Conf, server.Logger

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, database %q", conf.Build, conf.Database.Engine))
	defer logger.Info("Application stopped")

	core.InitValidators(server.Validate, server.Translator)
	user.InitValidators(server.Validate, server.Translator)
	course.InitValidators(server.Validate, server.Translator)

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, false, logger)

	if conf.Admin.Email != "" {
		created, err := server.UserSvc.EnsureAdmin(context.Background(), conf.Admin.Name, conf.Admin.Email, conf.Admin.Password)
		if err != nil {
			logger.Fatal(fmt.Sprintf("creating admin account: %v", err), err)
		}
		if created {
			logger.Info(fmt.Sprintf("admin account %q created", conf.Admin.Email))
		}
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
