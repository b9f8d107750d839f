package main

import (
	"context"
	"log"

	wire_container "github.com/edupulse/edupulse/apps/api/di/wire"
	"github.com/edupulse/edupulse/core"
)

func startWithWire(conf *core.Config) {
	server, cleanup, err := wire_container.InitializeServer(context.Background(), conf)
	if err != nil {
		log.Fatalf("initializing server: %v", err)
	}
	defer cleanup()

	run(server)
}
