package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"teamboard/config"
	"teamboard/connection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[server] Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	server, err := connection.StartServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[server] Failed to start: %v", err)
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, server.Shutdown)

	exitCode := <-wait
	log.Printf("[server] Exited with code: %d", exitCode)
	os.Exit(exitCode)
}
