package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trends-go/internal/config"
	"trends-go/internal/handler"
	"trends-go/internal/service"
	"trends-go/pkg/logger"
)

// Control-server entry point: the pipeline stays idle until triggered over
// HTTP, which suits orchestrators that prefer calling a service to running
// a binary.
func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config/config.yaml", "Configuration file path")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.NewManager().Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logCfg := cfg.Logger
	if *debug {
		logCfg.Level = "debug"
	}
	log := logger.New(logCfg)
	logger.SetLogger(log)

	p := service.BuildPipeline(cfg, log)
	app := handler.NewApp(handler.NewController(p, log))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.WithField("addr", addr).Info("Control server listening")
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutdown signal received")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.WithError(err).Warn("Server did not stop cleanly")
	}
	log.Info("Server stopped")
}
