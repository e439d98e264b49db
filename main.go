package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trends-go/internal/config"
	"trends-go/internal/service"
	"trends-go/pkg/logger"
	"trends-go/pkg/pipeline"
)

func main() {
	// Secrets (TRENDS_API_KEY) may come from a local .env outside of CI.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config/config.yaml", "Configuration file path")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		interval   = flag.Duration("interval", 0, "Run repeatedly at this interval (0 = run once and exit)")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 {
		if err := runOnce(ctx, p, log); err != nil {
			os.Exit(1)
		}
		return
	}

	log.WithField("interval", interval.String()).Info("Starting scheduled pipeline")
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	// Scheduled mode keeps going across failed runs; the next tick retries.
	_ = runOnce(ctx, p, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down")
			return
		case <-ticker.C:
			_ = runOnce(ctx, p, log)
		}
	}
}

// runOnce executes one pipeline pass. Validation findings are logged but do
// not fail the run; the report is data for the operator, not an abort
// signal.
func runOnce(ctx context.Context, p *pipeline.Pipeline, log *logger.Logger) error {
	result, err := p.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Pipeline run failed")
		return err
	}

	if !result.Report.Valid {
		log.WithFields(map[string]interface{}{
			"records": result.Records,
			"issues":  result.Report.IssueCount(),
		}).Warn("Validation reported issues")
	}

	return nil
}
