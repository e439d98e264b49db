package service

import (
	"time"

	"trends-go/internal/config"
	"trends-go/pkg/api"
	"trends-go/pkg/logger"
	"trends-go/pkg/pipeline"
	"trends-go/pkg/storage"
)

// BuildPipeline assembles the pipeline from loaded configuration: trends
// client with retry and QPS cap, CSV store, and the term loop around them.
func BuildPipeline(cfg *config.Config, log *logger.Logger) *pipeline.Pipeline {
	client := api.NewClient(api.ClientConfig{
		Endpoint:       cfg.API.Endpoint,
		APIKey:         cfg.API.Key,
		Timeout:        time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RateLimitQPS:   cfg.API.RateLimitQPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
		Backoff: api.NewBackoff(
			cfg.Retry.MaxAttempts,
			time.Duration(cfg.Retry.BaseDelayMs)*time.Millisecond,
			time.Duration(cfg.Retry.MaxDelayMs)*time.Millisecond,
			time.Duration(cfg.Retry.JitterMs)*time.Millisecond,
		),
	}, log)

	return pipeline.New(client, storage.NewCSVStore(log), pipeline.Config{
		SearchTerms:  cfg.Trends.SearchTerms,
		Location:     cfg.Trends.Location,
		WindowMonths: cfg.Trends.WindowMonths,
		OutputPath:   cfg.Storage.OutputPath,
		FetchWorkers: cfg.Worker.FetchWorkers,
	}, log)
}
