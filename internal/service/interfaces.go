package service

import (
	"context"

	"trends-go/pkg/pipeline"
	"trends-go/pkg/validate"
)

// PipelineService triggers pipeline runs and exposes the most recent
// validation report as a side channel.
type PipelineService interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
	LastReport() *validate.Report
}
