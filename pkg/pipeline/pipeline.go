package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"trends-go/pkg/api"
	"trends-go/pkg/daterange"
	"trends-go/pkg/logger"
	"trends-go/pkg/storage"
	"trends-go/pkg/trends"
	"trends-go/pkg/validate"
)

const (
	engineGoogleTrends = "google_trends"
	dataTypeTimeseries = "TIMESERIES"
)

// ErrRunInProgress is returned when Run is called while a previous run is
// still writing. The CSV store has no concurrent-writer protection, so
// overlapping runs are refused rather than risked.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Config holds the per-deployment pipeline settings.
type Config struct {
	SearchTerms  []string
	Location     string
	WindowMonths int
	OutputPath   string
	FetchWorkers int
}

// RunResult summarizes one completed pipeline run.
type RunResult struct {
	Records  int              `json:"records"`
	PerTerm  map[string]int   `json:"per_term"`
	Report   *validate.Report `json:"report"`
	Duration string           `json:"duration"`
}

// Pipeline wires the fetch-normalize-validate-persist stages: for every
// configured search term it fetches a timeseries over the rolling window,
// flattens it, then validates and persists the concatenated batch.
type Pipeline struct {
	client    api.TrendsAPI
	window    *daterange.DateRange
	validator *validate.Validator
	store     storage.RecordStore
	config    Config
	log       *logger.Logger

	running    atomic.Bool
	mu         sync.RWMutex
	lastReport *validate.Report
}

func New(client api.TrendsAPI, store storage.RecordStore, config Config, log *logger.Logger) *Pipeline {
	if config.FetchWorkers <= 0 {
		config.FetchWorkers = 1
	}
	months := config.WindowMonths
	if months <= 0 {
		months = 6
	}

	return &Pipeline{
		client:    client,
		window:    daterange.Months(months),
		validator: validate.New(log),
		store:     store,
		config:    config,
		log:       log.WithComponent("pipeline"),
	}
}

// Run executes one full pipeline pass. A permanent API failure for one term
// is logged and that term contributes zero records; a transient failure
// that survives the retry budget fails the whole run. The validation report
// is retained for LastReport regardless of the validation outcome.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	start := time.Now()
	p.log.WithFields(map[string]interface{}{
		"terms":    len(p.config.SearchTerms),
		"location": p.config.Location,
		"window":   p.window.QueryString(),
	}).Info("Starting pipeline run")

	perTerm, err := p.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var records []trends.TrendRecord
	counts := make(map[string]int, len(p.config.SearchTerms))
	for i, term := range p.config.SearchTerms {
		records = append(records, perTerm[i]...)
		counts[term] = len(perTerm[i])
	}

	report := p.validator.Records(records, p.config.SearchTerms)
	p.mu.Lock()
	p.lastReport = report
	p.mu.Unlock()

	p.logSummary(records)

	if err := p.store.Persist(records, p.config.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to persist records: %w", err)
	}

	duration := time.Since(start)
	p.log.WithFields(map[string]interface{}{
		"records":  len(records),
		"valid":    report.Valid,
		"duration": duration.String(),
	}).Info("Pipeline run completed")

	return &RunResult{
		Records:  len(records),
		PerTerm:  counts,
		Report:   report,
		Duration: duration.String(),
	}, nil
}

// LastReport returns the validation report of the most recent run, or nil
// before the first run. This is the side channel for callers that act on
// validation findings without consuming the records.
func (p *Pipeline) LastReport() *validate.Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastReport
}

// fetchAll fetches every term and returns the normalized records indexed by
// term position, preserving configured term order regardless of worker
// count. Terms share no state, so failures stay isolated per term.
func (p *Pipeline) fetchAll(ctx context.Context) ([][]trends.TrendRecord, error) {
	terms := p.config.SearchTerms
	results := make([][]trends.TrendRecord, len(terms))

	if p.config.FetchWorkers == 1 {
		for i, term := range terms {
			records, err := p.fetchTerm(ctx, term)
			if err != nil {
				return nil, err
			}
			results[i] = records
		}
		return results, nil
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.config.FetchWorkers)
	errs := make([]error, len(terms))

	for i, term := range terms {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i], errs[i] = p.fetchTerm(ctx, term)
		}(i, term)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// fetchTerm fetches and flattens one term's timeseries. Permanent errors
// are swallowed here: the term is logged and skipped so the remaining terms
// still run.
func (p *Pipeline) fetchTerm(ctx context.Context, term string) ([]trends.TrendRecord, error) {
	log := p.log.WithField("term", term)
	log.Info("Fetching search-interest timeseries")

	params := api.QueryParams{
		Engine:   engineGoogleTrends,
		Query:    term,
		Geo:      p.config.Location,
		Date:     p.window.QueryString(),
		DataType: dataTypeTimeseries,
	}

	response, err := p.client.FetchTimeseries(ctx, params)
	if err != nil {
		if api.IsPermanent(err) {
			log.WithError(err).Warn("Permanent API error, skipping term")
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %q: %w", term, err)
	}

	records := trends.Normalize(response, p.config.Location)
	log.WithField("records", len(records)).Info("Term fetched")
	return records, nil
}

// logSummary logs per-term aggregate interest statistics, mirroring what a
// daily report reader wants to see without opening the CSV.
func (p *Pipeline) logSummary(records []trends.TrendRecord) {
	if len(records) == 0 {
		p.log.Warn("No records collected, skipping summary")
		return
	}

	type stats struct {
		count int
		sum   int
		min   int
		max   int
	}
	byTerm := make(map[string]*stats)
	for _, record := range records {
		s := byTerm[record.Query]
		if s == nil {
			s = &stats{min: record.ExtractedValue, max: record.ExtractedValue}
			byTerm[record.Query] = s
		}
		s.count++
		s.sum += record.ExtractedValue
		if record.ExtractedValue < s.min {
			s.min = record.ExtractedValue
		}
		if record.ExtractedValue > s.max {
			s.max = record.ExtractedValue
		}
	}

	for _, term := range p.config.SearchTerms {
		s := byTerm[term]
		if s == nil {
			continue
		}
		p.log.WithFields(map[string]interface{}{
			"term":  term,
			"count": s.count,
			"mean":  float64(s.sum) / float64(s.count),
			"min":   s.min,
			"max":   s.max,
		}).Info("Term interest summary")
	}
}
