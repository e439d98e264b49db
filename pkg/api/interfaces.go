package api

import "context"

// TrendsAPI fetches one search-interest timeseries per call. Implementations
// classify failures as *TransientError or *PermanentError.
type TrendsAPI interface {
	FetchTimeseries(ctx context.Context, params QueryParams) (*TrendsResponse, error)
}
