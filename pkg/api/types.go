package api

import "net/url"

// QueryParams carries the parameters for one timeseries request against the
// trends API.
type QueryParams struct {
	Engine   string
	Query    string
	Geo      string
	Date     string
	DataType string
	APIKey   string
}

// Values encodes the parameters in the form the vendor endpoint expects.
func (p QueryParams) Values() url.Values {
	values := url.Values{}
	values.Set("engine", p.Engine)
	values.Set("q", p.Query)
	values.Set("geo", p.Geo)
	values.Set("date", p.Date)
	values.Set("data_type", p.DataType)
	values.Set("api_key", p.APIKey)
	return values
}

// The response types below mirror the vendor JSON shape. Every section is
// optional; absent fields decode to zero values so callers never deal with
// missing keys.

type SearchMetadata struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type SearchParameters struct {
	Date     string `json:"date"`
	DataType string `json:"data_type"`
}

// TimelineValue is a single value entry inside a timeline point. One point
// can carry a value per queried term.
type TimelineValue struct {
	Query          string `json:"query"`
	Value          string `json:"value"`
	ExtractedValue int    `json:"extracted_value"`
}

// TimelinePoint is one time-bucketed observation in the interest-over-time
// series.
type TimelinePoint struct {
	Date      string          `json:"date"`
	Timestamp string          `json:"timestamp"`
	Values    []TimelineValue `json:"values"`
}

type InterestOverTime struct {
	TimelineData []TimelinePoint `json:"timeline_data"`
}

// TrendsResponse is the top-level vendor response. A successful HTTP
// exchange may still carry an application-level Error string instead of
// data.
type TrendsResponse struct {
	SearchMetadata   *SearchMetadata   `json:"search_metadata"`
	SearchParameters *SearchParameters `json:"search_parameters"`
	InterestOverTime *InterestOverTime `json:"interest_over_time"`
	Error            string            `json:"error"`
}
