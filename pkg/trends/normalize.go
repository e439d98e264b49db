package trends

import (
	"strconv"
	"time"

	"trends-go/pkg/api"
)

const (
	vendorCreatedAtLayout = "2006-01-02 15:04:05 MST"
	outputTimeLayout      = "2006-01-02 15:04:05-0700"
)

// Normalize flattens one raw trends response into flat records, one per
// (timeline-point, value-entry) pair, in input order. Responses without an
// interest-over-time section or without timeline data yield an empty slice,
// never an error. The response-level created_at is read once and stamped on
// every emitted record.
func Normalize(response *api.TrendsResponse, location string) []TrendRecord {
	if response == nil || response.InterestOverTime == nil {
		return nil
	}

	timeline := response.InterestOverTime.TimelineData
	if len(timeline) == 0 {
		return nil
	}

	var createdAt string
	if response.SearchMetadata != nil {
		createdAt = formatCreatedAt(response.SearchMetadata.CreatedAt)
	}

	var records []TrendRecord
	for _, point := range timeline {
		date := formatTimestamp(point.Timestamp)
		if date == "" {
			date = point.Date
		}

		for _, val := range point.Values {
			records = append(records, TrendRecord{
				Query:          val.Query,
				Location:       location,
				Date:           date,
				Value:          val.Value,
				ExtractedValue: val.ExtractedValue,
				CreatedAt:      createdAt,
			})
		}
	}

	return records
}

// formatTimestamp converts a Unix epoch string to the output layout.
// Unparseable input passes through unchanged rather than failing the batch.
func formatTimestamp(raw string) string {
	if raw == "" {
		return ""
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}

	return time.Unix(seconds, 0).UTC().Format(outputTimeLayout)
}

// formatCreatedAt reparses the vendor's created_at into the output layout,
// falling back to the raw string when it does not match.
func formatCreatedAt(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := time.Parse(vendorCreatedAtLayout, raw)
	if err != nil {
		return raw
	}

	return parsed.Format(outputTimeLayout)
}
