package trends

// Canonical flat-record field names, in persisted column order.
const (
	FieldQuery          = "query"
	FieldLocation       = "location"
	FieldDate           = "date"
	FieldValue          = "value"
	FieldExtractedValue = "extracted_value"
	FieldCreatedAt      = "created_at"
)

// FieldOrder is the canonical column order for CSV output and schema
// validation.
var FieldOrder = []string{
	FieldQuery,
	FieldLocation,
	FieldDate,
	FieldValue,
	FieldExtractedValue,
	FieldCreatedAt,
}

// TrendRecord is one flattened search-interest observation: a single
// (timeline-point, value-entry) pair from a vendor response. Records are
// value objects; stages pass them by copy.
type TrendRecord struct {
	Query          string
	Location       string
	Date           string
	Value          string
	ExtractedValue int
	CreatedAt      string
}

// Fields returns the flat row view keyed by canonical field name.
func (r TrendRecord) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldQuery:          r.Query,
		FieldLocation:       r.Location,
		FieldDate:           r.Date,
		FieldValue:          r.Value,
		FieldExtractedValue: r.ExtractedValue,
		FieldCreatedAt:      r.CreatedAt,
	}
}
