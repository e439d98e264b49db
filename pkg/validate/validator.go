package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"trends-go/pkg/logger"
	"trends-go/pkg/trends"
)

// Row is the flat row view a record presents to validation. Using a map
// rather than the record struct lets the schema check detect missing and
// unexpected fields, and lets callers attach optional metadata (raw
// timestamp, requested date range) for the best-effort edge-gap check.
type Row map[string]interface{}

// Optional metadata keys consumed by the edge-gap check. The normalizer
// does not emit them; the check skips silently when they are absent.
const (
	MetaTimestamp = "timestamp"
	MetaDateRange = "date_range"
)

const (
	dateLayout = "2006-01-02"
	// Edge gaps smaller than this share of the requested window are noise.
	edgeGapTolerance = 0.05
)

const (
	kindString  = "string"
	kindNumeric = "numeric"
)

// expectedSchema maps each canonical field to its type class.
var expectedSchema = func() map[string]string {
	schema := make(map[string]string, len(trends.FieldOrder))
	for _, field := range trends.FieldOrder {
		if field == trends.FieldExtractedValue {
			schema[field] = kindNumeric
		} else {
			schema[field] = kindString
		}
	}
	return schema
}()

// Validator runs schema, coverage, and anomaly checks over record batches.
type Validator struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Validator {
	return &Validator{log: log.WithComponent("validator")}
}

// Records validates flattened trend records against the expected terms.
func (v *Validator) Records(records []trends.TrendRecord, expectedTerms []string) *Report {
	rows := make([]Row, len(records))
	for i, record := range records {
		rows[i] = record.Fields()
	}
	return v.Validate(rows, expectedTerms)
}

// Validate runs all check categories over the rows and returns the
// accumulated report. It never fails; an empty batch is itself reported as
// invalid, which distinguishes "no data collected" from "data collected but
// flawed".
func (v *Validator) Validate(rows []Row, expectedTerms []string) *Report {
	report := newReport(len(rows))

	if len(rows) == 0 {
		v.log.Warn("Validation: no records to validate")
		report.Valid = false
		return report
	}

	v.checkSchema(rows, report)
	v.checkCoverage(rows, expectedTerms, report)
	v.checkAnomalies(rows, report)

	if report.Valid {
		v.log.WithField("records", len(rows)).Info("Validation passed")
	} else {
		v.log.WithFields(map[string]interface{}{
			"records": len(rows),
			"issues":  report.IssueCount(),
		}).Warn("Validation found issues")
	}

	return report
}

// checkSchema verifies field presence and type-class consistency against the
// canonical six-field schema.
func (v *Validator) checkSchema(rows []Row, report *Report) {
	actual := presentFields(rows)

	var missing []string
	for field := range expectedSchema {
		if !actual[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		v.schemaError(report, fmt.Sprintf("missing fields: %s", strings.Join(missing, ", ")))
	}

	var extra []string
	for field := range actual {
		if _, ok := expectedSchema[field]; !ok {
			extra = append(extra, field)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		v.schemaError(report, fmt.Sprintf("unexpected fields: %s", strings.Join(extra, ", ")))
	}

	for _, field := range trends.FieldOrder {
		if !actual[field] {
			continue
		}

		kind := expectedSchema[field]
		for _, row := range rows {
			value, ok := row[field]
			if !ok || value == nil {
				continue
			}
			if kind == kindNumeric && !isNumeric(value) {
				v.schemaError(report, fmt.Sprintf("field '%s' expected numeric, got %T", field, value))
				break
			}
			if kind == kindString && !isString(value) {
				v.schemaError(report, fmt.Sprintf("field '%s' expected string, got %T", field, value))
				break
			}
		}
	}
}

func (v *Validator) schemaError(report *Report, msg string) {
	v.log.Warn("Schema: " + msg)
	report.SchemaErrors = append(report.SchemaErrors, msg)
	report.Valid = false
}

// checkCoverage verifies that every expected term appears at every distinct
// date present in the batch. Terms in the data but not in expectedTerms are
// not penalized.
func (v *Validator) checkCoverage(rows []Row, expectedTerms []string, report *Report) {
	actual := presentFields(rows)
	if !actual[trends.FieldQuery] || !actual[trends.FieldDate] {
		return
	}

	byDate := make(map[string]map[string]bool)
	for _, row := range rows {
		date, _ := asString(row[trends.FieldDate])
		query, _ := asString(row[trends.FieldQuery])
		if byDate[date] == nil {
			byDate[date] = make(map[string]bool)
		}
		byDate[date][query] = true
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		var missing []string
		for _, term := range expectedTerms {
			if !byDate[date][term] {
				missing = append(missing, term)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)

		msg := fmt.Sprintf("date %s: missing search terms %s", date, strings.Join(missing, ", "))
		v.log.Warn("Coverage: " + msg)
		report.CoverageGaps = append(report.CoverageGaps, msg)
		report.Valid = false
	}
}

func (v *Validator) checkAnomalies(rows []Row, report *Report) {
	v.checkNullValues(rows, report)
	v.checkZeroExtractedValues(rows, report)
	v.checkDateRangeEdgeGaps(rows, report)
}

// checkNullValues counts, per field, the rows where the value is absent,
// nil, or a whitespace-only string. Any hit invalidates the batch.
func (v *Validator) checkNullValues(rows []Row, report *Report) {
	for _, field := range fieldIterationOrder(rows) {
		count := 0
		for _, row := range rows {
			value, ok := row[field]
			if !ok || value == nil {
				count++
				continue
			}
			if s, isStr := asString(value); isStr && strings.TrimSpace(s) == "" {
				count++
			}
		}

		if count > 0 {
			msg := fmt.Sprintf("field '%s' has %d null/empty value(s)", field, count)
			v.log.Warn("Anomaly: " + msg)
			report.Anomalies = append(report.Anomalies, msg)
			report.Valid = false
		}
	}
}

// checkZeroExtractedValues counts zero extracted_value rows. Zero interest
// is a legitimate data value, so this is recorded without invalidating the
// batch.
func (v *Validator) checkZeroExtractedValues(rows []Row, report *Report) {
	count := 0
	for _, row := range rows {
		if n, ok := asFloat(row[trends.FieldExtractedValue]); ok && n == 0 {
			count++
		}
	}

	if count > 0 {
		msg := fmt.Sprintf("%d record(s) with zero extracted_value", count)
		v.log.Warn("Anomaly: " + msg)
		report.Anomalies = append(report.Anomalies, msg)
	}
}

// checkDateRangeEdgeGaps compares observed raw timestamps against the
// requested window and flags data that starts well after the window opens
// or ends well before it closes. Best-effort: it needs the optional
// timestamp and date_range row metadata and skips silently without them.
func (v *Validator) checkDateRangeEdgeGaps(rows []Row, report *Report) {
	var earliest, latest float64
	seen := false
	for _, row := range rows {
		ts, ok := asEpoch(row[MetaTimestamp])
		if !ok {
			continue
		}
		if !seen || ts < earliest {
			earliest = ts
		}
		if !seen || ts > latest {
			latest = ts
		}
		seen = true
	}
	if !seen {
		return
	}

	start, end, ok := requestedWindow(rows)
	if !ok {
		return
	}

	total := end - start
	if total <= 0 {
		return
	}
	tolerance := total * edgeGapTolerance

	if gap := earliest - start; gap > tolerance {
		msg := fmt.Sprintf("empty data range gap at start: data begins %d day(s) after requested start date",
			int(gap/86400))
		v.log.Warn("Anomaly: " + msg)
		report.Anomalies = append(report.Anomalies, msg)
		report.Valid = false
	}

	if gap := end - latest; gap > tolerance {
		msg := fmt.Sprintf("empty data range gap at end: data ends %d day(s) before requested end date",
			int(gap/86400))
		v.log.Warn("Anomaly: " + msg)
		report.Anomalies = append(report.Anomalies, msg)
		report.Valid = false
	}
}

// requestedWindow extracts the first parseable "YYYY-MM-DD YYYY-MM-DD"
// date_range value as epoch seconds.
func requestedWindow(rows []Row) (start, end float64, ok bool) {
	for _, row := range rows {
		raw, isStr := asString(row[MetaDateRange])
		if !isStr {
			continue
		}
		parts := strings.Fields(raw)
		if len(parts) != 2 {
			continue
		}
		startT, err1 := time.Parse(dateLayout, parts[0])
		endT, err2 := time.Parse(dateLayout, parts[1])
		if err1 != nil || err2 != nil {
			continue
		}
		return float64(startT.Unix()), float64(endT.Unix()), true
	}
	return 0, 0, false
}

// presentFields reports which fields appear on at least one row.
func presentFields(rows []Row) map[string]bool {
	present := make(map[string]bool)
	for _, row := range rows {
		for field := range row {
			present[field] = true
		}
	}
	return present
}

// fieldIterationOrder returns canonical fields first, then any extra fields
// sorted, so report messages come out in a deterministic order.
func fieldIterationOrder(rows []Row) []string {
	present := presentFields(rows)

	order := make([]string, 0, len(present))
	for _, field := range trends.FieldOrder {
		if present[field] {
			order = append(order, field)
			delete(present, field)
		}
	}

	extras := make([]string, 0, len(present))
	for field := range present {
		extras = append(extras, field)
	}
	sort.Strings(extras)

	return append(order, extras...)
}

func asString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func isString(value interface{}) bool {
	_, ok := value.(string)
	return ok
}

func isNumeric(value interface{}) bool {
	_, ok := asFloat(value)
	return ok
}

func asFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// asEpoch accepts raw timestamps as numbers or numeric strings, matching
// how the vendor serializes them.
func asEpoch(value interface{}) (float64, bool) {
	if n, ok := asFloat(value); ok {
		return n, true
	}
	if s, ok := asString(value); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
