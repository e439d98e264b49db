package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"trends-go/pkg/logger"
	"trends-go/pkg/trends"
)

// CSVStore writes trend records to a CSV file with idempotent
// deduplication. When the destination already exists, new records are
// merged with the existing rows, sorted by created_at ascending, and
// deduplicated on (query, date, location) keeping the last occurrence, so
// the most recently created record wins for any key.
//
// The merge is a full read-modify-write with no locking or atomic replace.
// Callers must ensure single-writer access, e.g. one pipeline run at a
// time.
type CSVStore struct {
	log *logger.Logger
}

func NewCSVStore(log *logger.Logger) *CSVStore {
	return &CSVStore{log: log.WithComponent("csv_store")}
}

// Persist merges records into the CSV file at path. An empty batch is a
// no-op; a warning is logged and the destination is left untouched.
func (s *CSVStore) Persist(records []trends.TrendRecord, path string) error {
	if len(records) == 0 {
		s.log.Warn("No records to persist, skipping CSV output")
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	combined := records
	if _, err := os.Stat(path); err == nil {
		existing, err := s.readAll(path)
		if err != nil {
			return fmt.Errorf("failed to read existing records: %w", err)
		}
		combined = append(existing, records...)
	}

	merged := dedupeKeepLast(sortByCreatedAt(combined))

	if err := s.writeAll(path, merged); err != nil {
		return err
	}

	s.log.WithFields(map[string]interface{}{
		"new_records":   len(records),
		"total_records": len(merged),
		"path":          path,
	}).Info("Wrote trend records")

	return nil
}

func (s *CSVStore) readAll(path string) ([]trends.TrendRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Columns are resolved by header name so a hand-edited file with
	// reordered columns still reads correctly.
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, field := range trends.FieldOrder {
		if _, ok := index[field]; !ok {
			return nil, fmt.Errorf("existing CSV is missing column %q", field)
		}
	}

	records := make([]trends.TrendRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		extracted, err := strconv.Atoi(row[index[trends.FieldExtractedValue]])
		if err != nil {
			return nil, fmt.Errorf("invalid extracted_value %q: %w",
				row[index[trends.FieldExtractedValue]], err)
		}

		records = append(records, trends.TrendRecord{
			Query:          row[index[trends.FieldQuery]],
			Location:       row[index[trends.FieldLocation]],
			Date:           row[index[trends.FieldDate]],
			Value:          row[index[trends.FieldValue]],
			ExtractedValue: extracted,
			CreatedAt:      row[index[trends.FieldCreatedAt]],
		})
	}

	return records, nil
}

func (s *CSVStore) writeAll(path string, records []trends.TrendRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(trends.FieldOrder); err != nil {
		return err
	}
	for _, record := range records {
		row := []string{
			record.Query,
			record.Location,
			record.Date,
			record.Value,
			strconv.Itoa(record.ExtractedValue),
			record.CreatedAt,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func sortByCreatedAt(records []trends.TrendRecord) []trends.TrendRecord {
	sorted := make([]trends.TrendRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})
	return sorted
}

// dedupeKeepLast drops duplicate (query, date, location) keys, keeping each
// key's last occurrence in its sorted position.
func dedupeKeepLast(records []trends.TrendRecord) []trends.TrendRecord {
	lastIndex := make(map[string]int, len(records))
	for i, record := range records {
		lastIndex[dedupeKey(record)] = i
	}

	result := make([]trends.TrendRecord, 0, len(lastIndex))
	for i, record := range records {
		if lastIndex[dedupeKey(record)] == i {
			result = append(result, record)
		}
	}
	return result
}

func dedupeKey(record trends.TrendRecord) string {
	return record.Query + "\x1f" + record.Date + "\x1f" + record.Location
}
