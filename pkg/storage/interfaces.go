package storage

import "trends-go/pkg/trends"

// RecordStore persists flattened trend records to durable storage.
// Implementations are expected to be idempotent across overlapping runs.
type RecordStore interface {
	Persist(records []trends.TrendRecord, path string) error
}
