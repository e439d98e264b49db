package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trends-go/pkg/logger"
	"trends-go/pkg/trends"
)

func testStore() *CSVStore {
	return NewCSVStore(logger.New(logger.Config{Level: "fatal"}))
}

func record(query, date, location, value string, extracted int, createdAt string) trends.TrendRecord {
	return trends.TrendRecord{
		Query:          query,
		Location:       location,
		Date:           date,
		Value:          value,
		ExtractedValue: extracted,
		CreatedAt:      createdAt,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestPersist_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")

	err := testStore().Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
	}, path)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, trends.FieldOrder, rows[0])
	assert.Equal(t, []string{"vpn", "US", "W1", "80", "80", "t1"}, rows[1])
}

func TestPersist_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "trends.csv")

	err := testStore().Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
	}, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestPersist_EmptyBatchLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	store := testStore()

	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
	}, path))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Persist(nil, path))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPersist_EmptyBatchDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")

	require.NoError(t, testStore().Persist(nil, path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPersist_RepeatedRunsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	store := testStore()
	batch := []trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
		record("vpn", "W2", "US", "70", 70, "t1"),
	}

	require.NoError(t, store.Persist(batch, path))
	require.NoError(t, store.Persist(batch, path))

	rows := readCSV(t, path)
	assert.Len(t, rows, 3, "re-persisting the same batch must not duplicate rows")
}

func TestPersist_LaterCreatedAtWinsForSameKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	store := testStore()

	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
	}, path))
	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "85", 85, "t2"),
	}, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"vpn", "US", "W1", "85", "85", "t2"}, rows[1])
}

func TestPersist_OlderRecordDoesNotOverwriteNewer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	store := testStore()

	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "85", 85, "t2"),
	}, path))
	// A backfill run delivering older data for the same key.
	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
	}, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "t2", rows[1][5], "newest created_at must win after the merge sort")
}

func TestPersist_DistinctKeysAllKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	store := testStore()

	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
		record("vpn", "W1", "DE", "60", 60, "t1"),
		record("antivirus", "W1", "US", "40", 40, "t1"),
		record("vpn", "W2", "US", "75", 75, "t1"),
	}, path))

	rows := readCSV(t, path)
	assert.Len(t, rows, 5)
}

func TestPersist_OutputSortedByCreatedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	store := testStore()

	require.NoError(t, store.Persist([]trends.TrendRecord{
		record("b", "W1", "US", "2", 2, "t3"),
		record("a", "W1", "US", "1", 1, "t1"),
		record("c", "W1", "US", "3", 3, "t2"),
	}, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{rows[1][5], rows[2][5], rows[3][5]})
}

func TestPersist_RejectsForeignCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	require.NoError(t, os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0644))

	err := testStore().Persist([]trends.TrendRecord{
		record("vpn", "W1", "US", "80", 80, "t1"),
	}, path)
	assert.Error(t, err)
}
