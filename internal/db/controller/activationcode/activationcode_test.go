package activationcode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.ActivationCode{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedCodes inserts test data into the database.
func seedCodes(t *testing.T, db *gorm.DB, rows []models.ActivationCode) {
	t.Helper()

	for _, row := range rows {
		require.NoError(t, db.Create(&row).Error, "failed to seed test data")
	}
}

func TestNilDB(t *testing.T) {
	r := New(nil)

	_, err := r.GetByCode(context.Background(), "X")
	require.ErrorIs(t, err, ErrDBNil)
}

func TestCreateBatchAndExisting(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := New(db)

	rows := []models.ActivationCode{{Code: "AAA", Type: 0}, {Code: "BBB", Type: 1}}
	require.NoError(t, r.CreateBatch(ctx, rows))

	existing, err := r.ExistingCodes(ctx, []string{"AAA", "CCC", "BBB"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, existing)

	// a duplicate inside the batch rolls back the whole batch
	err = r.CreateBatch(ctx, []models.ActivationCode{{Code: "DDD"}, {Code: "AAA"}})
	require.Error(t, err)

	_, err = r.GetByCode(ctx, "DDD")
	require.ErrorIs(t, err, activation.ErrCodeNotFound)
}

func TestTransitionIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := New(db)

	seedCodes(t, db, []models.ActivationCode{{Code: "CAS"}})

	row, err := r.GetByCode(ctx, "CAS")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	change := activation.StatusChange{To: activation.StatusDistributed, DistributedAt: &now}

	ok, err := r.Transition(ctx, row.ID, activation.StatusUnused, change)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Transition(ctx, row.ID, activation.StatusUnused, change)
	require.NoError(t, err)
	assert.False(t, ok, "second transition from the stale status must not apply")

	row, err = r.GetByCode(ctx, "CAS")
	require.NoError(t, err)
	assert.Equal(t, uint8(activation.StatusDistributed), row.Status)
	require.NotNil(t, row.DistributedAt)
	assert.True(t, now.Equal(*row.DistributedAt))
}

func TestConcurrentRegisterHasOneWinner(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := New(db)

	seedCodes(t, db, []models.ActivationCode{{Code: "RACE", Status: uint8(activation.StatusDistributed)}})

	svc, err := activation.NewService(r, activation.Config{})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := svc.Register(ctx, "RACE"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, activation.ErrCodeAlreadyActivated)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := New(db)

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	seedCodes(t, db, []models.ActivationCode{
		{Code: "D1", Type: 0, Status: 0},
		{Code: "D2", Type: 0, Status: 1, DistributedAt: &early},
		{Code: "M1", Type: 1, Status: 1, DistributedAt: &late},
		{Code: "Y1", Type: 2, Status: 3},
	})

	day := activation.TypeDay
	distributed := activation.StatusDistributed
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		filter   activation.Filter
		expected []string
	}{
		{name: "no filter", expected: []string{"Y1", "M1", "D2", "D1"}},
		{name: "by type", filter: activation.Filter{Type: &day}, expected: []string{"D2", "D1"}},
		{name: "by status", filter: activation.Filter{Status: &distributed}, expected: []string{"M1", "D2"}},
		{name: "by code", filter: activation.Filter{Code: "M1"}, expected: []string{"M1"}},
		{name: "distributed before", filter: activation.Filter{DistributedTo: &cutoff}, expected: []string{"D2"}},
		{name: "distributed after", filter: activation.Filter{DistributedFrom: &cutoff}, expected: []string{"M1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, total, err := r.List(ctx, tc.filter, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.expected)), total)

			got := make([]string, 0, len(rows))
			for _, row := range rows {
				got = append(got, row.Code)
			}

			assert.Equal(t, tc.expected, got)
		})
	}

	rows, total, err := r.List(ctx, activation.Filter{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "D2", rows[0].Code)
}

func TestListUnusedAndCounts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := New(db)

	seedCodes(t, db, []models.ActivationCode{
		{Code: "A", Type: 1},
		{Code: "B", Type: 1},
		{Code: "C", Type: 1, Status: 2},
		{Code: "D", Type: 0},
	})

	rows, err := r.ListUnused(ctx, activation.TypeMonth, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Code)

	counts, err := r.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[activation.TypeMonth][activation.StatusUnused])
	assert.Equal(t, int64(1), counts[activation.TypeMonth][activation.StatusActivated])
	assert.Equal(t, int64(1), counts[activation.TypeDay][activation.StatusUnused])
}
