package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// sqlRecorder captures every statement gorm renders so dry-run tests can
// assert on the generated SQL.
type sqlRecorder struct {
	logger.Interface
	sqls []string
}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.sqls = append(r.sqls, sql)
}

func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{Interface: logger.Default.LogMode(logger.Silent)}
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true, Logger: rec})
	require.NoError(t, err)
	return db, rec
}

func lastLockingSQL(t *testing.T, rec *sqlRecorder) string {
	t.Helper()
	require.NotEmpty(t, rec.sqls)
	return rec.sqls[len(rec.sqls)-1]
}

// The row lock is what serializes concurrent transitions on one booking, so
// the locking clause must actually reach the SQL the driver executes.
func TestBookingFindByIDForUpdate_EmitsRowLock(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingRepository(db)

	_, _ = repo.FindByIDForUpdate(context.Background(), db, 1)

	sql := lastLockingSQL(t, rec)
	assert.True(t, strings.Contains(sql, "FOR UPDATE"), "expected FOR UPDATE in %q", sql)
}

func TestDisputeFindByIDForUpdate_EmitsRowLock(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewDisputeRepository(db)

	_, _ = repo.FindByIDForUpdate(context.Background(), db, 1)

	sql := lastLockingSQL(t, rec)
	assert.True(t, strings.Contains(sql, "FOR UPDATE"), "expected FOR UPDATE in %q", sql)
}
