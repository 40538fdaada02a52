package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex:test_models_name_uniq"`
}

func newTestDB(t *testing.T, cfg *gorm.Config) *gorm.DB {
	t.Helper()
	if cfg == nil {
		cfg = &gorm.Config{SkipDefaultTransaction: true}
	}
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), cfg)
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))
	return conn
}

func countRows(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&testModel{}).Count(&count).Error)
	return count
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := newTestDB(t, nil)
	client := FromGorm(conn)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}))
	assert.EqualValues(t, 1, countRows(t, conn))

	boom := errors.New("boom")
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&testModel{Name: "rolled"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, countRows(t, conn))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := newTestDB(t, nil)
	client := FromGorm(conn)

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&testModel{Name: "half-done"})
			panic("handler bug")
		})
	})
	assert.Zero(t, countRows(t, conn))
}

func TestPing(t *testing.T) {
	assert.NoError(t, FromGorm(newTestDB(t, nil)).Ping(context.Background()))
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, true, nil)
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	conn := newTestDB(t, nil)
	require.NoError(t, conn.Create(&testModel{Name: "dup"}).Error)

	err := conn.Create(&testModel{Name: "dup"}).Error
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "test_models.name"))
	assert.False(t, IsUniqueViolation(err, "test_models.other"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestQueryLoggerReportsFailuresAndSlowStatements(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: "json"})
	ql := newQueryLogger(logg, time.Nanosecond)
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT 1", 1 }

	ql.Trace(ctx, time.Now().Add(-time.Millisecond), stmt, gorm.ErrRecordNotFound)
	assert.Contains(t, buf.String(), "db.query.slow")
	assert.NotContains(t, buf.String(), "db.query.failed")

	buf.Reset()
	ql.Trace(ctx, time.Now(), stmt, errors.New("relation does not exist"))
	assert.Contains(t, buf.String(), "db.query.failed")
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(ctx, time.Now().Add(-time.Second), stmt, errors.New("ignored"))
	assert.Zero(t, buf.Len())
}
