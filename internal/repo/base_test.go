package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

func TestBaseDBBindsContext(t *testing.T) {
	conn := newTestDB(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	//nolint:staticcheck
	assert.Same(t, conn, base.DB(nil))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil, "missing", "load"))

	err := Translate(gorm.ErrRecordNotFound, "user not found", "load user")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "user not found", pkgerrors.As(err).Message())

	cause := errors.New("connection reset")
	err = Translate(cause, "user not found", "load user")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.ErrorIs(t, err, cause)

	err = Translate(context.DeadlineExceeded, "user not found", "load user")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestTranslateUniqueViolationIsConflict(t *testing.T) {
	base := NewBase(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, base.DB(ctx).Create(&widget{Name: "kettle"}).Error)
	err := Translate(base.DB(ctx).Create(&widget{Name: "kettle"}).Error, "widget not found", "create widget")

	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestDistinctIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, DistinctIDs([]uuid.UUID{a, uuid.Nil, b, a}))
	assert.Empty(t, DistinctIDs(nil))
}
