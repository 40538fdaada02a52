package repo

import (
	"context"
	"errors"

	"github.com/DevStdio379/settisfy-web/pkg/db"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides a shared foundation for the domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Translate maps a GORM error onto the API error codes. Missing rows become
// NOT_FOUND with the given message, unique violations become CONFLICT and
// anything else is a dependency failure.
func Translate(err error, notFound, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+": already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": interrupted")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// DistinctIDs drops nil and repeated ids, keeping first-seen order.
func DistinctIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
