package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
)

const maxLastErrorLen = 2048

// ErrTxRequired is returned by operations that must join a caller's transaction.
var ErrTxRequired = errors.New("outbox: transaction required")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return ErrTxRequired
	}
	return tx.Create(&event).Error
}

// pending selects unpublished rows that still have attempts left. Rows at
// maxAttempts belong to the DLQ.
func pending(maxAttempts int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where("published_at IS NULL")
		if maxAttempts > 0 {
			q = q.Where("attempt_count < ?", maxAttempts)
		}
		return q
	}
}

// FetchUnpublishedForPublish locks the oldest pending rows for the rest of
// tx. SKIP LOCKED keeps concurrent publishers on disjoint batches.
func (r *Repository) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	var rows []models.OutboxEvent
	err := tx.Scopes(pending(maxAttempts)).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountPending feeds the outbox backlog gauge.
func (r *Repository) CountPending(ctx context.Context, maxAttempts int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OutboxEvent{}).Scopes(pending(maxAttempts)).Count(&n).Error
	return n, err
}

func (r *Repository) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	return updateRow(tx, id, map[string]any{"published_at": time.Now().UTC()})
}

func (r *Repository) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	return updateRow(tx, id, map[string]any{
		"last_error":    lastError(err),
		"attempt_count": gorm.Expr("attempt_count + 1"),
	})
}

// MarkTerminalTx pins attempt_count at terminalAttempts so the row falls out
// of the pending scope. Its payload lives on in outbox_dlq.
func (r *Repository) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	return updateRow(tx, id, map[string]any{
		"last_error":    lastError(err),
		"attempt_count": terminalAttempts,
	})
}

// DeletePublishedBefore prunes up to limit rows published before cutoff,
// oldest first. A limit of zero removes every match.
func (r *Repository) DeletePublishedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	conn := r.db.WithContext(ctx)
	scope := conn.Where("published_at IS NOT NULL AND published_at < ?", cutoff)
	if limit > 0 {
		oldest := conn.Model(&models.OutboxEvent{}).
			Select("id").
			Where("published_at IS NOT NULL AND published_at < ?", cutoff).
			Order("published_at").
			Limit(limit)
		scope = conn.Where("id IN (?)", oldest)
	}
	res := scope.Delete(&models.OutboxEvent{})
	return res.RowsAffected, res.Error
}

func updateRow(tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if tx == nil {
		return ErrTxRequired
	}
	return tx.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(fields).Error
}

func lastError(err error) string {
	if err == nil {
		return ""
	}
	return truncateUTF8(err.Error(), maxLastErrorLen)
}
