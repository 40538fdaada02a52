package outbox

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
)

const (
	maxDLQErrorLen   = 1024
	defaultDLQListed = 50
)

var (
	// ErrDLQEntryNotFound is returned when no pending DLQ row exists for an event.
	ErrDLQEntryNotFound = errors.New("dlq entry not found")
	// ErrDLQNotReplayable is returned for rows whose failure a retry cannot fix.
	ErrDLQNotReplayable = errors.New("dlq entry is not replayable")
)

type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// InsertTx parks a terminal outbox row. It runs in the publisher's batch
// transaction together with MarkTerminalTx.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ErrorMessage != nil {
		msg := truncateUTF8(*entry.ErrorMessage, maxDLQErrorLen)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// ListPending returns entries not yet replayed, newest failure first.
func (r *DLQRepository) ListPending(ctx context.Context, limit int) ([]models.OutboxDLQ, error) {
	if limit <= 0 {
		limit = defaultDLQListed
	}
	var rows []models.OutboxDLQ
	err := r.db.WithContext(ctx).
		Where("replayed_at IS NULL").
		Order("failed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Replay hands a parked event back to the publisher: the outbox row gets a
// fresh attempt budget and the DLQ entry is stamped as replayed. Both writes
// commit together.
func (r *DLQRepository) Replay(ctx context.Context, eventID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.OutboxDLQ
		err := tx.Where("event_id = ?", eventID).Order("failed_at DESC").First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !entry.Pending()) {
			return ErrDLQEntryNotFound
		}
		if err != nil {
			return err
		}
		if !entry.ErrorReason.Replayable() {
			return ErrDLQNotReplayable
		}

		var event models.OutboxEvent
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDLQEntryNotFound
			}
			return err
		}
		if event.Published() {
			return ErrDLQEntryNotFound
		}

		err = tx.Model(&event).Updates(map[string]any{"attempt_count": 0, "last_error": nil}).Error
		if err != nil {
			return err
		}
		return tx.Model(&entry).Update("replayed_at", at.UTC()).Error
	})
}

// DeleteReplayedBefore drops entries an operator replayed before cutoff.
// Unreplayed entries stay until someone looks at them.
func (r *DLQRepository) DeleteReplayedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("replayed_at IS NOT NULL AND replayed_at < ?", cutoff).
		Delete(&models.OutboxDLQ{})
	return res.RowsAffected, res.Error
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
