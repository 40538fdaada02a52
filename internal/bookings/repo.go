package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/lifecycle"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists bookings and their append-only timelines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, filter ListFilter) ([]models.Booking, error)
	ApplyActivity(ctx context.Context, write ConditionalWrite) (*models.BookingActivity, error)
	ListWarrantyExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error)
}

// ListFilter narrows a booking listing. Nil fields are ignored.
type ListFilter struct {
	Status    *enums.BookingStatus
	UserID    *uuid.UUID
	SettlerID *uuid.UUID
	Cursor    *pagination.Cursor
	Limit     int
}

// ConditionalWrite updates a booking only if it is still at ExpectedVersion
// and appends the activity in the same statement group.
type ConditionalWrite struct {
	BookingID       uuid.UUID
	ExpectedVersion int64
	Changes         map[string]any
	Activity        models.BookingActivity
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Version == 0 {
		booking.Version = 1
	}
	return r.db.WithContext(ctx).Omit("Activities").Create(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Status != nil {
		query = query.Where("status = ?", float64(*filter.Status))
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.SettlerID != nil {
		query = query.Where("settler_id = ?", *filter.SettlerID)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.Booking
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return rows, nil
}

// ApplyActivity bumps the version with a compare-and-swap and appends the
// activity with the next sequence number. It must run inside a transaction.
func (r *repository) ApplyActivity(ctx context.Context, write ConditionalWrite) (*models.BookingActivity, error) {
	changes := make(map[string]any, len(write.Changes)+1)
	for column, value := range write.Changes {
		changes[column] = value
	}
	changes["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND version = ?", write.BookingID, write.ExpectedVersion).
		Updates(changes)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update booking")
	}
	if res.RowsAffected == 0 {
		return nil, r.missOrConflict(ctx, write)
	}

	var maxSeq int
	if err := r.db.WithContext(ctx).
		Model(&models.BookingActivity{}).
		Where("booking_id = ?", write.BookingID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read timeline length")
	}

	activity := write.Activity
	activity.BookingID = write.BookingID
	activity.Seq = maxSeq + 1
	activity.OccurredAt = activity.OccurredAt.UTC().Truncate(lifecycle.TimestampPrecision)
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append booking activity")
	}
	return &activity, nil
}

func (r *repository) missOrConflict(ctx context.Context, write ConditionalWrite) error {
	var current models.Booking
	err := r.db.WithContext(ctx).Select("id", "version").Where("id = ?", write.BookingID).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check booking version")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "booking version changed").
		WithDetails(map[string]int64{
			"expectedVersion": write.ExpectedVersion,
			"currentVersion":  current.Version,
		})
}

func (r *repository) ListWarrantyExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = pagination.MaxLimit
	}
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", float64(enums.BookingStatusWarrantyPeriod)).
		Where("warranty_started_at IS NOT NULL AND warranty_started_at < ?", cutoff).
		Order("warranty_started_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warranty expired bookings")
	}
	return rows, nil
}
