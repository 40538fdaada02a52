package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"go.uber.org/multierr"

	"github.com/DevStdio379/settisfy-web/internal/bookings"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

const (
	defaultWarrantyDays      = 7
	defaultWarrantyBatchSize = 100
)

type WarrantyExpiryJobParams struct {
	Logger       *logger.Logger
	Reader       warrantyReader
	Bookings     bookingCompleter
	WarrantyDays int
	BatchSize    int
}

type warrantyReader interface {
	ListWarrantyExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error)
}

type bookingCompleter interface {
	CompleteBooking(ctx context.Context, p bookings.Principal, id uuid.UUID, version int64) (*models.Booking, error)
}

// NewWarrantyExpiryJob completes bookings whose warranty window has run out
// without an issue being reported. The window counts whole days: a booking
// that entered the warranty period on day D expires on day D+WarrantyDays+1.
func NewWarrantyExpiryJob(params WarrantyExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("warranty reader required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking service required")
	}
	days := params.WarrantyDays
	if days <= 0 {
		days = defaultWarrantyDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultWarrantyBatchSize
	}
	return &warrantyExpiryJob{
		logg:     params.Logger,
		reader:   params.Reader,
		bookings: params.Bookings,
		days:     days,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type warrantyExpiryJob struct {
	logg     *logger.Logger
	reader   warrantyReader
	bookings bookingCompleter
	days     int
	batch    int
	now      func() time.Time
}

func (j *warrantyExpiryJob) Name() string { return "warranty-expiry" }

func (j *warrantyExpiryJob) Run(ctx context.Context) error {
	cutoff := now.With(j.now().UTC()).BeginningOfDay().AddDate(0, 0, -j.days)
	rows, err := j.reader.ListWarrantyExpired(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list expired warranties: %w", err)
	}

	var errs error
	completed, skipped := 0, 0
	for _, row := range rows {
		bookingCtx := j.logg.WithBookingID(ctx, row.ID.String())
		_, err := j.bookings.CompleteBooking(bookingCtx, bookings.SystemPrincipal(), row.ID, row.Version)
		switch {
		case err == nil:
			completed++
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict), pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
			// moved on since the read (issue reported or completed by the customer)
			skipped++
			j.logg.Warn(bookingCtx, "warranty expiry skipped: booking changed")
		default:
			errs = multierr.Append(errs, fmt.Errorf("complete booking %s: %w", row.ID, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"candidates": len(rows),
		"completed":  completed,
		"skipped":    skipped,
		"failed":     len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "warranty expiry run complete")
	return errs
}
