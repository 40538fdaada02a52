package bookings

import (
	"context"
	"net/http"
	"strings"

	"github.com/DevStdio379/settisfy-web/api/middleware"
	"github.com/DevStdio379/settisfy-web/api/responses"
	"github.com/DevStdio379/settisfy-web/api/validators"
	internalbookings "github.com/DevStdio379/settisfy-web/internal/bookings"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/pagination"
	"github.com/google/uuid"
)

// Create opens a booking for the calling customer, or for the user named in
// the body when an admin books on their behalf.
func Create(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := svc.Create(r.Context(), principal, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"booking_id": booking.ID.String()})
			logg.Info(ctx, "booking created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalbookings.NewSummary(booking))
	}
}

// List returns the caller's bookings, newest first.
func List(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := internalbookings.ListParams{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Limit:  limit,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseBookingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
			params.Status = &status
		}
		result, err := svc.List(r.Context(), principal, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Detail returns a booking with its projected state and timeline.
func Detail(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), principal, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type transitionFunc[T any] func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body T) (*models.Booking, error)

// transition decodes the body, runs one lifecycle step and answers with the
// refreshed summary so clients pick up the new version.
func transition[T any](svc internalbookings.Service, logg *logger.Logger, event string, run transitionFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body T
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := run(r.Context(), principal, bookingID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"booking_id": booking.ID.String(),
				"event":      event,
				"version":    booking.Version,
			})
			logg.Info(ctx, "booking transitioned")
		}
		responses.WriteSuccess(w, internalbookings.NewSummary(booking))
	}
}

func Approve(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "approve", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body versionRequest) (*models.Booking, error) {
		return svc.Approve(ctx, p, id, body.Version)
	})
}

func Reject(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "reject", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body rejectRequest) (*models.Booking, error) {
		return svc.Reject(ctx, p, id, internalbookings.RejectInput{Version: body.Version, Reason: strings.TrimSpace(body.Reason)})
	})
}

// Accept records a settler's bid on a broadcast booking.
func Accept(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "accept", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body acceptRequest) (*models.Booking, error) {
		return svc.Accept(ctx, p, id, internalbookings.AcceptInput{Version: body.Version, SettlerServiceID: body.SettlerServiceID})
	})
}

func SelectAcceptor(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "select_acceptor", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body selectAcceptorRequest) (*models.Booking, error) {
		return svc.SelectAcceptor(ctx, p, id, internalbookings.SelectAcceptorInput{
			Version:          body.Version,
			SettlerID:        body.SettlerID,
			SettlerServiceID: body.SettlerServiceID,
		})
	})
}

func UpdateNotes(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "update_notes", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body notesRequest) (*models.Booking, error) {
		return svc.UpdateNotes(ctx, p, id, internalbookings.NotesInput{
			Version: body.Version,
			Notes:   body.Notes,
			Images:  body.Images.toInput(),
		})
	})
}

func StartService(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "start_service", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body startRequest) (*models.Booking, error) {
		return svc.StartService(ctx, p, id, internalbookings.StartServiceInput{Version: body.Version, Code: strings.TrimSpace(body.Code)})
	})
}

func CreateQuote(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "create_quote", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body quoteRequest) (*models.Booking, error) {
		return svc.CreateQuote(ctx, p, id, internalbookings.QuoteInput{
			Version:     body.Version,
			Description: strings.TrimSpace(body.Description),
			Price:       body.Price,
		})
	})
}

func EndService(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "end_service", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body versionRequest) (*models.Booking, error) {
		return svc.EndService(ctx, p, id, body.Version)
	})
}

func SubmitEvidence(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "submit_evidence", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body evidenceRequest) (*models.Booking, error) {
		return svc.SubmitEvidence(ctx, p, id, internalbookings.EvidenceInput{
			Version:              body.Version,
			Remark:               body.Remark,
			Images:               body.Images.toInput(),
			CompletedAddons:      body.CompletedAddons,
			ManualQuoteCompleted: body.ManualQuoteCompleted,
		})
	})
}

func CompleteJob(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "complete_job", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body versionRequest) (*models.Booking, error) {
		return svc.CompleteJob(ctx, p, id, body.Version)
	})
}

// Dispute drives both the incompletion and the cooldown dispute flows.
func Dispute(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "dispute", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body disputeRequest) (*models.Booking, error) {
		return svc.Dispute(ctx, p, id, body.toInput())
	})
}

func CompleteBooking(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "complete_booking", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body versionRequest) (*models.Booking, error) {
		return svc.CompleteBooking(ctx, p, id, body.Version)
	})
}

func Cancel(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "cancel", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body cancelRequest) (*models.Booking, error) {
		return svc.Cancel(ctx, p, id, internalbookings.CancelInput{
			Version: body.Version,
			Reasons: body.Reasons,
			Text:    body.Text,
			Images:  body.Images.toInput(),
		})
	})
}

// ReleasePayment records money moved to the settler or back to the customer.
func ReleasePayment(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, "release_payment", func(ctx context.Context, p internalbookings.Principal, id uuid.UUID, body releaseRequest) (*models.Booking, error) {
		return svc.ReleasePayment(ctx, p, id, internalbookings.ReleaseInput{
			Version:   body.Version,
			Recipient: internalbookings.Recipient(body.Recipient),
			Amount:    body.Amount,
			Images:    body.Images.toInput(),
		})
	})
}

func principalFromRequest(r *http.Request) (internalbookings.Principal, error) {
	ctx := r.Context()
	accountID, err := uuid.Parse(middleware.AccountIDFromContext(ctx))
	if err != nil {
		return internalbookings.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account missing from token")
	}
	role := enums.AccountRole(middleware.RoleFromContext(ctx))
	if !role.IsValid() {
		return internalbookings.Principal{}, pkgerrors.New(pkgerrors.CodeForbidden, "invalid role")
	}
	principal := internalbookings.Principal{AccountID: accountID, Role: role}
	if raw := middleware.UserIDFromContext(ctx); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return internalbookings.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user id in token")
		}
		principal.UserID = &userID
	}
	return principal, nil
}
