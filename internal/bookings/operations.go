package bookings

import (
	"context"
	"strings"

	"github.com/DevStdio379/settisfy-web/internal/evidence"
	"github.com/DevStdio379/settisfy-web/internal/lifecycle"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *service) Approve(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error) {
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   version,
		event:     fixed(enums.ActivityBookingApproved),
		prepare: func(ctx context.Context, _ *models.Booking, _ transition) (stepResult, error) {
			params, err := s.params.Get(ctx)
			if err != nil {
				return stepResult{}, err
			}
			if !params.ShowAdminApproveBookingButton {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "booking approval is disabled")
			}
			return stepResult{}, nil
		},
	})
}

func (s *service) Reject(ctx context.Context, p Principal, id uuid.UUID, in RejectInput) (*models.Booking, error) {
	reason := strings.TrimSpace(in.Reason)
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivityBookingRejected),
		prepare: func(context.Context, *models.Booking, transition) (stepResult, error) {
			res := stepResult{message: reason}
			if reason != "" {
				res.payload = map[string]string{"reason": reason}
			}
			return res, nil
		},
	})
}

func (s *service) Accept(ctx context.Context, p Principal, id uuid.UUID, in AcceptInput) (*models.Booking, error) {
	if in.SettlerServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settler service is required")
	}
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivitySettlerAccept),
		prepare: func(ctx context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			svc, err := s.services.FindByID(ctx, in.SettlerServiceID)
			if err != nil {
				return stepResult{}, err
			}
			if svc.SettlerID != p.userID() {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "settler service belongs to another settler")
			}
			if !svc.IsActive {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeValidation, "settler service is not active")
			}
			if want, got := booking.CatalogueService.Val.ID, svc.SelectedCatalogue.Val.ID; want != "" && got != "" && want != got {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeValidation, "settler service offers a different catalogue service")
			}

			acceptor := types.Acceptor{
				SettlerID:        svc.SettlerID,
				SettlerServiceID: svc.ID,
				FirstName:        svc.SettlerFirstName,
				LastName:         svc.SettlerLastName,
				AcceptedAt:       s.now(),
			}
			acceptors, err := lifecycle.AddAcceptor(booking.Acceptors.Val, acceptor)
			if err != nil {
				return stepResult{}, err
			}
			return stepResult{
				changes: map[string]any{"acceptors": dbtypes.NewJSON(acceptors)},
				payload: acceptor,
				message: acceptor.FullName(),
			}, nil
		},
	})
}

func (s *service) SelectAcceptor(ctx context.Context, p Principal, id uuid.UUID, in SelectAcceptorInput) (*models.Booking, error) {
	if in.SettlerID == uuid.Nil || in.SettlerServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settler and settler service are required")
	}
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivitySettlerSelected),
		precheck: func(booking *models.Booking) error {
			if !booking.AssignedSettler() {
				return nil
			}
			_, err := lifecycle.SelectAcceptor(assignmentOf(booking), nil, in.SettlerID, in.SettlerServiceID)
			return err
		},
		prepare: func(ctx context.Context, booking *models.Booking, tr transition) (stepResult, error) {
			if tr.actor == enums.BookingActorSystem {
				params, err := s.params.Get(ctx)
				if err != nil {
					return stepResult{}, err
				}
				if !params.ShowAssignSettlerButton {
					return stepResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "settler assignment by admins is disabled")
				}
			}
			chosen, err := lifecycle.SelectAcceptor(assignmentOf(booking), booking.Acceptors.Val, in.SettlerID, in.SettlerServiceID)
			if err != nil {
				return stepResult{}, err
			}
			code, err := s.codes()
			if err != nil {
				return stepResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate service start code")
			}
			return stepResult{
				changes: map[string]any{
					"settler_id":         chosen.SettlerID,
					"settler_service_id": chosen.SettlerServiceID,
					"settler_first_name": chosen.FirstName,
					"settler_last_name":  chosen.LastName,
					"service_start_code": code,
				},
				payload: map[string]any{
					"settlerId":        chosen.SettlerID,
					"settlerServiceId": chosen.SettlerServiceID,
					"settlerName":      chosen.FullName(),
				},
				message: chosen.FullName(),
			}, nil
		},
	})
}

func assignmentOf(booking *models.Booking) lifecycle.Assignment {
	return lifecycle.Assignment{SettlerID: booking.SettlerID, SettlerServiceID: booking.SettlerServiceID}
}

func (s *service) UpdateNotes(ctx context.Context, p Principal, id uuid.UUID, in NotesInput) (*models.Booking, error) {
	notes := strings.TrimSpace(in.Notes)
	if notes == "" && in.Images.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notes or images are required")
	}
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivityNotesToSettlerUpdated),
		prepare: func(ctx context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			res := stepResult{changes: map[string]any{"notes_to_settler": notes}}
			payload := map[string]any{"notes": notes}
			if !in.Images.Empty() {
				collected, err := s.evidence.Collect(ctx, booking.ID, evidence.PurposeNotes, in.Images)
				if err != nil {
					return stepResult{}, err
				}
				res.changes["notes_to_settler_image_urls"] = dbtypes.NewJSON(collected.URLs)
				withImages(payload, collected)
			}
			res.payload = payload
			return res, nil
		},
	})
}

func (s *service) StartService(ctx context.Context, p Principal, id uuid.UUID, in StartServiceInput) (*models.Booking, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service start code is required")
	}
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivitySettlerServiceStart),
		prepare: func(_ context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			if booking.ServiceStartCode == nil {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no service start code")
			}
			if *booking.ServiceStartCode != code {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeValidation, "service start code does not match")
			}
			return stepResult{}, nil
		},
	})
}

func (s *service) CreateQuote(ctx context.Context, p Principal, id uuid.UUID, in QuoteInput) (*models.Booking, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote description is required")
	}
	if !in.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote price must be positive")
	}
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivityQuoteCreated),
		prepare: func(_ context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			previous := decimal.Zero
			if strings.TrimSpace(booking.ManualQuoteDescription) != "" && booking.ManualQuotePrice.IsPositive() {
				previous = booking.ManualQuotePrice
			}
			total := booking.Total.Sub(previous).Add(in.Price)
			price := in.Price
			return stepResult{
				changes: map[string]any{
					"manual_quote_description":  desc,
					"manual_quote_price":        in.Price,
					"is_manual_quote_completed": false,
				},
				payload: map[string]any{
					"description":   desc,
					"price":         in.Price,
					"previousPrice": previous,
				},
				message: desc,
				total:   &total,
				amount:  &price,
			}, nil
		},
	})
}

func (s *service) EndService(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error) {
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   version,
		event:     fixed(enums.ActivitySettlerServiceEnd),
		prepare: func(context.Context, *models.Booking, transition) (stepResult, error) {
			code, err := s.codes()
			if err != nil {
				return stepResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate service end code")
			}
			return stepResult{changes: map[string]any{"service_end_code": code}}, nil
		},
	})
}

func (s *service) SubmitEvidence(ctx context.Context, p Principal, id uuid.UUID, in EvidenceInput) (*models.Booking, error) {
	if in.Images.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one evidence image is required")
	}
	remark := strings.TrimSpace(in.Remark)
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event: func(status enums.BookingStatus) enums.BookingActivityType {
			if status == enums.BookingStatusFinishedService {
				return enums.ActivitySettlerEvidenceUpdated
			}
			return enums.ActivitySettlerEvidenceSubmitted
		},
		prepare: func(ctx context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			addons, err := markCompleted(booking.Addons.Val, in.CompletedAddons)
			if err != nil {
				return stepResult{}, err
			}
			if in.ManualQuoteCompleted && strings.TrimSpace(booking.ManualQuoteDescription) == "" {
				return stepResult{}, pkgerrors.New(pkgerrors.CodeValidation, "booking has no manual quote to complete")
			}
			collected, err := s.collectRequired(ctx, booking.ID, evidence.PurposeServiceEvidence, in.Images)
			if err != nil {
				return stepResult{}, err
			}

			changes := map[string]any{
				"settler_evidence_image_urls": dbtypes.NewJSON(collected.URLs),
				"settler_evidence_remark":     remark,
				"addons":                      dbtypes.NewJSON(addons),
			}
			if in.ManualQuoteCompleted {
				changes["is_manual_quote_completed"] = true
			}
			payload := map[string]any{"remark": remark, "completedAddons": in.CompletedAddons}
			withImages(payload, collected)
			return stepResult{changes: changes, payload: payload, message: remark}, nil
		},
	})
}

// markCompleted flags the named sub-options as done. Labels may be given bare
// or as "group: label".
func markCompleted(addons []types.DynamicOption, labels []string) ([]types.DynamicOption, error) {
	out := make([]types.DynamicOption, len(addons))
	for i, addon := range addons {
		out[i] = addon
		out[i].SubOptions = append([]types.SubOption(nil), addon.SubOptions...)
	}
	for _, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		found := false
		for i := range out {
			for j := range out[i].SubOptions {
				opt := &out[i].SubOptions[j]
				if opt.Label == label || out[i].Name+": "+opt.Label == label {
					opt.IsCompleted = true
					found = true
				}
			}
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown add-on").
				WithDetails(map[string]string{"addon": label})
		}
	}
	return out, nil
}

func (s *service) CompleteJob(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error) {
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   version,
		event:     fixed(enums.ActivityJobCompleted),
		prepare: func(_ context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			return stepResult{changes: s.warrantyStart(booking)}, nil
		},
	})
}

// warrantyStart stamps the first arrival in the warranty period.
func (s *service) warrantyStart(booking *models.Booking) map[string]any {
	changes := map[string]any{}
	if booking.WarrantyStartedAt == nil {
		changes["warranty_started_at"] = s.now()
	}
	return changes
}

func (s *service) CompleteBooking(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error) {
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   version,
		event:     fixed(enums.ActivityBookingCompleted),
	})
}

func (s *service) Cancel(ctx context.Context, p Principal, id uuid.UUID, in CancelInput) (*models.Booking, error) {
	reasons := make([]string, 0, len(in.Reasons))
	for _, reason := range in.Reasons {
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			reasons = append(reasons, trimmed)
		}
	}
	text := strings.TrimSpace(in.Text)
	if len(reasons) == 0 && text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a cancellation reason is required")
	}
	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(enums.ActivityBookingCancelled),
		prepare: func(ctx context.Context, booking *models.Booking, tr transition) (stepResult, error) {
			changes := map[string]any{
				"cancel_reasons":     dbtypes.NewJSON(reasons),
				"cancel_reason_text": text,
				"cancel_actor":       string(tr.actor),
			}
			payload := map[string]any{"reasons": reasons, "text": text}
			if !in.Images.Empty() {
				collected, err := s.evidence.Collect(ctx, booking.ID, evidence.PurposeCancellation, in.Images)
				if err != nil {
					return stepResult{}, err
				}
				changes["cancel_reason_image_urls"] = dbtypes.NewJSON(collected.URLs)
				withImages(payload, collected)
			}
			return stepResult{changes: changes, payload: payload, message: text}, nil
		},
	})
}

func (s *service) ReleasePayment(ctx context.Context, p Principal, id uuid.UUID, in ReleaseInput) (*models.Booking, error) {
	var event enums.BookingActivityType
	var purpose evidence.Purpose
	switch in.Recipient {
	case RecipientSettler:
		event, purpose = enums.ActivityPaymentReleasedToSettler, evidence.PurposeSettlerPayment
	case RecipientCustomer:
		event, purpose = enums.ActivityPaymentReleasedToCustomer, evidence.PurposeCustomerRefund
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient must be settler or customer")
	}
	if !in.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	amount := in.Amount.Round(2)

	booking, err := s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     fixed(event),
		prepare: func(ctx context.Context, booking *models.Booking, _ transition) (stepResult, error) {
			settler, customer := booking.ReleasedToSettler, booking.ReleasedToCustomer
			var images []string
			switch in.Recipient {
			case RecipientSettler:
				settler = settler.Add(amount)
				images = booking.SettlerPaymentImageURLs.Val
			case RecipientCustomer:
				customer = customer.Add(amount)
				images = booking.CustomerRefundImageURLs.Val
			}

			payload := map[string]any{"recipient": in.Recipient, "amount": amount}
			if !in.Images.Empty() {
				// stored proof stays first; the collector de-dups and caps the whole set
				combined := in.Images
				combined.URLs = append(append([]string(nil), images...), in.Images.URLs...)
				collected, err := s.evidence.Collect(ctx, booking.ID, purpose, combined)
				if err != nil {
					return stepResult{}, err
				}
				images = collected.URLs
				withImages(payload, collected)
			}

			changes := map[string]any{}
			switch in.Recipient {
			case RecipientSettler:
				changes["released_to_settler"] = settler
				changes["settler_payment_image_urls"] = dbtypes.NewJSON(images)
				payload["releasedTotal"] = settler
			case RecipientCustomer:
				changes["released_to_customer"] = customer
				changes["customer_refund_image_urls"] = dbtypes.NewJSON(images)
				payload["releasedTotal"] = customer
			}

			if released := settler.Add(customer); released.GreaterThan(booking.Total) {
				warnCtx := s.logg.WithFields(ctx, map[string]any{
					"released": released.StringFixed(2),
					"total":    booking.Total.StringFixed(2),
				})
				s.logg.Warn(warnCtx, "booking.over_release")
			}
			return stepResult{
				changes: changes,
				payload: payload,
				message: lifecycle.FormatRM(amount),
				amount:  &amount,
			}, nil
		},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddReleased(string(in.Recipient), amount)
	return booking, nil
}

// collectRequired gathers evidence and fails when no image survived.
func (s *service) collectRequired(ctx context.Context, bookingID uuid.UUID, purpose evidence.Purpose, in evidence.Input) (evidence.Result, error) {
	collected, err := s.evidence.Collect(ctx, bookingID, purpose, in)
	if err != nil {
		return evidence.Result{}, err
	}
	if len(collected.URLs) == 0 {
		return evidence.Result{}, pkgerrors.New(pkgerrors.CodeUploadFailed, "no evidence image could be stored").
			WithDetails(collected.Failures)
	}
	return collected, nil
}

func withImages(payload map[string]any, collected evidence.Result) {
	payload["imageUrls"] = collected.URLs
	if len(collected.Failures) > 0 {
		payload["uploadFailures"] = collected.Failures
	}
}
