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
	"github.com/google/uuid"
)

type disputeRoute struct {
	from  enums.BookingStatus
	event enums.BookingActivityType
}

// disputeRoutes maps a dispute action to the activity it records from each
// status. The first route is used when none matches so the transition table
// produces the rejection.
var disputeRoutes = map[lifecycle.DisputeKind]map[DisputeAction][]disputeRoute{
	lifecycle.DisputeIncompletion: {
		DisputeReport: {
			{enums.BookingStatusFinishedService, enums.ActivityJobIncomplete},
			{enums.BookingStatusIncompletionRejected, enums.ActivityJobIncomplete},
			{enums.BookingStatusIncompletionReported, enums.ActivityCustomerJobIncompleteUpdated},
		},
		DisputeResolve: {
			{enums.BookingStatusIncompletionReported, enums.ActivitySettlerResolveIncompletion},
			{enums.BookingStatusIncompletionResolving, enums.ActivitySettlerUpdateIncompletionEvidence},
		},
		DisputeReject: {
			{enums.BookingStatusIncompletionReported, enums.ActivitySettlerRejectIncompletion},
		},
		DisputeRejectResolution: {
			{enums.BookingStatusIncompletionResolving, enums.ActivityCustomerRejectIncompletionResolve},
		},
		DisputeConfirm: {
			{enums.BookingStatusIncompletionResolving, enums.ActivityCustomerConfirmCompletion},
			{enums.BookingStatusIncompletionRejected, enums.ActivityCustomerConfirmCompletion},
		},
	},
	lifecycle.DisputeCooldown: {
		DisputeReport: {
			{enums.BookingStatusWarrantyPeriod, enums.ActivityCooldownReportSubmitted},
			{enums.BookingStatusWarrantyIssueRejected, enums.ActivityCooldownReportSubmitted},
			{enums.BookingStatusWarrantyIssueReported, enums.ActivityCustomerCooldownReportUpdated},
		},
		DisputeResolve: {
			{enums.BookingStatusWarrantyIssueReported, enums.ActivitySettlerResolveCooldownReport},
			{enums.BookingStatusWarrantyIssueResolved, enums.ActivitySettlerUpdateCooldownEvidence},
		},
		DisputeReject: {
			{enums.BookingStatusWarrantyIssueReported, enums.ActivitySettlerRejectCooldownReport},
		},
		DisputeRejectResolution: {
			{enums.BookingStatusWarrantyIssueResolved, enums.ActivityCustomerCooldownReportNotResolved},
		},
		DisputeConfirm: {
			{enums.BookingStatusWarrantyIssueResolved, enums.ActivityCooldownReportCompleted},
			{enums.BookingStatusWarrantyIssueRejected, enums.ActivityCooldownReportCompleted},
		},
	},
}

func disputeEvent(routes []disputeRoute) func(enums.BookingStatus) enums.BookingActivityType {
	return func(status enums.BookingStatus) enums.BookingActivityType {
		for _, route := range routes {
			if route.from == status {
				return route.event
			}
		}
		return routes[0].event
	}
}

// disputeColumnSet names the evidence columns of one dispute kind.
type disputeColumnSet struct {
	reportImages   string
	reportRemark   string
	resolvedImages string
	resolvedRemark string
	reportPurpose  evidence.Purpose
	resolvePurpose evidence.Purpose
}

var disputeColumnSets = map[lifecycle.DisputeKind]disputeColumnSet{
	lifecycle.DisputeIncompletion: {
		reportImages:   "incompletion_report_image_urls",
		reportRemark:   "incompletion_report_remark",
		resolvedImages: "incompletion_resolved_image_urls",
		resolvedRemark: "incompletion_resolved_remark",
		reportPurpose:  evidence.PurposeIncompletionReport,
		resolvePurpose: evidence.PurposeIncompletionResolve,
	},
	lifecycle.DisputeCooldown: {
		reportImages:   "cooldown_report_image_urls",
		reportRemark:   "cooldown_report_remark",
		resolvedImages: "cooldown_resolved_image_urls",
		resolvedRemark: "cooldown_resolved_remark",
		reportPurpose:  evidence.PurposeCooldownReport,
		resolvePurpose: evidence.PurposeCooldownResolve,
	},
}

func (s *service) Dispute(ctx context.Context, p Principal, id uuid.UUID, in DisputeInput) (*models.Booking, error) {
	actions, ok := disputeRoutes[in.Kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown dispute kind").
			WithDetails(map[string]string{"kind": string(in.Kind)})
	}
	routes, ok := actions[in.Action]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown dispute action").
			WithDetails(map[string]string{"action": string(in.Action)})
	}
	remark := strings.TrimSpace(in.Remark)
	switch in.Action {
	case DisputeReport:
		if remark == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a remark describing the issue is required")
		}
	case DisputeResolve:
		if remark == "" || in.Images.Empty() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a remark and at least one image are required to resolve")
		}
	}
	cols := disputeColumnSets[in.Kind]

	return s.apply(ctx, p, step{
		bookingID: id,
		version:   in.Version,
		event:     disputeEvent(routes),
		prepare: func(ctx context.Context, booking *models.Booking, tr transition) (stepResult, error) {
			changes := map[string]any{}
			payload := map[string]any{
				"kind":   in.Kind,
				"action": in.Action,
				"round":  roundOf(tr.next, in.Kind),
			}
			if remark != "" {
				payload["remark"] = remark
			}

			switch in.Action {
			case DisputeReport, DisputeRejectResolution:
				if remark != "" {
					changes[cols.reportRemark] = remark
				}
				if !in.Images.Empty() {
					collected, err := s.evidence.Collect(ctx, booking.ID, cols.reportPurpose, in.Images)
					if err != nil {
						return stepResult{}, err
					}
					changes[cols.reportImages] = dbtypes.NewJSON(collected.URLs)
					withImages(payload, collected)
				}
			case DisputeResolve:
				collected, err := s.collectRequired(ctx, booking.ID, cols.resolvePurpose, in.Images)
				if err != nil {
					return stepResult{}, err
				}
				changes[cols.resolvedRemark] = remark
				changes[cols.resolvedImages] = dbtypes.NewJSON(collected.URLs)
				withImages(payload, collected)
			case DisputeConfirm:
				if tr.next.Status == enums.BookingStatusWarrantyPeriod {
					for k, v := range s.warrantyStart(booking) {
						changes[k] = v
					}
				}
			}
			return stepResult{changes: changes, payload: payload, message: remark}, nil
		},
	})
}

func roundOf(state lifecycle.State, kind lifecycle.DisputeKind) int {
	if kind == lifecycle.DisputeCooldown {
		return state.CooldownRound
	}
	return state.IncompletionRound
}
