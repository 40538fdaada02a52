package lifecycle

import (
	"fmt"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
)

// DisputeKind names one of the two dispute sub-machines.
type DisputeKind string

const (
	DisputeIncompletion DisputeKind = "incompletion"
	DisputeCooldown     DisputeKind = "cooldown"
)

// DisputeChange describes how a transition moves a dispute sub-state.
type DisputeChange struct {
	Kind   DisputeKind
	Status enums.DisputeStatus
	// OpensRound is set for customer reports that start a new negotiation round.
	OpensRound bool
}

// Outcome is the result of an accepted transition.
type Outcome struct {
	From          enums.BookingStatus
	Next          enums.BookingStatus
	Informational bool
	Dispute       *DisputeChange
}

// TransitionDetails is attached to rejected transitions.
type TransitionDetails struct {
	State  string `json:"state"`
	Event  string `json:"event"`
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

type rule struct {
	from    []enums.BookingStatus
	event   enums.BookingActivityType
	actors  []enums.BookingActor
	to      enums.BookingStatus
	keep    bool
	dispute *DisputeChange
}

type ruleKey struct {
	status enums.BookingStatus
	event  enums.BookingActivityType
}

var (
	actorSettler  = []enums.BookingActor{enums.BookingActorSettler}
	actorCustomer = []enums.BookingActor{enums.BookingActorCustomer}
	actorSystem   = []enums.BookingActor{enums.BookingActorSystem}
)

func statuses(values ...enums.BookingStatus) []enums.BookingStatus {
	return values
}

// statusesExcept lists every reachable status other than the given ones.
// Review Submitted is display-only and never reached by a transition.
func statusesExcept(excluded ...enums.BookingStatus) []enums.BookingStatus {
	out := make([]enums.BookingStatus, 0, len(enums.BookingStatuses()))
	for _, status := range enums.BookingStatuses() {
		if status == enums.BookingStatusReviewSubmitted {
			continue
		}
		skip := false
		for _, ex := range excluded {
			if ex == status {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, status)
		}
	}
	return out
}

func incompletion(status enums.DisputeStatus, opens bool) *DisputeChange {
	return &DisputeChange{Kind: DisputeIncompletion, Status: status, OpensRound: opens}
}

func cooldown(status enums.DisputeStatus, opens bool) *DisputeChange {
	return &DisputeChange{Kind: DisputeCooldown, Status: status, OpensRound: opens}
}

var rules = []rule{
	// verification
	{from: statuses(enums.BookingStatusVerifyBooking), event: enums.ActivityBookingApproved, actors: actorSystem, to: enums.BookingStatusBroadcasting},
	{from: statuses(enums.BookingStatusVerifyBooking), event: enums.ActivityBookingRejected, actors: actorSystem, to: enums.BookingStatusBroadcasting},

	// acceptance and assignment
	{from: statuses(enums.BookingStatusBroadcasting, enums.BookingStatusSettlerAccepted), event: enums.ActivitySettlerAccept, actors: actorSettler, to: enums.BookingStatusSettlerAccepted},
	{
		from:   statuses(enums.BookingStatusBroadcasting, enums.BookingStatusSettlerAccepted),
		event:  enums.ActivitySettlerSelected,
		actors: []enums.BookingActor{enums.BookingActorCustomer, enums.BookingActorSystem},
		to:     enums.BookingStatusSettlerAssigned,
	},

	// service
	{from: statuses(enums.BookingStatusSettlerAssigned, enums.BookingStatusQuoteUpdated), event: enums.ActivitySettlerServiceStart, actors: actorSettler, to: enums.BookingStatusServiceStarted},
	{
		from:   statuses(enums.BookingStatusSettlerAssigned, enums.BookingStatusServiceStarted, enums.BookingStatusServiceEnded, enums.BookingStatusQuoteUpdated),
		event:  enums.ActivityQuoteCreated,
		actors: actorSettler,
		to:     enums.BookingStatusQuoteUpdated,
	},
	{from: statuses(enums.BookingStatusServiceStarted, enums.BookingStatusQuoteUpdated), event: enums.ActivitySettlerServiceEnd, actors: actorSettler, to: enums.BookingStatusServiceEnded},
	{from: statuses(enums.BookingStatusServiceEnded), event: enums.ActivitySettlerEvidenceSubmitted, actors: actorSettler, to: enums.BookingStatusFinishedService},
	{from: statuses(enums.BookingStatusFinishedService), event: enums.ActivitySettlerEvidenceUpdated, actors: actorSettler, to: enums.BookingStatusFinishedService},
	{from: statuses(enums.BookingStatusFinishedService), event: enums.ActivityJobCompleted, actors: actorCustomer, to: enums.BookingStatusWarrantyPeriod},

	// incompletion dispute
	{
		from:    statuses(enums.BookingStatusFinishedService, enums.BookingStatusIncompletionRejected),
		event:   enums.ActivityJobIncomplete,
		actors:  actorCustomer,
		to:      enums.BookingStatusIncompletionReported,
		dispute: incompletion(enums.DisputeStatusReported, true),
	},
	{
		from:    statuses(enums.BookingStatusIncompletionReported),
		event:   enums.ActivityCustomerJobIncompleteUpdated,
		actors:  actorCustomer,
		to:      enums.BookingStatusIncompletionReported,
		dispute: incompletion(enums.DisputeStatusReported, false),
	},
	{
		from:    statuses(enums.BookingStatusIncompletionReported),
		event:   enums.ActivitySettlerResolveIncompletion,
		actors:  actorSettler,
		to:      enums.BookingStatusIncompletionResolving,
		dispute: incompletion(enums.DisputeStatusSettlerResolving, false),
	},
	{
		from:    statuses(enums.BookingStatusIncompletionResolving),
		event:   enums.ActivitySettlerUpdateIncompletionEvidence,
		actors:  actorSettler,
		to:      enums.BookingStatusIncompletionResolving,
		dispute: incompletion(enums.DisputeStatusSettlerResolving, false),
	},
	{
		from:    statuses(enums.BookingStatusIncompletionReported),
		event:   enums.ActivitySettlerRejectIncompletion,
		actors:  actorSettler,
		to:      enums.BookingStatusIncompletionRejected,
		dispute: incompletion(enums.DisputeStatusSettlerRejected, false),
	},
	{
		from:    statuses(enums.BookingStatusIncompletionResolving),
		event:   enums.ActivityCustomerRejectIncompletionResolve,
		actors:  actorCustomer,
		to:      enums.BookingStatusIncompletionReported,
		dispute: incompletion(enums.DisputeStatusReported, false),
	},
	{
		from:    statuses(enums.BookingStatusIncompletionRejected, enums.BookingStatusIncompletionResolving),
		event:   enums.ActivityCustomerConfirmCompletion,
		actors:  actorCustomer,
		to:      enums.BookingStatusWarrantyPeriod,
		dispute: incompletion(enums.DisputeStatusResolved, false),
	},

	// cooldown dispute
	{
		from:    statuses(enums.BookingStatusWarrantyPeriod, enums.BookingStatusWarrantyIssueRejected),
		event:   enums.ActivityCooldownReportSubmitted,
		actors:  actorCustomer,
		to:      enums.BookingStatusWarrantyIssueReported,
		dispute: cooldown(enums.DisputeStatusReported, true),
	},
	{
		from:    statuses(enums.BookingStatusWarrantyIssueReported),
		event:   enums.ActivityCustomerCooldownReportUpdated,
		actors:  actorCustomer,
		to:      enums.BookingStatusWarrantyIssueReported,
		dispute: cooldown(enums.DisputeStatusReported, false),
	},
	{
		from:    statuses(enums.BookingStatusWarrantyIssueReported),
		event:   enums.ActivitySettlerResolveCooldownReport,
		actors:  actorSettler,
		to:      enums.BookingStatusWarrantyIssueResolved,
		dispute: cooldown(enums.DisputeStatusSettlerResolving, false),
	},
	{
		from:    statuses(enums.BookingStatusWarrantyIssueResolved),
		event:   enums.ActivitySettlerUpdateCooldownEvidence,
		actors:  actorSettler,
		to:      enums.BookingStatusWarrantyIssueResolved,
		dispute: cooldown(enums.DisputeStatusSettlerResolving, false),
	},
	{
		from:    statuses(enums.BookingStatusWarrantyIssueReported),
		event:   enums.ActivitySettlerRejectCooldownReport,
		actors:  actorSettler,
		to:      enums.BookingStatusWarrantyIssueRejected,
		dispute: cooldown(enums.DisputeStatusSettlerRejected, false),
	},
	{
		from:    statuses(enums.BookingStatusWarrantyIssueResolved),
		event:   enums.ActivityCustomerCooldownReportNotResolved,
		actors:  actorCustomer,
		to:      enums.BookingStatusWarrantyIssueReported,
		dispute: cooldown(enums.DisputeStatusReported, false),
	},
	{
		from:    statuses(enums.BookingStatusWarrantyIssueRejected, enums.BookingStatusWarrantyIssueResolved),
		event:   enums.ActivityCooldownReportCompleted,
		actors:  actorCustomer,
		to:      enums.BookingStatusWarrantyPeriod,
		dispute: cooldown(enums.DisputeStatusResolved, false),
	},

	// closing
	{
		from:   statuses(enums.BookingStatusWarrantyPeriod),
		event:  enums.ActivityBookingCompleted,
		actors: []enums.BookingActor{enums.BookingActorCustomer, enums.BookingActorSystem},
		to:     enums.BookingStatusServiceCompleted,
	},
	{
		from: statuses(
			enums.BookingStatusVerifyBooking,
			enums.BookingStatusBroadcasting,
			enums.BookingStatusSettlerAccepted,
			enums.BookingStatusSettlerAssigned,
			enums.BookingStatusQuoteUpdated,
			enums.BookingStatusIncompletionRejected,
			enums.BookingStatusIncompletionResolving,
		),
		event:  enums.ActivityBookingCancelled,
		actors: []enums.BookingActor{enums.BookingActorCustomer, enums.BookingActorSettler, enums.BookingActorSystem},
		to:     enums.BookingStatusCancelled,
	},

	// informational
	{
		from: statuses(
			enums.BookingStatusVerifyBooking,
			enums.BookingStatusBroadcasting,
			enums.BookingStatusSettlerAccepted,
			enums.BookingStatusSettlerAssigned,
		),
		event:  enums.ActivityNotesToSettlerUpdated,
		actors: actorCustomer,
		keep:   true,
	},
	{from: statusesExcept(enums.BookingStatusVerifyBooking), event: enums.ActivityPaymentReleasedToSettler, actors: actorSystem, keep: true},
	{from: statusesExcept(enums.BookingStatusVerifyBooking), event: enums.ActivityPaymentReleasedToCustomer, actors: actorSystem, keep: true},
}

var ruleIndex = buildRuleIndex(rules)

func buildRuleIndex(table []rule) map[ruleKey]rule {
	index := make(map[ruleKey]rule, len(table)*2)
	for _, r := range table {
		for _, from := range r.from {
			key := ruleKey{status: from, event: r.event}
			if _, dup := index[key]; dup {
				panic(fmt.Sprintf("lifecycle: duplicate rule for %s from %s", r.event, from))
			}
			index[key] = r
		}
	}
	return index
}

// Transition validates that actor may record event while the booking is in
// current and returns the resulting status together with any dispute change.
func Transition(current enums.BookingStatus, event enums.BookingActivityType, actor enums.BookingActor) (Outcome, error) {
	if !event.IsValid() {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown activity type").
			WithDetails(map[string]string{"event": string(event)})
	}
	if !actor.IsValid() {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown actor").
			WithDetails(map[string]string{"actor": string(actor)})
	}

	r, ok := ruleIndex[ruleKey{status: current, event: event}]
	if !ok {
		return Outcome{}, invalidTransition(current, event, actor, "event not allowed in current state")
	}
	if !actorAllowed(r.actors, actor) {
		return Outcome{}, invalidTransition(current, event, actor, "actor not allowed for event")
	}

	out := Outcome{From: current, Next: r.to, Informational: r.keep}
	if r.keep {
		out.Next = current
	}
	if r.dispute != nil {
		change := *r.dispute
		out.Dispute = &change
	}
	return out, nil
}

// Allowed reports whether Transition would accept the triple.
func Allowed(current enums.BookingStatus, event enums.BookingActivityType, actor enums.BookingActor) bool {
	_, err := Transition(current, event, actor)
	return err == nil
}

// EventsFrom lists the activity types that have a rule leaving status.
func EventsFrom(status enums.BookingStatus) []enums.BookingActivityType {
	var out []enums.BookingActivityType
	for _, event := range enums.BookingActivityTypes() {
		if _, ok := ruleIndex[ruleKey{status: status, event: event}]; ok {
			out = append(out, event)
		}
	}
	return out
}

func actorAllowed(allowed []enums.BookingActor, actor enums.BookingActor) bool {
	for _, candidate := range allowed {
		if candidate == actor {
			return true
		}
	}
	return false
}

func invalidTransition(current enums.BookingStatus, event enums.BookingActivityType, actor enums.BookingActor, reason string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot record %s from status %s", event, current)).
		WithDetails(TransitionDetails{
			State:  current.String(),
			Event:  string(event),
			Actor:  string(actor),
			Reason: reason,
		})
}

// IsInvalidTransition reports whether err is a rejected lifecycle transition.
func IsInvalidTransition(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeStateConflict)
}
