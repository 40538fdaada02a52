package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/evidence"
	"github.com/DevStdio379/settisfy-web/internal/lifecycle"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
	"github.com/DevStdio379/settisfy-web/pkg/outbox"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
	"github.com/DevStdio379/settisfy-web/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the booking lifecycle to the API and background jobs.
type Service interface {
	Create(ctx context.Context, p Principal, in CreateInput) (*models.Booking, error)
	Get(ctx context.Context, p Principal, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, p Principal, params ListParams) (*ListResult, error)

	Approve(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error)
	Reject(ctx context.Context, p Principal, id uuid.UUID, in RejectInput) (*models.Booking, error)
	Accept(ctx context.Context, p Principal, id uuid.UUID, in AcceptInput) (*models.Booking, error)
	SelectAcceptor(ctx context.Context, p Principal, id uuid.UUID, in SelectAcceptorInput) (*models.Booking, error)
	UpdateNotes(ctx context.Context, p Principal, id uuid.UUID, in NotesInput) (*models.Booking, error)
	StartService(ctx context.Context, p Principal, id uuid.UUID, in StartServiceInput) (*models.Booking, error)
	CreateQuote(ctx context.Context, p Principal, id uuid.UUID, in QuoteInput) (*models.Booking, error)
	EndService(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error)
	SubmitEvidence(ctx context.Context, p Principal, id uuid.UUID, in EvidenceInput) (*models.Booking, error)
	CompleteJob(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error)
	Dispute(ctx context.Context, p Principal, id uuid.UUID, in DisputeInput) (*models.Booking, error)
	CompleteBooking(ctx context.Context, p Principal, id uuid.UUID, version int64) (*models.Booking, error)
	Cancel(ctx context.Context, p Principal, id uuid.UUID, in CancelInput) (*models.Booking, error)
	ReleasePayment(ctx context.Context, p Principal, id uuid.UUID, in ReleaseInput) (*models.Booking, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type evidenceCollector interface {
	Collect(ctx context.Context, bookingID uuid.UUID, purpose evidence.Purpose, in evidence.Input) (evidence.Result, error)
}

// noEvidenceStore backs processes without blob storage (the cron worker);
// any transition carrying images fails there.
type noEvidenceStore struct{}

func (noEvidenceStore) Collect(context.Context, uuid.UUID, evidence.Purpose, evidence.Input) (evidence.Result, error) {
	return evidence.Result{}, pkgerrors.New(pkgerrors.CodeUploadFailed, "evidence storage not configured")
}

type userDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type settlerServiceReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SettlerService, error)
}

type parameterReader interface {
	Get(ctx context.Context) (*models.SystemParameter, error)
}

// ServiceParams bundles the dependencies of the booking service.
type ServiceParams struct {
	Repo               Repository
	Tx                 txRunner
	Outbox             outboxPublisher
	Evidence           evidenceCollector
	Users              userDirectory
	SettlerServices    settlerServiceReader
	Params             parameterReader
	Metrics            *metrics.BookingMetrics
	Logger             *logger.Logger
	DefaultPlatformFee decimal.Decimal
	Clock              func() time.Time
	StartCodes         lifecycle.StartCodeGenerator
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	evidence   evidenceCollector
	users      userDirectory
	services   settlerServiceReader
	params     parameterReader
	metrics    *metrics.BookingMetrics
	logg       *logger.Logger
	defaultFee decimal.Decimal
	now        func() time.Time
	codes      lifecycle.StartCodeGenerator
}

// NewService validates the dependencies and builds a booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if params.SettlerServices == nil {
		return nil, fmt.Errorf("settler service reader required")
	}
	if params.Params == nil {
		return nil, fmt.Errorf("system parameter reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	collector := params.Evidence
	if collector == nil {
		collector = noEvidenceStore{}
	}
	codes := params.StartCodes
	if codes == nil {
		codes = lifecycle.NewServiceStartCode
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		outbox:     params.Outbox,
		evidence:   collector,
		users:      params.Users,
		services:   params.SettlerServices,
		params:     params.Params,
		metrics:    params.Metrics,
		logg:       params.Logger,
		defaultFee: params.DefaultPlatformFee,
		now:        func() time.Time { return clock().UTC() },
		codes:      codes,
	}, nil
}

func (s *service) Create(ctx context.Context, p Principal, in CreateInput) (*models.Booking, error) {
	actor, err := p.Actor()
	if err != nil {
		return nil, err
	}
	var userID uuid.UUID
	switch actor {
	case enums.BookingActorCustomer:
		userID = p.userID()
	case enums.BookingActorSystem:
		if in.UserID != nil {
			userID = *in.UserID
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "settlers cannot create bookings")
	}
	if err := validateCreate(userID, in); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:               uuid.New(),
		Version:          1,
		UserID:           userID,
		Status:           lifecycle.InitialState().Status,
		SelectedDate:     in.SelectedDate.UTC(),
		SelectedAddress:  dbtypes.NewJSON(in.Address),
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		CatalogueService: dbtypes.NewJSON(in.Catalogue),
		Total:            in.Total,
		Addons:           dbtypes.NewJSON(in.Addons),
		PaymentMethod:    strings.TrimSpace(in.PaymentMethod),
		PaymentIntentID:  in.PaymentIntentID,
		PaymentStatus:    in.PaymentStatus,
		NotesToSettler:   in.NotesToSettler,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, booking); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{AccountID: accountRef(p), Role: p.Role, Actor: actor},
			Data: payloads.BookingCreatedEvent{
				BookingID:        booking.ID,
				UserID:           booking.UserID,
				CatalogueService: in.Catalogue.Title,
				Total:            booking.Total,
				Status:           booking.Status,
				SelectedDate:     booking.SelectedDate.Format(time.RFC3339),
				PaymentMethod:    booking.PaymentMethod,
				CreatedAt:        s.now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithBookingID(ctx, booking.ID.String())
	s.logg.Info(ctx, "booking.created")
	return booking, nil
}

func validateCreate(userID uuid.UUID, in CreateInput) error {
	switch {
	case userID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
	case in.SelectedDate.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "selected date is required")
	case strings.TrimSpace(in.FirstName) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "first name is required")
	case strings.TrimSpace(in.Catalogue.Title) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "catalogue service is required")
	case !in.Total.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "total must be positive")
	case strings.TrimSpace(in.PaymentMethod) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	return nil
}

func (s *service) Get(ctx context.Context, p Principal, id uuid.UUID) (*Detail, error) {
	actor, err := p.Actor()
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(p, booking) {
		// hide existence from callers who may not see it
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	params, err := s.params.Get(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, []uuid.UUID{booking.UserID})
	if err != nil {
		return nil, err
	}

	state := s.project(ctx, booking)
	detail := buildDetail(booking, state, s.platformFee(params), params, actor)
	if user, ok := users[booking.UserID]; ok {
		summary := summarizeUser(user)
		detail.Customer = &summary
	}
	return detail, nil
}

// listScope ties a list cursor to the caller's actor and status filter.
func listScope(actor enums.BookingActor, status *enums.BookingStatus) string {
	if status == nil {
		return "bookings:" + string(actor) + ":all"
	}
	return "bookings:" + string(actor) + ":" + status.String()
}

func (s *service) List(ctx context.Context, p Principal, params ListParams) (*ListResult, error) {
	actor, err := p.Actor()
	if err != nil {
		return nil, err
	}
	filter := ListFilter{Status: params.Status, Limit: pagination.NormalizeLimit(params.Limit)}
	scope := listScope(actor, params.Status)
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor, scope)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		filter.Cursor = cursor
	}
	switch actor {
	case enums.BookingActorCustomer:
		me := p.userID()
		filter.UserID = &me
	case enums.BookingActorSettler:
		// open bookings are visible to every settler so they can bid
		if params.Status == nil || !isOpenForBids(*params.Status) {
			me := p.userID()
			filter.SettlerID = &me
		}
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := pagination.BuildPage(rows, filter.Limit, scope, func(b models.Booking) (time.Time, uuid.UUID) {
		return b.CreatedAt, b.ID
	})

	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, b := range page.Items {
		ids = append(ids, b.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items:      make([]Summary, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		Users:      make(map[string]UserSummary, len(users)),
	}
	for i := range page.Items {
		result.Items = append(result.Items, NewSummary(&page.Items[i]))
	}
	for id, user := range users {
		result.Users[id.String()] = summarizeUser(user)
	}
	return result, nil
}

func isOpenForBids(status enums.BookingStatus) bool {
	return status == enums.BookingStatusBroadcasting || status == enums.BookingStatusSettlerAccepted
}

func (s *service) platformFee(params *models.SystemParameter) decimal.Decimal {
	if params != nil && params.PlatformFeeIsActive {
		return params.PlatformFee
	}
	return s.defaultFee
}

// project folds the stored timeline. A cached status that disagrees with the
// fold is logged; the fold wins.
func (s *service) project(ctx context.Context, booking *models.Booking) lifecycle.State {
	state := lifecycle.Project(timelineOf(booking))
	if state.Status != booking.Status {
		ctx = s.logg.WithBookingID(ctx, booking.ID.String())
		ctx = s.logg.WithFields(ctx, map[string]any{
			"cached_status": booking.Status.String(),
			"folded_status": state.Status.String(),
		})
		s.logg.Warn(ctx, "booking.status_drift")
	}
	return state
}

func timelineOf(booking *models.Booking) []lifecycle.Activity {
	out := make([]lifecycle.Activity, 0, len(booking.Activities))
	for _, row := range booking.Activities {
		activity := lifecycle.Activity{
			ID:        row.ID,
			Type:      row.Type,
			Actor:     row.Actor,
			Timestamp: row.OccurredAt,
			Payload:   row.Payload,
		}
		if row.Message != nil {
			activity.Message = *row.Message
		}
		out = append(out, activity)
	}
	return out
}

// step is one lifecycle mutation routed through apply.
type step struct {
	bookingID uuid.UUID
	version   int64
	// event picks the activity type for the folded status; most steps use fixed.
	event func(enums.BookingStatus) enums.BookingActivityType
	// precheck runs before the version and transition checks.
	precheck func(booking *models.Booking) error
	prepare  func(ctx context.Context, booking *models.Booking, tr transition) (stepResult, error)
}

// transition is the accepted move a step is preparing for.
type transition struct {
	event  enums.BookingActivityType
	actor  enums.BookingActor
	before lifecycle.State
	next   lifecycle.State
}

// stepResult is what a step writes alongside its activity.
type stepResult struct {
	changes map[string]any
	payload any
	message string
	total   *decimal.Decimal
	amount  *decimal.Decimal
}

func fixed(event enums.BookingActivityType) func(enums.BookingStatus) enums.BookingActivityType {
	return func(enums.BookingStatus) enums.BookingActivityType { return event }
}

// apply checks the transition, runs the step's validation and then writes the
// column changes, the activity and the outbox event in one transaction guarded
// by the expected version.
func (s *service) apply(ctx context.Context, p Principal, st step) (*models.Booking, error) {
	actor, err := p.Actor()
	if err != nil {
		return nil, err
	}
	if st.version <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version is required")
	}
	booking, err := s.repo.FindByID(ctx, st.bookingID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithBookingID(ctx, booking.ID.String())
	ctx = s.logg.WithActorRole(ctx, string(actor))

	state := s.project(ctx, booking)
	event := st.event(state.Status)
	if err := authorize(p, booking, event); err != nil {
		return nil, err
	}
	if st.precheck != nil {
		if err := st.precheck(booking); err != nil {
			return nil, err
		}
	}
	if booking.Version != st.version {
		s.metrics.IncConflict()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "booking version changed").
			WithDetails(map[string]int64{"expectedVersion": st.version, "currentVersion": booking.Version})
	}

	activity := lifecycle.NewActivity(event, actor, s.now())
	next, err := state.Apply(activity)
	if err != nil {
		s.metrics.ObserveRejected(string(event), state.Status.String())
		return nil, err
	}

	var res stepResult
	if st.prepare != nil {
		tr := transition{event: event, actor: actor, before: state, next: next}
		if res, err = st.prepare(ctx, booking, tr); err != nil {
			return nil, err
		}
	}

	changes := res.changes
	if changes == nil {
		changes = make(map[string]any, 4)
	}
	changes["status"] = float64(next.Status)
	disputeColumns(changes, state, next)

	total := booking.Total
	if res.total != nil {
		total = *res.total
		changes["total"] = total
	}

	row := models.BookingActivity{
		ID:         activity.ID,
		Type:       activity.Type,
		Actor:      activity.Actor,
		OccurredAt: activity.Timestamp,
	}
	if res.message != "" {
		msg := res.message
		row.Message = &msg
	}
	if res.payload != nil {
		raw, err := json.Marshal(res.payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode activity payload")
		}
		row.Payload = raw
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		written, err := s.repo.WithTx(tx).ApplyActivity(ctx, ConditionalWrite{
			BookingID:       booking.ID,
			ExpectedVersion: st.version,
			Changes:         changes,
			Activity:        row,
		})
		if err != nil {
			return err
		}
		settlerID := booking.SettlerID
		if id, ok := changes["settler_id"].(uuid.UUID); ok {
			settlerID = &id
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingActivityRecorded,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{AccountID: accountRef(p), Role: p.Role, Actor: actor},
			OccurredAt:    written.OccurredAt,
			Data: payloads.BookingActivityRecordedEvent{
				BookingID:    booking.ID,
				ActivityID:   written.ID,
				Seq:          int64(written.Seq),
				Type:         written.Type,
				Actor:        written.Actor,
				FromStatus:   state.Status,
				ToStatus:     next.Status,
				Message:      res.message,
				Payload:      written.Payload,
				OccurredAt:   written.OccurredAt,
				SettlerID:    settlerID,
				CustomerID:   booking.UserID,
				Amount:       res.amount,
				BookingTotal: total,
			},
		})
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncConflict()
		}
		return nil, err
	}

	s.metrics.ObserveTransition(string(event), string(actor), next.Status.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"activity": string(event),
		"from":     state.Status.String(),
		"to":       next.Status.String(),
	}), "booking.transition")

	return s.repo.FindByID(ctx, booking.ID)
}

// disputeColumns writes only the sub-machine the transition touched.
func disputeColumns(changes map[string]any, before, after lifecycle.State) {
	if !sameDispute(before.Incompletion, after.Incompletion) || before.IncompletionRound != after.IncompletionRound {
		changes["incompletion_status"] = disputeValue(after.Incompletion)
		changes["incompletion_round"] = after.IncompletionRound
	}
	if !sameDispute(before.Cooldown, after.Cooldown) || before.CooldownRound != after.CooldownRound {
		changes["cooldown_status"] = disputeValue(after.Cooldown)
		changes["cooldown_round"] = after.CooldownRound
	}
}

func sameDispute(a, b *enums.DisputeStatus) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func disputeValue(status *enums.DisputeStatus) any {
	if status == nil {
		return nil
	}
	return string(*status)
}

func accountRef(p Principal) *uuid.UUID {
	if p.AccountID == uuid.Nil {
		return nil
	}
	id := p.AccountID
	return &id
}
