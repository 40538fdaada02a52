package lifecycle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/google/uuid"
)

// Activity is one immutable entry of a booking timeline.
type Activity struct {
	ID        uuid.UUID                 `json:"id"`
	Type      enums.BookingActivityType `json:"type"`
	Actor     enums.BookingActor        `json:"actor"`
	Timestamp time.Time                 `json:"timestamp"`
	Message   string                    `json:"message,omitempty"`
	Payload   json.RawMessage           `json:"payload,omitempty"`
}

// TimestampPrecision is the resolution timeline timestamps are stored at.
const TimestampPrecision = time.Microsecond

// NewActivity stamps a fresh entry with a random id. The timestamp is cut to
// TimestampPrecision so the value handed to consumers equals the stored one.
func NewActivity(activityType enums.BookingActivityType, actor enums.BookingActor, at time.Time) Activity {
	return Activity{
		ID:        uuid.New(),
		Type:      activityType,
		Actor:     actor,
		Timestamp: at.UTC().Truncate(TimestampPrecision),
	}
}

// State is everything the timeline determines about a booking.
type State struct {
	Status            enums.BookingStatus  `json:"status"`
	Incompletion      *enums.DisputeStatus `json:"incompletion_status,omitempty"`
	IncompletionRound int                  `json:"incompletion_round"`
	Cooldown          *enums.DisputeStatus `json:"cooldown_status,omitempty"`
	CooldownRound     int                  `json:"cooldown_round"`
	Applied           int                  `json:"applied"`
}

// InitialState is the state of a booking with an empty timeline.
func InitialState() State {
	return State{Status: enums.BookingStatusVerifyBooking}
}

// Apply folds one activity into the state.
func (s State) Apply(activity Activity) (State, error) {
	outcome, err := Transition(s.Status, activity.Type, activity.Actor)
	if err != nil {
		return s, err
	}
	return s.advance(outcome), nil
}

func (s State) advance(outcome Outcome) State {
	next := s
	next.Status = outcome.Next
	next.Applied++
	if change := outcome.Dispute; change != nil {
		status := change.Status
		switch change.Kind {
		case DisputeIncompletion:
			next.Incompletion = &status
			if change.OpensRound {
				next.IncompletionRound++
			}
		case DisputeCooldown:
			next.Cooldown = &status
			if change.OpensRound {
				next.CooldownRound++
			}
		}
	}
	return next
}

// Project folds a timeline from the initial state. Entries that are illegal
// from the folded state are skipped, so legacy timelines still project.
func Project(timeline []Activity) State {
	state := InitialState()
	for _, activity := range timeline {
		next, err := state.Apply(activity)
		if err != nil {
			continue
		}
		state = next
	}
	return state
}

// ReplayError pinpoints the first timeline entry a strict replay rejected.
type ReplayError struct {
	Index    int                       `json:"index"`
	Activity uuid.UUID                 `json:"activity_id"`
	Type     enums.BookingActivityType `json:"type"`
	State    string                    `json:"state"`
}

// Replay folds a timeline and fails on the first illegal entry.
func Replay(timeline []Activity) (State, error) {
	state := InitialState()
	for i, activity := range timeline {
		next, err := state.Apply(activity)
		if err != nil {
			return state, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, fmt.Sprintf("timeline entry %d is not a legal transition", i)).
				WithDetails(ReplayError{
					Index:    i,
					Activity: activity.ID,
					Type:     activity.Type,
					State:    state.Status.String(),
				})
		}
		state = next
	}
	return state, nil
}
