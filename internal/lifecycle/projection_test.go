package lifecycle

import (
	"testing"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
)

type step struct {
	event enums.BookingActivityType
	actor enums.BookingActor
}

func timeline(steps ...step) []Activity {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]Activity, 0, len(steps))
	for i, st := range steps {
		out = append(out, NewActivity(st.event, st.actor, base.Add(time.Duration(i)*time.Minute)))
	}
	return out
}

func happyPath() []step {
	return []step{
		{enums.ActivityBookingApproved, sys},
		{enums.ActivitySettlerAccept, sett},
		{enums.ActivitySettlerSelected, sys},
		{enums.ActivitySettlerServiceStart, sett},
		{enums.ActivitySettlerServiceEnd, sett},
		{enums.ActivitySettlerEvidenceSubmitted, sett},
		{enums.ActivityJobCompleted, cust},
		{enums.ActivityBookingCompleted, sys},
	}
}

func TestProjectEmptyTimelineIsVerifyBooking(t *testing.T) {
	state := Project(nil)
	if state.Status != s01 {
		t.Fatalf("expected 0.1, got %s", state.Status)
	}
	if state.Incompletion != nil || state.Cooldown != nil {
		t.Fatalf("expected no disputes, got %+v", state)
	}
}

func TestProjectHappyPath(t *testing.T) {
	state := Project(timeline(happyPath()...))
	if state.Status != s6 {
		t.Fatalf("expected 6, got %s", state.Status)
	}
	if state.Applied != len(happyPath()) {
		t.Fatalf("expected %d applied, got %d", len(happyPath()), state.Applied)
	}
}

func TestProjectSkipsIllegalEntries(t *testing.T) {
	steps := []step{
		{enums.ActivityBookingApproved, sys},
		{enums.ActivityJobCompleted, cust},
		{enums.ActivitySettlerAccept, sett},
	}
	state := Project(timeline(steps...))
	if state.Status != s02 {
		t.Fatalf("expected 0.2, got %s", state.Status)
	}
	if state.Applied != 2 {
		t.Fatalf("expected 2 applied entries, got %d", state.Applied)
	}
}

func TestReplayReportsFirstIllegalEntry(t *testing.T) {
	steps := []step{
		{enums.ActivityBookingApproved, sys},
		{enums.ActivityJobCompleted, cust},
		{enums.ActivitySettlerAccept, sett},
	}
	acts := timeline(steps...)
	state, err := Replay(acts)
	if err == nil {
		t.Fatal("expected replay error")
	}
	if state.Status != s0 {
		t.Fatalf("expected state before the bad entry, got %s", state.Status)
	}
	details, ok := pkgerrors.As(err).Details().(ReplayError)
	if !ok {
		t.Fatalf("expected replay details, got %T", pkgerrors.As(err).Details())
	}
	if details.Index != 1 || details.Activity != acts[1].ID || details.State != "0" {
		t.Fatalf("unexpected details %+v", details)
	}
}

func TestDisputeRoundsAndIndependence(t *testing.T) {
	steps := append(happyPath()[:6],
		step{enums.ActivityJobIncomplete, cust},
		step{enums.ActivitySettlerRejectIncompletion, sett},
		step{enums.ActivityJobIncomplete, cust},
		step{enums.ActivitySettlerResolveIncompletion, sett},
		step{enums.ActivityCustomerConfirmCompletion, cust},
		step{enums.ActivityCooldownReportSubmitted, cust},
		step{enums.ActivitySettlerResolveCooldownReport, sett},
	)
	state, err := Replay(timeline(steps...))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if state.Status != s92 {
		t.Fatalf("expected 9.2, got %s", state.Status)
	}
	if state.Incompletion == nil || *state.Incompletion != enums.DisputeStatusResolved {
		t.Fatalf("expected incompletion resolved, got %v", state.Incompletion)
	}
	if state.IncompletionRound != 2 {
		t.Fatalf("expected two incompletion rounds, got %d", state.IncompletionRound)
	}
	if state.Cooldown == nil || *state.Cooldown != enums.DisputeStatusSettlerResolving {
		t.Fatalf("expected cooldown settler_resolving, got %v", state.Cooldown)
	}
	if state.CooldownRound != 1 {
		t.Fatalf("expected one cooldown round, got %d", state.CooldownRound)
	}
}

func TestCooldownDoesNotTouchIncompletion(t *testing.T) {
	steps := append(happyPath()[:7],
		step{enums.ActivityCooldownReportSubmitted, cust},
		step{enums.ActivitySettlerRejectCooldownReport, sett},
	)
	state, err := Replay(timeline(steps...))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if state.Incompletion != nil || state.IncompletionRound != 0 {
		t.Fatalf("cooldown actions changed incompletion: %+v", state)
	}
	if state.Cooldown == nil || *state.Cooldown != enums.DisputeStatusSettlerRejected {
		t.Fatalf("expected cooldown settler_rejected, got %v", state.Cooldown)
	}
}

func TestApplyDoesNotMutateOnError(t *testing.T) {
	state := InitialState()
	next, err := state.Apply(NewActivity(enums.ActivityJobCompleted, cust, time.Now()))
	if err == nil {
		t.Fatal("expected error")
	}
	if next != state {
		t.Fatalf("expected unchanged state, got %+v", next)
	}
}

func TestNewActivityStoresMicrosecondUTC(t *testing.T) {
	at := time.Date(2026, 3, 1, 17, 0, 0, 123456789, time.FixedZone("MYT", 8*3600))
	a := NewActivity(enums.ActivityBookingApproved, enums.BookingActorSystem, at)
	if a.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", a.Timestamp.Location())
	}
	if want := time.Date(2026, 3, 1, 9, 0, 0, 123456000, time.UTC); !a.Timestamp.Equal(want) {
		t.Fatalf("expected %s, got %s", want, a.Timestamp)
	}
}
