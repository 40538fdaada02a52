package bookings

import (
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/google/uuid"
)

// Principal is the authenticated caller of a booking operation.
type Principal struct {
	AccountID uuid.UUID
	UserID    *uuid.UUID
	Role      enums.AccountRole
}

// SystemPrincipal is used by background jobs acting as the platform.
func SystemPrincipal() Principal {
	return Principal{Role: enums.AccountRoleAdmin}
}

// Actor maps the caller's role to a timeline actor.
func (p Principal) Actor() (enums.BookingActor, error) {
	actor, err := p.Role.Actor()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "role cannot act on bookings")
	}
	return actor, nil
}

func (p Principal) userID() uuid.UUID {
	if p.UserID == nil {
		return uuid.Nil
	}
	return *p.UserID
}

// authorize checks that a customer owns the booking and a settler is the one
// assigned to it. Broadcast bids are checked by Accept itself.
func authorize(p Principal, booking *models.Booking, event enums.BookingActivityType) error {
	actor, err := p.Actor()
	if err != nil {
		return err
	}
	switch actor {
	case enums.BookingActorSystem:
		return nil
	case enums.BookingActorCustomer:
		if booking.UserID != p.userID() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
		}
		return nil
	case enums.BookingActorSettler:
		if event == enums.ActivitySettlerAccept {
			return nil
		}
		if booking.SettlerID == nil || *booking.SettlerID != p.userID() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking is not assigned to this settler")
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor")
}

// canView extends authorize for reads: settlers may also see bookings they bid
// on or that are still open for bids.
func canView(p Principal, booking *models.Booking) bool {
	actor, err := p.Actor()
	if err != nil {
		return false
	}
	switch actor {
	case enums.BookingActorSystem:
		return true
	case enums.BookingActorCustomer:
		return booking.UserID == p.userID()
	case enums.BookingActorSettler:
		me := p.userID()
		if booking.SettlerID != nil && *booking.SettlerID == me {
			return true
		}
		if booking.AssignedSettler() {
			return false
		}
		if booking.Status == enums.BookingStatusBroadcasting || booking.Status == enums.BookingStatusSettlerAccepted {
			return true
		}
		for _, acceptor := range booking.Acceptors.Val {
			if acceptor.SettlerID == me {
				return true
			}
		}
	}
	return false
}
