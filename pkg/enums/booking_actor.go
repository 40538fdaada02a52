package enums

import "fmt"

// BookingActor is the party that caused a timeline entry.
type BookingActor string

const (
	BookingActorSettler  BookingActor = "SETTLER"
	BookingActorCustomer BookingActor = "CUSTOMER"
	// BookingActorSystem is reserved for admin-triggered and automatic transitions.
	BookingActorSystem BookingActor = "SYSTEM"
)

var validBookingActors = []BookingActor{
	BookingActorSettler,
	BookingActorCustomer,
	BookingActorSystem,
}

// String implements fmt.Stringer.
func (a BookingActor) String() string {
	return string(a)
}

// IsValid reports whether the value is a known BookingActor.
func (a BookingActor) IsValid() bool {
	for _, candidate := range validBookingActors {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseBookingActor converts raw input into a BookingActor.
func ParseBookingActor(value string) (BookingActor, error) {
	for _, candidate := range validBookingActors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking actor %q", value)
}
