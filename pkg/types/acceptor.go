package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Acceptor is a settler that bid on a broadcast booking.
type Acceptor struct {
	SettlerID        uuid.UUID `json:"settlerId"`
	SettlerServiceID uuid.UUID `json:"settlerServiceId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	AcceptedAt       time.Time `json:"acceptedAt"`
}

// FullName joins the acceptor's names for display.
func (a Acceptor) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// SettlerResource is a help article surfaced to settlers.
type SettlerResource struct {
	ImageURI    string `json:"imageUri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}
