package lifecycle

import (
	"crypto/rand"
	"fmt"
	"math/big"

	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
)

// AcceptorOutcome is derived from the assigned settler; it is never stored.
type AcceptorOutcome string

const (
	AcceptorPending  AcceptorOutcome = "Pending"
	AcceptorAccepted AcceptorOutcome = "Accepted"
	AcceptorRejected AcceptorOutcome = "Rejected"
)

// Assignment is the settler currently bound to a booking, if any.
type Assignment struct {
	SettlerID        *uuid.UUID
	SettlerServiceID *uuid.UUID
}

// Assigned reports whether a settler has been chosen.
func (a Assignment) Assigned() bool {
	return a.SettlerID != nil && *a.SettlerID != uuid.Nil
}

// OutcomeFor compares an acceptor with the assignment.
func OutcomeFor(assignment Assignment, acceptor types.Acceptor) AcceptorOutcome {
	if !assignment.Assigned() {
		return AcceptorPending
	}
	if *assignment.SettlerID != acceptor.SettlerID {
		return AcceptorRejected
	}
	if assignment.SettlerServiceID != nil && *assignment.SettlerServiceID != acceptor.SettlerServiceID {
		return AcceptorRejected
	}
	return AcceptorAccepted
}

// AddAcceptor appends a bid, rejecting a settler service that already bid.
func AddAcceptor(acceptors []types.Acceptor, candidate types.Acceptor) ([]types.Acceptor, error) {
	if candidate.SettlerID == uuid.Nil || candidate.SettlerServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settler id and settler service id are required")
	}
	for _, existing := range acceptors {
		if existing.SettlerServiceID == candidate.SettlerServiceID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "settler service already accepted this booking").
				WithDetails(map[string]string{"settlerServiceId": candidate.SettlerServiceID.String()})
		}
	}
	out := make([]types.Acceptor, 0, len(acceptors)+1)
	out = append(out, acceptors...)
	return append(out, candidate), nil
}

// SelectAcceptor resolves which acceptor wins the booking. It fails with
// ALREADY_ASSIGNED once a settler is bound and NOT_FOUND when the pair never bid.
func SelectAcceptor(assignment Assignment, acceptors []types.Acceptor, settlerID, settlerServiceID uuid.UUID) (types.Acceptor, error) {
	if assignment.Assigned() {
		return types.Acceptor{}, pkgerrors.New(pkgerrors.CodeAlreadyAssigned, "booking already has a settler").
			WithDetails(map[string]string{"settlerId": assignment.SettlerID.String()})
	}
	for _, acceptor := range acceptors {
		if acceptor.SettlerID == settlerID && acceptor.SettlerServiceID == settlerServiceID {
			return acceptor, nil
		}
	}
	return types.Acceptor{}, pkgerrors.New(pkgerrors.CodeNotFound, "acceptor not found").
		WithDetails(map[string]string{
			"settlerId":        settlerID.String(),
			"settlerServiceId": settlerServiceID.String(),
		})
}

const (
	startCodeMin  = 1000000
	startCodeSpan = 9000000
)

// StartCodeGenerator yields a service start code.
type StartCodeGenerator func() (string, error)

// NewServiceStartCode returns a random 7 digit code in [1000000, 9999999].
func NewServiceStartCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(startCodeSpan))
	if err != nil {
		return "", fmt.Errorf("generate service start code: %w", err)
	}
	return fmt.Sprintf("%d", startCodeMin+n.Int64()), nil
}
