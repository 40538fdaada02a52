package enums

import "fmt"

// DisputeStatus is the sub-state of an incompletion or cooldown dispute.
type DisputeStatus string

const (
	DisputeStatusReported         DisputeStatus = "reported"
	DisputeStatusSettlerResolving DisputeStatus = "settler_resolving"
	DisputeStatusSettlerRejected  DisputeStatus = "settler_rejected"
	DisputeStatusResolved         DisputeStatus = "resolved"
)

var validDisputeStatuses = []DisputeStatus{
	DisputeStatusReported,
	DisputeStatusSettlerResolving,
	DisputeStatusSettlerRejected,
	DisputeStatusResolved,
}

// String implements fmt.Stringer.
func (d DisputeStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DisputeStatus.
func (d DisputeStatus) IsValid() bool {
	for _, candidate := range validDisputeStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsOpen reports whether the dispute still awaits one of the parties.
func (d DisputeStatus) IsOpen() bool {
	return d.IsValid() && d != DisputeStatusResolved
}

// ParseDisputeStatus converts raw input into a DisputeStatus.
func ParseDisputeStatus(value string) (DisputeStatus, error) {
	for _, candidate := range validDisputeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute status %q", value)
}
