package enums

import "fmt"

// AccountRole is the role carried in access tokens.
type AccountRole string

const (
	AccountRoleAdmin    AccountRole = "admin"
	AccountRoleCustomer AccountRole = "customer"
	AccountRoleSettler  AccountRole = "settler"
)

var validAccountRoles = []AccountRole{
	AccountRoleAdmin,
	AccountRoleCustomer,
	AccountRoleSettler,
}

// String implements fmt.Stringer.
func (r AccountRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known AccountRole.
func (r AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Actor maps the caller role onto the timeline actor. Admin actions are
// recorded as SYSTEM.
func (r AccountRole) Actor() (BookingActor, error) {
	switch r {
	case AccountRoleAdmin:
		return BookingActorSystem, nil
	case AccountRoleCustomer:
		return BookingActorCustomer, nil
	case AccountRoleSettler:
		return BookingActorSettler, nil
	default:
		return "", fmt.Errorf("role %q has no booking actor", r)
	}
}

// ParseAccountRole converts raw input into an AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
