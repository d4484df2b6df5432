package domain

import "fmt"

type Action string

const (
	ActionCreate   Action = "create"
	ActionCancel   Action = "cancel"
	ActionConfirm  Action = "confirm"
	ActionDecline  Action = "decline"
	ActionComplete Action = "complete"
)

// Role is the relationship of a caller to a booking.
type Role string

const (
	RoleRenter Role = "renter"
	RoleOwner  Role = "owner"
)

type edge struct {
	from   Status
	action Action
}

var transitions = map[edge]Status{
	{StatusPending, ActionCancel}:     StatusCancelled,
	{StatusPending, ActionConfirm}:    StatusConfirmed,
	{StatusPending, ActionDecline}:    StatusCancelled,
	{StatusConfirmed, ActionComplete}: StatusCompleted,
}

var actionRoles = map[Action]Role{
	ActionCancel:   RoleRenter,
	ActionConfirm:  RoleOwner,
	ActionDecline:  RoleOwner,
	ActionComplete: RoleOwner,
}

// RequiredRole reports who may perform action on an existing booking.
func RequiredRole(action Action) (Role, bool) {
	r, ok := actionRoles[action]
	return r, ok
}

// Transition returns the status reached by applying action to from.
func Transition(from Status, action Action) (Status, error) {
	to, ok := transitions[edge{from, action}]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidTransition, action, from)
	}
	return to, nil
}

// Authorize checks that callerID holds the role action requires on b.
// b.YachtOwnerID must be populated.
func Authorize(b Booking, callerID string, action Action) error {
	role, ok := RequiredRole(action)
	if !ok || callerID == "" {
		return ErrPermissionDenied
	}
	switch role {
	case RoleRenter:
		if b.RenterID == callerID {
			return nil
		}
	case RoleOwner:
		if b.YachtOwnerID != "" && b.YachtOwnerID == callerID {
			return nil
		}
	}
	return fmt.Errorf("%w: only the %s may %s this booking", ErrPermissionDenied, role, action)
}

// Terminal reports whether no further transition exists from s.
func (s Status) Terminal() bool {
	for e := range transitions {
		if e.from == s {
			return false
		}
	}
	return true
}
