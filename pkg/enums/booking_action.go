package enums

import "fmt"

// BookingAction identifies the operation recorded in the booking audit log.
type BookingAction string

const (
	BookingActionHold       BookingAction = "hold"
	BookingActionConfirm    BookingAction = "confirm"
	BookingActionReschedule BookingAction = "reschedule"
	BookingActionResize     BookingAction = "resize"
	BookingActionCancel     BookingAction = "cancel"
	BookingActionExpire     BookingAction = "expire"
)

var validBookingActions = []BookingAction{
	BookingActionHold,
	BookingActionConfirm,
	BookingActionReschedule,
	BookingActionResize,
	BookingActionCancel,
	BookingActionExpire,
}

// String implements fmt.Stringer.
func (a BookingAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known BookingAction.
func (a BookingAction) IsValid() bool {
	for _, candidate := range validBookingActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseBookingAction converts raw input into a BookingAction.
func ParseBookingAction(value string) (BookingAction, error) {
	for _, candidate := range validBookingActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking action %q", value)
}
