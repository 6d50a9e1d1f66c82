package enums

import "fmt"

// NotificationType maps to the notification_type column in Postgres.
type NotificationType string

const (
	NotificationTypeBookingConfirmation NotificationType = "booking_confirmation"
	NotificationTypeBookingCancellation NotificationType = "booking_cancellation"
	NotificationTypeBookingReminder     NotificationType = "booking_reminder"
	NotificationTypeBookingRescheduled  NotificationType = "booking_rescheduled"
	NotificationTypeOrderReceipt        NotificationType = "order_receipt"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeBookingConfirmation,
	NotificationTypeBookingCancellation,
	NotificationTypeBookingReminder,
	NotificationTypeBookingRescheduled,
	NotificationTypeOrderReceipt,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
