package domain

// NotificationType classifies a UI notification
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
)

// Valid reports whether t is one of the known notification types
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationSuccess, NotificationError, NotificationInfo, NotificationWarning:
		return true
	}
	return false
}

// Notification is a transient toast message
type Notification struct {
	ID      string           `json:"id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	// Duration is the display time in milliseconds; zero means the default.
	Duration int `json:"duration,omitempty"`
}
