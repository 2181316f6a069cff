package models

// NotificationType identifies the workflow event a notification describes.
type NotificationType string

const (
	NotificationExpenseSubmitted  NotificationType = "EXPENSE_SUBMITTED"
	NotificationExpenseApproved   NotificationType = "EXPENSE_APPROVED"
	NotificationExpenseRejected   NotificationType = "EXPENSE_REJECTED"
	NotificationProjectAssignment NotificationType = "PROJECT_ASSIGNMENT"
	NotificationPendingApproval   NotificationType = "PENDING_APPROVAL"
	NotificationDelegationExpired NotificationType = "DELEGATION_EXPIRED"
)

// Notification is an append-only in-app message for a single recipient.
type Notification struct {
	Base
	RecipientID      string           `gorm:"not null;index" json:"recipient_id"`
	RecipientRole    UserRole         `gorm:"type:varchar(32)" json:"recipient_role"`
	Title            string           `gorm:"not null" json:"title"`
	Message          string           `json:"message"`
	Type             NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	ProjectID        string           `gorm:"index" json:"project_id"`
	ProjectName      string           `json:"project_name"`
	RelatedID        string           `json:"related_id,omitempty"`
	ActionRequired   bool             `json:"action_required"`
	NavigationTarget string           `json:"navigation_target"`
}

// DeviceToken is a push token registered by one of a user's devices.
type DeviceToken struct {
	Base
	UserID   string `gorm:"not null;index" json:"user_id"`
	Token    string `gorm:"not null;uniqueIndex" json:"token"`
	Platform string `json:"platform,omitempty"`
}
