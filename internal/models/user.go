package models

import "gorm.io/datatypes"

// UserRole is the system-wide role of a user.
type UserRole string

const (
	RoleUser           UserRole = "USER"
	RoleApprover       UserRole = "APPROVER"
	RoleProductionHead UserRole = "PRODUCTION_HEAD"
	RoleAdmin          UserRole = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleApprover, RoleProductionHead, RoleAdmin:
		return true
	}
	return false
}

// NotificationPreferences holds the per-user opt-in flags for each event type.
type NotificationPreferences struct {
	PushNotifications bool `gorm:"column:push_notifications" json:"push_notifications"`
	ExpenseSubmitted  bool `gorm:"column:expense_submitted" json:"expense_submitted"`
	ExpenseApproved   bool `gorm:"column:expense_approved" json:"expense_approved"`
	ExpenseRejected   bool `gorm:"column:expense_rejected" json:"expense_rejected"`
	ProjectAssignment bool `gorm:"column:project_assignment" json:"project_assignment"`
	PendingApprovals  bool `gorm:"column:pending_approvals" json:"pending_approvals"`
}

// AllNotificationPreferences returns preferences with every flag enabled.
func AllNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		PushNotifications: true,
		ExpenseSubmitted:  true,
		ExpenseApproved:   true,
		ExpenseRejected:   true,
		ProjectAssignment: true,
		PendingApprovals:  true,
	}
}

// Allows reports whether the user opted in to push for the given notification type.
// The master push switch gates every type.
func (p NotificationPreferences) Allows(t NotificationType) bool {
	if !p.PushNotifications {
		return false
	}
	switch t {
	case NotificationExpenseSubmitted:
		return p.ExpenseSubmitted
	case NotificationExpenseApproved:
		return p.ExpenseApproved
	case NotificationExpenseRejected:
		return p.ExpenseRejected
	case NotificationProjectAssignment:
		return p.ProjectAssignment
	case NotificationPendingApproval:
		return p.PendingApprovals
	}
	return true
}

// User represents a member of the production company.
// AssignedProjects is only meaningful for RoleUser.
type User struct {
	Base
	Name                    string                      `gorm:"not null" json:"name"`
	Phone                   string                      `gorm:"index" json:"phone"`
	Email                   string                      `json:"email,omitempty"`
	Role                    UserRole                    `gorm:"type:varchar(32);not null;index" json:"role"`
	AssignedProjects        datatypes.JSONSlice[string] `json:"assigned_projects"`
	NotificationPreferences NotificationPreferences     `gorm:"embedded;embeddedPrefix:pref_" json:"notification_preferences"`
	IsActive                bool                        `gorm:"not null" json:"is_active"`
}
