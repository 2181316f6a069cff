package models

import "time"

// DelegationStatus is the lifecycle state of a temporary approver.
type DelegationStatus string

const (
	DelegationStatusActive  DelegationStatus = "ACTIVE"
	DelegationStatusExpired DelegationStatus = "EXPIRED"
)

// SystemActor is recorded as ChangedBy when the expiry sweep deactivates a delegation.
const SystemActor = "System"

// TemporaryApprover is a time-boxed delegation of approval authority on a project.
// Rows are never deleted; expired ones stay with IsActive=false for audit history.
type TemporaryApprover struct {
	Base
	ProjectID     string           `gorm:"type:uuid;not null;index:idx_temp_approver_project_active" json:"project_id"`
	ApproverID    string           `gorm:"not null;index" json:"approver_id"`
	ApproverName  string           `json:"approver_name"`
	ApproverPhone string           `json:"approver_phone"`
	StartDate     time.Time        `gorm:"not null" json:"start_date"`
	ExpiringDate  *time.Time       `json:"expiring_date,omitempty"`
	IsActive      bool             `gorm:"not null;index:idx_temp_approver_project_active" json:"is_active"`
	Status        DelegationStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedBy     string           `json:"created_by,omitempty"`
	ChangedBy     string           `json:"changed_by,omitempty"`
}

// IsDue reports whether an active delegation has passed its expiry at now.
// Open-ended delegations (no expiring date) are never due.
func (t *TemporaryApprover) IsDue(now time.Time) bool {
	return t.IsActive && t.ExpiringDate != nil && now.After(*t.ExpiringDate)
}

// InEffect reports whether the delegation currently grants authority.
func (t *TemporaryApprover) InEffect(now time.Time) bool {
	return t.IsActive && t.Status == DelegationStatusActive && !t.IsDue(now)
}
