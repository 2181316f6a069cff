package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the review state of an expense. Only PENDING may transition.
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusRejected ExpenseStatus = "REJECTED"
)

// Expense is a spend request submitted against a project department.
type Expense struct {
	Base
	ProjectID         string          `gorm:"type:uuid;not null;index" json:"project_id"`
	Department        string          `gorm:"not null;index" json:"department"`
	Category          string          `gorm:"not null" json:"category"`
	Description       string          `json:"description,omitempty"`
	Amount            decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status            ExpenseStatus   `gorm:"type:varchar(16);not null;index" json:"status"`
	SubmittedByUserID string          `gorm:"not null;index" json:"submitted_by_user_id"`
	SubmittedByName   string          `json:"submitted_by_name,omitempty"`
	Date              time.Time       `gorm:"not null" json:"date"`

	// Review audit fields, written once when the expense leaves PENDING.
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	ReviewerName   string     `json:"reviewer_name,omitempty"`
	ReviewComments string     `json:"review_comments,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}
