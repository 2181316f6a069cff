package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DepartmentBudgets maps a department name to its allocated amount.
type DepartmentBudgets map[string]decimal.Decimal

// Project is a production with per-department budgets and its reviewer assignments.
type Project struct {
	Base
	Name              string                                `gorm:"not null" json:"name"`
	DepartmentBudgets datatypes.JSONType[DepartmentBudgets] `json:"department_budgets"`
	ApproverIDs       datatypes.JSONSlice[string]           `json:"approver_ids"`
	ProductionHeadIDs datatypes.JSONSlice[string]           `json:"production_head_ids"`
	ManagerID         string                                `json:"manager_id,omitempty"`
	// TeamMembers is the set consulted for project visibility. It must contain
	// every currently-active temporary approver.
	TeamMembers datatypes.JSONSlice[string] `json:"team_members"`
	// TemporaryApproverPhone points at the active delegation, nil when there is none.
	TemporaryApproverPhone *string `json:"temporary_approver_phone,omitempty"`
}

// Budgets returns the department allocation map, never nil.
func (p *Project) Budgets() DepartmentBudgets {
	b := p.DepartmentBudgets.Data()
	if b == nil {
		return DepartmentBudgets{}
	}
	return b
}

// HoldsPermanentRole reports whether userID is attached to the project through
// an assignment that outlives any delegation.
func (p *Project) HoldsPermanentRole(userID string) bool {
	return ContainsID(p.ApproverIDs, userID) ||
		ContainsID(p.ProductionHeadIDs, userID) ||
		(p.ManagerID != "" && p.ManagerID == userID)
}
