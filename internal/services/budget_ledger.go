package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
	"avrexpense/internal/models"
	"avrexpense/internal/store"
)

const (
	reasonProjectNotFound = "project not found"
	reasonNoBudget        = "no budget allocated for department"
	reasonInvalidAmount   = "amount must be greater than zero"
)

var hundred = decimal.NewFromInt(100)

// budgetLedger derives spend and remaining budget from approved expenses.
type budgetLedger struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewBudgetLedger creates a new BudgetLedgerServicer.
func NewBudgetLedger(st store.Store) BudgetLedgerServicer {
	return &budgetLedger{store: st, logger: logger.Named("budget-ledger")}
}

// Evaluate reports whether amount fits in the department's remaining budget.
// It never returns an error: store failures come back as a rejected result
// whose Reason is the error text.
func (s *budgetLedger) Evaluate(ctx context.Context, projectID, department string, amount decimal.Decimal) *BudgetValidationResult {
	result := &BudgetValidationResult{
		Allocated: decimal.Zero,
		Spent:     decimal.Zero,
		Remaining: decimal.Zero,
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return s.reject(result, err, projectID)
	}

	allocated, ok := project.Budgets()[department]
	if !ok || !allocated.IsPositive() {
		result.Reason = reasonNoBudget
		result.Err = apperrors.ErrNoBudgetAllocated
		return result
	}
	result.Allocated = allocated

	expenses, err := s.store.GetExpensesForProject(ctx, projectID)
	if err != nil {
		return s.reject(result, err, projectID)
	}

	result.Spent = approvedSpend(expenses, department)
	result.Remaining = allocated.Sub(result.Spent)

	if !amount.IsPositive() {
		result.Reason = reasonInvalidAmount
		result.Err = apperrors.ErrInvalidAmount
		return result
	}

	result.Allowed = amount.LessThanOrEqual(result.Remaining)
	if !result.Allowed {
		result.Reason = fmt.Sprintf("Expense amount %s exceeds remaining budget for %s. Allocated: %s, Remaining: %s",
			amount.StringFixed(2), department, allocated.StringFixed(2), result.Remaining.StringFixed(2))
		result.Err = apperrors.WithMessage(apperrors.ErrBudgetExceeded, result.Reason)
	}
	return result
}

func (s *budgetLedger) reject(result *BudgetValidationResult, err error, projectID string) *BudgetValidationResult {
	if errors.Is(err, apperrors.ErrProjectNotFound) {
		result.Reason = reasonProjectNotFound
		result.Err = apperrors.ErrProjectNotFound
		return result
	}
	s.logger.Warnw("Budget evaluation failed closed", "project_id", projectID, "error", err)
	result.Reason = err.Error()
	result.Err = err
	return result
}

// Summary returns the spend position of every department with an allocation.
func (s *budgetLedger) Summary(ctx context.Context, projectID string) (map[string]DepartmentSummary, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.GetExpensesForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	spentByDept := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.Status != models.ExpenseStatusApproved {
			continue
		}
		spentByDept[e.Department] = spentByDept[e.Department].Add(e.Amount)
	}

	summary := make(map[string]DepartmentSummary, len(project.Budgets()))
	for dept, allocated := range project.Budgets() {
		spent, ok := spentByDept[dept]
		if !ok {
			spent = decimal.Zero
		}
		percentage := 0.0
		if allocated.IsPositive() {
			percentage = spent.Div(allocated).Mul(hundred).Round(2).InexactFloat64()
		}
		summary[dept] = DepartmentSummary{
			Allocated:  allocated,
			Spent:      spent,
			Remaining:  allocated.Sub(spent),
			Percentage: percentage,
		}
	}
	return summary, nil
}

// HasBudget reports whether any department of the project has a positive
// allocation. Store failures read as false.
func (s *budgetLedger) HasBudget(ctx context.Context, projectID string) bool {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return false
	}
	for _, allocated := range project.Budgets() {
		if allocated.IsPositive() {
			return true
		}
	}
	return false
}

// approvedSpend sums APPROVED expenses in department. PENDING amounts do not
// reserve budget.
func approvedSpend(expenses []models.Expense, department string) decimal.Decimal {
	spent := decimal.Zero
	for _, e := range expenses {
		if e.Department == department && e.Status == models.ExpenseStatusApproved {
			spent = spent.Add(e.Amount)
		}
	}
	return spent
}
