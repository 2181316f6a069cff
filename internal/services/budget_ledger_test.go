package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/models"
	"avrexpense/internal/store"
	"avrexpense/internal/testutil"
)

// ledgerStore serves a fixed project and expense list. Methods the ledger
// does not call are left to the embedded nil interface.
type ledgerStore struct {
	store.Store
	project     *models.Project
	expenses    []models.Expense
	projectErr  error
	expensesErr error
}

func (s *ledgerStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if s.projectErr != nil {
		return nil, s.projectErr
	}
	return s.project, nil
}

func (s *ledgerStore) GetExpensesForProject(ctx context.Context, projectID string) ([]models.Expense, error) {
	if s.expensesErr != nil {
		return nil, s.expensesErr
	}
	return s.expenses, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluate(t *testing.T) {
	t.Run("within_budget", func(t *testing.T) {
		env := newTestEnv(t)
		project := testutil.CreateTestProject(t, env.db)

		result := env.ledger.Evaluate(context.Background(), project.ID, "Marketing", dec("4000"))
		if !result.Allowed {
			t.Fatalf("expected allowed, got reason %q", result.Reason)
		}
		if !result.Remaining.Equal(dec("10000")) {
			t.Errorf("expected remaining 10000, got %s", result.Remaining)
		}
		if result.Reason != "" {
			t.Errorf("expected no reason, got %q", result.Reason)
		}
	})

	t.Run("exact_remaining_is_allowed", func(t *testing.T) {
		env := newTestEnv(t)
		project := testutil.CreateTestProject(t, env.db)
		testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "2500", models.ExpenseStatusApproved)

		result := env.ledger.Evaluate(context.Background(), project.ID, "Marketing", dec("7500"))
		if !result.Allowed {
			t.Fatalf("expected amount equal to remaining to be allowed: %s", result.Reason)
		}
	})

	t.Run("only_approved_counts", func(t *testing.T) {
		env := newTestEnv(t)
		project := testutil.CreateTestProject(t, env.db)
		testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "1000", models.ExpenseStatusApproved)
		testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "3000", models.ExpenseStatusPending)
		testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "5000", models.ExpenseStatusRejected)
		testutil.CreateTestExpense(t, env.db, project.ID, "Catering", "800", models.ExpenseStatusApproved)

		result := env.ledger.Evaluate(context.Background(), project.ID, "Marketing", dec("1"))
		if !result.Spent.Equal(dec("1000")) {
			t.Errorf("expected spent 1000, got %s", result.Spent)
		}
		if !result.Remaining.Equal(dec("9000")) {
			t.Errorf("expected remaining 9000, got %s", result.Remaining)
		}
	})

	t.Run("project_not_found", func(t *testing.T) {
		env := newTestEnv(t)

		result := env.ledger.Evaluate(context.Background(), "00000000-0000-0000-0000-000000000000", "Marketing", dec("1"))
		if result.Allowed {
			t.Fatal("expected rejection")
		}
		if result.Reason != "project not found" {
			t.Errorf("unexpected reason %q", result.Reason)
		}
		testutil.AssertAppError(t, result.Err, "PROJECT_NOT_FOUND")
	})

	t.Run("no_allocation", func(t *testing.T) {
		env := newTestEnv(t)
		project := testutil.CreateTestProject(t, env.db, testutil.WithBudgets(testutil.Budgets(map[string]int64{
			"Marketing": 10000,
			"Props":     0,
		})))

		for _, dept := range []string{"Props", "Wardrobe"} {
			result := env.ledger.Evaluate(context.Background(), project.ID, dept, dec("1"))
			if result.Allowed {
				t.Fatalf("%s: expected rejection", dept)
			}
			if result.Reason != "no budget allocated for department" {
				t.Errorf("%s: unexpected reason %q", dept, result.Reason)
			}
			testutil.AssertAppError(t, result.Err, "NO_BUDGET_ALLOCATED")
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		env := newTestEnv(t)
		project := testutil.CreateTestProject(t, env.db)

		result := env.ledger.Evaluate(context.Background(), project.ID, "Marketing", dec("0"))
		if result.Allowed {
			t.Fatal("expected zero amount to be rejected")
		}
		testutil.AssertAppError(t, result.Err, "INVALID_AMOUNT")
	})

	t.Run("store_error_fails_closed", func(t *testing.T) {
		boom := apperrors.Wrap(apperrors.ErrStoreUnavailable, errors.New("connection reset"))
		ledger := NewBudgetLedger(&ledgerStore{
			project:     &models.Project{Base: models.Base{ID: "p1"}, DepartmentBudgets: datatypes.NewJSONType(testutil.Budgets(map[string]int64{"Marketing": 100}))},
			expensesErr: boom,
		})

		result := ledger.Evaluate(context.Background(), "p1", "Marketing", dec("1"))
		if result.Allowed {
			t.Fatal("expected store failure to deny the expense")
		}
		if result.Reason != boom.Error() {
			t.Errorf("expected reason to carry the store error, got %q", result.Reason)
		}
		if apperrors.Kind(result.Err) != apperrors.KindTransient {
			t.Errorf("expected transient error kind, got %s", apperrors.Kind(result.Err))
		}
	})
}

// Marketing 10000, a 4000 approval, then a 7000 request.
func TestEvaluate_RequestAfterApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := testutil.CreateTestProject(t, env.db, func(p *models.Project) { p.Name = "Alpha" })

	first := env.ledger.Evaluate(ctx, project.ID, "Marketing", dec("4000"))
	if !first.Allowed || !first.Remaining.Equal(dec("10000")) {
		t.Fatalf("expected 4000 allowed with remaining 10000, got allowed=%v remaining=%s", first.Allowed, first.Remaining)
	}

	testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "4000", models.ExpenseStatusApproved)

	second := env.ledger.Evaluate(ctx, project.ID, "Marketing", dec("7000"))
	if second.Allowed {
		t.Fatal("expected 7000 to exceed the remaining budget")
	}
	if !second.Remaining.Equal(dec("6000")) {
		t.Errorf("expected remaining 6000, got %s", second.Remaining)
	}
	if !strings.Contains(second.Reason, "exceeds remaining budget") {
		t.Errorf("expected reason to mention the remaining budget, got %q", second.Reason)
	}
	if !strings.Contains(second.Reason, "Allocated: 10000.00") || !strings.Contains(second.Reason, "Remaining: 6000.00") {
		t.Errorf("expected formatted amounts in reason, got %q", second.Reason)
	}
	testutil.AssertAppError(t, second.Err, "BUDGET_EXCEEDED")
}

func TestEvaluate_ApprovedArithmeticProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	build := func(allocated int64, approved, other []int64) *ledgerStore {
		st := &ledgerStore{project: &models.Project{
			Base:              models.Base{ID: "p1"},
			DepartmentBudgets: datatypes.NewJSONType(testutil.Budgets(map[string]int64{"Camera": allocated})),
		}}
		for _, a := range approved {
			st.expenses = append(st.expenses, models.Expense{Department: "Camera", Amount: decimal.NewFromInt(a), Status: models.ExpenseStatusApproved})
		}
		for i, a := range other {
			status := models.ExpenseStatusPending
			if i%2 == 1 {
				status = models.ExpenseStatusRejected
			}
			st.expenses = append(st.expenses, models.Expense{Department: "Camera", Amount: decimal.NewFromInt(a), Status: status})
		}
		return st
	}

	properties.Property("allowed iff amount fits what approved spend leaves", prop.ForAll(
		func(allocated int64, approved, other []int64, amount int64) bool {
			var sum int64
			for _, a := range approved {
				sum += a
			}
			result := NewBudgetLedger(build(allocated, approved, other)).
				Evaluate(context.Background(), "p1", "Camera", decimal.NewFromInt(amount))
			return result.Allowed == (amount <= allocated-sum) &&
				result.Remaining.Equal(decimal.NewFromInt(allocated-sum))
		},
		gen.Int64Range(1, 1_000_000),
		gen.SliceOf(gen.Int64Range(1, 50_000)),
		gen.SliceOf(gen.Int64Range(1, 50_000)),
		gen.Int64Range(1, 2_000_000),
	))

	properties.Property("one more approval lowers remaining by its amount", prop.ForAll(
		func(allocated int64, approved, other []int64, extra int64) bool {
			before := NewBudgetLedger(build(allocated, approved, other)).
				Evaluate(context.Background(), "p1", "Camera", decimal.NewFromInt(1))
			after := NewBudgetLedger(build(allocated, append(append([]int64{}, approved...), extra), other)).
				Evaluate(context.Background(), "p1", "Camera", decimal.NewFromInt(1))
			return before.Remaining.Sub(after.Remaining).Equal(decimal.NewFromInt(extra))
		},
		gen.Int64Range(1, 1_000_000),
		gen.SliceOf(gen.Int64Range(1, 50_000)),
		gen.SliceOf(gen.Int64Range(1, 50_000)),
		gen.Int64Range(1, 50_000),
	))

	properties.TestingRun(t)
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	project := testutil.CreateTestProject(t, env.db, testutil.WithBudgets(testutil.Budgets(map[string]int64{
		"Marketing": 10000,
		"Catering":  2000,
	})))
	testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "2500", models.ExpenseStatusApproved)
	testutil.CreateTestExpense(t, env.db, project.ID, "Marketing", "1000", models.ExpenseStatusPending)

	summary, err := env.ledger.Summary(context.Background(), project.ID)
	testutil.AssertNoError(t, err)

	if len(summary) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(summary))
	}
	m := summary["Marketing"]
	if !m.Spent.Equal(dec("2500")) || !m.Remaining.Equal(dec("7500")) {
		t.Errorf("unexpected Marketing summary: %+v", m)
	}
	if m.Percentage != 25 {
		t.Errorf("expected 25%%, got %v", m.Percentage)
	}
	c := summary["Catering"]
	if !c.Spent.Equal(decimal.Zero) || c.Percentage != 0 {
		t.Errorf("unexpected Catering summary: %+v", c)
	}

	_, err = env.ledger.Summary(context.Background(), "00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
}

func TestHasBudget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	funded := testutil.CreateTestProject(t, env.db)
	empty := testutil.CreateTestProject(t, env.db, testutil.WithBudgets(models.DepartmentBudgets{}))

	if !env.ledger.HasBudget(ctx, funded.ID) {
		t.Error("expected funded project to have budget")
	}
	if env.ledger.HasBudget(ctx, empty.ID) {
		t.Error("expected project without allocations to have no budget")
	}
	if env.ledger.HasBudget(ctx, "00000000-0000-0000-0000-000000000000") {
		t.Error("expected missing project to have no budget")
	}
}
