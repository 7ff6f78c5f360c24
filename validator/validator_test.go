package validator

import (
	"context"
	"reflect"
	"testing"

	"expensecheck/expense"
	"expensecheck/rules"
)

// stubRule fires with a fixed verdict, or abstains when fired is false.
type stubRule struct {
	verdict expense.Verdict
	fired   bool
}

func (r stubRule) Evaluate(ctx context.Context, e expense.Expense, emp expense.Employee, evalCtx *rules.Context) (expense.Verdict, bool) {
	if !r.fired {
		return expense.Verdict{}, false
	}
	v := r.verdict
	v.ExpenseID = e.ID
	return v, true
}

func fires(decision expense.Decision, alerts ...expense.Alert) stubRule {
	return stubRule{verdict: expense.Verdict{Decision: decision, Alerts: alerts}, fired: true}
}

func abstains() stubRule {
	return stubRule{}
}

var testExpense = expense.Expense{
	ID:       "e1",
	Amount:   10,
	Currency: "USD",
	Date:     "2025-01-15",
	Category: expense.CategoryOther,
}

func TestValidatePrecedence(t *testing.T) {
	tests := []struct {
		name         string
		ruleSet      []rules.Rule
		wantDecision expense.Decision
	}{
		{
			name:         "single approval",
			ruleSet:      []rules.Rule{fires(expense.Approved)},
			wantDecision: expense.Approved,
		},
		{
			name:         "pending beats approved",
			ruleSet:      []rules.Rule{fires(expense.Approved), fires(expense.Pending)},
			wantDecision: expense.Pending,
		},
		{
			name:         "rejected beats pending and approved",
			ruleSet:      []rules.Rule{fires(expense.Pending), fires(expense.Rejected), fires(expense.Approved)},
			wantDecision: expense.Rejected,
		},
		{
			name:         "abstentions are ignored",
			ruleSet:      []rules.Rule{abstains(), fires(expense.Approved), abstains()},
			wantDecision: expense.Approved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.ruleSet, nil)

			verdict := v.Validate(context.Background(), testExpense, expense.Employee{})
			if verdict.Decision != tt.wantDecision {
				t.Errorf("Expected decision %s, got %s", tt.wantDecision, verdict.Decision)
			}
			if verdict.ExpenseID != testExpense.ID {
				t.Errorf("Expected expense id %s, got %s", testExpense.ID, verdict.ExpenseID)
			}
		})
	}
}

func TestValidateNoRuleFires(t *testing.T) {
	v := New([]rules.Rule{abstains(), abstains()}, nil)

	verdict := v.Validate(context.Background(), testExpense, expense.Employee{})
	if verdict.Decision != expense.Pending {
		t.Errorf("Expected decision pending when nothing fires, got %s", verdict.Decision)
	}
	if verdict.Alerts == nil || len(verdict.Alerts) != 0 {
		t.Errorf("Expected an empty non-nil alert list, got %#v", verdict.Alerts)
	}
}

func TestValidateNoRules(t *testing.T) {
	v := New(nil, nil)

	verdict := v.Validate(context.Background(), testExpense, expense.Employee{})
	if verdict.Decision != expense.Pending {
		t.Errorf("Expected decision pending with an empty rule list, got %s", verdict.Decision)
	}
}

func TestValidateMergesAlertsInRuleOrder(t *testing.T) {
	a1 := expense.Alert{Code: "A1", Message: "first"}
	a2 := expense.Alert{Code: "A2", Message: "second"}
	a3 := expense.Alert{Code: "A3", Message: "third"}

	// the approving rule's alert still makes it into the merged list
	v := New([]rules.Rule{
		fires(expense.Pending, a1),
		abstains(),
		fires(expense.Approved, a2),
		fires(expense.Rejected, a3),
	}, nil)

	verdict := v.Validate(context.Background(), testExpense, expense.Employee{})
	if verdict.Decision != expense.Rejected {
		t.Fatalf("Expected decision rejected, got %s", verdict.Decision)
	}

	want := []expense.Alert{a1, a2, a3}
	if !reflect.DeepEqual(verdict.Alerts, want) {
		t.Errorf("Expected alerts %+v, got %+v", want, verdict.Alerts)
	}
}
