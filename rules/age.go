package rules

import (
	"context"
	"fmt"
	"math"
	"time"

	"expensecheck/expense"
)

// AgeRule buckets expenses by elapsed whole days since the expense date:
// recent expenses are approved, stale ones need review, and anything
// older than the rejection limit is rejected. It never abstains.
type AgeRule struct {
	pendingAfterDays  int
	rejectedAfterDays int
	now               func() time.Time
}

// NewAgeRule creates an age rule with the given day limits.
func NewAgeRule(pendingAfterDays, rejectedAfterDays int) *AgeRule {
	return &AgeRule{
		pendingAfterDays:  pendingAfterDays,
		rejectedAfterDays: rejectedAfterDays,
		now:               time.Now,
	}
}

// Evaluate buckets the expense by age. Future dates floor to zero or
// negative days and land in the approved bucket; a date that does not
// parse falls through to the oldest bucket.
func (r *AgeRule) Evaluate(ctx context.Context, e expense.Expense, emp expense.Employee, evalCtx *Context) (expense.Verdict, bool) {
	days, ok := r.elapsedDays(e.Date)

	switch {
	case ok && days <= r.pendingAfterDays:
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Approved,
		}, true

	case ok && days <= r.rejectedAfterDays:
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Pending,
			Alerts: []expense.Alert{{
				Code:    expense.CodeAgeLimit,
				Message: fmt.Sprintf("expense exceeds %d days, requires review", r.pendingAfterDays),
			}},
		}, true

	default:
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Rejected,
			Alerts: []expense.Alert{{
				Code:    expense.CodeAgeLimit,
				Message: fmt.Sprintf("expense exceeds %d days", r.rejectedAfterDays),
			}},
		}, true
	}
}

func (r *AgeRule) elapsedDays(date string) (int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return int(math.Floor(r.now().Sub(t).Hours() / 24)), true
}
