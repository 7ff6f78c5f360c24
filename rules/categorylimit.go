package rules

import (
	"context"
	"fmt"

	"expensecheck/exchange"
	"expensecheck/expense"
	"expensecheck/internal/logger"
)

// CategoryLimitRule enforces a per-category spending limit expressed in
// the base currency. It abstains for every other category.
//
// When the expense currency differs from the base currency and a rate
// source is configured, the amount is normalized before bucketing. A
// failed conversion degrades policy accuracy for that one record but
// never aborts the batch: the raw amount is used and a warning logged.
type CategoryLimitRule struct {
	category     expense.Category
	approvedUpTo float64
	pendingUpTo  float64
}

// NewCategoryLimitRule creates a limit rule for one category. Both
// bounds are inclusive: an amount exactly on a bound belongs to the
// cheaper bucket.
func NewCategoryLimitRule(category expense.Category, approvedUpTo, pendingUpTo float64) *CategoryLimitRule {
	return &CategoryLimitRule{
		category:     category,
		approvedUpTo: approvedUpTo,
		pendingUpTo:  pendingUpTo,
	}
}

// NewFoodLimitRule returns the shipped food limit: 100/150 in the base
// currency.
func NewFoodLimitRule() *CategoryLimitRule {
	return NewCategoryLimitRule(expense.CategoryFood, 100, 150)
}

// Evaluate buckets the normalized amount against the configured limits,
// abstaining unless the expense category matches.
func (r *CategoryLimitRule) Evaluate(ctx context.Context, e expense.Expense, emp expense.Employee, evalCtx *Context) (expense.Verdict, bool) {
	if e.Category != r.category {
		return expense.Verdict{}, false
	}

	amount := r.normalize(ctx, e, evalCtx)
	code := expense.CategoryLimitCode(r.category)

	switch {
	case amount <= r.approvedUpTo:
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Approved,
		}, true

	case amount <= r.pendingUpTo:
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Pending,
			Alerts: []expense.Alert{{
				Code:    code,
				Message: fmt.Sprintf("%s expense requires review", r.category),
			}},
		}, true

	default:
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Rejected,
			Alerts: []expense.Alert{{
				Code:    code,
				Message: fmt.Sprintf("%s expense exceeds the allowed limit", r.category),
			}},
		}, true
	}
}

// normalize converts the amount to the base currency. The rate table
// expresses rates as units of currency per one base unit, so a foreign
// amount divides by its rate.
func (r *CategoryLimitRule) normalize(ctx context.Context, e expense.Expense, evalCtx *Context) float64 {
	base := DefaultBaseCurrency
	var rates exchange.RateClient
	if evalCtx != nil {
		if evalCtx.BaseCurrency != "" {
			base = evalCtx.BaseCurrency
		}
		rates = evalCtx.Rates
	}

	if e.Currency == base || rates == nil {
		return e.Amount
	}

	rate, err := rates.Rate(ctx, e.Date, e.Currency)
	if err != nil {
		logger.Warn("rate conversion failed, using raw amount",
			"expense", e.ID, "currency", e.Currency, "date", e.Date, "error", err)
		return e.Amount
	}

	return e.Amount / rate
}
