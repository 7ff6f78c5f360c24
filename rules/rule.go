// Package rules contains the individual policy checks applied to each
// expense. Every rule is an independent implementation of the Rule
// interface, registered into an ordered list at construction time.
package rules

import (
	"context"

	"expensecheck/exchange"
	"expensecheck/expense"
)

// DefaultBaseCurrency is assumed when the evaluation context does not
// name one.
const DefaultBaseCurrency = "USD"

// Context carries the shared read-only inputs a rule may consult: the
// base currency that monetary limits are expressed in and, optionally,
// the rate source used to normalize foreign amounts.
type Context struct {
	BaseCurrency string
	Rates        exchange.RateClient
}

// Rule is one unit of policy logic. Evaluate returns the rule's verdict
// and true when the rule applies to the expense, or a zero Verdict and
// false when it abstains. Abstaining is not an error and is distinct
// from approving: an abstaining rule has no opinion at all.
//
// Rules must be side-effect-free except for reads through evalCtx.Rates.
type Rule interface {
	Evaluate(ctx context.Context, e expense.Expense, emp expense.Employee, evalCtx *Context) (expense.Verdict, bool)
}
