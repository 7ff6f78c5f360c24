// Package validator merges the verdicts of every configured rule into a
// single final verdict per expense.
package validator

import (
	"context"
	"sync"

	"expensecheck/expense"
	"expensecheck/rules"
)

// Validator runs an ordered rule list against one expense at a time.
// Safe for concurrent use: it holds no mutable state of its own.
type Validator struct {
	rules   []rules.Rule
	evalCtx *rules.Context
}

// New creates a validator over ruleSet. The list order is significant:
// it fixes the concatenation order of merged alerts.
func New(ruleSet []rules.Rule, evalCtx *rules.Context) *Validator {
	return &Validator{rules: ruleSet, evalCtx: evalCtx}
}

// Validate fans all rules out concurrently over the immutable inputs,
// collects the verdicts that fired, and merges them with a fixed
// precedence: any rejection wins, then any pending, then approved. The
// merged alert list concatenates, in rule-list order, the alerts of
// every verdict that fired, regardless of that verdict's own decision.
//
// When no rule fires at all the expense stays pending with no alerts, so
// nothing ever silently passes with zero applicable policy.
func (v *Validator) Validate(ctx context.Context, e expense.Expense, emp expense.Employee) expense.Verdict {
	type outcome struct {
		verdict expense.Verdict
		fired   bool
	}
	outcomes := make([]outcome, len(v.rules))

	var wg sync.WaitGroup
	for i, r := range v.rules {
		wg.Add(1)
		go func(i int, r rules.Rule) {
			defer wg.Done()
			verdict, fired := r.Evaluate(ctx, e, emp, v.evalCtx)
			outcomes[i] = outcome{verdict: verdict, fired: fired}
		}(i, r)
	}
	wg.Wait()

	fired := make([]expense.Verdict, 0, len(outcomes))
	for _, o := range outcomes {
		if o.fired {
			fired = append(fired, o.verdict)
		}
	}

	if len(fired) == 0 {
		return expense.Verdict{
			ExpenseID: e.ID,
			Decision:  expense.Pending,
			Alerts:    []expense.Alert{},
		}
	}

	decision := expense.Approved
	for _, f := range fired {
		if f.Decision == expense.Rejected {
			decision = expense.Rejected
			break
		}
		if f.Decision == expense.Pending {
			decision = expense.Pending
		}
	}

	alerts := make([]expense.Alert, 0)
	for _, f := range fired {
		alerts = append(alerts, f.Alerts...)
	}

	return expense.Verdict{
		ExpenseID: e.ID,
		Decision:  decision,
		Alerts:    alerts,
	}
}
