package rules

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"expensecheck/expense"
	"expensecheck/internal/logger"
)

// celCostLimit bounds expression evaluation cost to keep a runaway
// expression from stalling a batch.
const celCostLimit = 1_000_000

// ExpressionRule evaluates a CEL predicate over expense and employee
// facts and produces a fixed verdict when the predicate matches,
// abstaining otherwise. It lets operators add ad-hoc policy checks
// without a release.
type ExpressionRule struct {
	ID         string
	Name       string
	Expression string

	decision expense.Decision
	alert    expense.Alert
	program  cel.Program
}

// NewExpressionRule compiles expr and returns the rule, or a descriptive
// error when the expression does not compile. The predicate sees two
// dynamic variables, expense and employee, with the same field names the
// JSON encoding uses.
func NewExpressionRule(id, name, expr string, decision expense.Decision, alert expense.Alert) (*ExpressionRule, error) {
	env, err := cel.NewEnv(
		cel.Variable("expense", cel.DynType),
		cel.Variable("employee", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	program, err := env.Program(ast, cel.CostLimit(celCostLimit))
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return &ExpressionRule{
		ID:         id,
		Name:       name,
		Expression: expr,
		decision:   decision,
		alert:      alert,
		program:    program,
	}, nil
}

// Evaluate runs the predicate. Non-boolean results and evaluation errors
// abstain: a broken expression must not change any verdict.
func (r *ExpressionRule) Evaluate(ctx context.Context, e expense.Expense, emp expense.Employee, evalCtx *Context) (expense.Verdict, bool) {
	facts := map[string]any{
		"expense": map[string]any{
			"id":       e.ID,
			"amount":   e.Amount,
			"currency": e.Currency,
			"date":     e.Date,
			"category": string(e.Category),
		},
		"employee": map[string]any{
			"id":         emp.ID,
			"name":       emp.Name,
			"surname":    emp.Surname,
			"costCenter": emp.CostCenter,
		},
	}

	out, _, err := r.program.Eval(facts)
	if err != nil {
		logger.Warn("expression rule evaluation failed", "rule", r.ID, "error", err)
		return expense.Verdict{}, false
	}

	matched, _ := out.Value().(bool)
	if !matched {
		return expense.Verdict{}, false
	}

	return expense.Verdict{
		ExpenseID: e.ID,
		Decision:  r.decision,
		Alerts:    []expense.Alert{r.alert},
	}, true
}
