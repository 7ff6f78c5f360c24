package rules

import (
	"context"
	"fmt"

	"expensecheck/expense"
)

// CostCenterRule rejects one category outright for one cost center,
// regardless of amount or age. For any other combination it abstains.
type CostCenterRule struct {
	costCenter string
	category   expense.Category
}

// NewCostCenterRule creates a cost-center exclusion rule.
func NewCostCenterRule(costCenter string, category expense.Category) *CostCenterRule {
	return &CostCenterRule{costCenter: costCenter, category: category}
}

// NewEngineeringFoodRule returns the shipped exclusion: core_engineering
// may not report food expenses.
func NewEngineeringFoodRule() *CostCenterRule {
	return NewCostCenterRule("core_engineering", expense.CategoryFood)
}

// Evaluate rejects iff both the cost center and the category match.
func (r *CostCenterRule) Evaluate(ctx context.Context, e expense.Expense, emp expense.Employee, evalCtx *Context) (expense.Verdict, bool) {
	if emp.CostCenter != r.costCenter || e.Category != r.category {
		return expense.Verdict{}, false
	}

	return expense.Verdict{
		ExpenseID: e.ID,
		Decision:  expense.Rejected,
		Alerts: []expense.Alert{{
			Code:    expense.CodeCostCenterPolicy,
			Message: fmt.Sprintf("%s cannot report %s expenses", r.costCenter, r.category),
		}},
	}, true
}
