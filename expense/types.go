// Package expense holds the data model shared by the policy rules, the
// verdict resolver and the batch scanner.
package expense

import "strings"

// Category classifies an expense for policy matching. The set is small
// but open: unknown categories simply match no category-specific rule.
type Category string

const (
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategorySoftware  Category = "software"
	CategoryOther     Category = "other"
)

// Decision is the tri-state outcome of policy evaluation.
type Decision string

const (
	Approved Decision = "approved"
	Pending  Decision = "pending"
	Rejected Decision = "rejected"
)

// Stable alert codes. Downstream consumers branch on these, so they never
// change even when the human-readable messages do.
const (
	CodeAgeLimit         = "LIMITE_ANTIGUEDAD"
	CodeCostCenterPolicy = "POLITICA_CENTRO_COSTO"
	CodeNegativeAmount   = "MONTO_NEGATIVO"
	CodeDuplicate        = "DUPLICADO"
)

// CategoryLimitCode returns the alert code for a category spending limit,
// e.g. LIMITE_FOOD for the food category.
func CategoryLimitCode(c Category) string {
	return "LIMITE_" + strings.ToUpper(string(c))
}

// Alert annotates a verdict with a machine-readable code and a
// human-readable reason.
type Alert struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Verdict is the outcome of one rule, or the merged outcome of all rules,
// for a single expense.
type Verdict struct {
	ExpenseID string   `json:"expenseId"`
	Decision  Decision `json:"decision"`
	Alerts    []Alert  `json:"alerts"`
}

// Expense is one reimbursement record. Amount is signed: a negative
// amount is a detectable anomaly, not a constructor error. Date is a
// calendar date in YYYY-MM-DD form with no time component.
type Expense struct {
	ID       string   `json:"id"`
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
	Date     string   `json:"date"`
	Category Category `json:"category"`
}

// Employee is the submitter of an expense. CostCenter is a free-form tag
// used for policy matching.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	CostCenter string `json:"costCenter"`
}
