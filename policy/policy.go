// Package policy models the configurable thresholds the shipped rules
// enforce, and their persistence.
package policy

import (
	"time"

	"expensecheck/expense"
)

// AgeLimits buckets expenses by elapsed days since the expense date.
type AgeLimits struct {
	// PendingAfterDays is the last day in the approved bucket.
	PendingAfterDays int `json:"pendingAfterDays"`
	// RejectedAfterDays is the last day in the pending bucket.
	RejectedAfterDays int `json:"rejectedAfterDays"`
}

// CategoryLimit bounds spending for one category, in the base currency.
// Both bounds are inclusive: an amount exactly on a bound belongs to the
// cheaper bucket.
type CategoryLimit struct {
	ApprovedUpTo float64 `json:"approvedUpTo"`
	PendingUpTo  float64 `json:"pendingUpTo"`
}

// Exclusion forbids a category outright for one cost center.
type Exclusion struct {
	CostCenter string           `json:"costCenter"`
	Category   expense.Category `json:"category"`
}

// Policy is one named set of reimbursement thresholds.
type Policy struct {
	ID             string                                     `json:"id"`
	Name           string                                     `json:"name"`
	BaseCurrency   string                                     `json:"baseCurrency"`
	AgeLimits      AgeLimits                                  `json:"ageLimits"`
	CategoryLimits map[expense.Category]CategoryLimit         `json:"categoryLimits"`
	Exclusions     []Exclusion                                `json:"exclusions"`
	CreatedAt      time.Time                                  `json:"createdAt"`
	UpdatedAt      time.Time                                  `json:"updatedAt"`
}

// Default returns the reimbursement policy shipped with the engine:
// limits in USD, expenses older than 30 days need review and older than
// 60 are rejected, food is capped at 100/150, and core_engineering may
// not report food at all.
func Default() *Policy {
	return &Policy{
		ID:           "default",
		Name:         "Default reimbursement policy",
		BaseCurrency: "USD",
		AgeLimits: AgeLimits{
			PendingAfterDays:  30,
			RejectedAfterDays: 60,
		},
		CategoryLimits: map[expense.Category]CategoryLimit{
			expense.CategoryFood: {ApprovedUpTo: 100, PendingUpTo: 150},
		},
		Exclusions: []Exclusion{
			{CostCenter: "core_engineering", Category: expense.CategoryFood},
		},
	}
}
