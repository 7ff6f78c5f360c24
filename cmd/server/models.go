package main

import (
	"expensecheck/batch"
	"expensecheck/expense"
)

// API request and response models.

// ValidateRequest is the body for validating a single expense.
type ValidateRequest struct {
	PolicyID string           `json:"policyId,omitempty"`
	Expense  expense.Expense  `json:"expense"`
	Employee expense.Employee `json:"employee"`
}

// ValidateResponse carries the merged verdict for one expense.
type ValidateResponse struct {
	Verdict        expense.Verdict `json:"verdict"`
	EvaluationTime string          `json:"evaluationTime"`
}

// BatchResponse carries the aggregate result of a batch run.
type BatchResponse struct {
	Result         *batch.Result `json:"result"`
	EvaluationTime string        `json:"evaluationTime"`
}

// CreateRuleRequest is the body for registering an expression rule.
type CreateRuleRequest struct {
	Name         string `json:"name"`
	Expression   string `json:"expression"`
	Decision     string `json:"decision"`
	AlertCode    string `json:"alertCode"`
	AlertMessage string `json:"alertMessage"`
}

// RuleResponse describes a registered expression rule.
type RuleResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// RulesListResponse lists registered expression rules.
type RulesListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status   string `json:"status"`
	Policies int    `json:"policies"`
	Rules    int    `json:"rules"`
}
