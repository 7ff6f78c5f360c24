package rules

import (
	"sort"

	"expensecheck/expense"
	"expensecheck/policy"
)

// ForPolicy builds the ordered rule list a policy implies: category
// limits first, then cost-center exclusions, then the age rule. The
// order is fixed because it determines the concatenation order of merged
// alerts; category limits are sorted by name so map iteration cannot
// reorder them between runs.
func ForPolicy(p *policy.Policy) []Rule {
	ruleSet := make([]Rule, 0, len(p.CategoryLimits)+len(p.Exclusions)+1)

	categories := make([]expense.Category, 0, len(p.CategoryLimits))
	for cat := range p.CategoryLimits {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, cat := range categories {
		limit := p.CategoryLimits[cat]
		ruleSet = append(ruleSet, NewCategoryLimitRule(cat, limit.ApprovedUpTo, limit.PendingUpTo))
	}

	for _, ex := range p.Exclusions {
		ruleSet = append(ruleSet, NewCostCenterRule(ex.CostCenter, ex.Category))
	}

	ruleSet = append(ruleSet, NewAgeRule(p.AgeLimits.PendingAfterDays, p.AgeLimits.RejectedAfterDays))

	return ruleSet
}
