package rules

import (
	"context"
	"testing"
	"time"

	"expensecheck/expense"
)

func TestAgeRule(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	daysAgo := func(n int) string {
		return now.AddDate(0, 0, -n).Format("2006-01-02")
	}

	tests := []struct {
		name         string
		date         string
		wantDecision expense.Decision
		wantAlerts   int
	}{
		{"same day", daysAgo(0), expense.Approved, 0},
		{"future date", daysAgo(-5), expense.Approved, 0},
		{"exactly at pending limit", daysAgo(30), expense.Approved, 0},
		{"one past pending limit", daysAgo(31), expense.Pending, 1},
		{"exactly at rejection limit", daysAgo(60), expense.Pending, 1},
		{"one past rejection limit", daysAgo(61), expense.Rejected, 1},
		{"far past rejection limit", daysAgo(400), expense.Rejected, 1},
		{"unparseable date", "not-a-date", expense.Rejected, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewAgeRule(30, 60)
			rule.now = func() time.Time { return now }

			verdict, fired := rule.Evaluate(context.Background(), expense.Expense{
				ID:       "e1",
				Amount:   10,
				Currency: "USD",
				Date:     tt.date,
				Category: expense.CategoryOther,
			}, expense.Employee{}, nil)

			if !fired {
				t.Fatal("Expected age rule to fire, it never abstains")
			}
			if verdict.Decision != tt.wantDecision {
				t.Errorf("Expected decision %s, got %s", tt.wantDecision, verdict.Decision)
			}
			if len(verdict.Alerts) != tt.wantAlerts {
				t.Fatalf("Expected %d alerts, got %d", tt.wantAlerts, len(verdict.Alerts))
			}
			if tt.wantAlerts > 0 && verdict.Alerts[0].Code != expense.CodeAgeLimit {
				t.Errorf("Expected alert code %s, got %s", expense.CodeAgeLimit, verdict.Alerts[0].Code)
			}
		})
	}
}
