package rules

import (
	"context"
	"errors"
	"testing"

	"expensecheck/exchange"
	"expensecheck/expense"
)

type failingRateClient struct{}

func (failingRateClient) Rate(ctx context.Context, date, currency string) (float64, error) {
	return 0, errors.New("rate source unavailable")
}

func TestCategoryLimitRuleBuckets(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		wantDecision expense.Decision
		wantAlerts   int
	}{
		{"well under limit", 40, expense.Approved, 0},
		{"exactly at approved limit", 100, expense.Approved, 0},
		{"just over approved limit", 100.01, expense.Pending, 1},
		{"exactly at pending limit", 150, expense.Pending, 1},
		{"just over pending limit", 150.01, expense.Rejected, 1},
		{"far over limit", 900, expense.Rejected, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewFoodLimitRule()

			verdict, fired := rule.Evaluate(context.Background(), expense.Expense{
				ID:       "e1",
				Amount:   tt.amount,
				Currency: "USD",
				Date:     "2025-01-15",
				Category: expense.CategoryFood,
			}, expense.Employee{}, nil)

			if !fired {
				t.Fatal("Expected rule to fire for a food expense")
			}
			if verdict.Decision != tt.wantDecision {
				t.Errorf("Expected decision %s, got %s", tt.wantDecision, verdict.Decision)
			}
			if len(verdict.Alerts) != tt.wantAlerts {
				t.Fatalf("Expected %d alerts, got %d", tt.wantAlerts, len(verdict.Alerts))
			}
			if tt.wantAlerts > 0 && verdict.Alerts[0].Code != "LIMITE_FOOD" {
				t.Errorf("Expected alert code LIMITE_FOOD, got %s", verdict.Alerts[0].Code)
			}
		})
	}
}

func TestCategoryLimitRuleAbstainsOnOtherCategories(t *testing.T) {
	rule := NewFoodLimitRule()

	_, fired := rule.Evaluate(context.Background(), expense.Expense{
		ID:       "e1",
		Amount:   5000,
		Currency: "USD",
		Date:     "2025-01-15",
		Category: expense.CategoryTransport,
	}, expense.Employee{}, nil)

	if fired {
		t.Error("Expected rule to abstain for a non-food expense")
	}
}

func TestCategoryLimitRuleNormalizesCurrency(t *testing.T) {
	rates := exchange.NewOfflineClientWithTable(exchange.Table{
		"USD": 1,
		"CLP": 950,
	})
	evalCtx := &Context{BaseCurrency: "USD", Rates: rates}

	tests := []struct {
		name         string
		amount       float64
		currency     string
		wantDecision expense.Decision
	}{
		{"95000 CLP is exactly 100 USD", 95000, "CLP", expense.Approved},
		{"142500 CLP is exactly 150 USD", 142500, "CLP", expense.Pending},
		{"200000 CLP exceeds the limit", 200000, "CLP", expense.Rejected},
		{"base currency amount is untouched", 120, "USD", expense.Pending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewFoodLimitRule()

			verdict, fired := rule.Evaluate(context.Background(), expense.Expense{
				ID:       "e1",
				Amount:   tt.amount,
				Currency: tt.currency,
				Date:     "2025-01-15",
				Category: expense.CategoryFood,
			}, expense.Employee{}, evalCtx)

			if !fired {
				t.Fatal("Expected rule to fire for a food expense")
			}
			if verdict.Decision != tt.wantDecision {
				t.Errorf("Expected decision %s, got %s", tt.wantDecision, verdict.Decision)
			}
		})
	}
}

func TestCategoryLimitRuleFallsBackOnConversionFailure(t *testing.T) {
	rule := NewFoodLimitRule()
	evalCtx := &Context{BaseCurrency: "USD", Rates: failingRateClient{}}

	// 90 CLP raw is under the limit even though 90 CLP is worth far
	// less than 90 USD; the failed conversion must not reject or abort
	verdict, fired := rule.Evaluate(context.Background(), expense.Expense{
		ID:       "e1",
		Amount:   90,
		Currency: "CLP",
		Date:     "2025-01-15",
		Category: expense.CategoryFood,
	}, expense.Employee{}, evalCtx)

	if !fired {
		t.Fatal("Expected rule to fire for a food expense")
	}
	if verdict.Decision != expense.Approved {
		t.Errorf("Expected raw-amount fallback to approve, got %s", verdict.Decision)
	}
}
