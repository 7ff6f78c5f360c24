package expense

import (
	"encoding/json"
	"testing"
)

func TestCategoryLimitCode(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryFood, "LIMITE_FOOD"},
		{CategoryTransport, "LIMITE_TRANSPORT"},
		{CategorySoftware, "LIMITE_SOFTWARE"},
		{CategoryOther, "LIMITE_OTHER"},
	}

	for _, tt := range tests {
		if got := CategoryLimitCode(tt.category); got != tt.want {
			t.Errorf("CategoryLimitCode(%s): expected %s, got %s", tt.category, tt.want, got)
		}
	}
}

func TestVerdictJSONShape(t *testing.T) {
	v := Verdict{
		ExpenseID: "e1",
		Decision:  Rejected,
		Alerts: []Alert{
			{Code: CodeAgeLimit, Message: "expense exceeds 60 days"},
		},
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal verdict: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to unmarshal verdict: %v", err)
	}

	if got["expenseId"] != "e1" {
		t.Errorf("Expected expenseId key, got %v", got)
	}
	if got["decision"] != "rejected" {
		t.Errorf("Expected decision rejected, got %v", got["decision"])
	}
	if _, ok := got["alerts"]; !ok {
		t.Errorf("Expected alerts key, got %v", got)
	}
}
