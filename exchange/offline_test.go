package exchange

import (
	"context"
	"testing"
	"time"
)

func TestOfflineClientKnownCurrency(t *testing.T) {
	c := NewOfflineClient()

	rate, err := c.Rate(context.Background(), "2025-01-15", "CLP")
	if err != nil {
		t.Fatalf("Failed to get rate: %v", err)
	}
	if rate != 950 {
		t.Errorf("Expected CLP rate 950, got %g", rate)
	}
}

func TestOfflineClientUnknownCurrencyFallsBack(t *testing.T) {
	c := NewOfflineClientWithTable(Table{"USD": 1})

	rate, err := c.Rate(context.Background(), "2025-01-15", "GBP")
	if err != nil {
		t.Fatalf("Expected the offline client to tolerate unknown currencies, got %v", err)
	}
	if rate != 1 {
		t.Errorf("Expected 1:1 fallback rate, got %g", rate)
	}
}

func TestOfflineClientHonorsContext(t *testing.T) {
	c := NewOfflineClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Rate(ctx, "2025-01-15", "CLP"); err == nil {
		t.Error("Expected a cancelled context to abort the lookup")
	}

	// without the artificial delay cancellation is not observed
	fast := NewOfflineClientWithTable(Table{"CLP": 950})
	start := time.Now()
	if _, err := fast.Rate(ctx, "2025-01-15", "CLP"); err != nil {
		t.Errorf("Expected a zero-delay lookup to succeed, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Errorf("Expected an immediate lookup, took %v", elapsed)
	}
}
