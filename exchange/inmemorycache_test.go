package exchange

import (
	"context"
	"testing"
)

func TestInMemoryRateCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryRateCache()

	if _, ok := cache.Get(ctx, "2025-01-15"); ok {
		t.Fatal("Expected a miss on an empty cache")
	}

	cache.Set(ctx, "2025-01-15", Table{"CLP": 950})
	cache.Set(ctx, "2025-01-16", Table{"CLP": 955})

	table, ok := cache.Get(ctx, "2025-01-15")
	if !ok {
		t.Fatal("Expected a hit for a stored date")
	}
	if table["CLP"] != 950 {
		t.Errorf("Expected CLP rate 950, got %g", table["CLP"])
	}
	if size := cache.Size(ctx); size != 2 {
		t.Errorf("Expected size 2, got %d", size)
	}

	cache.ClearDate(ctx, "2025-01-15")
	if _, ok := cache.Get(ctx, "2025-01-15"); ok {
		t.Error("Expected a miss after ClearDate")
	}
	if _, ok := cache.Get(ctx, "2025-01-16"); !ok {
		t.Error("Expected other dates to survive ClearDate")
	}

	cache.Clear(ctx)
	if size := cache.Size(ctx); size != 0 {
		t.Errorf("Expected size 0 after Clear, got %d", size)
	}
}

func TestInMemoryRateCacheCopiesTables(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryRateCache()

	original := Table{"CLP": 950}
	cache.Set(ctx, "2025-01-15", original)

	// neither the caller's table nor a returned copy may alias storage
	original["CLP"] = 1

	got, _ := cache.Get(ctx, "2025-01-15")
	if got["CLP"] != 950 {
		t.Fatalf("Expected stored table to be isolated from the caller, got %g", got["CLP"])
	}

	got["CLP"] = 2
	again, _ := cache.Get(ctx, "2025-01-15")
	if again["CLP"] != 950 {
		t.Fatalf("Expected stored table to be isolated from readers, got %g", again["CLP"])
	}
}
