package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.CreateSchema(database); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return New(database)
}

func TestSeedAndSearch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	count, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if count != 6 {
		t.Errorf("expected 6 seeded products, got %d", count)
	}

	entries, err := svc.Search(ctx, "smartwatches", 6000)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 smartwatches under 6000, got %d", len(entries))
	}
	// Cheapest first.
	if entries[0].Product.ID != "smartwatch_3" {
		t.Errorf("expected smartwatch_3 first (cheapest), got %s", entries[0].Product.ID)
	}

	for _, e := range entries {
		if e.Reviews.TotalReviews == 0 {
			t.Errorf("%s: reviews missing", e.Product.ID)
		}
		if len(e.Offers) != 3 {
			t.Errorf("%s: expected 3 platform offers, got %d", e.Product.ID, len(e.Offers))
		}
		if len(e.History) == 0 {
			t.Errorf("%s: price history missing", e.Product.ID)
		}
		if e.Intel.LowestEver == 0 {
			t.Errorf("%s: intelligence not computed", e.Product.ID)
		}
	}
}

func TestSearchBudgetFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	entries, err := svc.Search(ctx, "gaming laptops", 55000)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 laptop under 55000, got %d", len(entries))
	}
	if entries[0].Product.ID != "laptop_2" {
		t.Errorf("expected laptop_2, got %s", entries[0].Product.ID)
	}

	// budget <= 0 disables the filter
	entries, err = svc.Search(ctx, "gaming laptops", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected all 3 laptops without a budget, got %d", len(entries))
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("first Seed failed: %v", err)
	}
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	entries, err := svc.Search(ctx, "smartwatches", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("reseed duplicated products: got %d smartwatches", len(entries))
	}
	for _, e := range entries {
		if len(e.Offers) != 3 {
			t.Errorf("%s: reseed duplicated offers: got %d", e.Product.ID, len(e.Offers))
		}
	}
}

func TestGeneratedDataIsDeterministic(t *testing.T) {
	p := models.Product{ID: "smartwatch_1", Price: 4999}

	first := generateOffers(p)
	second := generateOffers(p)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 offers, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Price != second[i].Price || first[i].Availability != second[i].Availability {
			t.Errorf("offer %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}

	h1 := generateHistory(p)
	h2 := generateHistory(p)
	if len(h1) != len(h2) || len(h1) == 0 {
		t.Fatalf("history length mismatch: %d vs %d", len(h1), len(h2))
	}
	for i := range h1 {
		if h1[i].Price != h2[i].Price || h1[i].Platform != h2[i].Platform {
			t.Errorf("history point %d differs between runs", i)
		}
	}
}

func TestComputeIntelligence(t *testing.T) {
	p := models.Product{Price: 50000, OriginalPrice: 62500}
	reviews := models.ReviewSummary{
		OverallRating: 4.2,
		TotalReviews:  400,
		CategoryRatings: map[string]float64{
			"value_for_money": 4.0,
			"performance":     4.5,
		},
	}
	now := time.Now()
	history := []models.PricePoint{
		{Date: now.AddDate(0, 0, -28), Price: 60000},
		{Date: now.AddDate(0, 0, -21), Price: 58000},
		{Date: now.AddDate(0, 0, -14), Price: 56000},
		{Date: now.AddDate(0, 0, -7), Price: 54000},
	}

	intel := ComputeIntelligence(p, reviews, history)

	if intel.DiscountPercent != 20 {
		t.Errorf("expected 20%% discount, got %.2f", intel.DiscountPercent)
	}
	if intel.LowestEver != 54000 || intel.HighestEver != 60000 {
		t.Errorf("price extremes wrong: low=%.0f high=%.0f", intel.LowestEver, intel.HighestEver)
	}
	// 50000 is below the recent average, and below the historical low.
	if intel.PriceTrend != "decreasing" {
		t.Errorf("expected decreasing trend, got %q", intel.PriceTrend)
	}
	if !intel.GoodDeal {
		t.Error("current price below historical low should be a good deal")
	}
	if intel.UrgencyScore != 7 {
		t.Errorf("good deal should raise urgency to 7, got %d", intel.UrgencyScore)
	}
	if intel.DealScore != 1 {
		t.Errorf("expected deal score 1.0 for 20%% off, got %.2f", intel.DealScore)
	}
	if intel.PopularityScore != 2 {
		t.Errorf("expected popularity 2.0 for 400 reviews, got %.2f", intel.PopularityScore)
	}
	if intel.ValueScore <= 0 || intel.ValueScore > 5 {
		t.Errorf("value score out of range: %.2f", intel.ValueScore)
	}
}

func TestComputeIntelligenceNoHistory(t *testing.T) {
	intel := ComputeIntelligence(models.Product{Price: 5000}, models.ReviewSummary{}, nil)
	if intel.GoodDeal {
		t.Error("no history should never be a good deal")
	}
	if intel.PriceTrend != "" {
		t.Errorf("expected empty trend without history, got %q", intel.PriceTrend)
	}
	if intel.UrgencyScore != 4 {
		t.Errorf("baseline urgency should be 4, got %d", intel.UrgencyScore)
	}
}
