package matcher

import (
	"strings"
	"testing"

	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/models"
)

func entry(id, name, brand string, price, originalPrice, rating float64, reviews int, ratings map[string]float64) catalog.Entry {
	p := models.Product{
		ID:            id,
		Name:          name,
		Brand:         brand,
		Category:      "gaming laptops",
		Price:         price,
		OriginalPrice: originalPrice,
	}
	r := models.ReviewSummary{
		OverallRating:   rating,
		TotalReviews:    reviews,
		CategoryRatings: ratings,
	}
	return catalog.Entry{
		Product: p,
		Reviews: r,
		Intel:   catalog.ComputeIntelligence(p, r, nil),
	}
}

func TestRankOrdersByScore(t *testing.T) {
	entries := []catalog.Entry{
		entry("a", "Mediocre Book", "BrandA", 59000, 59000, 3.2, 300, map[string]float64{"performance": 3.0}),
		entry("b", "Great Book", "BrandB", 48000, 56000, 4.6, 900, map[string]float64{"performance": 4.6}),
	}
	req := models.Requirements{Category: "gaming laptops", Budget: 60000}

	recs := Rank(entries, req)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Product.ID != "b" {
		t.Errorf("expected the cheaper, better-rated product first, got %s", recs[0].Product.ID)
	}
	if recs[0].MatchScore <= recs[1].MatchScore {
		t.Errorf("scores not descending: %.2f then %.2f", recs[0].MatchScore, recs[1].MatchScore)
	}
}

func TestRankCapsAtThree(t *testing.T) {
	var entries []catalog.Entry
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		entries = append(entries, entry(id, "Laptop "+id, "Brand", 50000, 55000, 4.0, 500, nil))
	}
	recs := Rank(entries, models.Requirements{Budget: 60000})
	if len(recs) != 3 {
		t.Errorf("expected at most 3 recommendations, got %d", len(recs))
	}
}

func TestRankDropsAvoidedBrands(t *testing.T) {
	entries := []catalog.Entry{
		entry("a", "HP Laptop", "HP", 50000, 55000, 4.2, 500, nil),
		entry("b", "ASUS Laptop", "ASUS", 52000, 56000, 4.1, 500, nil),
	}
	req := models.Requirements{Budget: 60000, AvoidedBrands: []string{"hp"}}

	recs := Rank(entries, req)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Product.Brand != "ASUS" {
		t.Errorf("avoided brand survived: %s", recs[0].Product.Brand)
	}
}

func TestRerankBlendsSimilarity(t *testing.T) {
	entries := []catalog.Entry{
		entry("a", "Laptop A", "BrandA", 50000, 55000, 4.2, 500, nil),
		entry("b", "Laptop B", "BrandB", 50000, 55000, 4.2, 500, nil),
	}
	recs := Rank(entries, models.Requirements{Budget: 60000})
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}

	// Equal rule-based scores; a strong semantic match for "b" should flip
	// the order and lift its confidence.
	before := recs[1].Confidence
	recs = Rerank(recs, map[string]float32{"b": 0.95})
	if recs[0].Product.ID != "b" {
		t.Errorf("expected semantic match first, got %s", recs[0].Product.ID)
	}
	if recs[0].Confidence <= before && recs[0].Confidence < 0.95 {
		t.Errorf("confidence not updated: %.2f", recs[0].Confidence)
	}
	if recs[0].MatchScore > 5.0 {
		t.Errorf("score exceeds cap: %.2f", recs[0].MatchScore)
	}

	// No similarity data leaves the slice untouched.
	unchanged := Rerank(recs, nil)
	if unchanged[0].Product.ID != "b" {
		t.Errorf("empty similarity map changed the order")
	}
}

func TestMatchScoreBounds(t *testing.T) {
	e := entry("a", "Laptop", "Brand", 45000, 60000, 4.8, 2000, map[string]float64{"performance": 4.9})
	req := models.Requirements{Budget: 60000, Priorities: map[string]int{"performance": 10}}

	score := matchScore(e, req)
	if score < 0 || score > 5 {
		t.Fatalf("score out of range: %.2f", score)
	}

	// Nothing known about the user: neutral default.
	if s := matchScore(catalog.Entry{Product: models.Product{Price: 50000}}, models.Requirements{}); s < 0 || s > 5 {
		t.Errorf("bare score out of range: %.2f", s)
	}
}

func TestOverBudgetPenalty(t *testing.T) {
	within := entry("a", "Laptop A", "Brand", 58000, 58000, 4.0, 500, nil)
	farOver := entry("b", "Laptop B", "Brand", 110000, 110000, 4.0, 500, nil)
	twiceOver := entry("c", "Laptop C", "Brand", 120000, 120000, 4.0, 500, nil)
	req := models.Requirements{Budget: 60000}

	if matchScore(within, req) <= matchScore(farOver, req) {
		t.Error("far over-budget product scored as high as one within budget")
	}
	// At double the budget the price component bottoms out, so only the
	// review score remains.
	if matchScore(twiceOver, req) >= matchScore(farOver, req) {
		t.Error("price penalty should keep growing up to twice the budget")
	}
}

func TestConfidence(t *testing.T) {
	if c := confidence(5.0); c != 0.95 {
		t.Errorf("confidence should cap at 0.95, got %.2f", c)
	}
	if c := confidence(2.0); c != 0.9 {
		t.Errorf("confidence(2.0) expected 0.9, got %.2f", c)
	}
}

func TestReasoningMentionsBudgetFit(t *testing.T) {
	e := entry("a", "Laptop", "ASUS", 50000, 62000, 4.3, 1000, map[string]float64{"performance": 4.5})
	req := models.Requirements{Budget: 60000, PreferredBrands: []string{"asus"}}

	reasons := reasoning(e, req)
	if len(reasons) == 0 || len(reasons) > 4 {
		t.Fatalf("expected 1-4 reasons, got %d", len(reasons))
	}
	joined := strings.Join(reasons, " | ")
	if !strings.Contains(joined, "under your budget") {
		t.Errorf("expected budget margin reason, got %q", joined)
	}
	if !strings.Contains(joined, "brand you prefer") {
		t.Errorf("expected preferred brand reason, got %q", joined)
	}
}

func TestTradeOffs(t *testing.T) {
	e := entry("a", "Laptop", "Brand", 50000, 50000, 3.9, 500, map[string]float64{
		"performance":  4.5,
		"battery_life": 3.2,
		"display":      3.8,
	})

	offs := tradeOffs(e)
	if _, ok := offs["battery_life"]; !ok {
		t.Error("below-average battery life not flagged")
	}
	if !strings.Contains(offs["battery_life"], "Below average battery life") {
		t.Errorf("unexpected wording: %q", offs["battery_life"])
	}
	if !strings.Contains(offs["display"], "Average display") {
		t.Errorf("unexpected wording: %q", offs["display"])
	}
	if _, ok := offs["performance"]; ok {
		t.Error("strong rating flagged as trade-off")
	}
}

func TestDealHighlightsAndSavings(t *testing.T) {
	e := entry("a", "Laptop", "Brand", 50000, 62000, 4.0, 500, nil)

	highlights := dealHighlights(e)
	if len(highlights) == 0 || !strings.Contains(highlights[0], "Major discount") {
		t.Errorf("expected a major discount highlight, got %v", highlights)
	}
	if s := savings(e.Product); s != 12000 {
		t.Errorf("expected savings 12000, got %.0f", s)
	}
}

func TestBetterThanComparesShortlist(t *testing.T) {
	entries := []catalog.Entry{
		entry("a", "Cheap Strong", "Brand", 48000, 56000, 4.5, 900, nil),
		entry("b", "Pricey Weak", "Brand", 58000, 60000, 3.9, 400, nil),
	}
	recs := Rank(entries, models.Requirements{Budget: 60000})

	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	top := recs[0]
	if top.Product.ID != "a" {
		t.Fatalf("unexpected winner: %s", top.Product.ID)
	}
	joined := strings.Join(top.BetterThan, " | ")
	if !strings.Contains(joined, "cheaper than Pricey Weak") {
		t.Errorf("expected price comparison, got %q", joined)
	}
	if !strings.Contains(joined, "Higher rated than Pricey Weak") {
		t.Errorf("expected rating comparison, got %q", joined)
	}
}

func TestMightMiss(t *testing.T) {
	e := entry("a", "Laptop", "Brand", 50000, 50000, 4.4, 500, map[string]float64{
		"performance":  4.6,
		"display":      4.4,
		"battery_life": 3.0,
	})

	misses := mightMiss(e)
	if len(misses) != 2 {
		t.Fatalf("expected 2 standout categories, got %v", misses)
	}
	if misses[0] != "Excellent display" || misses[1] != "Excellent performance" {
		t.Errorf("unexpected standouts: %v", misses)
	}
}
