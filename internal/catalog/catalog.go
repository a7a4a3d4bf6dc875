// Package catalog is the product service: it owns the sample data seed and
// answers category/budget queries with intelligence scores derived from
// price history and review summaries.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/models"
)

type Service struct {
	db *sql.DB
}

func New(database *sql.DB) *Service {
	return &Service{db: database}
}

// DB exposes the underlying handle for collaborators that share the catalog
// store (the semantic search layer keeps its query cache there).
func (s *Service) DB() *sql.DB {
	return s.db
}

// Entry is one product with everything the matcher needs to rank it.
type Entry struct {
	Product models.Product
	Reviews models.ReviewSummary
	Offers  []models.PlatformOffer
	History []models.PricePoint
	Intel   models.Intelligence
}

// Search returns active products in a category at or under the budget,
// with derived intelligence attached. budget <= 0 disables the price filter.
func (s *Service) Search(ctx context.Context, category string, budget float64) ([]Entry, error) {
	products, err := db.GetProducts(s.db, category, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	var entries []Entry
	for _, p := range products {
		e := Entry{Product: p}
		if e.Reviews, err = db.GetReviews(s.db, p.ID); err != nil {
			return nil, fmt.Errorf("failed to load reviews for %s: %w", p.ID, err)
		}
		if e.Offers, err = db.GetOffers(s.db, p.ID); err != nil {
			return nil, fmt.Errorf("failed to load offers for %s: %w", p.ID, err)
		}
		if e.History, err = db.GetPriceHistory(s.db, p.ID); err != nil {
			return nil, fmt.Errorf("failed to load price history for %s: %w", p.ID, err)
		}
		e.Intel = ComputeIntelligence(p, e.Reviews, e.History)
		entries = append(entries, e)
	}
	return entries, nil
}

// ComputeIntelligence derives deal and quality scores for a product from its
// stored state. All scores are on a 0-5 scale; urgency is 1-10.
func ComputeIntelligence(p models.Product, reviews models.ReviewSummary, history []models.PricePoint) models.Intelligence {
	var intel models.Intelligence

	if p.OriginalPrice > 0 && p.OriginalPrice > p.Price {
		intel.DiscountPercent = (p.OriginalPrice - p.Price) / p.OriginalPrice * 100
	}

	if len(history) > 0 {
		intel.LowestEver = history[0].Price
		intel.HighestEver = history[0].Price
		for _, pt := range history {
			if pt.Price < intel.LowestEver {
				intel.LowestEver = pt.Price
			}
			if pt.Price > intel.HighestEver {
				intel.HighestEver = pt.Price
			}
		}
		// Within 5% of the historical low counts as a good deal.
		intel.GoodDeal = p.Price <= intel.LowestEver*1.05

		intel.PriceTrend = "stable"
		if n := len(history); n >= 4 {
			var recent float64
			for _, pt := range history[n-4:] {
				recent += pt.Price
			}
			recent /= 4
			switch {
			case p.Price < recent*0.99:
				intel.PriceTrend = "decreasing"
			case p.Price > recent*1.01:
				intel.PriceTrend = "increasing"
			}
		}
	}

	if reviews.TotalReviews > 0 {
		valueRating := ratingOrDefault(reviews, "value_for_money", 4.0)
		perfRating := ratingOrDefault(reviews, "performance", 4.0)
		intel.ValueScore = clamp((valueRating*2+perfRating+(5.0-p.Price/15000))/4, 0, 5)
		intel.PopularityScore = clamp(float64(reviews.TotalReviews)/200, 0, 5)
	}

	intel.DealScore = clamp(intel.DiscountPercent/20, 0, 5)

	intel.UrgencyScore = 4
	if intel.GoodDeal {
		intel.UrgencyScore = 7
	}

	return intel
}

func ratingOrDefault(r models.ReviewSummary, key string, def float64) float64 {
	if v, ok := r.CategoryRatings[key]; ok {
		return v
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
