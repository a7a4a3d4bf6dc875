// Package matcher turns catalog entries into ranked recommendations with
// reasoning, trade-offs and deal context for the comparison cards.
package matcher

import (
	"fmt"
	"sort"
	"strings"

	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/models"
)

const maxRecommendations = 3

// Rank scores every entry against the requirements and returns the top
// recommendations, best match first. Products from avoided brands are
// dropped before scoring.
func Rank(entries []catalog.Entry, req models.Requirements) []models.Recommendation {
	var recs []models.Recommendation
	for _, e := range entries {
		if isAvoidedBrand(e.Product.Brand, req.AvoidedBrands) {
			continue
		}
		score := matchScore(e, req)
		recs = append(recs, models.Recommendation{
			Product:        e.Product,
			Reviews:        e.Reviews,
			Offers:         e.Offers,
			Intel:          e.Intel,
			MatchScore:     score,
			Confidence:     confidence(score),
			Reasoning:      reasoning(e, req),
			TradeOffs:      tradeOffs(e),
			DealHighlights: dealHighlights(e),
			Savings:        savings(e.Product),
			UrgencyFactors: urgencyFactors(e),
			MightMiss:      mightMiss(e),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	// Alternative comparisons only make sense against the final shortlist.
	for i := range recs {
		recs[i].BetterThan = betterThan(recs[i], recs)
	}
	return recs
}

// Rerank blends semantic similarity scores (by product id) into the match
// scores and re-sorts. Products without a vector keep their original score.
func Rerank(recs []models.Recommendation, similarity map[string]float32) []models.Recommendation {
	if len(similarity) == 0 {
		return recs
	}
	for i := range recs {
		s, ok := similarity[recs[i].Product.ID]
		if !ok {
			continue
		}
		blended := recs[i].MatchScore + float64(s)*0.5
		if blended > 5.0 {
			blended = 5.0
		}
		recs[i].MatchScore = blended
		recs[i].Confidence = confidence(blended)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
	return recs
}

// matchScore weighs budget fit (30%), review rating (25%), priority match
// (30%) and deal quality (15%) into a 0-5 score.
func matchScore(e catalog.Entry, req models.Requirements) float64 {
	var score, maxScore float64

	price := e.Product.Price
	if req.Budget > 0 && price > 0 {
		budget := float64(req.Budget)
		if price <= budget {
			score += 1.5 * (1 - (price/budget)*0.5)
		} else {
			over := (price - budget) / budget
			if over < 1 {
				score += 1.5 * (1 - over)
			}
		}
	}
	maxScore += 1.5

	if e.Reviews.TotalReviews > 0 {
		score += 1.25 * (e.Reviews.OverallRating / 5.0)
	}
	maxScore += 1.25

	if len(req.Priorities) > 0 {
		for feature, importance := range req.Priorities {
			key := strings.ReplaceAll(strings.ToLower(feature), " ", "_")
			if rating, ok := e.Reviews.CategoryRatings[key]; ok {
				score += (float64(importance) / 10.0) * (rating / 5.0) * 0.3
			}
		}
	}
	maxScore += 1.5

	score += 0.75 * (e.Intel.DiscountPercent / 100.0)
	maxScore += 0.75

	if maxScore == 0 {
		return 3.0
	}
	s := score / maxScore * 5.0
	if s > 5.0 {
		s = 5.0
	}
	return s
}

func confidence(score float64) float64 {
	c := score/5.0 + 0.5
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func reasoning(e catalog.Entry, req models.Requirements) []string {
	var reasons []string

	if req.Budget > 0 {
		budget := float64(req.Budget)
		switch {
		case e.Product.Price <= budget*0.9:
			reasons = append(reasons, fmt.Sprintf("Excellent value - ₹%.0f under your budget", budget-e.Product.Price))
		case e.Product.Price <= budget:
			reasons = append(reasons, fmt.Sprintf("Fits your ₹%d budget perfectly", req.Budget))
		}
	}

	if perf, ok := e.Reviews.CategoryRatings["performance"]; ok && perf >= 4.0 {
		reasons = append(reasons, fmt.Sprintf("Strong performance rating (%.1f/5.0) from users", perf))
	}

	if e.Intel.DiscountPercent > 10 {
		reasons = append(reasons, fmt.Sprintf("Great deal - %.0f%% discount from original price", e.Intel.DiscountPercent))
	}

	for feature, importance := range req.Priorities {
		key := strings.ReplaceAll(strings.ToLower(feature), " ", "_")
		if importance >= 8 {
			if rating, ok := e.Reviews.CategoryRatings[key]; ok && rating >= 4.0 {
				reasons = append(reasons, fmt.Sprintf("Excels in your top priority: %s", feature))
			}
		}
	}

	if isPreferredBrand(e.Product.Brand, req.PreferredBrands) {
		reasons = append(reasons, fmt.Sprintf("Made by %s, a brand you prefer", e.Product.Brand))
	}

	if len(reasons) > 4 {
		reasons = reasons[:4]
	}
	return reasons
}

func tradeOffs(e catalog.Entry) map[string]string {
	offs := make(map[string]string)
	for category, rating := range e.Reviews.CategoryRatings {
		readable := strings.ReplaceAll(category, "_", " ")
		switch {
		case rating < 3.5:
			offs[category] = fmt.Sprintf("Below average %s (%.1f/5.0)", readable, rating)
		case rating < 4.0:
			offs[category] = fmt.Sprintf("Average %s (%.1f/5.0)", readable, rating)
		}
	}
	if len(offs) == 0 {
		return nil
	}
	return offs
}

func dealHighlights(e catalog.Entry) []string {
	var highlights []string
	if e.Intel.DiscountPercent > 15 {
		highlights = append(highlights, fmt.Sprintf("Major discount: %.0f%% off", e.Intel.DiscountPercent))
	}
	if e.Intel.GoodDeal {
		highlights = append(highlights, "Near historical low price")
	}
	return highlights
}

func savings(p models.Product) float64 {
	if p.OriginalPrice > p.Price {
		return p.OriginalPrice - p.Price
	}
	return 0
}

func urgencyFactors(e catalog.Entry) []string {
	var factors []string
	for _, o := range e.Offers {
		if strings.Contains(o.Availability, "Limited") {
			factors = append(factors, "Limited stock across platforms")
			break
		}
	}
	if e.Intel.PriceTrend == "increasing" {
		factors = append(factors, "Price trend is increasing")
	}
	if e.Intel.UrgencyScore >= 7 {
		factors = append(factors, "Good time to buy based on price history")
	}
	return factors
}

func betterThan(rec models.Recommendation, all []models.Recommendation) []string {
	var reasons []string
	for _, other := range all {
		if other.Product.ID == rec.Product.ID {
			continue
		}
		if rec.Product.Price < other.Product.Price {
			reasons = append(reasons, fmt.Sprintf("₹%.0f cheaper than %s",
				other.Product.Price-rec.Product.Price, other.Product.Name))
		}
		if rec.Reviews.OverallRating > other.Reviews.OverallRating {
			reasons = append(reasons, fmt.Sprintf("Higher rated than %s (%.1f vs %.1f)",
				other.Product.Name, rec.Reviews.OverallRating, other.Reviews.OverallRating))
		}
	}
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return reasons
}

func mightMiss(e catalog.Entry) []string {
	var strong []string
	for category, rating := range e.Reviews.CategoryRatings {
		if rating >= 4.3 {
			strong = append(strong, category)
		}
	}
	sort.Strings(strong)
	if len(strong) > 3 {
		strong = strong[:3]
	}
	var misses []string
	for _, s := range strong {
		misses = append(misses, fmt.Sprintf("Excellent %s", strings.ReplaceAll(s, "_", " ")))
	}
	return misses
}

func isAvoidedBrand(brand string, avoided []string) bool {
	for _, a := range avoided {
		if strings.EqualFold(brand, a) {
			return true
		}
	}
	return false
}

func isPreferredBrand(brand string, preferred []string) bool {
	for _, p := range preferred {
		if strings.EqualFold(brand, p) {
			return true
		}
	}
	return false
}
