package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Product is a single catalog entry. Imported items only carry the basic
// listing fields; seeded sample items carry the full set.
type Product struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Brand         string            `json:"brand,omitempty"`
	Model         string            `json:"model,omitempty"`
	URL           string            `json:"url,omitempty"`
	ImageURL      string            `json:"image_url,omitempty"`
	Description   string            `json:"description,omitempty"`
	KeyFeatures   []string          `json:"key_features,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
	Pros          []string          `json:"pros,omitempty"`
	Cons          []string          `json:"cons,omitempty"`
	Price         float64           `json:"price"`
	OriginalPrice float64           `json:"original_price,omitempty"`
	Platform      string            `json:"platform,omitempty"`
	Availability  string            `json:"availability,omitempty"`
}

// PlatformOffer is one marketplace's listing for a product.
type PlatformOffer struct {
	Platform     string   `json:"platform"`
	Price        float64  `json:"price"`
	Availability string   `json:"availability"`
	Offers       []string `json:"offers,omitempty"`
	Delivery     string   `json:"delivery,omitempty"`
}

// PricePoint is one observation in a product's price history.
type PricePoint struct {
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	Platform string    `json:"platform"`
}

// ReviewSummary aggregates review data for a product.
type ReviewSummary struct {
	OverallRating   float64            `json:"overall_rating"`
	TotalReviews    int                `json:"total_reviews"`
	CategoryRatings map[string]float64 `json:"category_ratings,omitempty"`
	Pros            []string           `json:"pros,omitempty"`
	Cons            []string           `json:"cons,omitempty"`
	Complaints      []string           `json:"complaints,omitempty"`
	Praise          []string           `json:"praise,omitempty"`
}

// Intelligence holds scores derived from price history and reviews at read
// time. Nothing here is stored; it is recomputed on every catalog query.
type Intelligence struct {
	DiscountPercent float64 `json:"discount_percent"`
	PriceTrend      string  `json:"price_trend"`
	LowestEver      float64 `json:"lowest_ever"`
	HighestEver     float64 `json:"highest_ever"`
	GoodDeal        bool    `json:"good_deal"`
	ValueScore      float64 `json:"value_score"`
	PopularityScore float64 `json:"popularity_score"`
	DealScore       float64 `json:"deal_score"`
	UrgencyScore    int     `json:"urgency_score"`
}

// Requirements is everything the assistant has learned about what the user
// wants. Category and Budget are the only fields required before a search;
// use case is optional.
type Requirements struct {
	Category          string         `json:"category,omitempty"`
	UseCase           string         `json:"use_case,omitempty"`
	Budget            int            `json:"budget,omitempty"`
	BudgetFlexibility string         `json:"budget_flexibility,omitempty"`
	MustHave          []string       `json:"must_have,omitempty"`
	NiceToHave        []string       `json:"nice_to_have,omitempty"`
	PreferredBrands   []string       `json:"preferred_brands,omitempty"`
	AvoidedBrands     []string       `json:"avoided_brands,omitempty"`
	ExpertiseLevel    string         `json:"expertise_level,omitempty"`
	Priorities        map[string]int `json:"priorities,omitempty"`
}

// Ready reports whether enough is known to run a product search.
func (r Requirements) Ready() bool {
	return r.Category != "" && r.Budget > 0
}

// IsEmpty reports whether nothing has been gathered yet.
func (r Requirements) IsEmpty() bool {
	return r.Category == "" && r.UseCase == "" && r.Budget == 0 &&
		r.BudgetFlexibility == "" && r.ExpertiseLevel == "" &&
		len(r.MustHave) == 0 && len(r.NiceToHave) == 0 &&
		len(r.PreferredBrands) == 0 && len(r.AvoidedBrands) == 0 &&
		len(r.Priorities) == 0
}

// Merge overlays newly extracted requirements onto r. Existing values are
// only replaced when the new extraction produced something; list fields are
// appended with de-duplication.
func (r *Requirements) Merge(n Requirements) {
	if n.Category != "" {
		r.Category = n.Category
	}
	if n.UseCase != "" {
		r.UseCase = n.UseCase
	}
	if n.Budget > 0 {
		r.Budget = n.Budget
	}
	if n.BudgetFlexibility != "" {
		r.BudgetFlexibility = n.BudgetFlexibility
	}
	if n.ExpertiseLevel != "" {
		r.ExpertiseLevel = n.ExpertiseLevel
	}
	r.MustHave = appendUnique(r.MustHave, n.MustHave)
	r.NiceToHave = appendUnique(r.NiceToHave, n.NiceToHave)
	r.PreferredBrands = appendUnique(r.PreferredBrands, n.PreferredBrands)
	r.AvoidedBrands = appendUnique(r.AvoidedBrands, n.AvoidedBrands)
	if len(n.Priorities) > 0 {
		if r.Priorities == nil {
			r.Priorities = make(map[string]int)
		}
		for k, v := range n.Priorities {
			r.Priorities[k] = v
		}
	}
}

// Summary renders the gathered requirements as readable lines, used both in
// the sidebar display and as context for AI-phrased replies.
func (r Requirements) Summary() string {
	if r.IsEmpty() {
		return "No requirements gathered yet."
	}
	var b strings.Builder
	b.WriteString("Current requirements:\n")
	if r.Category != "" {
		fmt.Fprintf(&b, "- Category: %s\n", r.Category)
	}
	if r.Budget > 0 {
		fmt.Fprintf(&b, "- Budget: ₹%d\n", r.Budget)
	}
	if r.BudgetFlexibility != "" {
		fmt.Fprintf(&b, "- Budget flexibility: %s\n", r.BudgetFlexibility)
	}
	if r.UseCase != "" {
		fmt.Fprintf(&b, "- Use case: %s\n", r.UseCase)
	}
	if len(r.MustHave) > 0 {
		fmt.Fprintf(&b, "- Must have: %s\n", strings.Join(r.MustHave, ", "))
	}
	if len(r.NiceToHave) > 0 {
		fmt.Fprintf(&b, "- Nice to have: %s\n", strings.Join(r.NiceToHave, ", "))
	}
	if len(r.PreferredBrands) > 0 {
		fmt.Fprintf(&b, "- Preferred brands: %s\n", strings.Join(r.PreferredBrands, ", "))
	}
	if len(r.AvoidedBrands) > 0 {
		fmt.Fprintf(&b, "- Avoided brands: %s\n", strings.Join(r.AvoidedBrands, ", "))
	}
	if r.ExpertiseLevel != "" {
		fmt.Fprintf(&b, "- Expertise level: %s\n", r.ExpertiseLevel)
	}
	if len(r.Priorities) > 0 {
		keys := make([]string, 0, len(r.Priorities))
		for k := range r.Priorities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s (%d)", k, r.Priorities[k]))
		}
		fmt.Fprintf(&b, "- Priorities: %s\n", strings.Join(parts, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if strings.EqualFold(d, s) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

// Recommendation is a single ranked result with the reasoning behind it.
type Recommendation struct {
	Product        Product           `json:"product"`
	Reviews        ReviewSummary     `json:"reviews"`
	Offers         []PlatformOffer   `json:"offers,omitempty"`
	Intel          Intelligence      `json:"intelligence"`
	MatchScore     float64           `json:"match_score"`
	Confidence     float64           `json:"confidence"`
	Reasoning      []string          `json:"reasoning,omitempty"`
	TradeOffs      map[string]string `json:"trade_offs,omitempty"`
	DealHighlights []string          `json:"deal_highlights,omitempty"`
	Savings        float64           `json:"savings,omitempty"`
	UrgencyFactors []string          `json:"urgency_factors,omitempty"`
	BetterThan     []string          `json:"better_than,omitempty"`
	MightMiss      []string          `json:"might_miss,omitempty"`
}
