package chatbot

import (
	"regexp"
	"strconv"
	"strings"

	"smartshop-labs/smartshop/internal/models"
)

// Category detection is ordered by specificity: "gaming laptop" has to win
// over "laptop", "smartwatch" over "watch".
var categoryPatterns = []struct {
	pattern  string
	category string
	useCase  string
}{
	{"gaming laptop", "gaming laptops", "gaming"},
	{"business laptop", "laptops", "business"},
	{"work laptop", "laptops", "work"},
	{"ultrabook", "laptops", "ultraportable"},
	{"laptop", "laptops", ""},
	{"gaming phone", "smartphones", "gaming"},
	{"camera phone", "smartphones", "photography"},
	{"smartphone", "smartphones", ""},
	{"mobile", "smartphones", ""},
	{"phone", "smartphones", ""},
	{"fitness watch", "smartwatches", "fitness"},
	{"smart watch", "smartwatches", "fitness"},
	{"smartwatch", "smartwatches", "fitness"},
	{"watch", "smartwatches", ""},
	{"gaming headphones", "headphones", "gaming"},
	{"wireless headphones", "headphones", "music"},
	{"bluetooth headphones", "headphones", "music"},
	{"headphones", "headphones", "music"},
	{"earphones", "headphones", "music"},
	{"earbuds", "headphones", "music"},
	{"headset", "headphones", ""},
	{"tablet", "tablets", ""},
	{"camera", "cameras", "photography"},
}

// Budget patterns capture the amount and an optional scale suffix. Tried in
// order; first hit wins.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`under[^\d]*₹?\s*(\d+)\s*(k|thousand|,000)?`),
	regexp.MustCompile(`below[^\d]*₹?\s*(\d+)\s*(k|thousand|,000)?`),
	regexp.MustCompile(`budget[^\d]*₹?\s*(\d+)\s*(k|thousand|,000)?`),
	regexp.MustCompile(`around[^\d]*₹?\s*(\d+)\s*(k|thousand|,000)?`),
	regexp.MustCompile(`₹\s*(\d+)\s*(k|thousand|,000)?`),
	regexp.MustCompile(`(\d+)\s*(k|thousand|,000)?\s*budget`),
	regexp.MustCompile(`rs\.?\s*(\d+)\s*(k|thousand|,000)?`),
	regexp.MustCompile(`(\d+)\s*(k|thousand)?\s*rupees`),
	regexp.MustCompile(`^\s*(\d+)\s*(k)\s*$`),
	regexp.MustCompile(`^\s*(\d+)\s*$`),
}

var useCaseMappings = []struct{ keyword, useCase string }{
	{"video editing", "video editing"},
	{"editing", "video editing"},
	{"gaming", "gaming"},
	{"games", "gaming"},
	{"work", "work"},
	{"business", "business"},
	{"office", "business"},
	{"study", "study"},
	{"student", "study"},
	{"college", "study"},
	{"photography", "photography"},
	{"photos", "photography"},
	{"programming", "programming"},
	{"music", "music"},
	{"audio", "music"},
	{"fitness", "fitness"},
	{"exercise", "fitness"},
}

var knownBrands = []string{
	"asus", "hp", "dell", "lenovo", "acer", "msi",
	"apple", "samsung", "xiaomi", "oneplus",
	"amazfit", "realme", "fire-boltt",
}

var (
	avoidKeywords  = []string{"don't like", "dont like", "avoid", "hate", "bad experience"}
	preferKeywords = []string{"prefer", "like", "want", "love"}

	beginnerIndicators = []string{"new to", "first time", "don't know much", "dont know much", "beginner", "confused"}
	expertIndicators   = []string{"expert", "advanced", "professional", "experienced", "technical"}

	mustHaveRe   = regexp.MustCompile(`(?:must have|essential|required|need)[:\s]+([^.!?]+)`)
	niceToHaveRe = regexp.MustCompile(`(?:nice to have|would like|if possible|bonus)[:\s]+([^.!?]+)`)

	priorityItemRe = regexp.MustCompile(`(\d)\s*[.)]\s*([a-z][a-z /]*[a-z])`)
)

// Extract mines a single user message for requirements. It never consults
// prior state; merging with what is already known is the caller's job.
func Extract(message string) models.Requirements {
	var req models.Requirements
	lower := strings.ToLower(message)

	for _, cp := range categoryPatterns {
		if strings.Contains(lower, cp.pattern) {
			req.Category = cp.category
			req.UseCase = cp.useCase
			break
		}
	}

	if budget, flexibility, ok := extractBudget(lower); ok {
		req.Budget = budget
		req.BudgetFlexibility = flexibility
	}

	if req.UseCase == "" {
		for _, m := range useCaseMappings {
			if strings.Contains(lower, m.keyword) {
				req.UseCase = m.useCase
				break
			}
		}
	}

	avoided := containsAny(lower, avoidKeywords)
	if mentioned := mentionedBrands(lower); len(mentioned) > 0 {
		if avoided {
			req.AvoidedBrands = mentioned
		} else if containsAny(lower, preferKeywords) {
			req.PreferredBrands = mentioned
		}
	}

	if m := mustHaveRe.FindStringSubmatch(lower); m != nil {
		req.MustHave = []string{strings.TrimSpace(m[1])}
	}
	if m := niceToHaveRe.FindStringSubmatch(lower); m != nil {
		req.NiceToHave = []string{strings.TrimSpace(m[1])}
	}

	if containsAny(lower, beginnerIndicators) {
		req.ExpertiseLevel = "beginner"
	} else if containsAny(lower, expertIndicators) {
		req.ExpertiseLevel = "expert"
	}

	if p := extractPriorities(lower); len(p) > 0 {
		req.Priorities = p
	}

	return req
}

// extractBudget returns the normalized budget in rupees. Values carrying a
// k/thousand marker are scaled; bare values under 1000 are assumed to be in
// thousands ("60" in a budget context means ₹60,000).
func extractBudget(lower string) (int, string, bool) {
	for _, re := range budgetPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		suffix := ""
		if len(m) > 2 {
			suffix = m[2]
		}
		switch suffix {
		case "k", "thousand", ",000":
			n *= 1000
		default:
			if n < 1000 {
				n *= 1000
			}
		}

		flexibility := ""
		if strings.Contains(lower, "under") || strings.Contains(lower, "below") {
			flexibility = "strict"
		} else if strings.Contains(lower, "around") || strings.Contains(lower, "approximately") {
			flexibility = "flexible"
		}
		return n, flexibility, true
	}
	return 0, "", false
}

// extractPriorities parses replies to the ranking question, e.g.
// "1. performance, 2. price, 3. battery life". Rank 1 maps to importance 10.
func extractPriorities(lower string) map[string]int {
	matches := priorityItemRe.FindAllStringSubmatch(lower, -1)
	if len(matches) < 2 {
		return nil
	}
	priorities := make(map[string]int)
	for _, m := range matches {
		rank, err := strconv.Atoi(m[1])
		if err != nil || rank < 1 || rank > 10 {
			continue
		}
		feature := strings.TrimSpace(m[2])
		priorities[feature] = 11 - rank
	}
	return priorities
}

func mentionedBrands(lower string) []string {
	var brands []string
	for _, b := range knownBrands {
		if strings.Contains(lower, b) {
			brands = append(brands, b)
		}
	}
	return brands
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
