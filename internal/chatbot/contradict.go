package chatbot

import (
	"fmt"
	"strings"

	"smartshop-labs/smartshop/internal/models"
)

// Contradiction flags a requirement combination that cannot be satisfied as
// stated. The engine surfaces one at a time and waits for the user.
type Contradiction struct {
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// DetectContradictions checks the gathered requirements for impossible or
// self-defeating combinations.
func DetectContradictions(req models.Requirements) []Contradiction {
	var found []Contradiction

	if req.Budget > 0 && req.Category == "gaming laptops" {
		if req.Budget < 40000 {
			found = append(found, Contradiction{
				Kind: "budget_performance",
				Message: fmt.Sprintf("Gaming laptops under ₹%d typically have very limited gaming performance. "+
					"Entry-level gaming usually starts around ₹45,000.", req.Budget),
				Suggestions: []string{
					"Increase budget to ₹45,000-50,000 for basic gaming",
					"Consider older or refurbished gaming laptops",
					"Look at regular laptops with integrated graphics for light gaming",
				},
			})
		} else if req.Budget > 200000 {
			found = append(found, Contradiction{
				Kind: "budget_overkill",
				Message: fmt.Sprintf("A ₹%d budget can get you professional gaming or workstation laptops. "+
					"This might be overkill for casual gaming.", req.Budget),
				Suggestions: []string{
					"Consider what games you actually play",
					"₹60,000-80,000 handles most games excellently",
					"Invest saved money in accessories (monitor, keyboard, mouse)",
				},
			})
		}
	}

	if strings.Contains(strings.ToLower(strings.Join(req.MustHave, " ")), "long battery life") &&
		req.UseCase == "gaming" {
		found = append(found, Contradiction{
			Kind: "feature_conflict",
			Message: "Gaming laptops typically have poor battery life during gaming (2-3 hours). " +
				"Long battery life and gaming performance are conflicting requirements.",
			Suggestions: []string{
				"Prioritize either gaming performance or battery life",
				"Consider laptops with hybrid graphics for better battery",
				"Plan to use the laptop plugged in for gaming",
			},
		})
	}

	return found
}
