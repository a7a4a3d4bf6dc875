package catalog

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/models"
)

// seedEntry bundles a sample product with its review summary. Offers and
// price history are generated deterministically from the product id.
type seedEntry struct {
	Product models.Product
	Reviews models.ReviewSummary
}

// Seed loads the bundled sample catalog. It is idempotent: products are
// upserted by id, offers and history series are replaced.
func (s *Service) Seed(ctx context.Context) (int, error) {
	entries := sampleEntries()

	products := make([]models.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, e.Product)
	}
	if _, err := db.UpsertProducts(ctx, s.db, products); err != nil {
		return 0, fmt.Errorf("failed to upsert sample products: %w", err)
	}

	for _, e := range entries {
		if err := db.SaveReviews(s.db, e.Product.ID, e.Reviews); err != nil {
			return 0, fmt.Errorf("failed to save reviews for %s: %w", e.Product.ID, err)
		}
		if err := db.ReplaceOffers(ctx, s.db, e.Product.ID, generateOffers(e.Product)); err != nil {
			return 0, fmt.Errorf("failed to save offers for %s: %w", e.Product.ID, err)
		}
		if err := db.ReplacePriceHistory(ctx, s.db, e.Product.ID, generateHistory(e.Product)); err != nil {
			return 0, fmt.Errorf("failed to save price history for %s: %w", e.Product.ID, err)
		}
	}
	return len(entries), nil
}

// generateOffers builds per-platform listings around the base price. The
// variation is pseudo-random but seeded from the product id, so reseeding
// produces identical rows.
func generateOffers(p models.Product) []models.PlatformOffer {
	rng := rand.New(rand.NewSource(idSeed(p.ID)))

	flipkartPrice := round(p.Price * (0.98 + rng.Float64()*0.05))
	flipkartAvail := "In Stock"
	if rng.Float64() < 0.2 {
		flipkartAvail = "Limited Stock"
	}
	cromaPrice := round(p.Price * (1.02 + rng.Float64()*0.06))
	cromaAvail := "Available"
	if rng.Float64() < 0.3 {
		cromaAvail = "Check availability"
	}

	return []models.PlatformOffer{
		{
			Platform:     "Amazon",
			Price:        p.Price,
			Availability: "In Stock",
			Offers:       []string{"5% cashback with Amazon Pay", "No-cost EMI available"},
			Delivery:     "Free delivery by tomorrow",
		},
		{
			Platform:     "Flipkart",
			Price:        flipkartPrice,
			Availability: flipkartAvail,
			Offers:       []string{"10% instant discount with Axis Bank cards", "Exchange offer available"},
			Delivery:     "Free delivery in 2-3 days",
		},
		{
			Platform:     "Croma",
			Price:        cromaPrice,
			Availability: cromaAvail,
			Offers:       []string{"Store pickup available", "Extended warranty options"},
			Delivery:     "Delivery in 3-5 days",
		},
	}
}

// generateHistory builds six months of weekly price observations around the
// base price, again seeded from the product id.
func generateHistory(p models.Product) []models.PricePoint {
	rng := rand.New(rand.NewSource(idSeed(p.ID)))
	platforms := []string{"Amazon", "Flipkart", "Croma"}

	now := time.Now()
	var points []models.PricePoint
	for daysAgo := 180; daysAgo > 0; daysAgo -= 7 {
		variation := 0.9 + rng.Float64()*0.25
		points = append(points, models.PricePoint{
			Date:     now.AddDate(0, 0, -daysAgo),
			Price:    round(p.Price * variation),
			Platform: platforms[rng.Intn(len(platforms))],
		})
	}
	return points
}

func idSeed(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}

func round(v float64) float64 {
	return float64(int64(v + 0.5))
}

func sampleEntries() []seedEntry {
	return []seedEntry{
		{
			Product: models.Product{
				ID:       "smartwatch_1",
				Name:     "Amazfit GTS 2 Mini",
				Category: "smartwatches",
				Brand:    "Amazfit",
				Model:    "GTS 2 Mini",
				URL:      "https://example.com/amazfit-gts-2-mini",
				ImageURL: "https://example.com/smartwatch_1.jpg",
				Description: "Lightweight fitness smartwatch with an AMOLED display, " +
					"two-week battery life, built-in GPS and 70+ sports modes.",
				KeyFeatures: []string{
					`1.55" AMOLED Display`,
					"14-day Battery Life",
					"70+ Sports Modes",
					"Sleep & Stress Monitoring",
					"GPS Built-in",
					"5ATM Water Resistance",
				},
				Specs: map[string]string{
					"display":          `1.55" AMOLED`,
					"battery":          "14 days",
					"sensors":          "Heart Rate, SpO2, Sleep",
					"connectivity":     "Bluetooth 5.0",
					"water_resistance": "5ATM",
					"weight":           "19.5g",
					"os":               "Zepp OS",
				},
				Pros:          []string{"Excellent battery life", "Beautiful AMOLED display", "Accurate fitness tracking"},
				Cons:          []string{"Limited app ecosystem", "GPS can be slow to connect"},
				Price:         4999,
				OriginalPrice: 5499,
				Platform:      "Amazon",
				Availability:  "In Stock",
			},
			Reviews: models.ReviewSummary{
				OverallRating: 4.2,
				TotalReviews:  890,
				CategoryRatings: map[string]float64{
					"battery_life":     4.6,
					"build_quality":    4.1,
					"display":          4.3,
					"fitness_tracking": 4.4,
					"connectivity":     4.0,
					"value_for_money":  4.5,
				},
				Pros:       []string{"Excellent battery life - lasts 2 weeks", "Beautiful AMOLED display", "Accurate fitness tracking", "Great value for money"},
				Cons:       []string{"Limited app ecosystem", "GPS can be slow to connect", "No Google Pay support"},
				Complaints: []string{"App store is limited", "Notifications can be delayed", "GPS accuracy issues"},
				Praise:     []string{"Amazing battery life", "Great for fitness tracking", "Excellent value", "Comfortable to wear"},
			},
		},
		{
			Product: models.Product{
				ID:       "smartwatch_2",
				Name:     "Realme Watch S Pro",
				Category: "smartwatches",
				Brand:    "Realme",
				Model:    "Watch S Pro",
				URL:      "https://example.com/realme-watch-s-pro",
				ImageURL: "https://example.com/smartwatch_2.jpg",
				Description: "Sporty smartwatch with an AMOLED display, dual-satellite " +
					"positioning and two-week battery life.",
				KeyFeatures: []string{
					`1.39" AMOLED Display`,
					"14-day Battery Life",
					"15 Sports Modes",
					"Heart Rate Monitoring",
					"GPS + GLONASS",
					"IP68 Water Resistance",
				},
				Specs: map[string]string{
					"display":          `1.39" AMOLED`,
					"battery":          "14 days",
					"sensors":          "Heart Rate, SpO2",
					"connectivity":     "Bluetooth 5.0",
					"water_resistance": "IP68",
					"weight":           "63g",
					"os":               "Realme UI",
				},
				Pros:          []string{"Good battery life", "Solid fitness features", "Responsive touch screen"},
				Cons:          []string{"Software can be buggy", "Limited customization"},
				Price:         5999,
				OriginalPrice: 6599,
				Platform:      "Flipkart",
				Availability:  "In Stock",
			},
			Reviews: models.ReviewSummary{
				OverallRating: 4.0,
				TotalReviews:  650,
				CategoryRatings: map[string]float64{
					"battery_life":     4.2,
					"build_quality":    3.9,
					"display":          4.1,
					"fitness_tracking": 4.3,
					"connectivity":     3.8,
					"value_for_money":  4.2,
				},
				Pros:       []string{"Good battery life", "Solid fitness features", "Responsive touch screen", "Decent build quality"},
				Cons:       []string{"Software can be buggy", "Limited customization", "Average app support"},
				Complaints: []string{"Software updates are slow", "Limited watch faces", "Connectivity issues"},
				Praise:     []string{"Good fitness tracking", "Decent battery life", "Nice display", "Comfortable design"},
			},
		},
		{
			Product: models.Product{
				ID:       "smartwatch_3",
				Name:     "Fire-Boltt Phoenix Pro",
				Category: "smartwatches",
				Brand:    "Fire-Boltt",
				Model:    "Phoenix Pro",
				URL:      "https://example.com/fire-boltt-phoenix-pro",
				ImageURL: "https://example.com/smartwatch_3.jpg",
				Description: "Budget smartwatch with Bluetooth calling, 120+ sports " +
					"modes and a bright HD display.",
				KeyFeatures: []string{
					`1.39" HD Display`,
					"7-day Battery Life",
					"120+ Sports Modes",
					"Bluetooth Calling",
					"Health Monitoring",
					"IP67 Water Resistance",
				},
				Specs: map[string]string{
					"display":          `1.39" HD`,
					"battery":          "7 days",
					"sensors":          "Heart Rate, SpO2, Sleep",
					"connectivity":     "Bluetooth Calling",
					"water_resistance": "IP67",
					"weight":           "52g",
					"os":               "Fire-Boltt OS",
				},
				Pros:          []string{"Bluetooth calling feature", "Many sports modes", "Good value for price"},
				Cons:          []string{"Battery life could be better", "Build feels plasticky"},
				Price:         3999,
				OriginalPrice: 4399,
				Platform:      "Amazon",
				Availability:  "In Stock",
			},
			Reviews: models.ReviewSummary{
				OverallRating: 3.8,
				TotalReviews:  420,
				CategoryRatings: map[string]float64{
					"battery_life":     3.5,
					"build_quality":    3.6,
					"display":          4.0,
					"fitness_tracking": 4.1,
					"connectivity":     4.2,
					"value_for_money":  4.3,
				},
				Pros:       []string{"Bluetooth calling feature", "Many sports modes", "Good value for price", "Decent display quality"},
				Cons:       []string{"Battery life could be better", "Build feels plasticky", "Limited smartwatch features"},
				Complaints: []string{"Short battery life", "Cheap build quality", "Call quality is average"},
				Praise:     []string{"Great value for money", "Bluetooth calling works", "Many fitness modes", "Easy to use"},
			},
		},
		{
			Product: models.Product{
				ID:       "laptop_1",
				Name:     "ASUS TUF Gaming F15",
				Category: "gaming laptops",
				Brand:    "ASUS",
				Model:    "FX506LH-HN258W",
				URL:      "https://example.com/asus-tuf-gaming-f15",
				ImageURL: "https://example.com/laptop_1.jpg",
				Description: "Durable 15.6 inch gaming laptop with a 144Hz display, " +
					"GTX 1650 graphics and military-grade build quality.",
				KeyFeatures: []string{
					"Intel Core i5-10300H Processor",
					"NVIDIA GeForce GTX 1650 4GB",
					"8GB DDR4 3200MHz RAM",
					"512GB PCIe SSD",
					`15.6" FHD 144Hz Display`,
					"RGB Backlit Keyboard",
				},
				Specs: map[string]string{
					"processor": "Intel Core i5-10300H",
					"graphics":  "NVIDIA GTX 1650 4GB",
					"ram":       "8GB DDR4",
					"storage":   "512GB SSD",
					"display":   `15.6" FHD 144Hz`,
					"weight":    "2.3 kg",
					"battery":   "48WHrs",
					"os":        "Windows 11",
				},
				Pros:          []string{"Good gaming performance", "Solid build quality", "Good cooling"},
				Cons:          []string{"Average battery life", "Heavy weight"},
				Price:         55999,
				OriginalPrice: 65999,
				Platform:      "Amazon",
				Availability:  "In Stock",
			},
			Reviews: models.ReviewSummary{
				OverallRating: 4.3,
				TotalReviews:  1250,
				CategoryRatings: map[string]float64{
					"performance":     4.5,
					"build_quality":   4.2,
					"battery_life":    3.8,
					"display":         4.4,
					"keyboard":        4.1,
					"value_for_money": 4.6,
				},
				Pros:       []string{"Excellent gaming performance for the price", "Solid build quality with military-grade certification", "Good thermal management", "Beautiful RGB keyboard"},
				Cons:       []string{"Battery life could be better for non-gaming tasks", "Can get loud under heavy load", "Limited port selection"},
				Complaints: []string{"Fan noise during gaming", "Average battery backup", "Heating issues during extended gaming"},
				Praise:     []string{"Great value for money", "Smooth gaming experience", "Sturdy build quality", "Good customer service"},
			},
		},
		{
			Product: models.Product{
				ID:       "laptop_2",
				Name:     "HP Pavilion Gaming 15",
				Category: "gaming laptops",
				Brand:    "HP",
				Model:    "15-dk2018TX",
				URL:      "https://example.com/hp-pavilion-gaming-15",
				ImageURL: "https://example.com/laptop_2.jpg",
				Description: "Well-rounded gaming laptop with dual storage, an IPS " +
					"display and B&O tuned audio.",
				KeyFeatures: []string{
					"Intel Core i5-11300H Processor",
					"NVIDIA GeForce GTX 1650 4GB",
					"8GB DDR4 RAM",
					"1TB HDD + 256GB SSD",
					`15.6" FHD IPS Display`,
					"B&O Audio",
				},
				Specs: map[string]string{
					"processor": "Intel Core i5-11300H",
					"graphics":  "NVIDIA GTX 1650 4GB",
					"ram":       "8GB DDR4",
					"storage":   "1TB HDD + 256GB SSD",
					"display":   `15.6" FHD IPS`,
					"weight":    "2.25 kg",
					"battery":   "52.5WHrs",
					"os":        "Windows 11",
				},
				Pros:          []string{"Good price-performance", "Decent display", "Upgradeable RAM"},
				Cons:          []string{"Plastic build", "Average keyboard"},
				Price:         52999,
				OriginalPrice: 58999,
				Platform:      "Flipkart",
				Availability:  "In Stock",
			},
			Reviews: models.ReviewSummary{
				OverallRating: 4.1,
				TotalReviews:  890,
				CategoryRatings: map[string]float64{
					"performance":     4.3,
					"build_quality":   4.0,
					"battery_life":    4.2,
					"display":         4.1,
					"keyboard":        3.9,
					"value_for_money": 4.4,
				},
				Pros:       []string{"Good battery life for a gaming laptop", "Decent performance for casual gaming", "B&O audio sounds great", "Dual storage setup is convenient"},
				Cons:       []string{"Build quality feels plasticky", "Keyboard could be better", "Display colors are okay but not vibrant"},
				Complaints: []string{"Plastic build feels cheap", "Keyboard backlight is uneven", "Customer service issues"},
				Praise:     []string{"Good battery life", "Decent gaming performance", "Audio quality is impressive", "Storage combination works well"},
			},
		},
		{
			Product: models.Product{
				ID:       "laptop_3",
				Name:     "Lenovo IdeaPad Gaming 3",
				Category: "gaming laptops",
				Brand:    "Lenovo",
				Model:    "15ACH6",
				URL:      "https://example.com/lenovo-ideapad-gaming-3",
				ImageURL: "https://example.com/laptop_3.jpg",
				Description: "Ryzen powered gaming laptop with RTX 3050 graphics and " +
					"a smooth 120Hz display.",
				KeyFeatures: []string{
					"AMD Ryzen 5 5600H Processor",
					"NVIDIA GeForce RTX 3050 4GB",
					"8GB DDR4 RAM",
					"512GB SSD",
					`15.6" FHD 120Hz Display`,
					"Legion TrueStrike Keyboard",
				},
				Specs: map[string]string{
					"processor": "AMD Ryzen 5 5600H",
					"graphics":  "NVIDIA RTX 3050 4GB",
					"ram":       "8GB DDR4",
					"storage":   "512GB SSD",
					"display":   `15.6" FHD 120Hz`,
					"weight":    "2.25 kg",
					"battery":   "45WHrs",
					"os":        "Windows 11",
				},
				Pros:          []string{"120Hz display", "Latest RTX graphics", "Good performance"},
				Cons:          []string{"Average build quality", "Gets hot under load"},
				Price:         58999,
				OriginalPrice: 62999,
				Platform:      "Amazon",
				Availability:  "Limited Stock",
			},
			Reviews: models.ReviewSummary{
				OverallRating: 4.2,
				TotalReviews:  756,
				CategoryRatings: map[string]float64{
					"performance":     4.6,
					"build_quality":   4.1,
					"battery_life":    3.7,
					"display":         4.3,
					"keyboard":        4.4,
					"value_for_money": 4.5,
				},
				Pros:       []string{"RTX 3050 provides excellent 1080p gaming", "AMD Ryzen processor is very efficient", "120Hz display makes gaming smooth", "Excellent keyboard for typing and gaming"},
				Cons:       []string{"Battery drains quickly while gaming", "Limited upgrade options", "Can throttle under sustained load"},
				Complaints: []string{"Poor battery life during gaming", "Thermal throttling issues", "Limited RAM upgrade slots"},
				Praise:     []string{"Outstanding gaming performance", "Great display quality", "Comfortable keyboard", "Good value with RTX graphics"},
			},
		},
	}
}
