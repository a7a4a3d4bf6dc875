// Package importer pulls product listings from a marketplace category page
// into the catalog. The target site is described entirely by YAML selectors,
// so pointing it at a new marketplace needs no code change.
package importer

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/models"
)

var logger = log.New(os.Stdout, "IMPORTER: ", log.LstdFlags|log.Lshortfile)

// Run orchestrates the entire import: launch, fetch, and parse.
func Run(cfg *config.SiteConfig) ([]models.Product, error) {
	logger.Println("Launching headless browser...")
	browser, err := launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.MustClose()

	logger.Printf("Navigating to: %s", cfg.ListingURL)
	html, err := fetchHTML(browser, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML: %w", err)
	}

	logger.Println("Parsing listing content...")
	items, err := parseListing(html, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	return items, nil
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	return rod.New().ControlURL(u).MustConnect(), nil
}

func fetchHTML(browser *rod.Browser, cfg *config.SiteConfig) (string, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return "", err
	}

	// Generic panic recovery to ensure browser cleanup
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("Panic in fetchHTML: %v", r)
			page.MustClose()
		}
	}()

	page = page.Timeout(90 * time.Second)

	page.MustNavigate(cfg.ListingURL)
	page.MustWaitStable()

	// Handle Cookie Consent
	if sel := cfg.Selectors.CookieButton; sel != "" {
		logger.Printf("Looking for cookie button: %s", sel)
		// Try to find and click, but don't fail the import if it's missing
		_ = rod.Try(func() {
			page.Timeout(5 * time.Second).MustElement(sel).MustClick()
			page.MustWaitStable()
		})
	}

	// Handle Newsletter Popup
	if sel := cfg.Selectors.NewsletterPopup; sel != "" {
		logger.Printf("Looking for newsletter popup: %s", sel)
		_ = rod.Try(func() {
			page.Timeout(5 * time.Second).MustElement(sel).MustClick()
			page.MustWaitStable()
		})
	}

	logger.Printf("Waiting for product list: %s", cfg.Selectors.ProductListWait)
	page.MustWaitElementsMoreThan(cfg.Selectors.ProductListWait, 0)

	return page.HTML()
}

func parseListing(html string, cfg *config.SiteConfig) ([]models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var items []models.Product
	sel := cfg.Selectors

	doc.Find(sel.ProductCard).Each(func(_ int, s *goquery.Selection) {
		var item models.Product

		link := s.Find(sel.Link).First()
		item.Name = strings.TrimSpace(link.Text())
		item.URL, _ = link.Attr("href")

		// Keyword Filter
		nameLower := strings.ToLower(item.Name)
		for _, kw := range cfg.DisallowedKeywords {
			if strings.Contains(nameLower, strings.ToLower(kw)) {
				logger.Printf("Skipping (keyword '%s'): %s", kw, item.Name)
				return
			}
		}

		item.Price = parsePrice(s.Find(sel.Price).First().Text())
		if sel.OriginalPrice != "" {
			item.OriginalPrice = parsePrice(s.Find(sel.OriginalPrice).First().Text())
		}

		// Description (handle layouts where it sits in a sibling element)
		if sel.Description != "" {
			if sel.DescriptionIsNextSibling {
				item.Description = strings.TrimSpace(s.Next().Find(sel.Description).Text())
			} else {
				item.Description = strings.TrimSpace(s.Find(sel.Description).Text())
			}
		}

		// Simple Stock Check
		if sel.StockButton != "" && s.Find(sel.StockButton).Length() > 0 {
			item.Availability = "In Stock"
		} else if sel.OutOfStockBadge != "" && s.Find(sel.OutOfStockBadge).Length() > 0 {
			item.Availability = "Out of Stock"
		} else {
			item.Availability = "Check availability"
		}

		if item.Name != "" && item.URL != "" {
			item.ID = productID(cfg.Platform, item.URL)
			item.Platform = cfg.Platform
			item.Category = cfg.Category
			items = append(items, item)
		}
	})

	return items, nil
}

var (
	rePrice = regexp.MustCompile(`[^\d\.]+`)
	reSlug  = regexp.MustCompile(`[^a-z0-9]+`)
)

func parsePrice(priceStr string) float64 {
	val := rePrice.ReplaceAllString(priceStr, "")
	price, _ := strconv.ParseFloat(val, 64)
	return price
}

// productID derives a stable catalog id from the platform and listing URL so
// re-imports upsert instead of duplicating.
func productID(platform, url string) string {
	slug := reSlug.ReplaceAllString(strings.ToLower(url), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = slug[len(slug)-80:]
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(platform), slug)
}
