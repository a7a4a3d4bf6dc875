package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"smartshop-labs/smartshop/internal/models"
)

// Connect opens a connection to the SQLite database and ensures the schema
// exists. It applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// CreateSchema creates all tables if they are missing. Exported so tests can
// run against an in-memory database.
func CreateSchema(db *sql.DB) error {
	productTable := `
	CREATE TABLE IF NOT EXISTS products (
	  id TEXT PRIMARY KEY,
	  name TEXT NOT NULL,
	  category TEXT NOT NULL,
	  brand TEXT,
	  model TEXT,
	  url TEXT,
	  image_url TEXT,
	  description TEXT,
	  key_features TEXT,
	  specs TEXT,
	  pros TEXT,
	  cons TEXT,
	  price REAL,
	  original_price REAL,
	  platform TEXT,
	  availability TEXT,
	  reviews TEXT,
	  first_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  is_active INTEGER DEFAULT 1,
	  description_embedding BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
	CREATE INDEX IF NOT EXISTS idx_products_is_active ON products(is_active);
	`
	if _, err := db.Exec(productTable); err != nil {
		return err
	}

	offerTable := `
	CREATE TABLE IF NOT EXISTS platform_offers (
	  product_id TEXT NOT NULL,
	  platform TEXT NOT NULL,
	  price REAL,
	  availability TEXT,
	  offers TEXT,
	  delivery TEXT,
	  PRIMARY KEY (product_id, platform),
	  FOREIGN KEY (product_id) REFERENCES products (id)
	);
	`
	if _, err := db.Exec(offerTable); err != nil {
		return err
	}

	historyTable := `
	CREATE TABLE IF NOT EXISTS price_history (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  product_id TEXT NOT NULL,
	  recorded_at TIMESTAMP NOT NULL,
	  price REAL NOT NULL,
	  platform TEXT,
	  FOREIGN KEY (product_id) REFERENCES products (id)
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	// Query vector cache for semantic search (cache-aside)
	searchTable := `
	CREATE TABLE IF NOT EXISTS search_history (
	  query_text TEXT PRIMARY KEY,
	  embedding BLOB,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(searchTable); err != nil {
		return err
	}

	return nil
}

// UpsertProducts performs a batch UPSERT of products. Saved items are marked
// active and their last_seen_at timestamp is refreshed.
func UpsertProducts(ctx context.Context, db *sql.DB, items []models.Product) (int64, error) {
	upsertSQL := `
	INSERT INTO products (
	  id, name, category, brand, model, url, image_url, description,
	  key_features, specs, pros, cons, price, original_price, platform,
	  availability, last_seen_at, is_active
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, 1)
	ON CONFLICT(id) DO UPDATE SET
	  name = excluded.name,
	  category = excluded.category,
	  brand = excluded.brand,
	  model = excluded.model,
	  url = excluded.url,
	  image_url = excluded.image_url,
	  description = excluded.description,
	  key_features = excluded.key_features,
	  specs = excluded.specs,
	  pros = excluded.pros,
	  cons = excluded.cons,
	  price = excluded.price,
	  original_price = excluded.original_price,
	  platform = excluded.platform,
	  availability = excluded.availability,
	  last_seen_at = CURRENT_TIMESTAMP,
	  is_active = 1;
	`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var total int64
	for _, p := range items {
		res, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Category,
			nullStr(p.Brand), nullStr(p.Model), nullStr(p.URL), nullStr(p.ImageURL),
			nullStr(p.Description),
			marshal(p.KeyFeatures), marshal(p.Specs), marshal(p.Pros), marshal(p.Cons),
			p.Price, p.OriginalPrice, nullStr(p.Platform), nullStr(p.Availability),
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to upsert %s: %w", p.ID, err)
		}
		rows, _ := res.RowsAffected()
		total += rows
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// SaveReviews stores a review summary for a product as a JSON blob.
func SaveReviews(db *sql.DB, productID string, r models.ReviewSummary) error {
	_, err := db.Exec(`UPDATE products SET reviews = ? WHERE id = ?`, marshal(r), productID)
	return err
}

// ReplaceOffers replaces all platform offers for a product.
func ReplaceOffers(ctx context.Context, db *sql.DB, productID string, offers []models.PlatformOffer) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM platform_offers WHERE product_id = ?`, productID); err != nil {
		tx.Rollback()
		return err
	}
	for _, o := range offers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO platform_offers (product_id, platform, price, availability, offers, delivery)
			VALUES (?, ?, ?, ?, ?, ?)`,
			productID, o.Platform, o.Price, o.Availability, marshal(o.Offers), o.Delivery)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert offer %s/%s: %w", productID, o.Platform, err)
		}
	}
	return tx.Commit()
}

// ReplacePriceHistory replaces the price history series for a product.
func ReplacePriceHistory(ctx context.Context, db *sql.DB, productID string, points []models.PricePoint) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM price_history WHERE product_id = ?`, productID); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (product_id, recorded_at, price, platform)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, pt := range points {
		if _, err := stmt.ExecContext(ctx, productID, pt.Date, pt.Price, pt.Platform); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetProducts returns active products, optionally filtered by category and a
// budget ceiling (maxPrice <= 0 disables the price filter).
func GetProducts(db *sql.DB, category string, maxPrice float64) ([]models.Product, error) {
	query := `
		SELECT id, name, category, brand, model, url, image_url, description,
		       key_features, specs, pros, cons, price, original_price,
		       platform, availability
		FROM products
		WHERE is_active = 1`
	var args []any
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	if maxPrice > 0 {
		query += ` AND price <= ?`
		args = append(args, maxPrice)
	}
	query += ` ORDER BY price ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// GetReviews returns the stored review summary for a product, if any.
func GetReviews(db *sql.DB, productID string) (models.ReviewSummary, error) {
	var blob sql.NullString
	err := db.QueryRow(`SELECT reviews FROM products WHERE id = ?`, productID).Scan(&blob)
	if err != nil {
		return models.ReviewSummary{}, err
	}
	var r models.ReviewSummary
	if blob.Valid && blob.String != "" {
		if err := json.Unmarshal([]byte(blob.String), &r); err != nil {
			return models.ReviewSummary{}, err
		}
	}
	return r, nil
}

// GetOffers returns all platform offers for a product.
func GetOffers(db *sql.DB, productID string) ([]models.PlatformOffer, error) {
	rows, err := db.Query(`
		SELECT platform, price, availability, offers, delivery
		FROM platform_offers WHERE product_id = ? ORDER BY price ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.PlatformOffer
	for rows.Next() {
		var o models.PlatformOffer
		var offersJSON, delivery sql.NullString
		if err := rows.Scan(&o.Platform, &o.Price, &o.Availability, &offersJSON, &delivery); err != nil {
			continue
		}
		unmarshal(offersJSON, &o.Offers)
		o.Delivery = delivery.String
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// GetPriceHistory returns the price series for a product, oldest first.
func GetPriceHistory(db *sql.DB, productID string) ([]models.PricePoint, error) {
	rows, err := db.Query(`
		SELECT recorded_at, price, platform
		FROM price_history WHERE product_id = ? ORDER BY recorded_at ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var pt models.PricePoint
		var platform sql.NullString
		if err := rows.Scan(&pt.Date, &pt.Price, &platform); err != nil {
			continue
		}
		pt.Platform = platform.String
		points = append(points, pt)
	}
	return points, rows.Err()
}

// MarkPlatformInactive sets is_active=0 for every product sourced from the
// given platform. Called at the start of an import run so items that
// disappeared from the listing drop out of search results.
func MarkPlatformInactive(db *sql.DB, platform string) (int64, error) {
	res, err := db.Exec(`UPDATE products SET is_active = 0 WHERE is_active = 1 AND platform = ?`, platform)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Embedding & semantic search helpers ---

// GetUnembeddedProducts returns a map of product id -> text to embed for
// active items missing embeddings.
func GetUnembeddedProducts(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`
		SELECT id, name, category, COALESCE(description, ''), COALESCE(key_features, '')
		FROM products WHERE is_active = 1 AND description_embedding IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string]string)
	for rows.Next() {
		var id, name, category, desc, featuresJSON string
		if err := rows.Scan(&id, &name, &category, &desc, &featuresJSON); err != nil {
			continue
		}
		var features []string
		_ = json.Unmarshal([]byte(featuresJSON), &features)
		text := fmt.Sprintf("Product: %s\nCategory: %s\nDescription: %s", name, category, desc)
		if len(features) > 0 {
			text += "\nFeatures: "
			for i, f := range features {
				if i > 0 {
					text += "; "
				}
				text += f
			}
		}
		results[id] = text
	}
	return results, rows.Err()
}

// UpdateEmbedding saves the generated vector blob for a product.
func UpdateEmbedding(db *sql.DB, productID string, embedding []byte) error {
	_, err := db.Exec(`UPDATE products SET description_embedding = ? WHERE id = ?`, embedding, productID)
	return err
}

// ProductVector is a lightweight row for similarity scoring.
type ProductVector struct {
	ID       string
	Name     string
	Category string
	Price    float64
	Vector   []byte
}

// GetProductVectors returns all active products that have embeddings.
func GetProductVectors(db *sql.DB) ([]ProductVector, error) {
	rows, err := db.Query(`
		SELECT id, name, category, price, description_embedding
		FROM products WHERE is_active = 1 AND description_embedding IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ProductVector
	for rows.Next() {
		var pv ProductVector
		if err := rows.Scan(&pv.ID, &pv.Name, &pv.Category, &pv.Price, &pv.Vector); err != nil {
			continue
		}
		results = append(results, pv)
	}
	return results, rows.Err()
}

// GetCachedQuery tries to find a previously embedded query vector.
func GetCachedQuery(db *sql.DB, text string) ([]byte, error) {
	var blob []byte
	err := db.QueryRow(`SELECT embedding FROM search_history WHERE query_text = ?`, text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery saves a query and its vector to the history table.
func SaveCachedQuery(db *sql.DB, text string, blob []byte) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO search_history (query_text, embedding) VALUES (?, ?)`, text, blob)
	return err
}

// HistoryEntry is one cached query.
type HistoryEntry struct {
	QueryText string
	CreatedAt time.Time
}

// ListSearchHistory returns all cached queries, newest first.
func ListSearchHistory(db *sql.DB) ([]HistoryEntry, error) {
	rows, err := db.Query(`SELECT query_text, created_at FROM search_history ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.QueryText, &e.CreatedAt); err == nil {
			entries = append(entries, e)
		}
	}
	return entries, rows.Err()
}

// ClearSearchHistory removes a specific query from the cache.
func ClearSearchHistory(db *sql.DB, queryText string) (int64, error) {
	res, err := db.Exec(`DELETE FROM search_history WHERE query_text = ?`, queryText)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllSearchHistory wipes the entire query cache.
func ClearAllSearchHistory(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM search_history`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(rows rowScanner) (models.Product, error) {
	var p models.Product
	var brand, model, url, imageURL, desc, platform, availability sql.NullString
	var features, specs, pros, cons sql.NullString
	err := rows.Scan(&p.ID, &p.Name, &p.Category, &brand, &model, &url, &imageURL,
		&desc, &features, &specs, &pros, &cons,
		&p.Price, &p.OriginalPrice, &platform, &availability)
	if err != nil {
		return p, err
	}
	p.Brand = brand.String
	p.Model = model.String
	p.URL = url.String
	p.ImageURL = imageURL.String
	p.Description = desc.String
	p.Platform = platform.String
	p.Availability = availability.String
	unmarshal(features, &p.KeyFeatures)
	unmarshal(specs, &p.Specs)
	unmarshal(pros, &p.Pros)
	unmarshal(cons, &p.Cons)
	return p, nil
}

func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func unmarshal[T any](s sql.NullString, dst *T) {
	if s.Valid && s.String != "" {
		_ = json.Unmarshal([]byte(s.String), dst)
	}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
