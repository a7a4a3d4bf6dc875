package embedder

import (
	"context"
	"database/sql"
	"log"
	"time"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/db"
)

// Run finds all active products missing embeddings and generates them.
func Run(ctx context.Context, database *sql.DB, aiClient *ai.Client) error {
	targets, err := db.GetUnembeddedProducts(database)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		log.Println("All active products are already embedded.")
		return nil
	}
	log.Printf("Found %d products to embed...", len(targets))

	count := 0
	for id, text := range targets {
		short := text
		if len(short) > 40 {
			short = short[:40] + "..."
		}
		log.Printf("Embedding: %s", short)

		blob, _, err := aiClient.EmbedString(ctx, text)
		if err != nil {
			log.Printf("Error embedding %s: %v", id, err)
			time.Sleep(1 * time.Second) // Backoff on error
			continue
		}

		if err := db.UpdateEmbedding(database, id, blob); err != nil {
			log.Printf("Error saving embedding for %s: %v", id, err)
			continue
		}

		count++
		// Rate limit for free tier safety (approx 60 RPM max)
		time.Sleep(1 * time.Second)
	}

	log.Printf("Successfully embedded %d products.", count)
	return nil
}
