package searcher

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/db"
)

// Result holds a single semantic search match.
type Result struct {
	Item  db.ProductVector
	Score float32
}

// Perform executes a semantic search over the catalog: embed the query (via
// the cache-aside query cache), then rank products by cosine similarity.
func Perform(ctx context.Context, database *sql.DB, aiClient *ai.Client, queryText string) ([]Result, error) {
	queryVector, err := getQueryVector(ctx, database, aiClient, queryText)
	if err != nil {
		return nil, err
	}

	products, err := db.GetProductVectors(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load product vectors: %w", err)
	}

	var results []Result
	for _, p := range products {
		floats, err := ai.BytesToFloats(p.Vector)
		if err != nil {
			continue
		}
		score := ai.CosineSimilarity(queryVector, floats)
		results = append(results, Result{Item: p, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > 5 {
		results = results[:5]
	}
	return results, nil
}

// Scores returns the cosine similarity of every embedded product against the
// query text, keyed by product id. Used to blend semantic affinity into the
// recommendation ranking.
func Scores(ctx context.Context, database *sql.DB, aiClient *ai.Client, text string) (map[string]float32, error) {
	queryVector, err := getQueryVector(ctx, database, aiClient, text)
	if err != nil {
		return nil, err
	}

	products, err := db.GetProductVectors(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load product vectors: %w", err)
	}

	scores := make(map[string]float32, len(products))
	for _, p := range products {
		floats, err := ai.BytesToFloats(p.Vector)
		if err != nil {
			continue
		}
		scores[p.ID] = ai.CosineSimilarity(queryVector, floats)
	}
	return scores, nil
}

// getQueryVector handles the cache-aside logic for query embeddings.
func getQueryVector(ctx context.Context, database *sql.DB, aiClient *ai.Client, text string) ([]float32, error) {
	blob, err := db.GetCachedQuery(database, text)
	if err == nil {
		return ai.BytesToFloats(blob)
	}

	if aiClient == nil {
		return nil, fmt.Errorf("semantic search requires a configured AI client")
	}

	log.Printf("Cache miss for %q, calling the embedding API...", text)
	blob, floats, err := aiClient.EmbedString(ctx, text)
	if err != nil {
		return nil, err
	}

	// A failed cache write should not fail the search.
	if err := db.SaveCachedQuery(database, text, blob); err != nil {
		log.Printf("Warning: failed to save query to cache: %v", err)
	}

	return floats, nil
}
