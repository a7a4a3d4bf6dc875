package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/embedder"
	"smartshop-labs/smartshop/internal/importer"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import live listings from a marketplace, then auto-embed",
	Long: `Loads the site config (config.yaml), fetches the configured listing page
with a headless browser, updates the local catalog, and runs embed on new finds.`,
	Run: func(cmd *cobra.Command, args []string) {
		runImport()
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport() {
	// 1. Load Config
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	siteCfg, err := config.LoadSiteConfig(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load site config: %v", err)
	}

	// 2. Connect to DB
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	// 3. Prep DB (mark this platform's old items inactive)
	if _, err := db.MarkPlatformInactive(database, siteCfg.Platform); err != nil {
		log.Fatalf("Failed to mark inactive: %v", err)
	}

	// 4. Run Importer
	items, err := importer.Run(siteCfg)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Importer found %d valid items.", len(items))

	if len(items) == 0 {
		log.Println("No items to save. Exiting.")
		return
	}

	// 5. Save to DB
	ctx := context.Background()
	count, err := db.UpsertProducts(ctx, database, items)
	if err != nil {
		log.Fatalf("Failed to save data: %v", err)
	}
	log.Printf("SUCCESS: Upserted %d records.", count)

	// 6. Auto-run Embedder
	log.Println("🤖 Starting automatic embedding...")
	aiClient, err := ai.NewClient(ctx, appCfg.GeminiModel)
	if err != nil {
		log.Printf("⚠️ Warning: Could not initialize AI for auto-embedding (check GEMINI_API_KEY): %v", err)
		return // Don't fail the whole import if AI fails
	}
	defer aiClient.Close()

	if err := embedder.Run(ctx, database, aiClient); err != nil {
		log.Printf("⚠️ Warning: Auto-embedding failed: %v", err)
	}
}
