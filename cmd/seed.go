package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog into the local database",
	Long: `Inserts the bundled demo products (smartwatches and gaming laptops) with
their reviews, marketplace offers, and six months of price history.
Safe to re-run: products are upserted by id.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed() {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	count, err := catalog.New(database).Seed(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("SUCCESS: Seeded %d products.", count)
}
