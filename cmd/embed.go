package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/embedder"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate AI embeddings for new products",
	Long:  `Finds products in the database that are missing semantic vectors and generates them using the Gemini API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEmbed()
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed() {
	ctx := context.Background()

	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	aiClient, err := ai.NewClient(ctx, appCfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}
	defer aiClient.Close()

	if err := embedder.Run(ctx, database, aiClient); err != nil {
		log.Fatalf("Embedding process failed: %v", err)
	}
}
