package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/chatbot"
	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/db"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the shopping assistant in the terminal",
	Long: `Starts an interactive session with the assistant. Describe what you want
to buy and answer its questions; once it knows the category and budget it
shows ranked recommendations. Type 'reset' to start over, 'quit' to exit.

Works without GEMINI_API_KEY (replies use the built-in wording).`,
	Run: func(cmd *cobra.Command, args []string) {
		runChat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat() {
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
		if !errors.Is(err, ai.ErrNoAPIKey) {
			log.Fatalf("Failed to initialize AI: %v", err)
		}
		log.Println("GEMINI_API_KEY not set. Running with built-in replies.")
	}
	defer aiClient.Close()

	engine := chatbot.NewEngine(catalog.New(database), aiClient)
	sessionID := ""

	fmt.Println("🛒 SmartShop Assistant. What are you shopping for today?")
	fmt.Println("   (type 'reset' to start over, 'quit' to exit)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "exit":
			fmt.Println("Happy shopping! 👋")
			return
		case "reset":
			engine.Sessions().Reset(sessionID)
			sessionID = ""
			fmt.Println("Assistant: Fresh start! What are you shopping for?")
			continue
		}

		reply, err := engine.Process(ctx, sessionID, line)
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}
		sessionID = reply.SessionID

		fmt.Printf("\nAssistant: %s\n", reply.Message)
		printRecommendations(reply)
	}
}

func printRecommendations(reply chatbot.Reply) {
	for i, rec := range reply.Recommendations {
		fmt.Printf("\n#%d %s (%s)\n", i+1, rec.Product.Name, rec.Product.Brand)
		fmt.Printf("   ₹%.0f | match %.1f/5 | confidence %.0f%%\n",
			rec.Product.Price, rec.MatchScore, rec.Confidence*100)
		for _, r := range rec.Reasoning {
			fmt.Printf("   ✅ %s\n", r)
		}
		for _, t := range rec.TradeOffs {
			fmt.Printf("   ⚠️  %s\n", t)
		}
		for _, d := range rec.DealHighlights {
			fmt.Printf("   💰 %s\n", d)
		}
		if rec.Savings > 0 {
			fmt.Printf("   💵 Save ₹%.0f vs original price\n", rec.Savings)
		}
	}
}
