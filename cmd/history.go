package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear cached search queries",
	Long: `Every semantic search query gets its embedding cached in SQLite so repeat
searches skip the API call. This command inspects and prunes that cache.

Examples:
  smartshop history
  smartshop history clear "budget gaming laptop"
  smartshop history clear all`,
	Run: func(cmd *cobra.Command, args []string) {
		handleHistory(args)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func handleHistory(args []string) {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	if len(args) > 0 && strings.ToLower(args[0]) == "clear" {
		if len(args) < 2 {
			log.Fatal("Usage: smartshop history clear \"query text\" (or 'all')")
		}
		target := strings.ToLower(strings.TrimSpace(strings.Join(args[1:], " ")))
		var affected int64
		if target == "all" {
			affected, err = db.ClearAllSearchHistory(database)
		} else {
			affected, err = db.ClearSearchHistory(database, target)
		}
		if err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Printf("🗑️ Done. Removed %d entry(s) from cache.\n", affected)
		return
	}

	entries, err := db.ListSearchHistory(database)
	if err != nil {
		log.Fatalf("Failed to list history: %v", err)
	}
	fmt.Println("📜 Search History (Cached Queries)")
	fmt.Println("------------------------------------")
	if len(entries) == 0 {
		fmt.Println("No history found.")
		return
	}
	for _, e := range entries {
		fmt.Printf("[%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.QueryText)
	}
}
