package chatbot

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/db"
)

// newTestEngine builds an engine over a seeded in-memory database. The nil
// AI client makes every reply deterministic.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.CreateSchema(database); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	cat := catalog.New(database)
	if _, err := cat.Seed(context.Background()); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	return NewEngine(cat, nil)
}

func TestConversationFlow(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	// Turn 1: vague greeting. The engine should ask for a category.
	reply, err := engine.Process(ctx, "", "hi, I want to buy something")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a minted session id")
	}
	if reply.Type != TypeClarification {
		t.Fatalf("expected clarification, got %q", reply.Type)
	}
	if !strings.Contains(reply.Message, "What type of product") {
		t.Errorf("expected category question, got %q", reply.Message)
	}
	sessionID := reply.SessionID

	// Turn 2: category only. The engine should ask for the budget.
	reply, err = engine.Process(ctx, sessionID, "a gaming laptop")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeClarification {
		t.Fatalf("expected clarification, got %q", reply.Type)
	}
	if reply.Requirements.Category != "gaming laptops" {
		t.Errorf("category not merged: %+v", reply.Requirements)
	}
	if !strings.Contains(reply.Message, "budget") {
		t.Errorf("expected budget question, got %q", reply.Message)
	}

	// Turn 3: budget. Now both requirements are known, so we get results.
	reply, err = engine.Process(ctx, sessionID, "under 60000")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeRecommendations {
		t.Fatalf("expected recommendations, got %q (%s)", reply.Type, reply.Message)
	}
	if !reply.SearchReady {
		t.Error("expected SearchReady to be set")
	}
	if len(reply.Recommendations) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	for _, rec := range reply.Recommendations {
		if rec.Product.Category != "gaming laptops" {
			t.Errorf("wrong category recommended: %s", rec.Product.Category)
		}
		if rec.Product.Price > 60000 {
			t.Errorf("over-budget product recommended: %s at %.0f", rec.Product.Name, rec.Product.Price)
		}
	}

	// The session keeps accumulating state across turns.
	conv := engine.Sessions().Get(sessionID)
	if conv == nil {
		t.Fatal("conversation missing from store")
	}
	if len(conv.History) != 3 {
		t.Errorf("expected 3 exchanges, got %d", len(conv.History))
	}
}

func TestSingleMessageToRecommendations(t *testing.T) {
	engine := newTestEngine(t)

	reply, err := engine.Process(context.Background(), "", "I need a smartwatch under ₹6000 for fitness")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeRecommendations {
		t.Fatalf("expected recommendations, got %q (%s)", reply.Type, reply.Message)
	}
	for _, rec := range reply.Recommendations {
		if rec.Product.Category != "smartwatches" {
			t.Errorf("wrong category: %s", rec.Product.Category)
		}
	}
}

func TestContradictionPausesSearch(t *testing.T) {
	engine := newTestEngine(t)

	reply, err := engine.Process(context.Background(), "", "I want a gaming laptop under 30000")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeContradiction {
		t.Fatalf("expected contradiction, got %q", reply.Type)
	}
	if len(reply.Suggestions) == 0 {
		t.Error("expected resolution suggestions")
	}
	if len(reply.Recommendations) != 0 {
		t.Error("search should not run while a contradiction is open")
	}

	// Raising the budget resolves it and search proceeds.
	reply, err = engine.Process(context.Background(), reply.SessionID, "60000")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeRecommendations {
		t.Fatalf("expected recommendations after resolution, got %q (%s)", reply.Type, reply.Message)
	}
}

func TestEducationShownOnceForBeginners(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	reply, err := engine.Process(ctx, "", "I'm new to gaming laptops, where do I start?")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeEducation {
		t.Fatalf("expected education, got %q", reply.Type)
	}
	sessionID := reply.SessionID

	// Second incomplete message should fall back to clarification, not repeat
	// the primer.
	reply, err = engine.Process(ctx, sessionID, "ok, got it")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeClarification {
		t.Fatalf("expected clarification, got %q", reply.Type)
	}
}

func TestNoResultsReply(t *testing.T) {
	engine := newTestEngine(t)

	// Nothing in the sample catalog matches this category/budget combination.
	reply, err := engine.Process(context.Background(), "", "a smartwatch under 2000")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeNoResults {
		t.Fatalf("expected no_results, got %q (%s)", reply.Type, reply.Message)
	}
	if !strings.Contains(reply.Message, "trouble finding") {
		t.Errorf("unexpected no-results message: %q", reply.Message)
	}
}

func TestAvoidedBrandExcluded(t *testing.T) {
	engine := newTestEngine(t)

	reply, err := engine.Process(context.Background(), "", "gaming laptop under 60000, I don't like HP")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Type != TypeRecommendations {
		t.Fatalf("expected recommendations, got %q (%s)", reply.Type, reply.Message)
	}
	for _, rec := range reply.Recommendations {
		if strings.EqualFold(rec.Product.Brand, "hp") {
			t.Errorf("avoided brand recommended: %s", rec.Product.Name)
		}
	}
}

func TestConcurrentMessagesOneSession(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	// Simultaneous requests on the same session id must serialize; each turn
	// appends exactly one exchange and none of the state is lost.
	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Process(ctx, "shared", "hello there"); err != nil {
				t.Errorf("Process failed: %v", err)
			}
		}()
	}
	wg.Wait()

	conv := engine.Sessions().Get("shared")
	if conv == nil {
		t.Fatal("conversation missing from store")
	}
	if len(conv.History) != turns {
		t.Errorf("expected %d exchanges, got %d", turns, len(conv.History))
	}
	if engine.Sessions().Len() != 1 {
		t.Errorf("expected a single session, got %d", engine.Sessions().Len())
	}
}

func TestSessionReset(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	reply, _ := engine.Process(ctx, "", "a gaming laptop")
	sessionID := reply.SessionID
	if engine.Sessions().Len() != 1 {
		t.Fatalf("expected 1 session, got %d", engine.Sessions().Len())
	}

	engine.Sessions().Reset(sessionID)
	if engine.Sessions().Get(sessionID) != nil {
		t.Error("session survived reset")
	}

	// Same id after reset starts a blank conversation.
	reply, err := engine.Process(ctx, sessionID, "under 50000")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if reply.Requirements.Category != "" {
		t.Errorf("old category survived reset: %+v", reply.Requirements)
	}
	if reply.Type != TypeClarification {
		t.Errorf("expected clarification on fresh session, got %q", reply.Type)
	}
}
