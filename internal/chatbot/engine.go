// Package chatbot implements the conversational requirement-gathering engine:
// it mines free text for what the user wants, asks for whatever is missing,
// flags contradictory asks, and hands complete requirements to the matcher.
package chatbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/matcher"
	"smartshop-labs/smartshop/internal/models"
	"smartshop-labs/smartshop/internal/searcher"
)

var logger = log.New(os.Stdout, "CHATBOT: ", log.LstdFlags)

// Reply types, used by the web UI to pick a rendering.
const (
	TypeClarification   = "clarification"
	TypeContradiction   = "contradiction"
	TypeEducation       = "education"
	TypeRecommendations = "recommendations"
	TypeNoResults       = "no_results"
)

// Reply is the engine's answer to one user message.
type Reply struct {
	SessionID       string                  `json:"session_id"`
	Message         string                  `json:"message"`
	Type            string                  `json:"type"`
	Requirements    models.Requirements     `json:"requirements"`
	SearchReady     bool                    `json:"search_ready"`
	Suggestions     []string                `json:"suggestions,omitempty"`
	Recommendations []models.Recommendation `json:"recommendations,omitempty"`
}

// Engine drives conversations. The AI client is optional: with a nil client
// every reply uses the deterministic rule-based wording.
type Engine struct {
	sessions *Store
	catalog  *catalog.Service
	ai       *ai.Client
}

func NewEngine(cat *catalog.Service, aiClient *ai.Client) *Engine {
	return &Engine{
		sessions: NewStore(),
		catalog:  cat,
		ai:       aiClient,
	}
}

// Sessions exposes the session store (for reset endpoints and tests).
func (e *Engine) Sessions() *Store {
	return e.sessions
}

// Process handles one user message: extract, merge, check contradictions,
// then either clarify or search and recommend.
func (e *Engine) Process(ctx context.Context, sessionID, message string) (Reply, error) {
	conv := e.sessions.GetOrCreate(sessionID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	extracted := Extract(message)
	conv.History = append(conv.History, Exchange{At: time.Now(), Message: message, Extracted: extracted})
	conv.Requirements.Merge(extracted)
	req := conv.Requirements

	logger.Printf("session=%s extracted=%+v merged=%+v", conv.SessionID, extracted, req)

	if contradictions := DetectContradictions(req); len(contradictions) > 0 {
		// One at a time; search waits for the user's answer.
		c := contradictions[0]
		conv.Contradictions++
		return Reply{
			SessionID:    conv.SessionID,
			Message:      contradictionMessage(c),
			Type:         TypeContradiction,
			Requirements: req,
			Suggestions:  c.Suggestions,
		}, nil
	}

	if req.ExpertiseLevel == "beginner" && !conv.EducationShown && !req.Ready() {
		if lesson, ok := educationFor(req.Category); ok {
			conv.EducationShown = true
			return Reply{
				SessionID:    conv.SessionID,
				Message:      lesson,
				Type:         TypeEducation,
				Requirements: req,
			}, nil
		}
	}

	if req.Ready() {
		return e.recommend(ctx, conv)
	}
	return e.clarify(ctx, conv)
}

func (e *Engine) clarify(ctx context.Context, conv *Conversation) (Reply, error) {
	req := conv.Requirements

	var fallback string
	switch {
	case req.Category == "":
		fallback = "I'd be happy to help you find the perfect product! What type of product are you " +
			"looking for? (e.g., laptop, smartphone, headphones, smartwatch)"
	case req.Budget == 0:
		fallback = fmt.Sprintf("Great! You're looking for %s. What's your budget range for this purchase?", req.Category)
	default:
		fallback = "Perfect! I have your basic requirements. Is there anything specific you'd like me " +
			"to know about your needs or preferences?"
	}
	conv.Clarifications = append(conv.Clarifications, fallback)

	msg := e.phrase(ctx, req, fallback)
	return Reply{
		SessionID:    conv.SessionID,
		Message:      msg,
		Type:         TypeClarification,
		Requirements: req,
	}, nil
}

func (e *Engine) recommend(ctx context.Context, conv *Conversation) (Reply, error) {
	req := conv.Requirements

	entries, err := e.catalog.Search(ctx, req.Category, float64(req.Budget))
	if err != nil {
		return Reply{}, fmt.Errorf("product search failed: %w", err)
	}

	recs := matcher.Rank(entries, req)
	if len(recs) > 0 && e.ai != nil {
		// Blend in semantic affinity when embeddings are available. A miss
		// (no vectors yet, API failure) just keeps the rule-based order.
		if scores, err := searcher.Scores(ctx, e.catalog.DB(), e.ai, req.Summary()); err == nil {
			recs = matcher.Rerank(recs, scores)
		} else {
			logger.Printf("semantic rerank skipped: %v", err)
		}
	}
	if len(recs) == 0 {
		return Reply{
			SessionID: conv.SessionID,
			Message: fmt.Sprintf("I'm having trouble finding %s under ₹%d. Would you like to raise "+
				"the budget or adjust your requirements?", req.Category, req.Budget),
			Type:         TypeNoResults,
			Requirements: req,
			SearchReady:  true,
		}, nil
	}

	fallback := fmt.Sprintf("Perfect! I found %d excellent options that match your needs. "+
		"Here are my top recommendations:", len(recs))
	msg := e.phrase(ctx, req, fallback)

	return Reply{
		SessionID:       conv.SessionID,
		Message:         msg,
		Type:            TypeRecommendations,
		Requirements:    req,
		SearchReady:     true,
		Recommendations: recs,
	}, nil
}

// phrase asks the AI to reword the canned reply in a natural tone. Any
// failure, including running without an API key, falls back to the canned
// text so the conversation never stalls.
func (e *Engine) phrase(ctx context.Context, req models.Requirements, fallback string) string {
	if e.ai == nil {
		return fallback
	}
	prompt := fmt.Sprintf(`You are SmartShop Assistant, a helpful product discovery chatbot.

%s

Rephrase the following reply in one or two friendly sentences. Never ask about
information already listed above, never ask more than one question, and keep
any prices exactly as written.

Reply: %s`, req.Summary(), fallback)

	msg, err := e.ai.Reply(ctx, prompt)
	if err != nil {
		logger.Printf("AI phrasing failed, using fallback: %v", err)
		return fallback
	}
	return msg
}

func contradictionMessage(c Contradiction) string {
	msg := "I notice there might be a conflict in your requirements.\n\n" + c.Message + "\n\nPossible solutions:\n"
	for i, s := range c.Suggestions {
		msg += fmt.Sprintf("%d. %s\n", i+1, s)
	}
	msg += "\nWhich approach would you prefer?"
	return msg
}

// Short explainers shown once to users who say they are new to a category.
var educationalContent = map[string]string{
	"gaming laptops": "A quick primer before we continue: the GPU (graphics card) matters most for gaming - " +
		"an RTX 3060 outperforms a GTX 1650. A higher refresh rate display (120Hz, 144Hz) makes fast games " +
		"look smoother, and good cooling prevents the laptop from slowing down when it gets hot.",
	"smartwatches": "A quick primer before we continue: AMOLED displays are brighter and easier to read " +
		"outdoors, battery life ranges from 1-2 days (full smartwatches) to 2 weeks (fitness-focused ones), " +
		"and water resistance ratings like 5ATM mean it survives swimming.",
}

func educationFor(category string) (string, bool) {
	lesson, ok := educationalContent[category]
	return lesson, ok
}
