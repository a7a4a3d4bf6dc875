package web

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/cache"
	"smartshop-labs/smartshop/internal/chatbot"
	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/searcher"
)

// Helper for templates
var funcMap = template.FuncMap{
	"mul": func(a, b float32) float32 { return a * b },
	"inr": func(v float64) string {
		return fmt.Sprintf("₹%s", strconv.FormatFloat(v, 'f', 0, 64))
	},
}

// Server wires the chat engine, catalog database, semantic search, and the
// optional Redis cache behind one HTTP handler.
type Server struct {
	database *sql.DB
	engine   *chatbot.Engine
	ai       *ai.Client
	cache    *cache.Client
	logger   *slog.Logger

	homeTmpl   *template.Template
	chatTmpl   *template.Template
	searchTmpl *template.Template
}

func NewServer(database *sql.DB, engine *chatbot.Engine, aiClient *ai.Client, cacheClient *cache.Client, logger *slog.Logger) (*Server, error) {
	// Pre-build templates separately to avoid block collisions.
	base := template.New("base.html").Funcs(funcMap)
	base, err := base.ParseFS(GetTemplatesFS(), "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	homeTmpl, _ := base.Clone()
	homeTmpl, err = homeTmpl.ParseFS(GetTemplatesFS(), "templates/home.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse home template: %w", err)
	}

	chatTmpl, _ := base.Clone()
	chatTmpl, err = chatTmpl.ParseFS(GetTemplatesFS(), "templates/chat.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat template: %w", err)
	}

	searchTmpl, _ := base.Clone()
	searchTmpl, err = searchTmpl.ParseFS(GetTemplatesFS(), "templates/search.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse search template: %w", err)
	}

	return &Server{
		database:   database,
		engine:     engine,
		ai:         aiClient,
		cache:      cacheClient,
		logger:     logger,
		homeTmpl:   homeTmpl,
		chatTmpl:   chatTmpl,
		searchTmpl: searchTmpl,
	}, nil
}

// Handler returns the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/chat", s.handleChatPage)
	mux.HandleFunc("/search", s.handleSearchPage)
	mux.HandleFunc("/api/chat", s.handleAPIChat)
	mux.HandleFunc("/api/chat/reset", s.handleAPIChatReset)
	mux.HandleFunc("/api/products", s.handleAPIProducts)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	return withRequestID(withObservability(s.logger, mux))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	products, err := db.GetProducts(s.database, "", 0)
	if err != nil {
		s.logger.Error("home_load_failed", "err", err)
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}

	if err := s.homeTmpl.ExecuteTemplate(w, "base.html", products); err != nil {
		s.logger.Error("template_error", "err", err)
	}
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	if err := s.chatTmpl.ExecuteTemplate(w, "base.html", nil); err != nil {
		s.logger.Error("template_error", "err", err)
	}
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := struct {
		Query       string
		Unavailable bool
		Results     []searcher.Result
	}{Query: query}

	// Semantic search needs an embedding client. Without one the page says
	// so rather than erroring out.
	if s.ai == nil {
		data.Unavailable = true
	} else {
		results, err := searcher.Perform(r.Context(), s.database, s.ai, query)
		if err != nil {
			s.logger.Error("search_failed", "query", query, "err", err)
			http.Error(w, "Search failed", http.StatusInternalServerError)
			return
		}

		// Filter low-scoring results before rendering. 0.2 = 20% match threshold.
		for _, res := range results {
			if res.Score >= 0.2 {
				data.Results = append(data.Results, res)
			}
		}
	}

	if err := s.searchTmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger.Error("template_error", "err", err)
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleAPIChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if s.cache.IsRateLimited(r.Context(), clientIP(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded", "try again in a minute")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if req.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	reply, err := s.engine.Process(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("chat_failed", "session_id", req.SessionID, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "chat processing failed", "")
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleAPIChatReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	s.engine.Sessions().Reset(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "session_id": req.SessionID})
}

func (s *Server) handleAPIProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	budget := 0.0
	if v := r.URL.Query().Get("budget"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid budget", err.Error())
			return
		}
		budget = p
	}

	cacheKey := fmt.Sprintf("products:%s:%g", category, budget)
	if payload, err := s.cache.Get(r.Context(), cacheKey); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}

	products, err := db.GetProducts(s.database, category, budget)
	if err != nil {
		s.logger.Error("products_load_failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load products", "")
		return
	}

	payload, err := json.Marshal(products)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode products", "")
		return
	}
	if err := s.cache.Set(r.Context(), cacheKey, payload, 5*time.Minute); err != nil {
		s.logger.Warn("cache_write_failed", "key", cacheKey, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.database.PingContext(r.Context()); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "database unreachable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
