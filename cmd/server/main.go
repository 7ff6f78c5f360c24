// Command server exposes the expense validation engine over HTTP.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"expensecheck/batch"
	"expensecheck/exchange"
	"expensecheck/expense"
	"expensecheck/internal/config"
	"expensecheck/internal/logger"
	"expensecheck/policy"
	"expensecheck/rules"
	"expensecheck/validator"
)

// Server wires the policy store, the rate source and the dynamically
// registered expression rules behind a chi router.
type Server struct {
	policies policy.Store
	rates    exchange.RateClient
	router   *chi.Mux

	mu          sync.RWMutex
	customRules map[string]*rules.ExpressionRule
	ruleOrder   []string
}

// NewServer creates the HTTP server over the given collaborators.
func NewServer(policies policy.Store, rates exchange.RateClient) *Server {
	s := &Server{
		policies:    policies,
		rates:       rates,
		customRules: make(map[string]*rules.ExpressionRule),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)

	r.Post("/api/v1/validate", s.handleValidate)
	r.Post("/api/v1/batch", s.handleBatch)

	r.Route("/api/v1/policies", func(r chi.Router) {
		r.Get("/", s.handleListPolicies)
		r.Get("/{policyID}", s.handleGetPolicy)
		r.Put("/{policyID}", s.handlePutPolicy)
	})

	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)
		r.Delete("/{ruleID}", s.handleDeleteRule)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// validatorFor builds a validator for one policy: the policy's rules
// followed by the registered expression rules, in registration order.
func (s *Server) validatorFor(p *policy.Policy) *validator.Validator {
	ruleSet := rules.ForPolicy(p)

	s.mu.RLock()
	for _, id := range s.ruleOrder {
		ruleSet = append(ruleSet, s.customRules[id])
	}
	s.mu.RUnlock()

	return validator.New(ruleSet, &rules.Context{
		BaseCurrency: p.BaseCurrency,
		Rates:        s.rates,
	})
}

// policyFor resolves the policy named in a request; an empty ID selects
// the default policy.
func (s *Server) policyFor(policyID string) (*policy.Policy, error) {
	if policyID == "" {
		policyID = "default"
	}
	return s.policies.Get(policyID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	policies, err := s.policies.List()
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	s.mu.RLock()
	ruleCount := len(s.customRules)
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Policies: len(policies),
		Rules:    ruleCount,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Expense.ID == "" {
		respondError(w, http.StatusBadRequest, "expense.id is required", nil)
		return
	}

	p, err := s.policyFor(req.PolicyID)
	if err != nil {
		respondError(w, http.StatusNotFound, "policy not found", err)
		return
	}

	startTime := time.Now()
	verdict := s.validatorFor(p).Validate(r.Context(), req.Expense, req.Employee)

	respondJSON(w, http.StatusOK, ValidateResponse{
		Verdict:        verdict,
		EvaluationTime: time.Since(startTime).String(),
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	p, err := s.policyFor(r.URL.Query().Get("policyId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "policy not found", err)
		return
	}

	startTime := time.Now()
	analyzer := batch.NewAnalyzer(s.validatorFor(p))
	result, err := analyzer.Analyze(r.Context(), r.Body)
	if err != nil {
		var recordErr *batch.RecordError
		if errors.As(err, &recordErr) {
			respondError(w, http.StatusBadRequest, "malformed record", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "batch analysis failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BatchResponse{
		Result:         result,
		EvaluationTime: time.Since(startTime).String(),
	})
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := s.policies.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list policies", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"policies": policies})
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := s.policies.Get(chi.URLParam(r, "policyID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "policy not found", err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	var p policy.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	p.ID = chi.URLParam(r, "policyID")
	if err := s.policies.Save(&p); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save policy", err)
		return
	}

	respondJSON(w, http.StatusOK, &p)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]RuleResponse, 0, len(s.ruleOrder))
	for _, id := range s.ruleOrder {
		rule := s.customRules[id]
		list = append(list, RuleResponse{ID: rule.ID, Name: rule.Name, Expression: rule.Expression})
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, RulesListResponse{Rules: list})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Name == "" || req.Expression == "" {
		respondError(w, http.StatusBadRequest, "name and expression are required", nil)
		return
	}

	decision, err := parseDecision(req.Decision)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid decision", err)
		return
	}

	id := uuid.NewString()
	rule, err := rules.NewExpressionRule(id, req.Name, req.Expression, decision, expense.Alert{
		Code:    req.AlertCode,
		Message: req.AlertMessage,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to compile rule", err)
		return
	}

	s.mu.Lock()
	s.customRules[id] = rule
	s.ruleOrder = append(s.ruleOrder, id)
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, RuleResponse{ID: id, Name: req.Name, Expression: req.Expression})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customRules[ruleID]; !exists {
		respondError(w, http.StatusNotFound, "rule not found", nil)
		return
	}

	delete(s.customRules, ruleID)
	for i, id := range s.ruleOrder {
		if id == ruleID {
			s.ruleOrder = append(s.ruleOrder[:i], s.ruleOrder[i+1:]...)
			break
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseDecision maps a request decision string to its domain value. A
// blank decision defaults to rejected.
func parseDecision(raw string) (expense.Decision, error) {
	switch expense.Decision(strings.ToLower(raw)) {
	case expense.Approved:
		return expense.Approved, nil
	case expense.Pending:
		return expense.Pending, nil
	case expense.Rejected, "":
		return expense.Rejected, nil
	default:
		return "", fmt.Errorf("unknown decision %q", raw)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

// newPolicyStore opens the Postgres store when a database URL is
// configured, falling back to the in-memory store. Either way the
// default policy is seeded if absent.
func newPolicyStore(cfg *config.Config) (policy.Store, *sql.DB, error) {
	var store policy.Store
	var db *sql.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		store = policy.NewPostgresStore(db)
	} else {
		store = policy.NewInMemoryStore()
	}

	if _, err := store.Get("default"); err != nil {
		if err := store.Save(policy.Default()); err != nil {
			if db != nil {
				db.Close()
			}
			return nil, nil, fmt.Errorf("seed default policy: %w", err)
		}
	}

	return store, db, nil
}

func newRateClient(cfg *config.Config) (exchange.RateClient, error) {
	if cfg.Exchange.Offline {
		return exchange.NewOfflineClient(), nil
	}

	if cfg.Exchange.APIKey == "" {
		return nil, fmt.Errorf("exchange.api_key is required unless exchange.offline is set")
	}

	clientCfg := exchange.DefaultClientConfig(cfg.Exchange.APIKey)
	clientCfg.Timeout = cfg.Exchange.Timeout
	clientCfg.CacheEnabled = cfg.Exchange.CacheEnabled

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		clientCfg.Cache = exchange.NewRedisRateCache(rdb, cfg.Redis.TTL)
	}

	return exchange.NewClient(clientCfg), nil
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rates, err := newRateClient(cfg)
	if err != nil {
		logger.Error("failed to build rate client", "error", err)
		os.Exit(1)
	}

	store, db, err := newPolicyStore(cfg)
	if err != nil {
		logger.Error("failed to build policy store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	server := NewServer(store, rates)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
