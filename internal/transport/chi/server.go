// Package chi exposes the concierge over HTTP: the chat endpoints, the
// semantic search endpoints, the catalog sync endpoints, health, and
// Prometheus metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/catalog"
	logpkg "github.com/smart-mall/concierge/internal/logger"
	"github.com/smart-mall/concierge/internal/repository/seed"
	agentuc "github.com/smart-mall/concierge/internal/usecase/agent"
	healthuc "github.com/smart-mall/concierge/internal/usecase/health"
	retrievaluc "github.com/smart-mall/concierge/internal/usecase/retrieval"
	syncuc "github.com/smart-mall/concierge/internal/usecase/sync"
)

// Error response codes returned to API clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnknownAction    = "unknown_action"
	codeNotFound         = "not_found"
	codeProviderError    = "provider_error"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the HTTP API on a chi router.
type Server struct {
	agent         *agentuc.Service
	retrieval     *retrievaluc.Service
	sync          *syncuc.Service
	health        *healthuc.Service
	dataset       *seed.Dataset
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	agent *agentuc.Service,
	retrieval *retrievaluc.Service,
	sync *syncuc.Service,
	health *healthuc.Service,
	dataset *seed.Dataset,
	logger *zap.Logger,
) *Server {
	s := &Server{
		agent:     agent,
		retrieval: retrieval,
		sync:      sync,
		health:    health,
		dataset:   dataset,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCollectionNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnknownTool, http.StatusBadRequest, codeUnknownAction),
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chirouter.Router) {
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/chat", s.Chat)
		r.Post("/chat/confirm", s.ChatConfirm)
		r.Post("/search/stores", s.SearchStores)
		r.Post("/search/products", s.SearchProducts)
		r.Post("/navigate", s.Navigate)
		r.Post("/sync", s.Sync)
		r.Get("/sync/history", s.SyncHistory)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ChatRequest is one user turn: text, optionally with an image to analyze.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Chat handles POST /api/v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "session_id is required")
		return
	}
	if req.Message == "" && req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "message or image_url is required")
		return
	}

	outcome, err := s.agent.Process(r.Context(), req.SessionID, req.Message, req.ImageURL)
	if err != nil {
		// Outcome already carries a user-safe message for provider and
		// loop failures. Log, then return it as a normal turn result.
		logpkg.FromContext(r.Context()).Warn("chat turn failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusOK, outcome)
}

// ConfirmRequest resolves a previously suspended gated tool call.
type ConfirmRequest struct {
	SessionID string         `json:"session_id"`
	Action    string         `json:"action"`
	Args      map[string]any `json:"args,omitempty"`
	Confirmed bool           `json:"confirmed"`
}

// ChatConfirm handles POST /api/v1/chat/confirm.
func (s *Server) ChatConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "session_id is required")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "action is required")
		return
	}

	outcome, err := s.agent.Confirm(r.Context(), req.SessionID, req.Action, req.Args, req.Confirmed)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTool) {
			s.handleDomainError(w, err)
			return
		}
		logpkg.FromContext(r.Context()).Warn("confirm failed",
			zap.String("session_id", req.SessionID),
			zap.String("action", req.Action),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusOK, outcome)
}

// StoreSearchRequest is a semantic store query with optional filters.
type StoreSearchRequest struct {
	Query          string  `json:"query"`
	Category       string  `json:"category,omitempty"`
	Floor          *int    `json:"floor,omitempty"`
	TopK           int     `json:"top_k,omitempty"`
	ScoreThreshold float64 `json:"score_threshold,omitempty"`
}

// StoreSearchResponse lists store hits in descending score order.
type StoreSearchResponse struct {
	Query   string                 `json:"query"`
	Total   int                    `json:"total"`
	Results []retrievaluc.StoreHit `json:"results"`
}

// SearchStores handles POST /api/v1/search/stores.
func (s *Server) SearchStores(w http.ResponseWriter, r *http.Request) {
	var req StoreSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	hits, err := s.retrieval.SearchStores(r.Context(), req.Query, retrievaluc.StoreQuery{
		Category: req.Category,
		Floor:    req.Floor,
		TopK:     req.TopK,
		MinScore: req.ScoreThreshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if hits == nil {
		hits = []retrievaluc.StoreHit{}
	}

	writeJSON(w, http.StatusOK, StoreSearchResponse{
		Query:   req.Query,
		Total:   len(hits),
		Results: hits,
	})
}

// ProductSearchRequest is a semantic product query with optional
// brand, category and price filters.
type ProductSearchRequest struct {
	Query          string   `json:"query"`
	Category       string   `json:"category,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
	ScoreThreshold float64  `json:"score_threshold,omitempty"`
}

// ProductSearchResponse lists product hits in descending score order.
type ProductSearchResponse struct {
	Query   string                   `json:"query"`
	Total   int                      `json:"total"`
	Results []retrievaluc.ProductHit `json:"results"`
}

// SearchProducts handles POST /api/v1/search/products.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var req ProductSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	hits, err := s.retrieval.SearchProducts(r.Context(), req.Query, retrievaluc.ProductQuery{
		Category: req.Category,
		Brand:    req.Brand,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		TopK:     req.TopK,
		MinScore: req.ScoreThreshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if hits == nil {
		hits = []retrievaluc.ProductHit{}
	}

	writeJSON(w, http.StatusOK, ProductSearchResponse{
		Query:   req.Query,
		Total:   len(hits),
		Results: hits,
	})
}

// NavigateRequest asks for the location of a store by name.
type NavigateRequest struct {
	StoreName string `json:"store_name"`
}

// Navigate handles POST /api/v1/navigate. The response body is the
// top-1 store match with a user-facing message, found or not.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.StoreName == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "store_name is required")
		return
	}

	res, err := s.retrieval.NavigateToStore(r.Context(), req.StoreName)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// SyncRequest names the collections to rebuild. Empty means all.
type SyncRequest struct {
	Collections []string `json:"collections,omitempty"`
}

// SyncResponse reports per-collection sync results.
type SyncResponse struct {
	Results []syncuc.Result `json:"results"`
}

// Sync handles POST /api/v1/sync. Rebuilds the named collections from
// the seed dataset.
func (s *Server) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	names := req.Collections
	if len(names) == 0 {
		for _, col := range catalog.All() {
			names = append(names, col.Name)
		}
	}

	results := make([]syncuc.Result, 0, len(names))
	for _, name := range names {
		col, ok := catalog.ByName(name)
		if !ok {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "unknown collection: "+name)
			return
		}

		res, err := s.sync.FullSync(r.Context(), col, s.seedDocs(col))
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		results = append(results, res)
	}

	writeJSON(w, http.StatusOK, SyncResponse{Results: results})
}

func (s *Server) seedDocs(col catalog.Collection) []catalog.Document {
	switch col.Name {
	case catalog.Stores.Name:
		return syncuc.AsDocs(s.dataset.Stores)
	case catalog.Products.Name:
		return syncuc.AsDocs(s.dataset.Products)
	case catalog.Locations.Name:
		return syncuc.AsDocs(s.dataset.Locations)
	}
	return nil
}

// SyncHistoryResponse lists recent sync runs, newest last.
type SyncHistoryResponse struct {
	Items []syncuc.Result `json:"items"`
	Total int             `json:"total"`
}

// SyncHistory handles GET /api/v1/sync/history.
func (s *Server) SyncHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items := s.sync.History(limit)
	writeJSON(w, http.StatusOK, SyncHistoryResponse{
		Items: items,
		Total: len(items),
	})
}

// HealthCheck handles GET /health. Degraded still answers 200: the
// concierge keeps serving fallback results without the vector index.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCollectionNotFound,
		domain.ErrEmptyInput,
		domain.ErrEmbedding,
		domain.ErrProvider,
		domain.ErrLoopExhausted,
		domain.ErrVectorDimMismatch,
		domain.ErrUnknownTool,
		domain.ErrProductNotFound,
		domain.ErrStoreNotFound,
		domain.ErrCartEmpty,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
