// Package concierge is the embedded SDK for the smart-mall semantic
// catalog: connect to Redis, sync the catalog, and run the same
// retrieval the HTTP service uses, inside your own Go program.
package concierge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/db"
	dbRedis "github.com/smart-mall/concierge/internal/db/redis"
	catalogrepo "github.com/smart-mall/concierge/internal/repository/catalog"
	healthuc "github.com/smart-mall/concierge/internal/usecase/health"
	retrievaluc "github.com/smart-mall/concierge/internal/usecase/retrieval"
	syncuc "github.com/smart-mall/concierge/internal/usecase/sync"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the concierge SDK entry point.
type Client struct {
	store     db.Store
	retrieval *retrievaluc.Service
	sync      *syncuc.Service
	health    *healthuc.Service
}

type clientConfig struct {
	addrs          []string
	password       string
	embedder       Embedder
	topK           int
	scoreThreshold float64
	hnswM          int
	hnswEFConstr   int
	logger         *zap.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// WithRedis sets the Redis connection.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithEmbedder sets the embedding provider. Required for search and sync.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithRetrievalDefaults overrides top-k and the score threshold.
func WithRetrievalDefaults(topK int, scoreThreshold float64) Option {
	return func(c *clientConfig) {
		c.topK = topK
		c.scoreThreshold = scoreThreshold
	}
}

// WithHNSW overrides HNSW index build parameters.
func WithHNSW(m, efConstruction int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstr = efConstruction
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// New creates a concierge Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("concierge: database address required (use WithRedis)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.embedder == nil {
		cfg.embedder = &noopEmbedder{}
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("concierge: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("concierge: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	repo := catalogrepo.New(store)
	if cfg.hnswM > 0 || cfg.hnswEFConstr > 0 {
		repo = repo.WithHNSW(catalogrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstr,
		})
	}

	adapter := &embedderAdapter{inner: cfg.embedder}

	retrieval := retrievaluc.NewService(adapter, repo, cfg.logger)
	if cfg.topK > 0 || cfg.scoreThreshold > 0 {
		retrieval = retrieval.WithDefaults(cfg.topK, cfg.scoreThreshold)
	}

	return &Client{
		store:     store,
		retrieval: retrieval,
		sync:      syncuc.NewService(repo, adapter, cfg.logger),
		health:    healthuc.New(repo, nil),
	}
}

// SetDegraded toggles degraded mode: searches answer fixed fallback
// payloads without touching the embedder or the index.
func (c *Client) SetDegraded(on bool) {
	c.retrieval.SetDegraded(on)
}

// HealthReport is the SDK view of the aggregated health check.
type HealthReport struct {
	Status    string
	Checks    map[string]string
	LatencyMS int64
}

// Health checks database connectivity and collection presence.
func (c *Client) Health(ctx context.Context) HealthReport {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthReport{
		Status:    string(report.Status),
		Checks:    checks,
		LatencyMS: report.LatencyMS,
	}
}

// Close releases the database connection.
func (c *Client) Close() {
	c.store.Close()
}
