// Package sync pushes catalog documents into the vector index: full
// rebuilds and incremental upserts/deletes, with a history of recent runs.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain/catalog"
)

// Op selects the incremental sync operation.
type Op string

const (
	// OpUpsert replaces documents: delete by id, re-embed, insert.
	OpUpsert Op = "upsert"
	// OpDelete removes documents by id.
	OpDelete Op = "delete"
)

// Result is the outcome of one sync run.
type Result struct {
	Collection string  `json:"collection"`
	Total      int     `json:"total"`
	Inserted   int     `json:"inserted"`
	Updated    int     `json:"updated"`
	Failed     int     `json:"failed"`
	DurationMS float64 `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
}

const historyCap = 50

// Service synchronizes catalog documents into the vector store.
type Service struct {
	store    vectorStore
	embedder embedder
	logger   *zap.Logger

	mu      gosync.Mutex
	history []Result
}

// NewService creates the catalog sync service.
func NewService(store vectorStore, e embedder, logger *zap.Logger) *Service {
	return &Service{store: store, embedder: e, logger: logger}
}

// FullSync rebuilds a collection's records from documents: ensure the
// index, embed all texts in one batch, insert all records. An embed or
// insert failure marks the whole batch failed.
func (s *Service) FullSync(ctx context.Context, col catalog.Collection, docs []catalog.Document) (Result, error) {
	start := time.Now()

	run := func() (int, error) {
		if err := s.store.EnsureCollection(ctx, col, s.embedder.Dimension()); err != nil {
			return 0, fmt.Errorf("ensure collection %s: %w", col.Name, err)
		}
		if len(docs) == 0 {
			return 0, nil
		}

		records, err := s.buildRecords(ctx, docs)
		if err != nil {
			return 0, err
		}
		if err := s.store.Insert(ctx, col, records); err != nil {
			return 0, fmt.Errorf("insert %s: %w", col.Name, err)
		}
		return len(records), nil
	}

	inserted, err := run()
	result := Result{
		Collection: col.Name,
		Total:      len(docs),
		Inserted:   inserted,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:  time.Now().Unix(),
	}
	if err != nil {
		result.Failed = len(docs)
		s.logger.Error("Full sync failed", zap.String("collection", col.Name), zap.Error(err))
	} else {
		s.logger.Info("Full sync complete",
			zap.String("collection", col.Name), zap.Int("inserted", inserted))
	}

	s.record(result)
	return result, err
}

// IncrementalSync applies an upsert or delete to a collection. Upsert is
// delete-then-insert, so each id keeps at most one record and vectors are
// always regenerated from the current text.
func (s *Service) IncrementalSync(
	ctx context.Context, col catalog.Collection, docs []catalog.Document, op Op,
) (Result, error) {
	start := time.Now()

	run := func() (int, error) {
		if len(docs) == 0 {
			return 0, nil
		}

		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.DocID())
		}

		if err := s.store.DeleteByIDs(ctx, col, ids); err != nil {
			return 0, fmt.Errorf("delete %s: %w", col.Name, err)
		}
		if op == OpDelete {
			return len(ids), nil
		}

		records, err := s.buildRecords(ctx, docs)
		if err != nil {
			return 0, err
		}
		if err := s.store.Insert(ctx, col, records); err != nil {
			return 0, fmt.Errorf("insert %s: %w", col.Name, err)
		}
		return len(records), nil
	}

	updated, err := run()
	result := Result{
		Collection: col.Name,
		Total:      len(docs),
		Updated:    updated,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:  time.Now().Unix(),
	}
	if err != nil {
		result.Failed = len(docs)
		s.logger.Error("Incremental sync failed",
			zap.String("collection", col.Name), zap.String("op", string(op)), zap.Error(err))
	} else {
		s.logger.Info("Incremental sync complete",
			zap.String("collection", col.Name), zap.String("op", string(op)), zap.Int("updated", updated))
	}

	s.record(result)
	return result, err
}

// History returns the most recent sync results, newest last.
func (s *Service) History(limit int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]Result, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}

func (s *Service) buildRecords(ctx context.Context, docs []catalog.Document) ([]catalog.Record, error) {
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, d.EmbeddingText())
	}

	batch, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}

	records := make([]catalog.Record, 0, len(docs))
	for i, d := range docs {
		records = append(records, catalog.Record{
			ID:     d.DocID(),
			Fields: d.ScalarFields(),
			Vector: batch.Embeddings[i],
		})
	}
	return records, nil
}

func (s *Service) record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, r)
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}
}

// AsDocs converts a typed document slice to the shared Document interface.
func AsDocs[T catalog.Document](in []T) []catalog.Document {
	out := make([]catalog.Document, len(in))
	for i, d := range in {
		out[i] = d
	}
	return out
}
