package concierge

import (
	"context"

	"github.com/smart-mall/concierge/internal/domain/catalog"
	"github.com/smart-mall/concierge/internal/repository/seed"
	syncuc "github.com/smart-mall/concierge/internal/usecase/sync"
)

// SyncResult reports one collection rebuild.
type SyncResult struct {
	Collection string  `json:"collection"`
	Total      int     `json:"total"`
	Inserted   int     `json:"inserted"`
	Updated    int     `json:"updated"`
	Failed     int     `json:"failed"`
	DurationMS float64 `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
}

// SyncEmbedded rebuilds all collections from the embedded demo catalog.
func (c *Client) SyncEmbedded(ctx context.Context) ([]SyncResult, error) {
	ds, err := seed.Load()
	if err != nil {
		return nil, err
	}
	return c.syncDataset(ctx, ds)
}

// SyncFromFile rebuilds all collections from a catalog YAML file.
func (c *Client) SyncFromFile(ctx context.Context, path string) ([]SyncResult, error) {
	ds, err := seed.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return c.syncDataset(ctx, ds)
}

func (c *Client) syncDataset(ctx context.Context, ds *seed.Dataset) ([]SyncResult, error) {
	batches := []struct {
		col  catalog.Collection
		docs []catalog.Document
	}{
		{catalog.Stores, syncuc.AsDocs(ds.Stores)},
		{catalog.Products, syncuc.AsDocs(ds.Products)},
		{catalog.Locations, syncuc.AsDocs(ds.Locations)},
	}

	out := make([]SyncResult, 0, len(batches))
	for _, b := range batches {
		res, err := c.sync.FullSync(ctx, b.col, b.docs)
		if err != nil {
			return out, err
		}
		out = append(out, SyncResult(res))
	}
	return out, nil
}

// SyncHistory returns recent sync runs, newest last.
func (c *Client) SyncHistory(limit int) []SyncResult {
	items := c.sync.History(limit)
	out := make([]SyncResult, len(items))
	for i, r := range items {
		out[i] = SyncResult(r)
	}
	return out
}
