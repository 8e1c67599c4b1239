package pokedex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pokedex/internal/catalog"
	"pokedex/internal/logging"
)

// ListingResolver loads a page of the catalog index and resolves each entry's sprite.
type ListingResolver struct {
	client         catalog.Client
	pageSize       int
	maxConcurrency int
	policy         FailurePolicy
}

// NewListingResolver creates a listing resolver.
func NewListingResolver(client catalog.Client, opts Options) *ListingResolver {
	opts = opts.withDefaults()
	return &ListingResolver{
		client:         client,
		pageSize:       opts.PageSize,
		maxConcurrency: opts.MaxConcurrency,
		policy:         opts.Policy,
	}
}

// Load fetches one page and resolves every entry's sprite concurrently.
// limit <= 0 means the configured page size; a negative offset is treated
// as zero. The result never holds more than limit records and keeps the
// page's order.
//
// Under PolicyPartial a non-nil *PartialError may accompany usable records.
func (r *ListingResolver) Load(ctx context.Context, limit, offset int) ([]DisplayRecord, error) {
	if limit <= 0 {
		limit = r.pageSize
	}
	if offset < 0 {
		offset = 0
	}
	start := time.Now()

	entries, err := r.client.GetPage(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page (limit=%d offset=%d): %w", limit, offset, err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	records, err := fanOut(ctx, "resolve sprites", entries, r.maxConcurrency, r.policy,
		func(e catalog.ListingEntry) string { return e.Name },
		r.resolveEntry,
	)
	if err != nil && !IsPartial(err) {
		logging.Get(logging.CategoryListing).Warn("page load failed (limit=%d offset=%d): %v", limit, offset, err)
		return nil, err
	}

	logging.Listing("loaded %d/%d records (limit=%d offset=%d) in %s", len(records), len(entries), limit, offset, time.Since(start))
	return records, err
}

func (r *ListingResolver) resolveEntry(ctx context.Context, e catalog.ListingEntry) (DisplayRecord, error) {
	var payload catalog.EntityPayload
	if err := r.client.GetByReference(ctx, e.URL, &payload); err != nil {
		return DisplayRecord{}, err
	}
	sprite := payload.SpriteURL()
	if sprite == "" {
		return DisplayRecord{}, &catalog.ParseError{URL: e.URL, Err: errors.New("missing sprites.front_default")}
	}
	logging.ListingDebug("resolved %s -> %s", e.Name, sprite)
	return DisplayRecord{Name: e.Name, ImageURL: sprite}, nil
}
