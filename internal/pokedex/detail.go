package pokedex

import (
	"context"
	"fmt"
	"slices"

	"pokedex/internal/catalog"
	"pokedex/internal/logging"

	"golang.org/x/sync/singleflight"
)

// DetailResolver loads one pokemon by name.
type DetailResolver struct {
	client   catalog.Client
	template string

	// Concurrent lookups of the same name share one request.
	inflight singleflight.Group
}

// NewDetailResolver creates a detail resolver.
func NewDetailResolver(client catalog.Client, opts Options) *DetailResolver {
	opts = opts.withDefaults()
	return &DetailResolver{
		client:   client,
		template: opts.AnimatedSpriteTemplate,
	}
}

// LoadByName fetches a pokemon by name, ignoring case and surrounding
// whitespace. A name the catalog does not know yields catalog.ErrNotFound.
// Each caller gets its own copy of the record.
func (r *DetailResolver) LoadByName(ctx context.Context, name string) (*catalog.EntityDetail, error) {
	key := NormalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("empty pokemon name: %w", catalog.ErrNotFound)
	}

	// The shared request outlives any single caller; each caller stops
	// waiting when its own context ends. The client timeout bounds it.
	ch := r.inflight.DoChan(key, func() (interface{}, error) {
		return r.client.GetByName(context.WithoutCancel(ctx), key)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		logging.DetailDebug("lookup %q abandoned: %v", key, ctx.Err())
		return nil, fmt.Errorf("pokemon %q: %w", key, ctx.Err())
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		logging.DetailDebug("lookup %q failed: %v", key, err)
		return nil, fmt.Errorf("pokemon %q: %w", key, err)
	}
	if shared {
		logging.DetailDebug("lookup %q shared an in-flight request", key)
	}

	d := *v.(*catalog.EntityDetail)
	d.Types = slices.Clone(d.Types)
	return &d, nil
}

// AnimatedImageURL builds the animated sprite URL for a pokemon id.
func (r *DetailResolver) AnimatedImageURL(id int) string {
	return animatedImageURL(r.template, id)
}
