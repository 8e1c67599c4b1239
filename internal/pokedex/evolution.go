package pokedex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pokedex/internal/catalog"
	"pokedex/internal/logging"
)

// EvolutionStage is one display-ready stage of an evolution line.
type EvolutionStage struct {
	Name             string `json:"name"`
	AnimatedImageURL string `json:"animated_image_url"`
}

// EvolutionResolver turns a pokemon into its linear evolution line.
type EvolutionResolver struct {
	client         catalog.Client
	detail         *DetailResolver
	maxConcurrency int
	policy         FailurePolicy
}

// NewEvolutionResolver creates an evolution resolver that resolves stages through detail.
func NewEvolutionResolver(client catalog.Client, detail *DetailResolver, opts Options) *EvolutionResolver {
	opts = opts.withDefaults()
	return &EvolutionResolver{
		client:         client,
		detail:         detail,
		maxConcurrency: opts.MaxConcurrency,
		policy:         opts.Policy,
	}
}

// WalkFirstChild flattens a chain into species names, base form first,
// following only the first listed evolution at every stage.
func WalkFirstChild(root *catalog.EvolutionNode) []string {
	var names []string
	for node := root; node != nil; {
		names = append(names, node.SpeciesName)
		if len(node.EvolvesTo) == 0 {
			break
		}
		node = &node.EvolvesTo[0]
	}
	return names
}

// Resolve follows entity -> species -> evolution chain, walks the chain's
// first-child path and resolves every stage concurrently. Stages come back
// in chain order. Species and chain failures abort; stage failures follow
// the configured FailurePolicy.
func (r *EvolutionResolver) Resolve(ctx context.Context, entity *catalog.EntityDetail) ([]EvolutionStage, error) {
	if entity == nil {
		return nil, &catalog.ParseError{Err: errors.New("nil entity")}
	}
	if entity.SpeciesURL == "" {
		return nil, &catalog.ParseError{URL: entity.Name, Err: errors.New("missing species.url")}
	}
	start := time.Now()

	species, err := r.client.GetSpecies(ctx, entity.SpeciesURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch species for %s: %w", entity.Name, err)
	}
	root, err := r.client.GetEvolutionChain(ctx, species.EvolutionChainURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evolution chain for %s: %w", entity.Name, err)
	}

	names := WalkFirstChild(root)
	logging.EvolutionDebug("%s chain: %v", entity.Name, names)

	stages, err := fanOut(ctx, "resolve evolution stages", names, r.maxConcurrency, r.policy,
		func(name string) string { return name },
		func(ctx context.Context, name string) (EvolutionStage, error) {
			// The entity itself is already loaded.
			if NormalizeName(name) == NormalizeName(entity.Name) && entity.ID > 0 {
				return EvolutionStage{Name: name, AnimatedImageURL: r.detail.AnimatedImageURL(entity.ID)}, nil
			}
			return r.resolveStage(ctx, name)
		},
	)
	if err != nil && !IsPartial(err) {
		return nil, err
	}

	logging.Evolution("%s: resolved %d/%d stages in %s", entity.Name, len(stages), len(names), time.Since(start))
	return stages, err
}

// ResolveByName loads a pokemon and then its evolution line.
func (r *EvolutionResolver) ResolveByName(ctx context.Context, name string) (*catalog.EntityDetail, []EvolutionStage, error) {
	entity, err := r.detail.LoadByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	stages, err := r.Resolve(ctx, entity)
	return entity, stages, err
}

func (r *EvolutionResolver) resolveStage(ctx context.Context, name string) (EvolutionStage, error) {
	d, err := r.detail.LoadByName(ctx, name)
	if err != nil {
		return EvolutionStage{}, err
	}
	return EvolutionStage{Name: name, AnimatedImageURL: r.detail.AnimatedImageURL(d.ID)}, nil
}
