// Package pokedex turns catalog lookups into display-ready records: a page of
// list entries with sprites, a single pokemon's detail, a listing-first
// search, and a linear evolution line.
package pokedex

import (
	"strconv"
	"strings"

	"pokedex/internal/catalog"
)

const (
	DefaultPageSize       = 20
	DefaultMaxConcurrency = 8

	// DefaultAnimatedSpriteTemplate is the animated sprite location; {id} is
	// replaced with the pokemon id. The catalog does not return these URLs.
	DefaultAnimatedSpriteTemplate = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/versions/generation-v/black-white/animated/{id}.gif"
)

// DisplayRecord is the name + image projection used for list rendering.
type DisplayRecord struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Options configures the resolvers. Zero values fall back to the defaults.
type Options struct {
	PageSize               int
	MaxConcurrency         int
	Policy                 FailurePolicy
	AnimatedSpriteTemplate string
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = DefaultMaxConcurrency
	}
	if o.Policy == "" {
		o.Policy = PolicyAllOrNothing
	}
	if o.AnimatedSpriteTemplate == "" {
		o.AnimatedSpriteTemplate = DefaultAnimatedSpriteTemplate
	}
	return o
}

// Pokedex bundles the resolvers that share one catalog client.
type Pokedex struct {
	Listing   *ListingResolver
	Detail    *DetailResolver
	Evolution *EvolutionResolver
	Search    *Searcher
}

// New wires all resolvers to client.
func New(client catalog.Client, opts Options) *Pokedex {
	opts = opts.withDefaults()
	detail := NewDetailResolver(client, opts)
	return &Pokedex{
		Listing:   NewListingResolver(client, opts),
		Detail:    detail,
		Evolution: NewEvolutionResolver(client, detail, opts),
		Search:    NewSearcher(detail),
	}
}

// NormalizeName is the canonical catalog form of a user-typed name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func animatedImageURL(template string, id int) string {
	return strings.ReplaceAll(template, "{id}", strconv.Itoa(id))
}
