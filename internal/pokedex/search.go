package pokedex

import (
	"context"
	"strings"

	"pokedex/internal/catalog"
	"pokedex/internal/logging"
)

// MatchSource says where a search result came from.
type MatchSource int

const (
	SourceNone MatchSource = iota
	SourceListing
	SourceRemote
)

func (s MatchSource) String() string {
	switch s {
	case SourceListing:
		return "listing"
	case SourceRemote:
		return "remote"
	}
	return "none"
}

// SearchResult is the outcome of Searcher.Search.
type SearchResult struct {
	Matches []DisplayRecord
	Source  MatchSource

	// Detail is set only for SourceRemote.
	Detail *catalog.EntityDetail
}

// Searcher resolves a search term against the loaded listing first and
// falls back to a catalog lookup on a miss.
type Searcher struct {
	detail *DetailResolver
}

// NewSearcher creates a searcher backed by detail.
func NewSearcher(detail *DetailResolver) *Searcher {
	return &Searcher{detail: detail}
}

// Search returns the listing entry whose name equals term (ignoring case)
// without touching the network. Only on a miss does it look the name up
// remotely; the image then comes from the animated sprite template. An
// empty term returns the whole listing.
func (s *Searcher) Search(ctx context.Context, term string, listing []DisplayRecord) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchResult{Matches: append([]DisplayRecord(nil), listing...), Source: SourceListing}, nil
	}

	for _, rec := range listing {
		if strings.EqualFold(rec.Name, term) {
			logging.SearchDebug("%q matched loaded listing", term)
			return SearchResult{Matches: []DisplayRecord{rec}, Source: SourceListing}, nil
		}
	}

	logging.Search("%q not in listing (%d entries), looking up remotely", term, len(listing))
	detail, err := s.detail.LoadByName(ctx, term)
	if err != nil {
		return SearchResult{Source: SourceNone}, err
	}
	rec := DisplayRecord{Name: detail.Name, ImageURL: s.detail.AnimatedImageURL(detail.ID)}
	return SearchResult{Matches: []DisplayRecord{rec}, Source: SourceRemote, Detail: detail}, nil
}

// Filter returns the listing entries whose names contain term, ignoring
// case. An exact name match comes first; the rest keep listing order. It
// never touches the network.
func Filter(term string, listing []DisplayRecord) []DisplayRecord {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]DisplayRecord, 0, len(listing))
	exact := -1
	for _, rec := range listing {
		if needle == "" || strings.Contains(strings.ToLower(rec.Name), needle) {
			if exact < 0 && needle != "" && strings.EqualFold(rec.Name, needle) {
				exact = len(out)
			}
			out = append(out, rec)
		}
	}
	if exact > 0 {
		rec := out[exact]
		copy(out[1:exact+1], out[:exact])
		out[0] = rec
	}
	return out
}
