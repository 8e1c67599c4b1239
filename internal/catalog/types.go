package catalog

import (
	"errors"
	"fmt"
)

// =============================================================================
// DOMAIN RECORDS
// =============================================================================

// ListingEntry is one name/reference pair from a catalog index page.
type ListingEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EntityDetail is the full record for a single pokemon.
type EntityDetail struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	HeightDecimetres int      `json:"height"`
	WeightHectograms int      `json:"weight"`
	SpriteURL        string   `json:"sprite_url"`
	SpeciesURL       string   `json:"species_url"`
	Types            []string `json:"types,omitempty"`
}

// HeightMetres converts the catalog's decimetre height for display.
func (d *EntityDetail) HeightMetres() float64 { return float64(d.HeightDecimetres) / 10 }

// WeightKilograms converts the catalog's hectogram weight for display.
func (d *EntityDetail) WeightKilograms() float64 { return float64(d.WeightHectograms) / 10 }

// Species is the slice of a species record this client cares about.
type Species struct {
	Name              string
	EvolutionChainURL string
}

// EvolutionNode is one stage of an evolution chain as returned by the catalog.
type EvolutionNode struct {
	SpeciesName string
	EvolvesTo   []EvolutionNode
}

// =============================================================================
// WIRE SCHEMAS
// =============================================================================

// validator is implemented by payloads that check required fields after decoding.
type validator interface {
	Validate() error
}

type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pageResponse struct {
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
	Results []ListingEntry `json:"results"`
}

func (p *pageResponse) Validate() error {
	if p.Results == nil {
		return errors.New("missing results")
	}
	for i, r := range p.Results {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("results[%d]: missing name or url", i)
		}
	}
	return nil
}

// EntityPayload is the wire shape of GET /pokemon/{name} and of the entity
// references returned in listing pages.
type EntityPayload struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
	} `json:"sprites"`
	Species namedRef `json:"species"`
	Types   []struct {
		Slot int      `json:"slot"`
		Type namedRef `json:"type"`
	} `json:"types"`
}

func (p *EntityPayload) Validate() error {
	if p.ID <= 0 {
		return errors.New("missing id")
	}
	if p.Name == "" {
		return errors.New("missing name")
	}
	return nil
}

// SpriteURL returns sprites.front_default, or "" when the catalog has none.
func (p *EntityPayload) SpriteURL() string {
	if p.Sprites.FrontDefault == nil {
		return ""
	}
	return *p.Sprites.FrontDefault
}

// Detail projects the payload into an EntityDetail.
func (p *EntityPayload) Detail() *EntityDetail {
	d := &EntityDetail{
		ID:               p.ID,
		Name:             p.Name,
		HeightDecimetres: p.Height,
		WeightHectograms: p.Weight,
		SpriteURL:        p.SpriteURL(),
		SpeciesURL:       p.Species.URL,
	}
	for _, t := range p.Types {
		if t.Type.Name != "" {
			d.Types = append(d.Types, t.Type.Name)
		}
	}
	return d
}

type speciesResponse struct {
	Name           string    `json:"name"`
	EvolutionChain *namedRef `json:"evolution_chain"`
}

func (s *speciesResponse) Validate() error {
	if s.EvolutionChain == nil || s.EvolutionChain.URL == "" {
		return errors.New("missing evolution_chain.url")
	}
	return nil
}

type chainLink struct {
	Species   namedRef    `json:"species"`
	EvolvesTo []chainLink `json:"evolves_to"`
}

func (l *chainLink) validate(path string) error {
	if l.Species.Name == "" {
		return fmt.Errorf("%s.species.name is empty", path)
	}
	for i := range l.EvolvesTo {
		if err := l.EvolvesTo[i].validate(fmt.Sprintf("%s.evolves_to[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (l *chainLink) node() EvolutionNode {
	n := EvolutionNode{SpeciesName: l.Species.Name}
	for i := range l.EvolvesTo {
		n.EvolvesTo = append(n.EvolvesTo, l.EvolvesTo[i].node())
	}
	return n
}

type chainResponse struct {
	ID    int        `json:"id"`
	Chain *chainLink `json:"chain"`
}

func (c *chainResponse) Validate() error {
	if c.Chain == nil {
		return errors.New("missing chain")
	}
	return c.Chain.validate("chain")
}
