package pokedex

import (
	"context"
	"net/http"
	"testing"

	"pokedex/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkFirstChild(t *testing.T) {
	tests := []struct {
		name string
		root *catalog.EvolutionNode
		want []string
	}{
		{"nil", nil, nil},
		{"single stage", &catalog.EvolutionNode{SpeciesName: "tauros"}, []string{"tauros"}},
		{
			"linear",
			&catalog.EvolutionNode{SpeciesName: "a", EvolvesTo: []catalog.EvolutionNode{
				{SpeciesName: "b", EvolvesTo: []catalog.EvolutionNode{{SpeciesName: "c"}}},
			}},
			[]string{"a", "b", "c"},
		},
		{
			"branching keeps first child only",
			&catalog.EvolutionNode{SpeciesName: "eevee", EvolvesTo: []catalog.EvolutionNode{
				{SpeciesName: "vaporeon"}, {SpeciesName: "jolteon"}, {SpeciesName: "flareon"},
			}},
			[]string{"eevee", "vaporeon"},
		},
		{
			"branch below the root",
			&catalog.EvolutionNode{SpeciesName: "oddish", EvolvesTo: []catalog.EvolutionNode{
				{SpeciesName: "gloom", EvolvesTo: []catalog.EvolutionNode{{SpeciesName: "vileplume"}, {SpeciesName: "bellossom"}}},
			}},
			[]string{"oddish", "gloom", "vileplume"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WalkFirstChild(tt.root))
		})
	}
}

// linearChain registers bulbasaur -> ivysaur -> venusaur under species 1..3.
func linearChain(f *fakeCatalog) {
	f.addPokemon(1, "bulbasaur")
	f.addPokemon(2, "ivysaur")
	f.addPokemon(3, "venusaur")
	root := chainNode("bulbasaur", chainNode("ivysaur", chainNode("venusaur")))
	for id := 1; id <= 3; id++ {
		f.addChain(id, 1, root)
	}
}

func TestResolve_OrderPreserved(t *testing.T) {
	f := newFakeCatalog(t)
	linearChain(f)
	// Base form finishes last.
	f.holdUntil("/pokemon/bulbasaur", "/pokemon/ivysaur")
	p := f.pokedex(Options{})

	entity, err := p.Detail.LoadByName(context.Background(), "venusaur")
	require.NoError(t, err)

	stages, err := p.Evolution.Resolve(context.Background(), entity)
	require.NoError(t, err)

	assert.Equal(t, []EvolutionStage{
		{Name: "bulbasaur", AnimatedImageURL: animated(1)},
		{Name: "ivysaur", AnimatedImageURL: animated(2)},
		{Name: "venusaur", AnimatedImageURL: animated(3)},
	}, stages)
	assert.Equal(t, 1, f.hitCount("/pokemon-species/3/"))
	assert.Equal(t, 1, f.hitCount("/evolution-chain/1/"))
	assert.Equal(t, 1, f.hitCount("/pokemon/venusaur"), "the entity itself is not fetched again")
}

func TestResolve_OrderPreservedWhateverCompletesFirst(t *testing.T) {
	orders := map[string][2][2]string{
		"middle first": {{"/pokemon/bulbasaur", "/pokemon/ivysaur"}, {"/pokemon/venusaur", "/pokemon/ivysaur"}},
		"last first":   {{"/pokemon/bulbasaur", "/pokemon/venusaur"}, {"/pokemon/ivysaur", "/pokemon/venusaur"}},
		"base first":   {{"/pokemon/ivysaur", "/pokemon/bulbasaur"}, {"/pokemon/venusaur", "/pokemon/ivysaur"}},
	}
	for name, holds := range orders {
		t.Run(name, func(t *testing.T) {
			f := newFakeCatalog(t)
			linearChain(f)
			for _, h := range holds {
				f.holdUntil(h[0], h[1])
			}
			p := f.pokedex(Options{})

			// An entity outside the chain forces every stage to be fetched.
			entity := &catalog.EntityDetail{ID: 999, Name: "observer", SpeciesURL: f.url("/pokemon-species/1/")}
			stages, err := p.Evolution.Resolve(context.Background(), entity)
			require.NoError(t, err)

			names := make([]string, len(stages))
			for i, s := range stages {
				names[i] = s.Name
			}
			assert.Equal(t, []string{"bulbasaur", "ivysaur", "venusaur"}, names)
		})
	}
}

func TestResolve_BranchingDegradesToFirstChild(t *testing.T) {
	f := newFakeCatalog(t)
	f.addPokemon(133, "eevee")
	f.addPokemon(134, "vaporeon")
	f.addPokemon(135, "jolteon")
	f.addChain(133, 67, chainNode("eevee", chainNode("vaporeon"), chainNode("jolteon")))
	p := f.pokedex(Options{})

	_, stages, err := p.Evolution.ResolveByName(context.Background(), "Eevee")
	require.NoError(t, err)

	assert.Equal(t, []EvolutionStage{
		{Name: "eevee", AnimatedImageURL: animated(133)},
		{Name: "vaporeon", AnimatedImageURL: animated(134)},
	}, stages)
	assert.Zero(t, f.hitCount("/pokemon/jolteon"), "sibling branches are never resolved")
}

func TestResolve_SingleStage(t *testing.T) {
	f := newFakeCatalog(t)
	f.addPokemon(128, "tauros")
	f.addChain(128, 60, chainNode("tauros"))
	p := f.pokedex(Options{})

	entity, stages, err := p.Evolution.ResolveByName(context.Background(), "tauros")
	require.NoError(t, err)
	assert.Equal(t, "tauros", entity.Name)
	assert.Equal(t, []EvolutionStage{{Name: "tauros", AnimatedImageURL: animated(128)}}, stages)
}

func TestResolve_SequentialStepFailuresAbort(t *testing.T) {
	t.Run("species missing", func(t *testing.T) {
		f := newFakeCatalog(t)
		f.addPokemon(1, "bulbasaur")
		p := f.pokedex(Options{Policy: PolicyPartial})

		_, stages, err := p.Evolution.ResolveByName(context.Background(), "bulbasaur")
		assert.Nil(t, stages)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
		assert.False(t, IsPartial(err))
	})

	t.Run("species without chain", func(t *testing.T) {
		f := newFakeCatalog(t)
		f.addPokemon(1, "bulbasaur")
		f.handle("/pokemon-species/1/", map[string]any{"name": "bulbasaur", "evolution_chain": nil})
		p := f.pokedex(Options{})

		_, _, err := p.Evolution.ResolveByName(context.Background(), "bulbasaur")
		assert.ErrorIs(t, err, catalog.ErrParse)
	})

	t.Run("chain unavailable", func(t *testing.T) {
		f := newFakeCatalog(t)
		linearChain(f)
		f.handleRaw("/evolution-chain/1/", http.StatusServiceUnavailable, "")
		p := f.pokedex(Options{})

		_, _, err := p.Evolution.ResolveByName(context.Background(), "ivysaur")
		assert.ErrorIs(t, err, catalog.ErrNetwork)
		assert.Zero(t, f.hitCount("/pokemon/bulbasaur"))
	})

	t.Run("chain malformed", func(t *testing.T) {
		f := newFakeCatalog(t)
		linearChain(f)
		f.handleRaw("/evolution-chain/1/", http.StatusOK, `{"chain": {"species": {}, "evolves_to": []}}`)
		p := f.pokedex(Options{})

		_, _, err := p.Evolution.ResolveByName(context.Background(), "ivysaur")
		assert.ErrorIs(t, err, catalog.ErrParse)
	})
}

func TestResolve_StageFailure(t *testing.T) {
	setup := func(t *testing.T) *fakeCatalog {
		f := newFakeCatalog(t)
		linearChain(f)
		f.handleRaw("/pokemon/ivysaur", http.StatusInternalServerError, "")
		return f
	}

	t.Run("all or nothing", func(t *testing.T) {
		f := setup(t)
		p := f.pokedex(Options{})

		_, stages, err := p.Evolution.ResolveByName(context.Background(), "venusaur")
		assert.Nil(t, stages)
		assert.ErrorIs(t, err, catalog.ErrNetwork)
		assert.False(t, IsPartial(err))
	})

	t.Run("partial skips the stage", func(t *testing.T) {
		f := setup(t)
		p := f.pokedex(Options{Policy: PolicyPartial})

		_, stages, err := p.Evolution.ResolveByName(context.Background(), "venusaur")
		require.True(t, IsPartial(err))
		assert.Equal(t, []EvolutionStage{
			{Name: "bulbasaur", AnimatedImageURL: animated(1)},
			{Name: "venusaur", AnimatedImageURL: animated(3)},
		}, stages)
	})
}

func TestResolve_InvalidEntity(t *testing.T) {
	p := New(nil, Options{})

	_, err := p.Evolution.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, catalog.ErrParse)

	_, err = p.Evolution.Resolve(context.Background(), &catalog.EntityDetail{ID: 1, Name: "bulbasaur"})
	assert.ErrorIs(t, err, catalog.ErrParse)
}
