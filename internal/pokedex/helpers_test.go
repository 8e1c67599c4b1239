package pokedex

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pokedex/internal/catalog"

	"go.uber.org/goleak"
)

// TestMain ensures no fan-out goroutines outlive their tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// route is one canned response of the fake catalog.
type route struct {
	status int
	body   []byte

	// after holds the response until the named path has been served.
	after string
	delay time.Duration
}

// fakeCatalog is an httptest server standing in for the PokeAPI.
type fakeCatalog struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	routes    map[string]route
	hits      map[string]int
	served    map[string]chan struct{}
	lastQuery string
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	f := &fakeCatalog{
		t:      t,
		routes: make(map[string]route),
		hits:   make(map[string]int),
		served: make(map[string]chan struct{}),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCatalog) servedChan(path string) chan struct{} {
	ch, ok := f.served[path]
	if !ok {
		ch = make(chan struct{})
		f.served[path] = ch
	}
	return ch
}

func (f *fakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	f.mu.Lock()
	f.hits[path]++
	if path == "/pokemon" {
		f.lastQuery = r.URL.RawQuery
	}
	rt, ok := f.routes[path]
	var wait chan struct{}
	if ok && rt.after != "" {
		wait = f.servedChan(rt.after)
	}
	done := f.servedChan(path)
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-time.After(2 * time.Second):
			f.t.Errorf("%s waited too long for %s", path, rt.after)
		}
	}
	if rt.delay > 0 {
		time.Sleep(rt.delay)
	}

	if !ok {
		http.NotFound(w, r)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		_, _ = w.Write(rt.body)
	}

	f.mu.Lock()
	select {
	case <-done:
	default:
		close(done)
	}
	f.mu.Unlock()
}

func (f *fakeCatalog) handle(path string, body any) {
	f.t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		f.t.Fatalf("marshal %s: %v", path, err)
	}
	f.set(path, route{status: http.StatusOK, body: data})
}

func (f *fakeCatalog) handleRaw(path string, status int, body string) {
	f.set(path, route{status: status, body: []byte(body)})
}

func (f *fakeCatalog) set(path string, rt route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = rt
}

// holdUntil delays path's response until other has been served.
func (f *fakeCatalog) holdUntil(path, other string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt := f.routes[path]
	rt.after = other
	f.routes[path] = rt
}

func (f *fakeCatalog) slow(path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt := f.routes[path]
	rt.delay = d
	f.routes[path] = rt
}

func (f *fakeCatalog) url(path string) string { return f.srv.URL + path }

func (f *fakeCatalog) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeCatalog) totalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.hits {
		n += h
	}
	return n
}

func (f *fakeCatalog) query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

// client returns a catalog client without keep-alives so no transport
// goroutines survive the test.
func (f *fakeCatalog) client() *catalog.HTTPClient {
	return catalog.NewHTTPClient(catalog.Options{
		BaseURL: f.srv.URL,
		HTTPClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	})
}

func (f *fakeCatalog) pokedex(opts Options) *Pokedex {
	return New(f.client(), opts)
}

// addPokemon registers /pokemon/{name} and /pokemon/{id}/ for one entity.
func (f *fakeCatalog) addPokemon(id int, name string) {
	body := pokemonBody(f, id, name, spriteURL(id))
	f.handle("/pokemon/"+name, body)
	f.handle(fmt.Sprintf("/pokemon/%d/", id), body)
}

func spriteURL(id int) string {
	return fmt.Sprintf("https://sprites.example/pokemon/%d.png", id)
}

func pokemonBody(f *fakeCatalog, id int, name, sprite string) map[string]any {
	var front any
	if sprite != "" {
		front = sprite
	}
	return map[string]any{
		"id":     id,
		"name":   name,
		"height": 7,
		"weight": 69,
		"sprites": map[string]any{
			"front_default": front,
		},
		"species": map[string]any{
			"name": name,
			"url":  f.url(fmt.Sprintf("/pokemon-species/%d/", id)),
		},
		"types": []any{
			map[string]any{"slot": 1, "type": map[string]any{"name": "grass", "url": "https://pokeapi.co/api/v2/type/12/"}},
			map[string]any{"slot": 2, "type": map[string]any{"name": "poison", "url": "https://pokeapi.co/api/v2/type/4/"}},
		},
	}
}

func (f *fakeCatalog) addPage(names ...string) {
	results := make([]any, len(names))
	for i, n := range names {
		results[i] = map[string]any{"name": n, "url": f.url(fmt.Sprintf("/pokemon/%d/", i+1))}
	}
	f.handle("/pokemon", map[string]any{"count": 1302, "next": nil, "results": results})
}

// chainNode builds an evolution-chain link for fixtures.
func chainNode(name string, next ...map[string]any) map[string]any {
	evolves := make([]any, len(next))
	for i, n := range next {
		evolves[i] = n
	}
	return map[string]any{
		"is_baby":    false,
		"species":    map[string]any{"name": name, "url": "https://pokeapi.co/api/v2/pokemon-species/" + name + "/"},
		"evolves_to": evolves,
	}
}

// addChain points species {speciesID} at chain {chainID}.
func (f *fakeCatalog) addChain(speciesID, chainID int, root map[string]any) {
	f.handle(fmt.Sprintf("/pokemon-species/%d/", speciesID), map[string]any{
		"name":            "species",
		"evolution_chain": map[string]any{"url": f.url(fmt.Sprintf("/evolution-chain/%d/", chainID))},
	})
	f.handle(fmt.Sprintf("/evolution-chain/%d/", chainID), map[string]any{"id": chainID, "chain": root})
}

func animated(id int) string {
	return animatedImageURL(DefaultAnimatedSpriteTemplate, id)
}
