// Package catalog is a typed client for the PokeAPI catalog.
//
// Every response is decoded into an explicit schema and checked for the
// fields the rest of the application depends on. Failures surface as
// *NetworkError or *ParseError; nothing is retried.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pokedex/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultBaseURL is the public PokeAPI v2 root.
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	DefaultTimeout      = 15 * time.Second
	DefaultUserAgent    = "pokedex/1.0 (+https://pokeapi.co)"
	DefaultMaxBodyBytes = 2 << 20
)

// Client is the set of catalog lookups the resolvers depend on.
type Client interface {
	// GetPage fetches one index page of name/reference pairs.
	GetPage(ctx context.Context, limit, offset int) ([]ListingEntry, error)

	// GetByReference fetches an arbitrary catalog reference and decodes it into out.
	GetByReference(ctx context.Context, ref string, out any) error

	// GetByName fetches one pokemon by its canonical (lower-case) name or id.
	GetByName(ctx context.Context, name string) (*EntityDetail, error)

	// GetSpecies fetches a species record by reference.
	GetSpecies(ctx context.Context, ref string) (*Species, error)

	// GetEvolutionChain fetches an evolution chain by reference and returns its root.
	GetEvolutionChain(ctx context.Context, ref string) (*EvolutionNode, error)
}

// Options configures an HTTPClient. Zero values fall back to the defaults above.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64

	// HTTPClient overrides the transport. Its Timeout is left untouched.
	HTTPClient *http.Client
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL      string
	userAgent    string
	maxBodyBytes int64
	http         *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a catalog client.
func NewHTTPClient(opts Options) *HTTPClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:      baseURL,
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
		http:         hc,
	}
}

// BaseURL returns the API root this client talks to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// GetPage implements Client.
func (c *HTTPClient) GetPage(ctx context.Context, limit, offset int) ([]ListingEntry, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page pageResponse
	if err := c.getJSON(ctx, c.baseURL+"/pokemon?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// GetByReference implements Client. Absolute URLs are used verbatim; anything
// else is treated as a path under the base URL.
func (c *HTTPClient) GetByReference(ctx context.Context, ref string, out any) error {
	return c.getJSON(ctx, c.resolve(ref), out)
}

// GetByName implements Client.
func (c *HTTPClient) GetByName(ctx context.Context, name string) (*EntityDetail, error) {
	if name == "" {
		return nil, fmt.Errorf("empty pokemon name: %w", ErrNotFound)
	}
	var payload EntityPayload
	if err := c.getJSON(ctx, c.baseURL+"/pokemon/"+url.PathEscape(name), &payload); err != nil {
		return nil, err
	}
	return payload.Detail(), nil
}

// GetSpecies implements Client.
func (c *HTTPClient) GetSpecies(ctx context.Context, ref string) (*Species, error) {
	var s speciesResponse
	if err := c.GetByReference(ctx, ref, &s); err != nil {
		return nil, err
	}
	return &Species{Name: s.Name, EvolutionChainURL: s.EvolutionChain.URL}, nil
}

// GetEvolutionChain implements Client.
func (c *HTTPClient) GetEvolutionChain(ctx context.Context, ref string) (*EvolutionNode, error) {
	var chain chainResponse
	if err := c.GetByReference(ctx, ref, &chain); err != nil {
		return nil, err
	}
	root := chain.Chain.node()
	return &root, nil
}

func (c *HTTPClient) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// requestLog returns the api logger tagged with a short request id and the
// target URL, or nil when api logging is off.
func requestLog(target string) *logging.Logger {
	if !logging.IsCategoryEnabled(logging.CategoryAPI) {
		return nil
	}
	return logging.Get(logging.CategoryAPI).With(
		zap.String("req", uuid.NewString()[:8]),
		zap.String("url", target),
	)
}

// getJSON performs a GET and decodes a JSON body into out.
func (c *HTTPClient) getJSON(ctx context.Context, target string, out any) error {
	log := requestLog(target)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &NetworkError{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if log != nil {
			log.Structured(zapcore.WarnLevel, "request failed",
				zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		}
		return &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if log != nil {
		log.Structured(zapcore.DebugLevel, "response",
			zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return &NetworkError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", http.StatusText(resp.StatusCode))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return &NetworkError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return &ParseError{URL: target, Err: fmt.Errorf("response exceeds %d bytes", c.maxBodyBytes)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{URL: target, Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return &ParseError{URL: target, Err: err}
		}
	}
	return nil
}
