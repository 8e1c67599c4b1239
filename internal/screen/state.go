// Package screen holds the published state of one UI screen.
//
// A State has a single owner that starts loads and publishes their results.
// Every load gets a context that is cancelled when a newer load starts or
// when the screen closes, and a Token that Publish checks, so a result
// that arrives after its screen is gone is dropped instead of rendered.
package screen

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("screen closed")

	// ErrStale is returned by Publish for a load that a newer Begin superseded.
	ErrStale = errors.New("superseded load")
)

// Token identifies one load started by Begin.
type Token struct {
	gen uint64
}

// State is the published value of one screen.
type State[T any] struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	gen        uint64
	loadCancel context.CancelFunc

	value     T
	published bool
	closed    bool
}

// New creates a State whose lifetime is bounded by parent.
func New[T any](parent context.Context) *State[T] {
	ctx, cancel := context.WithCancel(parent)
	return &State[T]{ctx: ctx, cancel: cancel}
}

// Begin starts a new load, cancelling any load still running. The returned
// context must be passed to the load; the token must be passed to Publish.
func (s *State[T]) Begin() (context.Context, Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadCancel != nil {
		s.loadCancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(s.ctx)
	s.loadCancel = cancel
	return ctx, Token{gen: s.gen}
}

// Publish stores v as the screen's value in a single assignment. It fails
// with ErrClosed once the screen is closed and with ErrStale when tok is
// not the latest load.
func (s *State[T]) Publish(tok Token, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if tok.gen != s.gen {
		return ErrStale
	}
	s.value = v
	s.published = true
	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
	return nil
}

// Abandon ends tok's load without publishing, typically after the load
// failed. The previously published value is kept.
func (s *State[T]) Abandon(tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if tok.gen != s.gen {
		return ErrStale
	}
	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
	return nil
}

// Get returns the last published value and whether anything was published.
func (s *State[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.published
}

// Loading reports whether a load has begun and not yet published.
func (s *State[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.loadCancel != nil
}

// Close tears the screen down: in-flight loads are cancelled and later
// publishes are rejected. Close is idempotent.
func (s *State[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.loadCancel = nil
	s.cancel()
}

// Closed reports whether Close has been called.
func (s *State[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done is closed when the screen is closed or its parent context ends.
func (s *State[T]) Done() <-chan struct{} {
	return s.ctx.Done()
}
