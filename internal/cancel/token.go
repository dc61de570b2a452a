// Package cancel provides a cooperative cancellation primitive threaded
// through every async operation in the engine. There are no timers and no
// locks: a token is a read-only view over a flag that a source can set once.
package cancel

import "sync/atomic"

// Token is a read-only cancellation flag. Operations poll IsCancellationRequested
// between suspension points and return a partial or empty result when it flips true.
// A nil *Token is treated as "never cancelled".
type Token struct {
	flag *atomic.Bool
}

// IsCancellationRequested reports whether cancellation has been requested.
// Safe to call on a nil token.
func (t *Token) IsCancellationRequested() bool {
	if t == nil || t.flag == nil {
		return false
	}
	return t.flag.Load()
}

// Source produces a Token and can cancel it. Exactly one Source backs a Token;
// cancelling the source is idempotent.
type Source struct {
	flag     atomic.Bool
	token    *Token
	disposed bool
}

// NewSource creates a fresh, non-cancelled cancellation source.
func NewSource() *Source {
	s := &Source{}
	s.token = &Token{flag: &s.flag}
	return s
}

// Token returns the cancellation token backed by this source.
func (s *Source) Token() *Token {
	return s.token
}

// Cancel requests cancellation. Safe to call more than once. After Dispose
// it has no effect.
func (s *Source) Cancel() {
	if s.disposed {
		return
	}
	s.flag.Store(true)
}

// Dispose releases the source. After Dispose, Token() still returns a valid,
// non-panicking Token (frozen at its last state) so in-flight holders of the
// token never fault.
func (s *Source) Dispose() {
	s.disposed = true
}

// None returns a token that is never cancelled, for call sites that have no
// cancellation source of their own.
func None() *Token {
	return nil
}
