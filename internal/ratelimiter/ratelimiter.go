// Package ratelimiter throttles connection acceptance using a token bucket.
//
// The accept loop asks for a token per incoming connection; when the bucket
// is empty the connection is closed immediately instead of queuing, keeping
// the acceptor responsive under load. A zero rate disables limiting.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// ConnLimiter wraps golang.org/x/time/rate with the server's semantics.
//
// Thread safety: all methods are safe for concurrent use.
type ConnLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter admitting connectionsPerSecond sustained with the
// given burst capacity. A zero rate means unlimited.
func New(connectionsPerSecond, burst uint) *ConnLimiter {
	if connectionsPerSecond == 0 {
		return &ConnLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = connectionsPerSecond
	}
	return &ConnLimiter{
		limiter: rate.NewLimiter(rate.Limit(connectionsPerSecond), int(burst)),
	}
}

// Allow consumes a token if one is available. False means the connection
// should be dropped.
func (l *ConnLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *ConnLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Tokens reports the currently available tokens, for diagnostics.
func (l *ConnLimiter) Tokens() float64 {
	return l.limiter.Tokens()
}
