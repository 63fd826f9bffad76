package token

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "rollcall/pkg/domain"
	"rollcall/internal/token/metrics"
	"rollcall/pkg/requestcontext"
)

// Rotator caches the current token per session and re-mints on a fixed
// cadence, so pollers observe a token strictly younger than the rotation
// interval. Rotation needs no coordination with in-flight verification:
// every token minted within the freshness window stays valid regardless of
// how many rotations happened since.
type Rotator struct {
	issuer   *Issuer
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu    sync.Mutex
	cache map[id.SessionID]*rotatorEntry
}

type rotatorEntry struct {
	token      string
	mintedAt   time.Time
	lastAccess time.Time
}

// RotatorOption configures a Rotator.
type RotatorOption func(*Rotator)

// WithMetrics attaches token metrics.
func WithMetrics(m *metrics.Metrics) RotatorOption {
	return func(r *Rotator) { r.metrics = m }
}

// NewRotator builds a rotator over the issuer with the given cadence.
func NewRotator(issuer *Issuer, interval time.Duration, logger *slog.Logger, opts ...RotatorOption) *Rotator {
	r := &Rotator{
		issuer:   issuer,
		interval: interval,
		logger:   logger,
		cache:    make(map[id.SessionID]*rotatorEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the session's current token, minting a fresh one when the
// cached token is older than the rotation interval (or absent).
func (r *Rotator) Current(ctx context.Context, sessionID id.SessionID) (string, error) {
	now := requestcontext.Now(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.cache[sessionID]
	if e == nil || now.Sub(e.mintedAt) >= r.interval {
		tok, err := r.issuer.Issue(sessionID, now)
		if err != nil {
			return "", err
		}
		e = &rotatorEntry{token: tok, mintedAt: now}
		r.cache[sessionID] = e
		if r.metrics != nil {
			r.metrics.IncrementTokensMinted()
		}
	}
	e.lastAccess = now
	return e.token, nil
}

// Run re-mints cached tokens on the rotation cadence until ctx is cancelled.
// Cancellation is the orderly way to stop the loop and returns nil. Entries
// nobody polled for two freshness windows are dropped.
func (r *Rotator) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r.rotate(now)
		}
	}
}

func (r *Rotator) rotate(now time.Time) {
	retention := 2 * r.issuer.Freshness()

	r.mu.Lock()
	defer r.mu.Unlock()

	for sessionID, e := range r.cache {
		if now.Sub(e.lastAccess) > retention {
			delete(r.cache, sessionID)
			continue
		}
		tok, err := r.issuer.Issue(sessionID, now)
		if err != nil {
			r.logger.Error("token rotation failed",
				"session_id", sessionID,
				"error", err,
			)
			continue
		}
		e.token = tok
		e.mintedAt = now
		if r.metrics != nil {
			r.metrics.IncrementTokensMinted()
		}
	}
}
