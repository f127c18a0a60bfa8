package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"invoicex/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackCompleter tries completers in order, skipping those whose circuit is
// open after a rate limit. Each completer is called at most once per request.
type FallbackCompleter struct {
	completers []port.StructuredCompleter
	circuits   []*circuitState
	names      []string
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewFallbackCompleter creates a FallbackCompleter from an ordered list of completers and their names.
func NewFallbackCompleter(completers []port.StructuredCompleter, names []string, log logrus.FieldLogger) *FallbackCompleter {
	circuits := make([]*circuitState, len(completers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FallbackCompleter{
		completers: completers,
		circuits:   circuits,
		names:      names,
		log:        log,
		now:        time.Now,
	}
}

// Complete makes a single pass over the chain. A provider is never retried within
// a request: a failure moves on to the next provider, and a rate limit also opens
// that provider's circuit so later requests skip it until the reset time. When
// only one provider is configured this wrapper is not used at all.
func (f *FallbackCompleter) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionOutput, error) {
	now := f.now()
	var (
		lastErr    error
		reset      resetTracker
		onlyLimits = true
	)

	for i, c := range f.completers {
		log := f.log.WithField("provider", f.names[i])

		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.WithField("reset_at", resetAt.Format(time.RFC3339)).Warn("parser.fallback: circuit open, skipping")
			reset.observe(resetAt)
			continue
		}

		out, err := c.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		log.WithError(err).Warn("parser.fallback: provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if !errors.As(err, &rlErr) {
			onlyLimits = false
			continue
		}
		resetAt := now.Add(rlErr.RetryAfter)
		f.circuits[i].open(resetAt)
		reset.observe(resetAt)
	}

	if lastErr != nil && !onlyLimits {
		return nil, fmt.Errorf("all providers failed: %w", lastErr)
	}
	return nil, NewRateLimitError("all", errors.New("all providers rate limited"), reset.secondsFrom(f.now()))
}

// resetTracker keeps the earliest circuit reset seen during one pass.
type resetTracker struct {
	earliest time.Time
}

func (r *resetTracker) observe(t time.Time) {
	if r.earliest.IsZero() || t.Before(r.earliest) {
		r.earliest = t
	}
}

// secondsFrom returns the wait until the earliest reset, never less than one second.
func (r *resetTracker) secondsFrom(now time.Time) int {
	wait := r.earliest.Sub(now)
	if wait < time.Second {
		return 1
	}
	return int(wait.Seconds())
}
