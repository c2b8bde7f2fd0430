package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/httputil"
)

const (
	guardMaxFailures = 5
	guardWindow      = 15 * time.Minute
	guardLockout     = 5 * time.Minute
	guardSweepEvery  = time.Minute
	guardMaxTracked  = 10000
)

type authFailure struct {
	count    int
	first    time.Time
	lockedAt time.Time
}

// BruteForceGuard tracks failed Bearer authentications per attempted-key
// hash and locks out keys that fail too often within the tracking window.
// With a single configured API key every guessed key gets its own lockout,
// so a scanner cycling keys never slows down the legitimate caller.
type BruteForceGuard struct {
	mu       sync.Mutex
	failures map[string]*authFailure
	log      *logrus.Logger
}

// NewBruteForceGuard creates a guard and starts a background sweep goroutine
// that stops when ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		failures: make(map[string]*authFailure),
		log:      log,
	}
	go g.sweepLoop(ctx)

	return g
}

func attemptHash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// IsBlocked reports whether the attempted key is currently locked out.
func (g *BruteForceGuard) IsBlocked(key string) bool {
	hash := attemptHash(key)

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.failures[hash]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && time.Since(rec.lockedAt) < guardLockout
}

// RecordFailure counts a failed authentication for the attempted key.
func (g *BruteForceGuard) RecordFailure(key string) {
	hash := attemptHash(key)
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.failures[hash]
	if !ok {
		g.failures[hash] = &authFailure{count: 1, first: now}
		return
	}

	// A failure outside the tracking window starts a fresh count.
	if now.Sub(rec.first) > guardWindow {
		rec.count = 1
		rec.first = now
		rec.lockedAt = time.Time{}
		return
	}

	rec.count++
	if rec.count >= guardMaxFailures {
		rec.lockedAt = now
		g.log.WithField("key_hash", hash[:16]).Warn("api key locked out after repeated auth failures")
	}
}

// Reset clears failure tracking for a key. Called on successful auth.
func (g *BruteForceGuard) Reset(key string) {
	hash := attemptHash(key)

	g.mu.Lock()
	delete(g.failures, hash)
	g.mu.Unlock()
}

func (g *BruteForceGuard) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(guardSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops expired lockouts and stale windows, then evicts the oldest
// records if the map grew past its cap.
func (g *BruteForceGuard) sweep() {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for hash, rec := range g.failures {
		expired := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= guardLockout
		stale := now.Sub(rec.first) >= guardWindow
		if expired || stale {
			delete(g.failures, hash)
		}
	}

	for len(g.failures) > guardMaxTracked {
		var oldest string
		var oldestAt time.Time
		for hash, rec := range g.failures {
			if oldest == "" || rec.first.Before(oldestAt) {
				oldest, oldestAt = hash, rec.first
			}
		}
		delete(g.failures, oldest)
	}
}

// BruteForce returns middleware that rejects requests whose Bearer key is
// currently locked out, before the key is ever compared.
func BruteForce(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ExtractBearerToken(c)
		if key == "" {
			c.Next()
			return
		}

		if guard.IsBlocked(key) {
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited",
				"too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
