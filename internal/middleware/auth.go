package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/config"
	"github.com/linkmirror/linkmirror/internal/httputil"
)

// authTimingFloor is the minimum response time for failed auth to prevent
// timing oracle attacks that could distinguish valid from invalid API keys.
const authTimingFloor = 50 * time.Millisecond

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// Auth returns Gin middleware that authenticates requests against the single
// configured API key via Bearer token. Keys are compared as SHA-256 digests in
// constant time. Failed comparisons feed the brute-force guard; successful
// ones reset it.
func Auth(key config.Secret, log *logrus.Logger, guard *BruteForceGuard) gin.HandlerFunc {
	want := sha256.Sum256([]byte(key.Value()))

	return func(c *gin.Context) {
		start := time.Now()

		token := ExtractBearerToken(c)
		if token == "" {
			enforceTimingFloor(start)
			httputil.RespondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		got := sha256.Sum256([]byte(token))
		if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
			guard.RecordFailure(token)
			log.WithFields(logrus.Fields{
				"client": c.ClientIP(),
				"path":   c.Request.URL.Path,
			}).Warn("auth failure")
			enforceTimingFloor(start)
			httputil.RespondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")
			return
		}

		guard.Reset(token)
		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
