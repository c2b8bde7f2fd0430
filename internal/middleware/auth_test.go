package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/config"
	"github.com/linkmirror/linkmirror/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

func authRouter(t *testing.T, key string) *gin.Engine {
	t.Helper()

	guard, cancel := newTestGuard()
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(middleware.Auth(config.Secret(key), testLogger(), guard))
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)

	return w
}

func TestAuth_ValidKey(t *testing.T) {
	r := authRouter(t, "s3cret")

	if w := doAuthRequest(r, "Bearer s3cret"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	r := authRouter(t, "s3cret")

	if w := doAuthRequest(r, "Bearer nope"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	r := authRouter(t, "s3cret")

	if w := doAuthRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_NonBearerScheme(t *testing.T) {
	r := authRouter(t, "s3cret")

	if w := doAuthRequest(r, "Basic czNjcmV0"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
