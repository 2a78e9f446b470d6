package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/platform/ctxutil"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := services.NewTokenVerifier(logger.NewNop(), "test-secret", "")
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.NewNop(), verifier).RequireAuth())
	r.GET("/api/me", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.OwnerID(c.Request.Context()).String())
	})
	return r
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	r := newAuthRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAuthRejectsBadSignature(t *testing.T) {
	r := newAuthRouter(t)
	tok, err := services.SignToken("other-secret", uuid.NewString(), time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAuthSetsOwner(t *testing.T) {
	r := newAuthRouter(t)
	owner := uuid.New()
	tok, err := services.SignToken("test-secret", owner.String(), time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	for _, mk := range []func() *http.Request{
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			req.Header.Set("Authorization", "bearer "+tok)
			return req
		},
		func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/me?token="+tok, nil)
		},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, mk())
		if rec.Code != http.StatusOK {
			t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != owner.String() {
			t.Fatalf("owner: want=%s got=%s", owner, rec.Body.String())
		}
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/healthcheck", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("X-Request-Id: want=req-123 got=%q", got)
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data: got=%+v", seen)
	}
}

func TestAttachTraceContextReplacesUnsafeRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("a", maxRequestIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("X-Request-Id: want generated uuid got=%q", got)
	}
	if trace := rec.Header().Get("X-Trace-Id"); trace != got {
		t.Fatalf("X-Trace-Id: want=%q got=%q", got, trace)
	}
}
