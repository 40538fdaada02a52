package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/auth"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/google/uuid"
)

func TestRateLimitScopesByAccount(t *testing.T) {
	limiter := newFakeWindow()
	handler := RateLimit(limiter, time.Minute, 2, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := &auth.AccessTokenClaims{AccountID: uuid.New(), Role: enums.AccountRoleAdmin}
	second := &auth.AccessTokenClaims{AccountID: uuid.New(), Role: enums.AccountRoleAdmin}

	send := func(claims *auth.AccessTokenClaims) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req = req.WithContext(WithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send(first); code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, code)
		}
	}
	if code := send(first); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit got %d", code)
	}
	if code := send(second); code != http.StatusOK {
		t.Fatalf("expected other account to pass, got %d", code)
	}
}

func TestRateLimitDisabledWithoutLimiter(t *testing.T) {
	handler := RateLimit(nil, time.Minute, 1, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected pass-through got %d", rec.Code)
		}
	}
}
