package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/DevStdio379/settisfy-web/api/responses"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

// maxLoginBody bounds how much of a login request is buffered to read the email.
const maxLoginBody = 16 << 10

type loginBucket struct {
	kind  string
	scope string
	limit int
}

// LoginThrottle guards credential endpoints with two fixed windows: one per
// client IP and one per hashed email, so a single operator address cannot be
// brute forced from many hosts.
func LoginThrottle(limiter fixedWindowLimiter, cfg config.RateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || cfg.LoginWindow <= 0 || (cfg.LoginIPLimit <= 0 && cfg.LoginEmailLimit <= 0) {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			for _, bucket := range loginBuckets(r, body, cfg) {
				allowed, count, err := limiter.FixedWindowAllow(ctx, bucket.scope, int64(bucket.limit), cfg.LoginWindow)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					logThrottled(ctx, logg, bucket, count, cfg.LoginWindow)
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func loginBuckets(r *http.Request, body []byte, cfg config.RateLimitConfig) []loginBucket {
	buckets := make([]loginBucket, 0, 2)
	if ip := clientIP(r); ip != "" && cfg.LoginIPLimit > 0 {
		buckets = append(buckets, loginBucket{kind: "ip", scope: "login:ip:" + ip, limit: cfg.LoginIPLimit})
	}
	if digest := emailDigest(body); digest != "" && cfg.LoginEmailLimit > 0 {
		buckets = append(buckets, loginBucket{kind: "email", scope: "login:email:" + digest, limit: cfg.LoginEmailLimit})
	}
	return buckets
}

func logThrottled(ctx context.Context, logg *logger.Logger, bucket loginBucket, count int64, window time.Duration) {
	if logg == nil {
		return
	}
	// scope carries the hashed email, never the raw address
	logCtx := logg.WithFields(ctx, map[string]any{
		"bucket":         bucket.kind,
		"scope":          bucket.scope,
		"attempts":       count,
		"limit":          bucket.limit,
		"window_seconds": int(window.Seconds()),
	})
	logg.Warn(logCtx, "auth.login.throttled")
}

func emailDigest(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:16])
}

// clientIP prefers the left-most X-Forwarded-For hop set by the load balancer.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
