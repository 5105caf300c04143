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

	"github.com/ParzivalXIII/inventory-management-system/api/responses"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope, policy, id string) string
}

// AuthRateLimitPolicy describes a fixed-window throttle for one auth surface.
// Email counters key on a sha256 of the normalized address so raw addresses
// never land in Redis.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "auth"
	}
	return p.name
}

// AuthRateLimit throttles an auth endpoint per client IP and per submitted
// email using Redis fixed windows. A nil store or a zeroed policy disables
// the middleware entirely.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		l := authLimiter{policy: policy, store: store, logg: logg}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.blocked(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type authLimiter struct {
	policy AuthRateLimitPolicy
	store  rateLimiterStore
	logg   *logger.Logger
}

// blocked runs the IP and email checks in order and writes the response
// itself when the request must not proceed.
func (l authLimiter) blocked(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()

	if l.policy.ipLimit > 0 {
		ip := clientIP(r)
		if ip != "" {
			key := l.store.RateLimitKey("ip", l.policy.normalizedName(), ip)
			allowed, count, err := l.consume(ctx, key, l.policy.ipLimit)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return true
			}
			if !allowed {
				l.reject(ctx, w, "ip", map[string]any{"ip": ip}, count, l.policy.ipLimit)
				return true
			}
		}
	}

	if l.policy.emailLimit > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
			return true
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if email := normalizeEmail(extractEmail(body)); email != "" {
			hash := sha256Hex(email)
			key := l.store.RateLimitKey("email", l.policy.normalizedName(), hash)
			allowed, count, err := l.consume(ctx, key, l.policy.emailLimit)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return true
			}
			if !allowed {
				l.reject(ctx, w, "email", map[string]any{"email_hash": hash}, count, l.policy.emailLimit)
				return true
			}
		}
	}

	return false
}

func (l authLimiter) consume(ctx context.Context, key string, limit int) (bool, int64, error) {
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		return false, 0, err
	}
	return count <= int64(limit), count, nil
}

func (l authLimiter) reject(ctx context.Context, w http.ResponseWriter, scope string, extra map[string]any, count int64, limit int) {
	if l.logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         l.policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(l.policy.window.Seconds()),
		}
		for k, v := range extra {
			fields[k] = v
		}
		l.logg.Warn(l.logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
