package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ParzivalXIII/inventory-management-system/api/responses"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
	pkgredis "github.com/ParzivalXIII/inventory-management-system/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	ttl     time.Duration
}

// Order mutations keep their replay window for a week; the rest age out daily.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/signup"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/organizations/me/users"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/orders"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPut, matcher: matchPrefixSuffix("/orders/", "/fulfilled"), ttl: criticalIdempotencyTTL},
}

// idempotencyRecord is the cached response envelope stored per key.
type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

type replayGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

// Idempotency replays cached responses for covered mutation routes. Clients
// supply an Idempotency-Key header; a repeat of the same key and body returns
// the original response, while the same key with a different body is a 409.
//
// Coverage is decided on the request URL path, not chi's route pattern: the
// middleware sits above mounted subrouters, where the pattern is still the
// partial mount form ("/orders/*") and would never match the full route.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	guard := &replayGuard{store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, covered := routeTTL(r.Method, requestPath(r))
			if !covered || guard.store == nil {
				next.ServeHTTP(w, r)
				return
			}
			guard.serve(w, r, next, ttl)
		})
	}
}

func (g *replayGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, ttl time.Duration) {
	ctx := r.Context()

	clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if clientKey == "" {
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	requestHash := hashBody(body)
	storeKey := g.store.IdempotencyKey(requestScope(r), clientKey)

	stored, err := g.store.Get(ctx, storeKey)
	if err != nil && !errors.Is(err, redis.Nil) {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	if stored != "" {
		g.replay(w, r, stored, requestHash)
		return
	}

	capture := &bufferingWriter{ResponseWriter: w}
	next.ServeHTTP(capture, r)
	g.persist(r, capture, storeKey, requestHash, ttl)
}

func (g *replayGuard) replay(w http.ResponseWriter, r *http.Request, stored, requestHash string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}

	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	status := record.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func (g *replayGuard) persist(r *http.Request, capture *bufferingWriter, storeKey, requestHash string, ttl time.Duration) {
	record := idempotencyRecord{
		Status:      capture.statusOrDefault(),
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
		RequestHash: requestHash,
	}
	if ct := capture.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		if g.logg != nil {
			g.logg.Error(r.Context(), "marshal idempotency record", err)
		}
		return
	}
	if _, err := g.store.SetNX(r.Context(), storeKey, string(payload), ttl); err != nil && g.logg != nil {
		g.logg.Error(r.Context(), "persist idempotency record", err)
	}
}

// requestScope binds the cache entry to actor, method, and path so a key
// cannot bleed across users or routes.
func requestScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		OrgIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	path := r.URL.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func routeTTL(method, path string) (time.Duration, bool) {
	if path == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(want string) routeMatcher {
	return func(path string) bool { return path == want }
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(path string) bool {
		return strings.HasPrefix(path, prefix) && strings.HasSuffix(path, suffix) &&
			len(path) > len(prefix)+len(suffix)
	}
}

// bufferingWriter tees the handler's response so it can be cached.
type bufferingWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (b *bufferingWriter) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bufferingWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.body.Write(p)
	return b.ResponseWriter.Write(p)
}

func (b *bufferingWriter) statusOrDefault() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}
