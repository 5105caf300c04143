package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
)

type countingRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newCountingRateStore() *countingRateStore {
	return &countingRateStore{counts: map[string]int64{}}
}

func (s *countingRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *countingRateStore) RateLimitKey(scope, policy, id string) string {
	return "ims:ratelimit:" + scope + ":" + policy + ":" + id
}

func authPost(path, email, remoteAddr string) *http.Request {
	body := `{"email":"` + email + `","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	return req
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, newCountingRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@example.com"`) {
			t.Fatalf("body was consumed by the limiter: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authPost("/login", "tester@example.com", "1.2.3.4:5678"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestAuthRateLimitBlocksEmailAfterLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, newCountingRateStore(), nil)(http.HandlerFunc(okHandler))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authPost("/login", "blocked@example.com", "1.2.3.4:5678"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authPost("/login", "blocked@example.com", "1.2.3.4:5678"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("error code %s, want %s", payload.Error.Code, pkgerrors.CodeRateLimit)
	}
}

func TestAuthRateLimitCountsUnderNamespacedKeys(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	store := newCountingRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authPost("/login", "tester@example.com", "1.2.3.4:5678"))

	if len(store.counts) != 2 {
		t.Fatalf("expected ip and email counters, got %v", store.counts)
	}
	for key := range store.counts {
		if !strings.HasPrefix(key, "ims:ratelimit:ip:login:") && !strings.HasPrefix(key, "ims:ratelimit:email:login:") {
			t.Fatalf("counter key %q escapes the client namespace", key)
		}
	}
}

func TestAuthRateLimitBlocksIPAfterLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("signup", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, newCountingRateStore(), nil)(http.HandlerFunc(okHandler))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, authPost("/signup", "foo@example.com", "5.6.7.8:1234"))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, authPost("/signup", "bar@example.com", "5.6.7.8:1234"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status %d, want 429", second.Code)
	}
}
