package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// fakeRedis is an in-memory RedisClient for middleware tests.
type fakeRedis struct {
	store  map[string]string
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.store[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if _, exists := f.store[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.store[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func setupIdempotentRouter(store *fakeRedis, handlerCalls *int) *gin.Engine {
	_, r := gin.CreateTestContext(httptest.NewRecorder())
	r.POST("/bookings", IdempotencyMiddleware(DefaultIdempotencyConfig(store)), func(c *gin.Context) {
		*handlerCalls++
		c.JSON(http.StatusCreated, gin.H{"booking_id": "bk-1"})
	})
	return r
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	r := setupIdempotentRouter(store, &calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"a":1}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
	if len(store.store) != 0 {
		t.Errorf("expected no idempotency records without the header, got %d", len(store.store))
	}
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	r := setupIdempotentRouter(store, &calls)

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"date":"2026-09-15"}`))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want %d", first.Code, http.StatusCreated)
	}

	second := send()
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (replay must not re-run the handler)", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("replay status = %d, want %d", second.Code, http.StatusCreated)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replay body = %s, want %s", second.Body.String(), first.Body.String())
	}
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	r := setupIdempotentRouter(store, &calls)

	send := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		r.ServeHTTP(w, req)
		return w
	}

	send(`{"date":"2026-09-15"}`)
	w := send(`{"date":"2026-09-16"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(w.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Errorf("body = %s, want IDEMPOTENCY_KEY_REUSED code", w.Body.String())
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	store := newFakeRedis()
	calls := 0
	r := setupIdempotentRouter(store, &calls)

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"date":"2026-09-15"}`))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		r.ServeHTTP(w, req)
		return w
	}

	send()

	// Rewind the stored record to processing, as if the first request
	// were still in flight.
	redisKey := IdempotencyKeyPrefix + "key-1"
	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(store.store[redisKey]), &record); err != nil {
		t.Fatalf("Failed to decode stored record: %v", err)
	}
	record.Status = StatusProcessing
	data, _ := json.Marshal(&record)
	store.store[redisKey] = string(data)

	w := send()
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "REQUEST_IN_PROGRESS") {
		t.Errorf("body = %s, want REQUEST_IN_PROGRESS code", w.Body.String())
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_RedisErrorFailsOpen(t *testing.T) {
	store := newFakeRedis()
	store.getErr = errors.New("connection refused")
	calls := 0
	r := setupIdempotentRouter(store, &calls)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"date":"2026-09-15"}`))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
		}
	}

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2 when Redis is down", calls)
	}
}
