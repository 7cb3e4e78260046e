package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newIdempotentChain(t *testing.T, handler http.Handler) (http.Handler, *InMemoryIdempotencyStore) {
	t.Helper()
	store := NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(store.Stop)
	return Idempotency(store, "Idempotency-Key")(handler), store
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	calls := 0
	chain, _ := newIdempotentChain(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"jc-1"}}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobcards", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, rec.Code)
		}
	}
	if calls != 1 {
		t.Errorf("expected the handler to run once, ran %d times", calls)
	}
}

func TestIdempotency_GuardRejectionNotCached(t *testing.T) {
	// First attempt hits a workflow guard (409); the caller fixes the
	// state and retries with the same key. The retry must re-execute.
	calls := 0
	chain, _ := newIdempotentChain(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"NO_MECHANIC_ASSIGNED"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"status":"in_progress"}}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/status", nil)
	req.Header.Set("Idempotency-Key", "key-2")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on the first attempt, got %d", rec.Code)
	}

	retry := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/status", nil)
	retry.Header.Set("Idempotency-Key", "key-2")
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, retry)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected the retry to re-execute and return 200, got %d", rec.Code)
	}
	if calls != 2 {
		t.Errorf("expected the handler to run twice, ran %d times", calls)
	}
}

func TestIdempotency_SkipsRequestsWithoutKey(t *testing.T) {
	calls := 0
	chain, _ := newIdempotentChain(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parts", nil))
	}
	if calls != 2 {
		t.Errorf("expected every keyless request to execute, ran %d times", calls)
	}
}
