package travel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestProvider(t *testing.T, handler http.Handler) *ORSTravelProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider, err := NewORSTravelProvider("test-key", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	provider.baseURL = srv.URL
	return provider
}

func matrixJSON(meters, seconds float64) string {
	resp := matrixResponse{
		Distances: [][]*float64{{&meters}},
		Durations: [][]*float64{{&seconds}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestORSTravelTimeCoordinateKeys(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v2/matrix/") {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("authorization header = %q", got)
		}

		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		// Coordinate location keys must skip geocoding entirely.
		if len(req.Locations) != 2 {
			t.Errorf("locations = %v, want origin plus one destination", req.Locations)
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(matrixJSON(90000, 3600))); err != nil {
			t.Errorf("write response: %v", err)
		}
	})
	provider := newTestProvider(t, handler)

	res, err := provider.TravelTime(context.Background(), "45.531602,-122.666756", "47.622109,-122.354083")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DistanceMeters != 90000 || res.DurationSeconds != 3600 {
		t.Fatalf("result = %+v", res)
	}
}

func TestORSTravelTimeRetriesOnce(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(matrixJSON(1000, 60))); err != nil {
			t.Errorf("write response: %v", err)
		}
	})
	provider := newTestProvider(t, handler)

	res, err := provider.TravelTime(context.Background(), "45.0,-122.0", "46.0,-121.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if res.DurationSeconds != 60 {
		t.Fatalf("result = %+v", res)
	}
}

func TestORSTravelTimeGivesUpAfterRetry(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	})
	provider := newTestProvider(t, handler)

	_, err := provider.TravelTime(context.Background(), "45.0,-122.0", "46.0,-121.0")
	if err == nil {
		t.Fatal("expected an error")
	}
	// One initial attempt plus exactly one retry.
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestORSTravelTimeNoRetryOnClientError(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	})
	provider := newTestProvider(t, handler)

	_, err := provider.TravelTime(context.Background(), "45.0,-122.0", "46.0,-121.0")
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}
