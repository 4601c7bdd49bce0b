package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fraudlens/fraudlens/internal/domain"
)

func testRequest() *domain.TransactionRequest {
	return &domain.TransactionRequest{
		Amount:    12000,
		Location:  "Mumbai",
		TimeOfDay: "Evening",
		Device:    "Mobile iOS",
	}
}

func clientFor(srv *httptest.Server) *Client {
	return NewClient(domain.ScorerConfig{ModelURL: srv.URL, TimeoutSeconds: 2})
}

func TestScoreSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("expected /predict, got %s", r.URL.Path)
		}
		var req domain.TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Location != "Mumbai" {
			t.Errorf("expected location Mumbai, got %s", req.Location)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"fraudScore":  42,
			"riskFactors": map[string]string{"amount": "Medium"},
		})
	}))
	defer srv.Close()

	score, factors, err := clientFor(srv).Score(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 42 {
		t.Errorf("expected score 42, got %d", score)
	}
	if factors["amount"] != "Medium" {
		t.Errorf("expected amount risk Medium, got %s", factors["amount"])
	}
}

func TestScoreMissingRiskFactors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"fraudScore": 10})
	}))
	defer srv.Close()

	_, factors, err := clientFor(srv).Score(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if factors == nil {
		t.Error("expected empty risk factor map, got nil")
	}
}

func TestScoreFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"ServerError", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"NotFound", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"MalformedBody", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not-json"))
		}},
		{"MissingScore", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"riskFactors": map[string]string{}})
		}},
		{"ScoreOutOfRange", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"fraudScore": 250})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, _, err := clientFor(srv).Score(context.Background(), testRequest())
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestScoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // reject all connections

	_, _, err := clientFor(srv).Score(context.Background(), testRequest())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestScoreHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := clientFor(srv).Score(ctx, testRequest())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
