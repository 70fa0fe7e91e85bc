package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/metrica/internal/config"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	trigger := New(Params{
		Config: config.Config{ConnectorBaseURL: srv.URL, ConnectorToken: "secret"},
		Log:    zap.NewNop(),
	})
	return trigger.(*Client)
}

func TestBackfillSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody backfillRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	})

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := c.Backfill(context.Background(), "42", from); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if gotPath != "/v1/backfill" {
		t.Fatalf("path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth %q", gotAuth)
	}
	if gotBody.AccountID != "42" || gotBody.From != "2026-02-01" {
		t.Fatalf("body %+v", gotBody)
	}
}

func TestBackfillErrorMessagePassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited, wait 42s before retrying"},
		})
	})

	err := c.Backfill(context.Background(), "42", time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	// The cooldown hint must survive verbatim for the orchestrator.
	if !strings.Contains(err.Error(), "wait 42s") {
		t.Fatalf("cooldown hint lost: %v", err)
	}
}

func TestBackfillUnconfigured(t *testing.T) {
	trigger := New(Params{Config: config.Config{}, Log: zap.NewNop()})
	if err := trigger.(*Client).Backfill(context.Background(), "1", time.Now()); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
