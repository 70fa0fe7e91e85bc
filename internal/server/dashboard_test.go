package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	backfillservice "github.com/smallbiznis/metrica/internal/backfill/service"
	"github.com/smallbiznis/metrica/internal/clock"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
	"go.uber.org/zap"
)

type stubMetricService struct {
	lastReq metricdomain.DashboardRequest
	snap    metricdomain.DashboardSnapshot
	err     error
}

func (s *stubMetricService) GetDashboard(ctx context.Context, req metricdomain.DashboardRequest) (metricdomain.DashboardSnapshot, error) {
	s.lastReq = req
	return s.snap, s.err
}

func (s *stubMetricService) InvalidateWindow(accountIDs []string) {}

type noopTrigger struct{}

func (noopTrigger) Backfill(ctx context.Context, accountID string, from time.Time) error {
	return nil
}

func newTestServer(t *testing.T, svc metricdomain.Service) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	orchestrator := backfillservice.NewOrchestrator(backfillservice.Params{
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)),
		Trigger: noopTrigger{},
	})

	srv := NewServer(ServerParams{
		Gin:          r,
		Log:          zap.NewNop(),
		MetricSvc:    svc,
		Orchestrator: orchestrator,
	})
	return srv, r
}

func TestGetDashboardParsesQuery(t *testing.T) {
	stub := &stubMetricService{
		snap: metricdomain.DashboardSnapshot{
			Totals: metricdomain.DashboardTotals{Revenue: 1000, Currency: "USD"},
		},
	}
	_, r := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard?from=2026-02-01&to=2026-02-07&accounts=1,2&compare=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	if !stub.lastReq.Compare {
		t.Fatal("compare flag not parsed")
	}
	if len(stub.lastReq.AccountIDs) != 2 {
		t.Fatalf("accounts: %+v", stub.lastReq.AccountIDs)
	}
	if stub.lastReq.From.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("from: %v", stub.lastReq.From)
	}

	var body struct {
		Totals metricdomain.DashboardTotals `json:"totals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Totals.Revenue != 1000 {
		t.Fatalf("totals: %+v", body.Totals)
	}
}

func TestGetDashboardValidatesQuery(t *testing.T) {
	stub := &stubMetricService{}
	_, r := newTestServer(t, stub)

	cases := []struct {
		name string
		url  string
	}{
		{"missing dates", "/v1/dashboard?accounts=1"},
		{"inverted range", "/v1/dashboard?from=2026-02-07&to=2026-02-01&accounts=1"},
		{"missing accounts", "/v1/dashboard?from=2026-02-01&to=2026-02-07"},
		{"bad account id", "/v1/dashboard?from=2026-02-01&to=2026-02-07&accounts=abc"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.url, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d body %s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestGetSyncStatus(t *testing.T) {
	_, r := newTestServer(t, &stubMetricService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body struct {
		Status struct {
			State string `json:"state"`
		} `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status.State != "idle" {
		t.Fatalf("state %q", body.Status.State)
	}
}
