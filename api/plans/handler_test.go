package plans

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/infra/store"
)

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	p := model.Plan{
		ID:           "p1",
		Code:         "A",
		Status:       model.PlanScheduled,
		PlannedStart: start,
		PlannedEnd:   start.Add(4 * time.Hour),
		Containers: []model.PlanContainer{
			{ID: "c1", ContainerRef: "MSKU1", Status: model.ContainerWaiting, AssignedAt: start},
			{ID: "c2", ContainerRef: "MSKU2", Status: model.ContainerReceived, AssignedAt: start,
				Receive: &model.ReceiveRecord{Kind: model.ReceiveProblem, Time: start.Add(time.Hour)}},
		},
	}
	if err := s.Save(p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	p2 := model.Plan{
		ID: "p2", Code: "B", Status: model.PlanDone,
		PlannedStart: start.Add(5 * time.Hour), PlannedEnd: start.Add(9 * time.Hour),
	}
	if err := s.Save(p2); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestListHandler(t *testing.T) {
	h := NewListHandler(seedStore(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got []Summary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(got))
	}
	first := got[0]
	if first.Code != "A" || first.Containers != 2 {
		t.Fatalf("bad summary %+v", first)
	}
	if first.Tally.Received != 1 || first.Tally.Waiting != 1 || first.Tally.Problem != 1 {
		t.Fatalf("counters must be derived from containers: %+v", first.Tally)
	}
}

func TestListHandlerStatusFilter(t *testing.T) {
	h := NewListHandler(seedStore(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans?status=DONE", nil))
	var got []Summary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Code != "B" {
		t.Fatalf("filter failed: %+v", got)
	}
}

func TestListHandlerMethodNotAllowed(t *testing.T) {
	h := NewListHandler(seedStore(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plans", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}
