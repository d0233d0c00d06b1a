package plans

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/harborops/recvplan/core/execution"
	"github.com/harborops/recvplan/core/model"
	"github.com/harborops/recvplan/core/plan"
)

// Summary is the read-model of a plan exposed to the operations console:
// the window, the status and the counters derived from the containers.
type Summary struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"`
	Status          model.PlanStatus `json:"status"`
	PlannedStart    time.Time        `json:"planned_start"`
	PlannedEnd      time.Time        `json:"planned_end"`
	ExecutionStart  *time.Time       `json:"execution_start,omitempty"`
	ExecutionEnd    *time.Time       `json:"execution_end,omitempty"`
	EquipmentBooked bool             `json:"equipment_booked"`
	PortNotified    bool             `json:"port_notified"`
	Containers      int              `json:"containers"`
	Tally           execution.Tally  `json:"tally"`
}

// NewListHandler returns an HTTP handler exposing plan summaries via
// GET /api/plans. Filtering by status is supported through ?status=.
func NewListHandler(repo plan.Repository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		plansList, err := repo.List()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		statusFilter := r.URL.Query().Get("status")
		out := make([]Summary, 0, len(plansList))
		for _, p := range plansList {
			if statusFilter != "" && string(p.Status) != statusFilter {
				continue
			}
			out = append(out, Summary{
				ID:              p.ID,
				Code:            p.Code,
				Status:          p.Status,
				PlannedStart:    p.PlannedStart,
				PlannedEnd:      p.PlannedEnd,
				ExecutionStart:  p.ExecutionStart,
				ExecutionEnd:    p.ExecutionEnd,
				EquipmentBooked: p.EquipmentBooked,
				PortNotified:    p.PortNotified,
				Containers:      len(p.Containers),
				Tally:           execution.Count(p.Containers),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
