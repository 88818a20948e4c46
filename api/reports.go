package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/cpdtrack/internal/compliance"
	"github.com/garnizeh/cpdtrack/internal/cpd"
	"github.com/garnizeh/cpdtrack/internal/models"
)

type reportService interface {
	Stats(ctx context.Context, userID string) (*models.LogStats, error)
	AvailableYears(ctx context.Context, userID string) ([]int, error)
	YearlyCompliance(ctx context.Context, userID string, year int) (*compliance.Verdict, error)
	Dashboard(ctx context.Context, userID string, year int) (*cpd.Dashboard, error)
	GetGoal(ctx context.Context, userID string, year int) (int, error)
	SetGoal(ctx context.Context, userID string, year, goal int) (*models.YearlyGoal, error)
}

type ReportsHandler struct {
	svc reportService
	now func() time.Time
}

func NewReportsHandler(svc reportService) *ReportsHandler {
	return &ReportsHandler{svc: svc, now: time.Now}
}

type goalResponse struct {
	Year int `json:"year"`
	Goal int `json:"goal"`
}

type goalRequest struct {
	Goal int `json:"goal"`
}

func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), mustSession(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, st, http.StatusOK)
}

func (h *ReportsHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.AvailableYears(r.Context(), mustSession(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string][]int{"years": years}, http.StatusOK)
}

func (h *ReportsHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r.URL.Query().Get("year"))
	if !ok {
		return
	}

	v, err := h.svc.YearlyCompliance(r.Context(), mustSession(r).UserID, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r.URL.Query().Get("year"))
	if !ok {
		return
	}

	d, err := h.svc.Dashboard(r.Context(), mustSession(r).UserID, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, d, http.StatusOK)
}

func (h *ReportsHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, mux.Vars(r)["year"])
	if !ok {
		return
	}

	goal, err := h.svc.GetGoal(r.Context(), mustSession(r).UserID, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, goalResponse{Year: year, Goal: goal}, http.StatusOK)
}

func (h *ReportsHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, mux.Vars(r)["year"])
	if !ok {
		return
	}

	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.SetGoal(r.Context(), mustSession(r).UserID, year, req.Goal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, goalResponse{Year: g.Year, Goal: g.Goal}, http.StatusOK)
}

// yearParam parses a year, defaulting to the current one when empty.
func (h *ReportsHandler) yearParam(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return h.now().Year(), true
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1900 || y > 9999 {
		writeMessage(w, "invalid year", http.StatusBadRequest)
		return 0, false
	}
	return y, true
}
