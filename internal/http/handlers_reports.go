package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/auth"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/report"
)

// monthParam reads ?month=YYYY-MM, defaulting to the current UTC month.
func monthParam(r *http.Request) string {
	if m := strings.TrimSpace(r.URL.Query().Get("month")); m != "" {
		return m
	}
	return time.Now().UTC().Format("2006-01")
}

func ownerOr401(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing owner")
	}
	return ownerID, ok
}

// serveCachedReport answers from the report cache when possible, otherwise
// computes, caches, and writes the result. Invalid months skip the cache so
// errors are never stored.
func (s *Server) serveCachedReport(w http.ResponseWriter, r *http.Request, key string, compute func() (any, error)) {
	if body, ok := s.reportCache.Get(key); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	result, err := compute()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to marshal report", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.reportCache.Set(key, body)
	writeRawJSON(w, http.StatusOK, body)
}

// invalidateReports drops every cached report for the owner. Called on
// each ledger write.
func (s *Server) invalidateReports(ownerID string) {
	s.reportCache.DeletePrefix(ownerID + ":")
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}
	month := monthParam(r)

	s.serveCachedReport(w, r, ownerID+":"+month+":summary", func() (any, error) {
		return s.engine.MonthlySummary(r.Context(), ownerID, month)
	})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}
	month := monthParam(r)

	s.serveCachedReport(w, r, ownerID+":"+month+":breakdown", func() (any, error) {
		return s.engine.CategoryBreakdown(r.Context(), ownerID, month)
	})
}

func (s *Server) handleDailyTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}
	month := monthParam(r)

	s.serveCachedReport(w, r, ownerID+":"+month+":daily-trend", func() (any, error) {
		return s.engine.DailyTrendFor(r.Context(), ownerID, month)
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}
	month := monthParam(r)

	s.serveCachedReport(w, r, ownerID+":"+month+":insights", func() (any, error) {
		return s.engine.InsightsFor(r.Context(), ownerID, month, time.Now().UTC())
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	months := 0
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid months parameter")
			return
		}
		months = n
	}

	key := ownerID + ":trends:" + strconv.Itoa(months)
	s.serveCachedReport(w, r, key, func() (any, error) {
		points, err := s.engine.Trends(r.Context(), ownerID, months, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		return trendsResponse{Trends: points}, nil
	})
}

type trendsResponse struct {
	Trends []report.TrendPoint `json:"trends"`
}

// handleExport enqueues a summary export for the worker. The month is
// validated up front so bad requests never reach the queue.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "export queue not configured")
		return
	}

	month := monthParam(r)
	if _, err := core.ResolvePeriod(month); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.publisher.PublishSummaryExport(r.Context(), ownerID, month); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to publish export", "month", month, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusAccepted, struct {
		Month  string `json:"month"`
		Status string `json:"status"`
	}{Month: month, Status: "queued"})
}
