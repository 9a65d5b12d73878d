package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/avercier/parley/internal/analytics"
	"github.com/avercier/parley/internal/interview"
)

const maxCompareSessions = 5

func reportRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Post("/generate", handleGenerateReport(deps))
	r.Get("/summary/{sessionID}", handleSummary(deps))
	r.Get("/analytics/{sessionID}", handleAnalytics(deps))
	r.Get("/download/{sessionID}", handleDownloadReport(deps))
	r.Post("/compare-sessions", handleCompareSessions(deps))
	return r
}

type generateReportRequest struct {
	SessionID string `json:"session_id"`
}

func handleGenerateReport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateReportRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}

		resp, err := deps.Service.Complete(r.Context(), req.SessionID)
		if errors.Is(err, interview.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

func handleSummary(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := deps.Service.Summary(chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, sum)
	}
}

func handleAnalytics(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := deps.Service.Summary(chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		if len(sum.Answers) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "no answers recorded yet")
			return
		}
		respondJSON(w, http.StatusOK, analytics.Analyze(sum))
	}
}

func handleDownloadReport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		sess, ok := deps.Store.Get(sessionID)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		if sess.FinalReport == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "report has not been generated yet")
			return
		}

		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "interview_report_"+sessionID+".json"))
		respondJSON(w, http.StatusOK, sess.FinalReport)
	}
}

type compareSessionsRequest struct {
	SessionIDs []string `json:"session_ids"`
}

type sessionComparison struct {
	SessionID      string  `json:"session_id"`
	Role           string  `json:"role"`
	Difficulty     string  `json:"difficulty"`
	OverallScore   int     `json:"overall_score"`
	Answered       int     `json:"answered_questions"`
	CompletionRate float64 `json:"completion_rate"`
	Rank           int     `json:"rank"`
}

func handleCompareSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compareSessionsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.SessionIDs) < 2 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "at least two session_ids are required")
			return
		}
		if len(req.SessionIDs) > maxCompareSessions {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"at most %d sessions can be compared", maxCompareSessions)
			return
		}

		var comparisons []sessionComparison
		for _, id := range req.SessionIDs {
			sum, err := deps.Service.Summary(id)
			if err != nil {
				httpError(w, http.StatusNotFound, "not_found_error", "session %s not found or expired", id)
				return
			}
			comparisons = append(comparisons, sessionComparison{
				SessionID:      id,
				Role:           sum.Info.Role,
				Difficulty:     sum.Info.Difficulty,
				OverallScore:   sum.Scores.Overall,
				Answered:       len(sum.Answers),
				CompletionRate: sum.Statistics.CompletionRate,
			})
		}

		sort.SliceStable(comparisons, func(i, j int) bool {
			return comparisons[i].OverallScore > comparisons[j].OverallScore
		})
		total := 0
		roles := map[string]int{}
		difficulties := map[string]int{}
		for i := range comparisons {
			comparisons[i].Rank = i + 1
			total += comparisons[i].OverallScore
			roles[comparisons[i].Role]++
			difficulties[comparisons[i].Difficulty]++
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"comparisons":   comparisons,
			"best_session":  comparisons[0].SessionID,
			"average_score": float64(total) / float64(len(comparisons)),
			"score_range": map[string]int{
				"min": comparisons[len(comparisons)-1].OverallScore,
				"max": comparisons[0].OverallScore,
			},
			"role_distribution":       roles,
			"difficulty_distribution": difficulties,
		})
	}
}
