package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avercier/parley/internal/interview"
)

func evaluationRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Post("/submit-answer", handleSubmitAnswer(deps))
	r.Post("/generate-followup", handleGenerateFollowUp(deps))
	r.Get("/history/{sessionID}", handleHistory(deps))
	r.Get("/scoring-criteria", handleScoringCriteria)
	return r
}

type submitAnswerRequest struct {
	SessionID    string `json:"session_id"`
	QuestionID   int    `json:"question_id"`
	QuestionText string `json:"question_text"`
	AnswerText   string `json:"answer_text"`
}

func handleSubmitAnswer(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitAnswerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}
		answer := strings.TrimSpace(req.AnswerText)
		minLen := deps.Config.Interview.MinAnswerLength
		maxLen := deps.Config.Interview.MaxAnswerLength
		if len(answer) < minLen {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"answer must be at least %d characters", minLen)
			return
		}
		if len(answer) > maxLen {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"answer must be at most %d characters", maxLen)
			return
		}

		resp, err := deps.Service.SubmitAnswer(r.Context(), req.SessionID, req.QuestionID, req.QuestionText, answer)
		if errors.Is(err, interview.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

type followUpRequest struct {
	SessionID        string `json:"session_id"`
	OriginalQuestion string `json:"original_question"`
	Answer           string `json:"answer"`
}

func handleGenerateFollowUp(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req followUpRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SessionID == "" || req.OriginalQuestion == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id and original_question are required")
			return
		}

		followUp, err := deps.Service.GenerateFollowUp(r.Context(), req.SessionID, req.OriginalQuestion, req.Answer)
		if errors.Is(err, interview.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"followup_question": followUp,
		})
	}
}

func handleHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := deps.Service.Summary(chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"session_id": sum.Info.SessionID,
			"answers":    sum.Answers,
			"scores":     sum.Scores,
		})
	}
}

// scoringCriteria documents the evaluation rubric for the frontend.
var scoringCriteria = []map[string]any{
	{
		"dimension":   "technical_accuracy",
		"weight":      0.30,
		"description": "Correctness and depth of technical content",
	},
	{
		"dimension":   "communication_clarity",
		"weight":      0.25,
		"description": "Structure, clarity, and conciseness of the response",
	},
	{
		"dimension":   "depth_of_knowledge",
		"weight":      0.20,
		"description": "Understanding beyond surface-level facts",
	},
	{
		"dimension":   "problem_solving",
		"weight":      0.15,
		"description": "Approach to breaking down and solving the problem",
	},
	{
		"dimension":   "confidence",
		"weight":      0.10,
		"description": "Composure and conviction in the delivery",
	},
}

func handleScoringCriteria(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"criteria":    scoringCriteria,
		"score_range": map[string]int{"min": 0, "max": 100},
	})
}
