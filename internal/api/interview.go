package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avercier/parley/internal/interview"
	"github.com/avercier/parley/internal/resume"
)

func interviewRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Post("/create-session", handleCreateSession(deps))
	r.Post("/setup", handleSetup(deps))
	r.Post("/set-role", handleSetRole(deps))
	r.Post("/set-experience", handleSetExperience(deps))
	r.Post("/set-difficulty", handleSetDifficulty(deps))
	r.Post("/set-resume", handleSetResume(deps))
	r.Post("/upload-resume", handleUploadResume(deps))
	r.Post("/generate-questions", handleGenerateQuestions(deps))
	r.Get("/next-question/{sessionID}", handleNextQuestion(deps))
	r.Get("/progress/{sessionID}", handleProgress(deps))
	r.Delete("/session/{sessionID}", handleDeleteSession(deps))
	r.Get("/sessions/stats", handleSessionStats(deps))
	r.Get("/options/roles", staticOptions(roleOptions))
	r.Get("/options/experience-levels", staticOptions(experienceOptions))
	r.Get("/options/difficulties", staticOptions(difficultyOptions))
	return r
}

var roleOptions = []string{
	"Software Engineer",
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"Data Scientist",
	"DevOps Engineer",
	"Product Manager",
	"QA Engineer",
}

var experienceOptions = []string{"entry", "junior", "mid", "senior", "lead"}

var difficultyOptions = []string{"easy", "medium", "hard"}

func staticOptions(options []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"options": options})
	}
}

type createSessionRequest struct {
	UserEmail string `json:"user_email"`
}

func handleCreateSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id := deps.Service.CreateSession(req.UserEmail)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"session_id": id,
		})
	}
}

type setupRequest struct {
	SessionID       string `json:"session_id"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
	Difficulty      string `json:"difficulty"`
	QuestionCount   int    `json:"question_count"`
	ResumeText      string `json:"resume_text"`
}

func handleSetup(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setupRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}
		if strings.TrimSpace(req.Role) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "role is required")
			return
		}
		if req.ExperienceLevel == "" {
			req.ExperienceLevel = "mid"
		}
		if req.Difficulty == "" {
			req.Difficulty = "medium"
		}
		count := req.QuestionCount
		if count == 0 {
			count = deps.Config.Interview.QuestionCount
		}
		if count < 5 || count > deps.Config.Interview.MaxQuestionCount {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"question_count must be between 5 and %d", deps.Config.Interview.MaxQuestionCount)
			return
		}

		resp := deps.Service.Setup(r.Context(), req.SessionID, req.Role, req.ExperienceLevel, req.Difficulty, req.ResumeText, count)
		if !resp.Success && len(resp.Questions) == 0 {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

type sessionFieldRequest struct {
	SessionID       string `json:"session_id"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
	Difficulty      string `json:"difficulty"`
	ResumeText      string `json:"resume_text"`
}

// setterHandler builds one legacy single-field setter. A missing session_id
// allocates a fresh session first; older frontends call these before setup.
func setterHandler(field string, apply func(Deps, sessionFieldRequest) bool) func(Deps) http.HandlerFunc {
	return func(deps Deps) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var req sessionFieldRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if req.SessionID == "" {
				req.SessionID = deps.Service.CreateSession("")
			}
			if !apply(deps, req) {
				httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
				return
			}
			respondJSON(w, http.StatusOK, map[string]any{
				"success":    true,
				"session_id": req.SessionID,
				"field":      field,
			})
		}
	}
}

var (
	handleSetRole = setterHandler("role", func(deps Deps, req sessionFieldRequest) bool {
		return deps.Store.SetRole(req.SessionID, req.Role)
	})
	handleSetExperience = setterHandler("experience_level", func(deps Deps, req sessionFieldRequest) bool {
		return deps.Store.SetExperienceLevel(req.SessionID, req.ExperienceLevel)
	})
	handleSetDifficulty = setterHandler("difficulty", func(deps Deps, req sessionFieldRequest) bool {
		return deps.Store.SetDifficulty(req.SessionID, req.Difficulty)
	})
)

// minResumeLength rejects obviously truncated resume text.
const minResumeLength = 100

func handleSetResume(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionFieldRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}
		if len(strings.TrimSpace(req.ResumeText)) < minResumeLength {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"resume_text must be at least %d characters", minResumeLength)
			return
		}
		if !deps.Store.SetResume(req.SessionID, req.ResumeText) {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "field": "resume_text"})
	}
}

type generateQuestionsRequest struct {
	SessionID     string `json:"session_id"`
	QuestionCount int    `json:"question_count"`
}

// handleGenerateQuestions reruns question generation from the fields already
// stored on the session.
func handleGenerateQuestions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateQuestionsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}

		sess, ok := deps.Store.Get(req.SessionID)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		if sess.Role == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session has no role set")
			return
		}

		count := req.QuestionCount
		if count == 0 {
			count = deps.Config.Interview.QuestionCount
		}
		if count < 5 || count > deps.Config.Interview.MaxQuestionCount {
			httpError(w, http.StatusBadRequest, "invalid_request_error",
				"question_count must be between 5 and %d", deps.Config.Interview.MaxQuestionCount)
			return
		}

		resp := deps.Service.Setup(r.Context(), req.SessionID, sess.Role, sess.ExperienceLevel, sess.Difficulty, sess.ResumeText, count)
		respondJSON(w, http.StatusOK, resp)
	}
}

func handleUploadResume(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, resume.MaxUploadSize)
		if err := r.ParseMultipartForm(resume.MaxUploadSize); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid multipart form: %v", err)
			return
		}

		sessionID := r.FormValue("session_id")
		if sessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required")
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "only PDF resumes are accepted")
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading upload: %v", err)
			return
		}

		text, err := resume.ExtractText(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "could not extract text from PDF: %v", err)
			return
		}
		if !deps.Store.SetResume(sessionID, text) {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"text_length": len(text),
		})
	}
}

func handleNextQuestion(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		q, ok, err := deps.Service.NextQuestion(sessionID)
		if errors.Is(err, interview.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		if !ok {
			respondJSON(w, http.StatusOK, map[string]any{
				"success":   true,
				"completed": true,
				"message":   "All questions have been answered",
			})
			return
		}

		prog, _ := deps.Service.Progress(sessionID)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"question":        q,
			"question_number": prog.CurrentQuestionIndex + 1,
			"total_questions": prog.TotalQuestions,
		})
	}
}

func handleProgress(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prog, err := deps.Service.Progress(chi.URLParam(r, "sessionID"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found_error", "session not found or expired")
			return
		}
		respondJSON(w, http.StatusOK, prog)
	}
}

func handleDeleteSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Store.Delete(chi.URLParam(r, "sessionID"))
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func handleSessionStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, deps.Store.Stats())
	}
}
