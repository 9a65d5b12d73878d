package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func questionRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Post("/ask", handleAsk(deps))
	r.Get("/popular-questions", handlePopularQuestions)
	r.Post("/explain-concept", handleExplainConcept(deps))
	r.Post("/code-review", handleCodeReview(deps))
	r.Post("/interview-tips", handleInterviewTips)
	r.Get("/trending-topics", handleTrendingTopics)
	return r
}

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

func handleAsk(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		question := strings.TrimSpace(req.Question)
		if len(question) < 5 || len(question) > 500 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "question must be between 5 and 500 characters")
			return
		}
		respondJSON(w, http.StatusOK, deps.Service.AnswerGeneralQuestion(r.Context(), question, req.Context))
	}
}

// popularQuestions is a curated starter set for the question explorer.
var popularQuestions = []map[string]string{
	{"question": "What is the difference between a process and a thread?", "category": "operating_systems"},
	{"question": "Explain how a hash table works.", "category": "data_structures"},
	{"question": "What happens when you type a URL into a browser?", "category": "networking"},
	{"question": "What is database indexing and when would you use it?", "category": "databases"},
	{"question": "Explain the difference between REST and GraphQL.", "category": "apis"},
	{"question": "What is eventual consistency?", "category": "distributed_systems"},
	{"question": "How would you design a URL shortener?", "category": "system_design"},
	{"question": "Explain the difference between unit and integration tests.", "category": "testing"},
}

func handlePopularQuestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"questions": popularQuestions})
}

type explainConceptRequest struct {
	Concept         string `json:"concept"`
	Level           string `json:"level"`
	IncludeExamples *bool  `json:"include_examples"`
}

func handleExplainConcept(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req explainConceptRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		concept := strings.TrimSpace(req.Concept)
		if concept == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "concept is required")
			return
		}
		level := req.Level
		if level == "" {
			level = "intermediate"
		}

		questionContext := fmt.Sprintf("Explain this concept for %s level understanding", level)
		if req.IncludeExamples == nil || *req.IncludeExamples {
			questionContext += " with practical examples and code snippets where applicable"
		}

		resp := deps.Service.AnswerGeneralQuestion(r.Context(), "Explain "+concept+" in detail", questionContext)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":     resp.Success,
			"concept":     concept,
			"level":       level,
			"explanation": resp.Answer,
		})
	}
}

type codeReviewRequest struct {
	Code       string   `json:"code"`
	Language   string   `json:"language"`
	FocusAreas []string `json:"focus_areas"`
}

func handleCodeReview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeReviewRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Language) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "code and language are required")
			return
		}
		focus := "overall code quality"
		if len(req.FocusAreas) > 0 {
			focus = strings.Join(req.FocusAreas, ", ")
		}

		question := fmt.Sprintf("Please review this %s code and provide feedback focusing on %s:\n\n```%s\n%s\n```\n\nProvide specific suggestions for improvement, identify any issues, and explain best practices.",
			req.Language, focus, req.Language, req.Code)

		resp := deps.Service.AnswerGeneralQuestion(r.Context(), question, "Code review with constructive feedback and suggestions")
		respondJSON(w, http.StatusOK, map[string]any{
			"success":  resp.Success,
			"language": req.Language,
			"review":   resp.Answer,
		})
	}
}

type interviewTipsRequest struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
	InterviewType   string `json:"interview_type"`
}

var technicalTips = map[string][]string{
	"general": {
		"Practice coding problems on a timer before the real interview",
		"Understand the time and space complexity of your solutions",
		"Think out loud while working through a problem",
		"Ask clarifying questions before writing any code",
		"Test your code against edge cases before declaring it done",
	},
	"entry": {
		"Focus on fundamental data structures and algorithms",
		"Be ready to explain your academic or personal projects in detail",
		"Show enthusiasm for learning and taking feedback",
	},
	"senior": {
		"Be prepared to discuss system design and architecture trade-offs",
		"Share concrete stories of production problems you have solved",
		"Expect questions about mentoring and technical leadership",
	},
}

var behavioralTips = []string{
	"Use the STAR method (Situation, Task, Action, Result)",
	"Prepare specific examples from your own experience",
	"Show how you handle conflict and collaborate in a team",
	"Research the company culture and values beforehand",
}

var systemDesignTips = []string{
	"Start with requirements gathering and clarifying questions",
	"Think about scalability from the beginning",
	"Consider data storage and retrieval patterns early",
	"Discuss trade-offs between the approaches you consider",
	"Address monitoring, logging, and failure handling",
}

var roleTips = map[string][]string{
	"Software Engineer":  {"Practice algorithms and data structures", "Know your primary language deeply"},
	"Frontend Developer": {"Understand at least one modern framework well", "Know CSS layout and responsive design"},
	"Backend Developer":  {"Understand databases and API design", "Know how to reason about scalability and performance"},
	"DevOps Engineer":    {"Understand CI/CD pipelines end to end", "Know containerization and at least one cloud platform"},
	"Data Scientist":     {"Understand statistics and model evaluation", "Be able to defend your model choices"},
}

const maxTips = 10

func handleInterviewTips(w http.ResponseWriter, r *http.Request) {
	var req interviewTipsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	interviewType := req.InterviewType
	if interviewType == "" {
		interviewType = "technical"
	}

	var tips []string
	switch interviewType {
	case "behavioral":
		tips = append(tips, behavioralTips...)
	case "system_design":
		tips = append(tips, systemDesignTips...)
	default:
		tips = append(tips, technicalTips["general"]...)
		if extra, ok := technicalTips[req.ExperienceLevel]; ok {
			tips = append(tips, extra...)
		}
	}
	if extra, ok := roleTips[req.Role]; ok {
		tips = append(tips, extra...)
	}
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"role":             req.Role,
		"experience_level": req.ExperienceLevel,
		"interview_type":   interviewType,
		"tips":             tips,
	})
}

type trendingTopic struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

func handleTrendingTopics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"hot_technologies": []trendingTopic{
			{Name: "Artificial Intelligence & Machine Learning", Questions: 156},
			{Name: "Cloud Computing (AWS, Azure, GCP)", Questions: 134},
			{Name: "Kubernetes & Docker", Questions: 98},
			{Name: "React & Next.js", Questions: 87},
			{Name: "Python & Data Science", Questions: 76},
		},
		"emerging_trends": []trendingTopic{
			{Name: "Large Language Models (LLMs)", Questions: 45},
			{Name: "Edge Computing", Questions: 32},
			{Name: "WebAssembly", Questions: 28},
			{Name: "Blockchain & DeFi", Questions: 23},
			{Name: "Quantum Computing", Questions: 19},
		},
		"interview_focus_areas": []map[string]string{
			{"area": "Behavioral Questions", "frequency": "92%"},
			{"area": "Problem Solving Approach", "frequency": "89%"},
			{"area": "System Design", "frequency": "85%"},
			{"area": "Data Structures & Algorithms", "frequency": "78%"},
			{"area": "Code Review & Best Practices", "frequency": "67%"},
		},
	})
}
