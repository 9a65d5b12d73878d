// Package interview sequences the session store and the completion provider
// into the interview lifecycle: setup, ask, evaluate, repeat, report.
//
// Provider failures never cross this boundary as errors. Every terminal
// operation degrades to a canned but well-typed payload; failure is visible
// only through the success/degraded flags on the response.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/avercier/parley/internal/assessor"
	"github.com/avercier/parley/internal/session"
)

// ErrSessionNotFound reports a session id that is absent or expired. The
// store does not distinguish the two cases and neither does the API.
var ErrSessionNotFound = errors.New("session not found or expired")

// minutesPerQuestion feeds the estimated interview duration.
const minutesPerQuestion = 3

// Provider is the completion adapter surface the orchestrator consumes.
// Implemented by assessor.Assessor; stubbed in tests.
type Provider interface {
	GenerateQuestions(ctx context.Context, role, experience, difficulty, resumeText string, count int) ([]session.Question, assessor.Outcome)
	EvaluateAnswer(ctx context.Context, question, answer, role, experience string, criteria []string) (session.Evaluation, assessor.Outcome)
	GenerateFollowUp(ctx context.Context, originalQuestion, answer, role, interviewContext string) (string, assessor.Outcome)
	GenerateReport(ctx context.Context, candidate assessor.CandidateData, digest assessor.SessionDigest) (session.Report, assessor.Outcome)
	AnswerGeneralQuestion(ctx context.Context, question, questionContext string) (string, assessor.Outcome)
}

// QuestionSetResponse is the result of interview setup.
type QuestionSetResponse struct {
	Success                  bool               `json:"success"`
	Degraded                 bool               `json:"degraded,omitempty"`
	SessionID                string             `json:"session_id"`
	Questions                []session.Question `json:"questions"`
	TotalQuestions           int                `json:"total_questions"`
	EstimatedDurationMinutes int                `json:"estimated_duration_minutes"`
}

// EvaluationResponse is the result of submitting one answer.
type EvaluationResponse struct {
	Success  bool `json:"success"`
	Degraded bool `json:"degraded,omitempty"`
	session.Evaluation
}

// ReportResponse is the final report plus transport flags.
type ReportResponse struct {
	Success   bool   `json:"success"`
	Degraded  bool   `json:"degraded,omitempty"`
	SessionID string `json:"session_id"`
	session.Report
}

// GeneralAnswerResponse answers a question outside any session.
type GeneralAnswerResponse struct {
	Success       bool     `json:"success"`
	Answer        string   `json:"answer"`
	RelatedTopics []string `json:"related_topics"`
}

// Service is the interview orchestrator.
type Service struct {
	provider Provider
	store    *session.Store
}

// NewService wires the orchestrator to its provider and store.
func NewService(provider Provider, store *session.Store) *Service {
	return &Service{provider: provider, store: store}
}

// CreateSession allocates a fresh, empty session and returns its id.
func (s *Service) CreateSession(userEmail string) string {
	return s.store.Create(userEmail)
}

// Setup writes the interview parameters, generates questions, and installs
// them. The parameter writes are never rolled back; if the session vanishes
// before install the response carries success=false and zero questions.
func (s *Service) Setup(ctx context.Context, sessionID, role, experience, difficulty, resumeText string, count int) QuestionSetResponse {
	failed := QuestionSetResponse{SessionID: sessionID, Questions: []session.Question{}}

	if !s.store.SetRole(sessionID, role) {
		return failed
	}
	s.store.SetExperienceLevel(sessionID, experience)
	s.store.SetDifficulty(sessionID, difficulty)
	if resumeText != "" {
		s.store.SetResume(sessionID, resumeText)
	}

	questions, out := s.provider.GenerateQuestions(ctx, role, experience, difficulty, resumeText, count)
	if !s.store.InstallQuestions(sessionID, questions) {
		return failed
	}

	slog.Info("interview setup complete", "session_id", sessionID, "questions", len(questions), "degraded", out.Degraded)
	return QuestionSetResponse{
		Success:                  !out.Degraded,
		Degraded:                 out.Degraded,
		SessionID:                sessionID,
		Questions:                questions,
		TotalQuestions:           len(questions),
		EstimatedDurationMinutes: len(questions) * minutesPerQuestion,
	}
}

// NextQuestion returns the question at the current position, or false when
// the interview is exhausted.
func (s *Service) NextQuestion(sessionID string) (session.Question, bool, error) {
	if _, ok := s.store.Get(sessionID); !ok {
		return session.Question{}, false, ErrSessionNotFound
	}
	q, ok := s.store.NextQuestion(sessionID)
	return q, ok, nil
}

// SubmitAnswer evaluates and records one answer. A provider failure records
// the fallback evaluation and surfaces as success=false with the fallback
// payload; the session keeps accepting answers.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, questionID int, questionText, answerText string) (EvaluationResponse, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return EvaluationResponse{}, ErrSessionNotFound
	}

	var criteria []string
	for _, q := range sess.Questions {
		if q.ID == questionID {
			criteria = q.EvaluationCriteria
			break
		}
	}

	eval, out := s.provider.EvaluateAnswer(ctx, questionText, answerText, sess.Role, sess.ExperienceLevel, criteria)
	if !s.store.RecordAnswer(sessionID, questionID, answerText, eval) {
		return EvaluationResponse{}, ErrSessionNotFound
	}

	slog.Info("answer submitted", "session_id", sessionID, "question_id", questionID, "score", eval.OverallScore, "degraded", out.Degraded)
	return EvaluationResponse{
		Success:    !out.Degraded,
		Degraded:   out.Degraded,
		Evaluation: eval,
	}, nil
}

// GenerateFollowUp produces one follow-up question for the given exchange.
// Degraded generation returns the constant generic follow-up, not an error.
func (s *Service) GenerateFollowUp(ctx context.Context, sessionID, originalQuestion, answer string) (string, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	followUp, _ := s.provider.GenerateFollowUp(ctx, originalQuestion, answer, sess.Role, "")
	return followUp, nil
}

// Progress reports how far the interview has advanced.
func (s *Service) Progress(sessionID string) (session.Progress, error) {
	p, ok := s.store.Progress(sessionID)
	if !ok {
		return session.Progress{}, ErrSessionNotFound
	}
	return p, nil
}

// Summary returns the complete interview record.
func (s *Service) Summary(sessionID string) (session.Summary, error) {
	sum, ok := s.store.Summary(sessionID)
	if !ok {
		return session.Summary{}, ErrSessionNotFound
	}
	return sum, nil
}

// Complete gathers the interview record, synthesizes the final report, and
// marks the session completed. Completion always succeeds unless the session
// is gone: a provider failure swaps in a report synthesized from the stored
// aggregate scores.
func (s *Service) Complete(ctx context.Context, sessionID string) (ReportResponse, error) {
	sum, ok := s.store.Summary(sessionID)
	if !ok {
		return ReportResponse{}, ErrSessionNotFound
	}

	digest := buildDigest(sum)
	report, out := s.provider.GenerateReport(ctx, assessor.CandidateData{
		Role:            sum.Info.Role,
		ExperienceLevel: sum.Info.ExperienceLevel,
	}, digest)
	if out.Degraded {
		report = localReport(sum)
	}
	report.QASummary = qaSummary(sum)

	completed := time.Now()
	s.store.Update(sessionID, func(sess *session.Session) {
		sess.Status = session.StatusCompleted
		sess.FinalReport = &report
		if sess.CompletedAt == nil {
			sess.CompletedAt = &completed
		}
	})

	slog.Info("interview completed", "session_id", sessionID, "overall_score", report.OverallScore, "degraded", out.Degraded)
	return ReportResponse{
		Success:   true,
		Degraded:  out.Degraded,
		SessionID: sessionID,
		Report:    report,
	}, nil
}

// AnswerGeneralQuestion is a stateless passthrough with keyword-based topic
// extraction on the reply.
func (s *Service) AnswerGeneralQuestion(ctx context.Context, question, questionContext string) GeneralAnswerResponse {
	answer, out := s.provider.AnswerGeneralQuestion(ctx, question, questionContext)
	topics := []string{}
	if !out.Degraded {
		topics = extractTopics(answer)
	}
	return GeneralAnswerResponse{
		Success:       !out.Degraded,
		Answer:        answer,
		RelatedTopics: topics,
	}
}

// buildDigest condenses the stored record for the report prompt.
func buildDigest(sum session.Summary) assessor.SessionDigest {
	pairs := make([]assessor.QAEntry, 0, len(sum.Answers))
	for _, a := range sum.Answers {
		pairs = append(pairs, assessor.QAEntry{
			Question: questionText(sum.Questions, a.QuestionID),
			Answer:   a.AnswerText,
			Score:    a.Score,
		})
	}

	seen := map[string]bool{}
	var types []string
	for _, q := range sum.Questions {
		t := q.Type
		if t == "" {
			t = "general"
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}

	return assessor.SessionDigest{
		Duration:      interviewDuration(sum.Info),
		QAPairs:       pairs,
		AvgScore:      sum.Scores.Overall,
		QuestionTypes: types,
	}
}

func interviewDuration(info session.Info) string {
	end := time.Now()
	if info.CompletedAt != nil {
		end = *info.CompletedAt
	}
	if info.CreatedAt.IsZero() || end.Before(info.CreatedAt) {
		return "Unknown duration"
	}
	return fmt.Sprintf("%d minutes", int(end.Sub(info.CreatedAt).Minutes()))
}

func questionText(questions []session.Question, id int) string {
	for _, q := range questions {
		if q.ID == id {
			return q.Question
		}
	}
	return "Question not found"
}

func qaSummary(sum session.Summary) []session.QAPair {
	pairs := make([]session.QAPair, 0, len(sum.Answers))
	for _, a := range sum.Answers {
		pairs = append(pairs, session.QAPair{
			QuestionID: a.QuestionID,
			Question:   questionText(sum.Questions, a.QuestionID),
			Answer:     a.AnswerText,
			Score:      a.Score,
			AnsweredAt: a.SubmittedAt,
		})
	}
	return pairs
}

// localReport synthesizes a report from the stored aggregate scores when the
// provider cannot. The overall score is the rounded mean of the five derived
// category scores.
func localReport(sum session.Summary) session.Report {
	categories := session.CategoryScores{
		TechnicalSkills:     sum.Scores.Technical,
		Communication:       sum.Scores.Communication,
		ProblemSolving:      sum.Scores.ProblemSolving,
		CulturalFit:         sum.Scores.Confidence,
		LeadershipPotential: sum.Scores.Overall,
	}
	mean := float64(categories.TechnicalSkills+categories.Communication+categories.ProblemSolving+
		categories.CulturalFit+categories.LeadershipPotential) / 5

	return session.Report{
		ExecutiveSummary:      "Interview completed successfully with automated evaluation.",
		OverallRating:         "Hire",
		OverallScore:          int(math.Round(mean)),
		CategoryScores:        categories,
		KeyStrengths:          []string{"Completed interview process", "Provided thoughtful responses"},
		AreasForImprovement:   []string{"Continue professional development"},
		DetailedAnalysis:      "The candidate participated in the interview process and demonstrated various skills through their responses.",
		Recommendation:        "Consider for further evaluation based on role requirements.",
		NextSteps:             []string{"Technical assessment", "Team interviews", "Reference checks"},
		InterviewHighlights:   []string{"Engaged throughout the interview"},
		RedFlags:              []string{},
		SalaryRangeAssessment: "Market competitive range appropriate",
		GeneratedAt:           time.Now(),
	}
}

// topicKeywords feeds the naive related-topic extraction for general answers.
var topicKeywords = []string{
	"programming", "javascript", "python", "react", "database", "sql",
	"algorithm", "data structure", "api", "frontend", "backend", "devops",
}

func extractTopics(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw) {
			topics = append(topics, titleCase(kw))
			if len(topics) == 5 {
				break
			}
		}
	}
	if topics == nil {
		topics = []string{}
	}
	return topics
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
