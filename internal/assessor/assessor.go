// Package assessor translates interview intents into prompts for an external
// text-completion provider and parses structured results back out of its free
// text replies. Every method degrades to a static, well-typed fallback rather
// than returning an error; the Outcome tells the caller which one it got.
package assessor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avercier/parley/internal/session"
)

// Completer is the single capability consumed from the provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Outcome reports whether a result is real provider output or a static
// fallback. Degraded results carry the failure reason for logs and tests.
type Outcome struct {
	Degraded bool
	Reason   string
}

func degraded(err error) Outcome {
	return Outcome{Degraded: true, Reason: err.Error()}
}

// CandidateData identifies the candidate for report generation.
type CandidateData struct {
	Role            string
	ExperienceLevel string
}

// QAEntry is one question/answer pair fed into report synthesis.
type QAEntry struct {
	Question string
	Answer   string
	Score    int
}

// SessionDigest condenses a finished interview for the report prompt.
type SessionDigest struct {
	Duration      string
	QAPairs       []QAEntry
	AvgScore      int
	QuestionTypes []string
}

// Assessor is the completion provider adapter. Each call issues exactly one
// outbound request; there is no caching and no retrying.
type Assessor struct {
	completer Completer
}

// New creates an Assessor on top of the given completer.
func New(c Completer) *Assessor {
	return &Assessor{completer: c}
}

// GenerateQuestions asks the provider for count tailored questions. On any
// failure it returns the fixed two-item fallback set.
func (a *Assessor) GenerateQuestions(ctx context.Context, role, experience, difficulty, resumeText string, count int) ([]session.Question, Outcome) {
	raw, err := a.completer.Complete(ctx, questionsPrompt(role, experience, difficulty, resumeText, count))
	if err == nil {
		var questions []session.Question
		if questions, err = parseQuestions(raw); err == nil {
			slog.Info("generated questions", "count", len(questions), "role", role, "difficulty", difficulty)
			return questions, Outcome{}
		}
	}
	slog.Warn("question generation degraded to fallback", "role", role, "error", err)
	return fallbackQuestions(role, difficulty), degraded(err)
}

func parseQuestions(raw string) ([]session.Question, error) {
	span, err := extractArray(raw)
	if err != nil {
		return nil, err
	}
	var questions []session.Question
	if err := json.Unmarshal(span, &questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("empty question array")
	}
	for i, q := range questions {
		if q.Question == "" {
			return nil, fmt.Errorf("question %d has no text", i+1)
		}
		// Ids are sequence positions; do not trust model-assigned ones.
		questions[i].ID = i + 1
	}
	return questions, nil
}

// EvaluateAnswer asks the provider to score one answer. On any failure it
// returns the fixed fallback evaluation (overall score 70).
func (a *Assessor) EvaluateAnswer(ctx context.Context, question, answer, role, experience string, criteria []string) (session.Evaluation, Outcome) {
	raw, err := a.completer.Complete(ctx, evaluationPrompt(question, answer, role, experience, criteria))
	if err == nil {
		var eval session.Evaluation
		if eval, err = parseEvaluation(raw); err == nil {
			slog.Info("evaluated answer", "overall_score", eval.OverallScore)
			return eval, Outcome{}
		}
	}
	slog.Warn("answer evaluation degraded to fallback", "error", err)
	return fallbackEvaluation(), degraded(err)
}

func parseEvaluation(raw string) (session.Evaluation, error) {
	span, err := extractObject(raw)
	if err != nil {
		return session.Evaluation{}, err
	}
	if err := requireFields(span, "overall_score", "scores"); err != nil {
		return session.Evaluation{}, err
	}
	var eval session.Evaluation
	if err := json.Unmarshal(span, &eval); err != nil {
		return session.Evaluation{}, fmt.Errorf("decoding evaluation: %w", err)
	}
	return eval, nil
}

// GenerateFollowUp asks for one follow-up question as free text.
func (a *Assessor) GenerateFollowUp(ctx context.Context, originalQuestion, answer, role, interviewContext string) (string, Outcome) {
	raw, err := a.completer.Complete(ctx, followUpPrompt(originalQuestion, answer, role, interviewContext))
	if err != nil {
		slog.Warn("follow-up generation degraded to fallback", "error", err)
		return FallbackFollowUp, degraded(err)
	}
	return cleanFollowUp(raw), Outcome{}
}

// GenerateReport asks the provider to synthesize the final report. On any
// failure it returns the fixed neutral-hire fallback.
func (a *Assessor) GenerateReport(ctx context.Context, candidate CandidateData, digest SessionDigest) (session.Report, Outcome) {
	raw, err := a.completer.Complete(ctx, reportPrompt(candidate, digest))
	if err == nil {
		var report session.Report
		if report, err = parseReport(raw); err == nil {
			slog.Info("generated interview report", "overall_score", report.OverallScore, "rating", report.OverallRating)
			return report, Outcome{}
		}
	}
	slog.Warn("report generation degraded to fallback", "error", err)
	return fallbackReport(time.Now()), degraded(err)
}

func parseReport(raw string) (session.Report, error) {
	span, err := extractObject(raw)
	if err != nil {
		return session.Report{}, err
	}
	if err := requireFields(span, "overall_score", "category_scores"); err != nil {
		return session.Report{}, err
	}
	var report session.Report
	if err := json.Unmarshal(span, &report); err != nil {
		return session.Report{}, fmt.Errorf("decoding report: %w", err)
	}
	report.GeneratedAt = time.Now()
	return report, nil
}

// AnswerGeneralQuestion is a free-text passthrough for career and technical
// questions outside any interview session.
func (a *Assessor) AnswerGeneralQuestion(ctx context.Context, question, questionContext string) (string, Outcome) {
	raw, err := a.completer.Complete(ctx, generalPrompt(question, questionContext))
	if err != nil {
		slog.Warn("general question degraded to fallback", "error", err)
		return FallbackGeneralAnswer, degraded(err)
	}
	return raw, Outcome{}
}

// cleanFollowUp strips quoting and boilerplate prefixes the model sometimes
// wraps around the question.
func cleanFollowUp(raw string) string {
	s := strings.ReplaceAll(raw, `"`, "")
	s = strings.ReplaceAll(s, "Follow-up question:", "")
	return strings.TrimSpace(s)
}

// requireFields rejects JSON that decoded syntactically but is missing
// fields the typed structs need. Strict decoding alone would leave them
// zero-valued and indistinguishable from real low scores.
func requireFields(span []byte, fields ...string) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(span, &probe); err != nil {
		return fmt.Errorf("decoding object: %w", err)
	}
	for _, f := range fields {
		if _, ok := probe[f]; !ok {
			return fmt.Errorf("response missing required field %q", f)
		}
	}
	return nil
}
