package assessor

import (
	"fmt"
	"time"

	"github.com/avercier/parley/internal/session"
)

// FallbackFollowUp is returned when follow-up generation fails.
const FallbackFollowUp = "Can you elaborate more on that approach?"

// FallbackGeneralAnswer is returned when a general question cannot be answered.
const FallbackGeneralAnswer = "I apologize, but I'm having trouble processing that question right now. Please try rephrasing or ask something else."

// fallbackQuestions is the fixed two-item question set used when generation
// fails. It is a degraded but valid interview.
func fallbackQuestions(role, difficulty string) []session.Question {
	return []session.Question{
		{
			ID:                 1,
			Question:           "Tell me about yourself and your experience.",
			Type:               "behavioral",
			Difficulty:         difficulty,
			FollowUps:          []string{"What interests you most about this role?"},
			EvaluationCriteria: []string{"Communication", "Self-awareness"},
			ExpectedTopics:     []string{"Experience", "Career goals"},
		},
		{
			ID:                 2,
			Question:           fmt.Sprintf("What interests you about the %s position?", role),
			Type:               "behavioral",
			Difficulty:         difficulty,
			FollowUps:          []string{"How does this align with your career goals?"},
			EvaluationCriteria: []string{"Motivation", "Role understanding"},
			ExpectedTopics:     []string{"Role interest", "Career alignment"},
		},
	}
}

// fallbackEvaluation is the fixed evaluation used when scoring fails.
func fallbackEvaluation() session.Evaluation {
	return session.Evaluation{
		OverallScore: 70,
		Scores: session.SubScores{
			TechnicalAccuracy:    70,
			CommunicationClarity: 75,
			DepthOfKnowledge:     65,
			ProblemSolving:       70,
			Confidence:           75,
		},
		Strengths:              []string{"Provided a response"},
		Weaknesses:             []string{"Could provide more detail"},
		DetailedFeedback:       "The response shows basic understanding. Consider elaborating on key points.",
		ImprovementSuggestions: []string{"Provide more specific examples", "Elaborate on technical details"},
		FollowUpQuestions:      []string{"Can you provide a specific example?"},
		RedFlags:               []string{},
		PositiveIndicators:     []string{"Attempted to answer"},
	}
}

// fallbackReport is the fixed neutral-hire report used when synthesis fails.
func fallbackReport(now time.Time) session.Report {
	return session.Report{
		ExecutiveSummary: "Interview completed successfully with basic evaluation.",
		OverallRating:    "Hire",
		OverallScore:     75,
		CategoryScores: session.CategoryScores{
			TechnicalSkills:     75,
			Communication:       75,
			ProblemSolving:      75,
			CulturalFit:         75,
			LeadershipPotential: 70,
		},
		KeyStrengths:          []string{"Participated in interview", "Provided responses"},
		AreasForImprovement:   []string{"Continue learning and development"},
		DetailedAnalysis:      "The candidate participated in the interview process and provided responses to questions.",
		Recommendation:        "Consider for further evaluation based on role requirements.",
		NextSteps:             []string{"Technical assessment", "Team interview"},
		InterviewHighlights:   []string{"Completed interview process"},
		RedFlags:              []string{},
		SalaryRangeAssessment: "Market rate appropriate",
		GeneratedAt:           now,
	}
}
