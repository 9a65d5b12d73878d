package session

import "time"

// schemaVersion is written into every persisted session record so that
// future format changes can be detected on load.
const schemaVersion = 1

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Question is a single interview question. Questions are immutable once
// installed into a session.
type Question struct {
	ID                 int      `json:"id"`
	Question           string   `json:"question"`
	Type               string   `json:"type"`
	Difficulty         string   `json:"difficulty"`
	FollowUps          []string `json:"follow_ups"`
	EvaluationCriteria []string `json:"evaluation_criteria"`
	ExpectedTopics     []string `json:"expected_topics"`
}

// SubScores holds the five per-dimension scores of one evaluation,
// each in [0,100].
type SubScores struct {
	TechnicalAccuracy    int `json:"technical_accuracy"`
	CommunicationClarity int `json:"communication_clarity"`
	DepthOfKnowledge     int `json:"depth_of_knowledge"`
	ProblemSolving       int `json:"problem_solving"`
	Confidence           int `json:"confidence"`
}

// Evaluation is the structured score+feedback result for one answer.
type Evaluation struct {
	OverallScore           int       `json:"overall_score"`
	Scores                 SubScores `json:"scores"`
	Strengths              []string  `json:"strengths"`
	Weaknesses             []string  `json:"weaknesses"`
	DetailedFeedback       string    `json:"detailed_feedback"`
	ImprovementSuggestions []string  `json:"improvement_suggestions"`
	FollowUpQuestions      []string  `json:"follow_up_questions"`
	RedFlags               []string  `json:"red_flags"`
	PositiveIndicators     []string  `json:"positive_indicators"`
}

// Answer is one recorded answer with its evaluation. Answers are append-only.
// Score denormalizes Evaluation.OverallScore for cheap aggregation.
type Answer struct {
	QuestionID  int        `json:"question_id"`
	AnswerText  string     `json:"answer_text"`
	Evaluation  Evaluation `json:"evaluation"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Score       int        `json:"score"`
}

// Scores is the running five-way mean over all answers recorded so far.
// It is recomputed from scratch on every new answer.
type Scores struct {
	Overall        int `json:"overall"`
	Technical      int `json:"technical"`
	Communication  int `json:"communication"`
	ProblemSolving int `json:"problem_solving"`
	Confidence     int `json:"confidence"`
}

// CategoryScores are the five category scores of a final report.
type CategoryScores struct {
	TechnicalSkills     int `json:"technical_skills"`
	Communication       int `json:"communication"`
	ProblemSolving      int `json:"problem_solving"`
	CulturalFit         int `json:"cultural_fit"`
	LeadershipPotential int `json:"leadership_potential"`
}

// QAPair summarizes one question/answer exchange inside a report.
type QAPair struct {
	QuestionID int       `json:"question_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Score      int       `json:"score"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Report is the final hire/no-hire assessment for a completed session.
// A session holds at most one.
type Report struct {
	ExecutiveSummary      string         `json:"executive_summary"`
	OverallRating         string         `json:"overall_rating"`
	OverallScore          int            `json:"overall_score"`
	CategoryScores        CategoryScores `json:"category_scores"`
	KeyStrengths          []string       `json:"key_strengths"`
	AreasForImprovement   []string       `json:"areas_for_improvement"`
	DetailedAnalysis      string         `json:"detailed_analysis"`
	Recommendation        string         `json:"recommendation"`
	NextSteps             []string       `json:"next_steps"`
	InterviewHighlights   []string       `json:"interview_highlights"`
	RedFlags              []string       `json:"red_flags"`
	SalaryRangeAssessment string         `json:"salary_range_assessment"`
	GeneratedAt           time.Time      `json:"generated_at"`
	QASummary             []QAPair       `json:"qa_summary"`
}

// Session is one candidate's interview attempt, from setup through report.
// Sessions are owned exclusively by the Store; callers receive copies.
type Session struct {
	SchemaVersion        int        `json:"schema_version"`
	ID                   string     `json:"session_id"`
	UserEmail            string     `json:"user_email,omitempty"`
	Status               Status     `json:"status"`
	Role                 string     `json:"role,omitempty"`
	ExperienceLevel      string     `json:"experience_level,omitempty"`
	Difficulty           string     `json:"difficulty,omitempty"`
	ResumeText           string     `json:"resume_text,omitempty"`
	Questions            []Question `json:"questions"`
	Answers              []Answer   `json:"answers"`
	CurrentQuestionIndex int        `json:"current_question_index"`
	Scores               Scores     `json:"scores"`
	CreatedAt            time.Time  `json:"created_at"`
	LastUpdated          time.Time  `json:"last_updated"`
	StartedAt            *time.Time `json:"interview_started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	FinalReport          *Report    `json:"final_report,omitempty"`
}

// Progress is a point-in-time view of how far an interview has advanced.
type Progress struct {
	SessionID            string `json:"session_id"`
	Status               Status `json:"status"`
	TotalQuestions       int    `json:"total_questions"`
	AnsweredQuestions    int    `json:"answered_questions"`
	CurrentQuestionIndex int    `json:"current_question_index"`
	ProgressPercentage   int    `json:"progress_percentage"`
	Scores               Scores `json:"scores"`
	Role                 string `json:"role,omitempty"`
	ExperienceLevel      string `json:"experience_level,omitempty"`
	Difficulty           string `json:"difficulty,omitempty"`
}

// Info is the session metadata block of a Summary.
type Info struct {
	SessionID       string     `json:"session_id"`
	Role            string     `json:"role,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Statistics are derived counts attached to a Summary.
type Statistics struct {
	TotalQuestions    int     `json:"total_questions"`
	QuestionsAnswered int     `json:"questions_answered"`
	AverageScore      int     `json:"average_score"`
	CompletionRate    float64 `json:"completion_rate"`
}

// Summary is the complete interview record for one session.
type Summary struct {
	Info       Info       `json:"session_info"`
	Questions  []Question `json:"questions"`
	Answers    []Answer   `json:"answers"`
	Scores     Scores     `json:"scores"`
	Statistics Statistics `json:"statistics"`
}

// Stats are store-wide session counts, computed after an expiry sweep.
type Stats struct {
	TotalActiveSessions int `json:"total_active_sessions"`
	CompletedSessions   int `json:"completed_sessions"`
	InProgressSessions  int `json:"in_progress_sessions"`
	NotStartedSessions  int `json:"not_started_sessions"`
}
