package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the idle window after which a session expires.
const DefaultTimeout = 120 * time.Minute

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store owns all sessions for the lifetime of the process. The in-memory map
// is the source of truth; every mutation is mirrored to one JSON file per
// session under dataDir. Mirror failures are logged and swallowed; the
// in-memory copy stays authoritative.
//
// All operations serialize read-modify-write cycles under a single mutex, so
// concurrent calls against the same session cannot observe torn state.
type Store struct {
	dataDir string
	timeout time.Duration
	clock   Clock

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a Store rooted at dataDir and loads every existing session
// record into memory. A malformed record is logged and skipped; it does not
// block loading of others. timeout <= 0 selects DefaultTimeout.
func NewStore(dataDir string, timeout time.Duration) (*Store, error) {
	return newStoreWithClock(dataDir, timeout, realClock{})
}

func newStoreWithClock(dataDir string, timeout time.Duration, clock Clock) (*Store, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}

	s := &Store{
		dataDir:  dataDir,
		timeout:  timeout,
		clock:    clock,
		sessions: make(map[string]*Session),
	}
	s.loadAll()
	return s, nil
}

func (s *Store) loadAll() {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		slog.Error("reading session dir", "dir", s.dataDir, "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dataDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("reading session record", "path", path, "error", err)
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			slog.Error("skipping malformed session record", "path", path, "error", err)
			continue
		}
		if sess.ID == "" {
			sess.ID = strings.TrimSuffix(e.Name(), ".json")
		}
		s.sessions[sess.ID] = &sess
		slog.Info("loaded session", "session_id", sess.ID)
	}
}

// newSessionID returns an opaque unique id of the form session_<12 hex>.
func newSessionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "session_" + hex[:12]
}

// Create allocates a fresh session in state not_started and persists it.
// userEmail may be empty for anonymous sessions.
func (s *Store) Create(userEmail string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sess := &Session{
		SchemaVersion: schemaVersion,
		ID:            newSessionID(),
		UserEmail:     userEmail,
		Status:        StatusNotStarted,
		Questions:     []Question{},
		Answers:       []Answer{},
		CreatedAt:     now,
		LastUpdated:   now,
	}
	s.sessions[sess.ID] = sess
	s.persist(sess)
	slog.Info("created session", "session_id", sess.ID)
	return sess.ID
}

// Get returns a copy of the session, refreshing its last-access time.
// Absent and expired sessions both report false; an expired session is
// deleted as a side effect of being read.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return Session{}, false
	}
	sess.LastUpdated = s.clock.Now()
	s.persist(sess)
	return copySession(sess), true
}

// live returns the in-memory session if it exists and has not expired.
// Expired sessions are evicted here. Caller must hold mu.
func (s *Store) live(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		s.deleteLocked(id)
		return nil, false
	}
	return sess, true
}

func (s *Store) expired(sess *Session) bool {
	return s.clock.Now().Sub(sess.LastUpdated) > s.timeout
}

// Update applies apply to the stored session under the store lock, refreshes
// last_updated, and persists. Reports false when the session is absent or
// expired.
func (s *Store) Update(id string, apply func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return false
	}
	apply(sess)
	sess.LastUpdated = s.clock.Now()
	s.persist(sess)
	return true
}

// SetRole records the interview role.
func (s *Store) SetRole(id, role string) bool {
	return s.Update(id, func(sess *Session) { sess.Role = role })
}

// SetExperienceLevel records the candidate's experience level.
func (s *Store) SetExperienceLevel(id, experience string) bool {
	return s.Update(id, func(sess *Session) { sess.ExperienceLevel = experience })
}

// SetDifficulty records the interview difficulty.
func (s *Store) SetDifficulty(id, difficulty string) bool {
	return s.Update(id, func(sess *Session) { sess.Difficulty = difficulty })
}

// SetResume records the resume text.
func (s *Store) SetResume(id, resumeText string) bool {
	return s.Update(id, func(sess *Session) { sess.ResumeText = resumeText })
}

// InstallQuestions stores the generated question list, moves the session to
// in_progress, and stamps the interview start time.
func (s *Store) InstallQuestions(id string, questions []Question) bool {
	return s.Update(id, func(sess *Session) {
		sess.Status = StatusInProgress
		sess.Questions = append([]Question(nil), questions...)
		started := s.clock.Now()
		sess.StartedAt = &started
	})
}

// RecordAnswer appends an answer with its evaluation, recomputes the running
// score means over all recorded answers, and advances the question index to
// the new answer count. When every question has an answer the session
// transitions to completed. This is the only automatic completion path.
func (s *Store) RecordAnswer(id string, questionID int, answerText string, eval Evaluation) bool {
	ok := s.Update(id, func(sess *Session) {
		sess.Answers = append(sess.Answers, Answer{
			QuestionID:  questionID,
			AnswerText:  answerText,
			Evaluation:  eval,
			SubmittedAt: s.clock.Now(),
			Score:       eval.OverallScore,
		})
		sess.CurrentQuestionIndex = len(sess.Answers)
		sess.Scores = aggregateScores(sess.Answers)

		if len(sess.Answers) >= len(sess.Questions) {
			sess.Status = StatusCompleted
			done := s.clock.Now()
			sess.CompletedAt = &done
		}
	})
	if ok {
		slog.Info("recorded answer", "session_id", id, "question_id", questionID)
	}
	return ok
}

// aggregateScores recomputes the five-way mean from scratch.
func aggregateScores(answers []Answer) Scores {
	if len(answers) == 0 {
		return Scores{}
	}
	var overall, technical, communication, problemSolving, confidence int
	for _, a := range answers {
		overall += a.Evaluation.OverallScore
		technical += a.Evaluation.Scores.TechnicalAccuracy
		communication += a.Evaluation.Scores.CommunicationClarity
		problemSolving += a.Evaluation.Scores.ProblemSolving
		confidence += a.Evaluation.Scores.Confidence
	}
	n := len(answers)
	return Scores{
		Overall:        roundDiv(overall, n),
		Technical:      roundDiv(technical, n),
		Communication:  roundDiv(communication, n),
		ProblemSolving: roundDiv(problemSolving, n),
		Confidence:     roundDiv(confidence, n),
	}
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

// NextQuestion returns the question at the current index, or false when the
// interview is exhausted or the session is gone. Read-only: advancement
// happens only via RecordAnswer.
func (s *Store) NextQuestion(id string) (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return Question{}, false
	}
	if sess.CurrentQuestionIndex >= len(sess.Questions) {
		return Question{}, false
	}
	return sess.Questions[sess.CurrentQuestionIndex], true
}

// Progress returns answered/total counts, percentage, and current scores.
func (s *Store) Progress(id string) (Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return Progress{}, false
	}

	total := len(sess.Questions)
	answered := len(sess.Answers)
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(answered) / float64(total) * 100))
	}
	return Progress{
		SessionID:            sess.ID,
		Status:               sess.Status,
		TotalQuestions:       total,
		AnsweredQuestions:    answered,
		CurrentQuestionIndex: sess.CurrentQuestionIndex,
		ProgressPercentage:   pct,
		Scores:               sess.Scores,
		Role:                 sess.Role,
		ExperienceLevel:      sess.ExperienceLevel,
		Difficulty:           sess.Difficulty,
	}, true
}

// Summary returns the complete interview record with derived statistics.
func (s *Store) Summary(id string) (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return Summary{}, false
	}

	rate := 0.0
	if len(sess.Questions) > 0 {
		rate = float64(len(sess.Answers)) / float64(len(sess.Questions))
	}
	cp := copySession(sess)
	return Summary{
		Info: Info{
			SessionID:       cp.ID,
			Role:            cp.Role,
			ExperienceLevel: cp.ExperienceLevel,
			Difficulty:      cp.Difficulty,
			Status:          cp.Status,
			CreatedAt:       cp.CreatedAt,
			CompletedAt:     cp.CompletedAt,
		},
		Questions: cp.Questions,
		Answers:   cp.Answers,
		Scores:    cp.Scores,
		Statistics: Statistics{
			TotalQuestions:    len(cp.Questions),
			QuestionsAnswered: len(cp.Answers),
			AverageScore:      cp.Scores.Overall,
			CompletionRate:    rate,
		},
	}, true
}

// Delete removes the session from memory and disk. Idempotent: deleting an
// absent session reports false, not an error.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) bool {
	_, existed := s.sessions[id]
	delete(s.sessions, id)

	path := s.recordPath(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("removing session record", "path", path, "error", err)
	}
	if existed {
		slog.Info("deleted session", "session_id", id)
	}
	return existed
}

// SweepExpired evicts every session past the expiry window and returns how
// many were removed.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, sess := range s.sessions {
		if s.expired(sess) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.deleteLocked(id)
	}
	if len(expired) > 0 {
		slog.Info("swept expired sessions", "count", len(expired))
	}
	return len(expired)
}

// Stats counts sessions by status after sweeping expired ones.
func (s *Store) Stats() Stats {
	s.SweepExpired()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{TotalActiveSessions: len(s.sessions)}
	for _, sess := range s.sessions {
		switch sess.Status {
		case StatusCompleted:
			st.CompletedSessions++
		case StatusInProgress:
			st.InProgressSessions++
		}
	}
	st.NotStartedSessions = st.TotalActiveSessions - st.CompletedSessions - st.InProgressSessions
	return st
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dataDir, id+".json")
}

// persist mirrors the whole session to its durable record. Failures are
// logged and swallowed. Caller must hold mu.
func (s *Store) persist(sess *Session) {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		slog.Error("serializing session", "session_id", sess.ID, "error", err)
		return
	}
	path := s.recordPath(sess.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("writing session record", "path", path, "error", err)
	}
}

// copySession returns a value copy with cloned slices so callers can never
// reach back into store-owned state.
func copySession(sess *Session) Session {
	cp := *sess
	cp.Questions = append([]Question(nil), sess.Questions...)
	cp.Answers = append([]Answer(nil), sess.Answers...)
	if sess.StartedAt != nil {
		t := *sess.StartedAt
		cp.StartedAt = &t
	}
	if sess.CompletedAt != nil {
		t := *sess.CompletedAt
		cp.CompletedAt = &t
	}
	if sess.FinalReport != nil {
		r := *sess.FinalReport
		cp.FinalReport = &r
	}
	return cp
}
