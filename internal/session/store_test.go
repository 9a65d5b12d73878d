package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store, err := newStoreWithClock(t.TempDir(), DefaultTimeout, clock)
	if err != nil {
		t.Fatalf("newStoreWithClock: %v", err)
	}
	return store, clock
}

func evalWithScore(overall int) Evaluation {
	return Evaluation{
		OverallScore: overall,
		Scores: SubScores{
			TechnicalAccuracy:    overall,
			CommunicationClarity: overall,
			DepthOfKnowledge:     overall,
			ProblemSolving:       overall,
			Confidence:           overall,
		},
	}
}

func threeQuestions() []Question {
	return []Question{
		{ID: 1, Question: "What is a goroutine?", Type: "technical", Difficulty: "medium"},
		{ID: 2, Question: "Describe a production incident you handled.", Type: "behavioral", Difficulty: "medium"},
		{ID: 3, Question: "How would you shard a hot table?", Type: "situational", Difficulty: "medium"},
	}
}

func TestCreateInitialState(t *testing.T) {
	store, _ := newTestStore(t)

	id := store.Create("candidate@example.com")
	sess, ok := store.Get(id)
	if !ok {
		t.Fatalf("Get(%s) = not found", id)
	}

	if sess.Status != StatusNotStarted {
		t.Errorf("status = %q, want %q", sess.Status, StatusNotStarted)
	}
	if sess.SchemaVersion != schemaVersion {
		t.Errorf("schema version = %d, want %d", sess.SchemaVersion, schemaVersion)
	}
	if len(sess.Questions) != 0 || len(sess.Answers) != 0 {
		t.Errorf("new session should have empty collections")
	}
	if sess.Scores != (Scores{}) {
		t.Errorf("new session scores = %+v, want zeroed", sess.Scores)
	}
}

func TestIndexTracksAnswerCount(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")
	store.InstallQuestions(id, threeQuestions())

	for i := 1; i <= 3; i++ {
		if !store.RecordAnswer(id, i, "an answer", evalWithScore(80)) {
			t.Fatalf("RecordAnswer #%d failed", i)
		}
		sess, _ := store.Get(id)
		if sess.CurrentQuestionIndex != len(sess.Answers) {
			t.Errorf("after answer %d: index = %d, answers = %d", i, sess.CurrentQuestionIndex, len(sess.Answers))
		}
	}
}

func TestRunningMeanRecomputed(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")
	store.InstallQuestions(id, threeQuestions())

	wantMeans := []int{60, 70, 80}
	for i, score := range []int{60, 80, 100} {
		store.RecordAnswer(id, i+1, "an answer", evalWithScore(score))
		sess, _ := store.Get(id)
		if sess.Scores.Overall != wantMeans[i] {
			t.Errorf("after score %d: overall mean = %d, want %d", score, sess.Scores.Overall, wantMeans[i])
		}
	}
}

func TestCompletionOnLastAnswer(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")
	store.InstallQuestions(id, threeQuestions())

	store.RecordAnswer(id, 1, "a", evalWithScore(70))
	store.RecordAnswer(id, 2, "b", evalWithScore(70))

	sess, _ := store.Get(id)
	if sess.Status != StatusInProgress {
		t.Errorf("after 2/3 answers: status = %q, want %q", sess.Status, StatusInProgress)
	}
	if sess.CompletedAt != nil {
		t.Errorf("after 2/3 answers: completed_at should be unset")
	}

	store.RecordAnswer(id, 3, "c", evalWithScore(70))
	sess, _ = store.Get(id)
	if sess.Status != StatusCompleted {
		t.Errorf("after 3/3 answers: status = %q, want %q", sess.Status, StatusCompleted)
	}
	if sess.CompletedAt == nil {
		t.Errorf("after 3/3 answers: completed_at not stamped")
	}
}

func TestProgressPercentage(t *testing.T) {
	store, _ := newTestStore(t)

	// Zero questions must not divide by zero.
	id := store.Create("")
	p, ok := store.Progress(id)
	if !ok {
		t.Fatal("Progress: session not found")
	}
	if p.ProgressPercentage != 0 {
		t.Errorf("empty session percentage = %d, want 0", p.ProgressPercentage)
	}

	store.InstallQuestions(id, threeQuestions())
	store.RecordAnswer(id, 1, "a", evalWithScore(50))

	p, _ = store.Progress(id)
	if p.ProgressPercentage != 33 {
		t.Errorf("1/3 answered: percentage = %d, want 33", p.ProgressPercentage)
	}
	if p.TotalQuestions != 3 || p.AnsweredQuestions != 1 {
		t.Errorf("counts = %d/%d, want 1/3", p.AnsweredQuestions, p.TotalQuestions)
	}
}

func TestExpiredSessionDeletedOnRead(t *testing.T) {
	store, clock := newTestStore(t)
	id := store.Create("")

	clock.advance(DefaultTimeout + time.Minute)

	if _, ok := store.Get(id); ok {
		t.Fatal("expired session should not be readable")
	}
	// Second read confirms the lazy eviction removed it.
	if _, ok := store.Get(id); ok {
		t.Fatal("expired session should stay gone")
	}
	if _, err := os.Stat(filepath.Join(store.dataDir, id+".json")); !os.IsNotExist(err) {
		t.Errorf("durable record should be removed on eviction")
	}
}

func TestAccessRefreshesExpiry(t *testing.T) {
	store, clock := newTestStore(t)
	id := store.Create("")

	// Touch the session just inside the window, then pass the original
	// deadline: the refresh must keep it alive.
	clock.advance(DefaultTimeout - time.Minute)
	if _, ok := store.Get(id); !ok {
		t.Fatal("session expired too early")
	}
	clock.advance(2 * time.Minute)
	if _, ok := store.Get(id); !ok {
		t.Fatal("refreshed session should still be alive")
	}
}

func TestNextQuestionDoesNotAdvance(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")
	store.InstallQuestions(id, threeQuestions())

	q1, ok := store.NextQuestion(id)
	if !ok || q1.ID != 1 {
		t.Fatalf("NextQuestion = %+v, %v; want question 1", q1, ok)
	}
	q2, _ := store.NextQuestion(id)
	if q2.ID != 1 {
		t.Errorf("repeated NextQuestion advanced to %d; advancement is RecordAnswer's job", q2.ID)
	}

	store.RecordAnswer(id, 1, "a", evalWithScore(70))
	q3, _ := store.NextQuestion(id)
	if q3.ID != 2 {
		t.Errorf("after one answer NextQuestion = %d, want 2", q3.ID)
	}
}

func TestNextQuestionExhausted(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")
	store.InstallQuestions(id, threeQuestions()[:1])
	store.RecordAnswer(id, 1, "a", evalWithScore(70))

	if _, ok := store.NextQuestion(id); ok {
		t.Error("exhausted interview should return no question")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")

	if !store.Delete(id) {
		t.Error("first delete should report true")
	}
	if store.Delete(id) {
		t.Error("second delete should report false, not error")
	}
	if store.Delete("session_000000000000") {
		t.Error("deleting unknown id should report false")
	}
}

func TestSummaryStatistics(t *testing.T) {
	store, _ := newTestStore(t)
	id := store.Create("")
	store.SetRole(id, "Backend Developer")
	store.InstallQuestions(id, threeQuestions())
	store.RecordAnswer(id, 1, "a", evalWithScore(90))

	sum, ok := store.Summary(id)
	if !ok {
		t.Fatal("Summary: session not found")
	}
	if sum.Info.Role != "Backend Developer" {
		t.Errorf("role = %q", sum.Info.Role)
	}
	if got := sum.Statistics.CompletionRate; got < 0.33 || got > 0.34 {
		t.Errorf("completion rate = %v, want ~1/3", got)
	}

	// Zero-question session guards completion rate to 0.
	empty := store.Create("")
	sum, _ = store.Summary(empty)
	if sum.Statistics.CompletionRate != 0 {
		t.Errorf("empty session completion rate = %v, want 0", sum.Statistics.CompletionRate)
	}
}

func TestReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	store, err := newStoreWithClock(dir, DefaultTimeout, clock)
	if err != nil {
		t.Fatalf("newStoreWithClock: %v", err)
	}
	id := store.Create("someone@example.com")
	store.InstallQuestions(id, threeQuestions())
	store.RecordAnswer(id, 1, "an answer", evalWithScore(85))

	// A corrupt record must not block loading of the good one.
	if err := os.WriteFile(filepath.Join(dir, "session_bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded, err := newStoreWithClock(dir, DefaultTimeout, clock)
	if err != nil {
		t.Fatalf("reloading store: %v", err)
	}
	sess, ok := reloaded.Get(id)
	if !ok {
		t.Fatalf("session %s not loaded from disk", id)
	}
	if len(sess.Questions) != 3 || len(sess.Answers) != 1 {
		t.Errorf("reloaded session has %d questions, %d answers", len(sess.Questions), len(sess.Answers))
	}
	if sess.Answers[0].Score != 85 {
		t.Errorf("reloaded answer score = %d, want 85", sess.Answers[0].Score)
	}
}

func TestSweepAndStats(t *testing.T) {
	store, clock := newTestStore(t)

	stale := store.Create("")
	clock.advance(DefaultTimeout + time.Minute)

	fresh := store.Create("")
	store.InstallQuestions(fresh, threeQuestions())

	done := store.Create("")
	store.InstallQuestions(done, threeQuestions()[:1])
	store.RecordAnswer(done, 1, "a", evalWithScore(70))

	if n := store.SweepExpired(); n != 1 {
		t.Errorf("SweepExpired = %d, want 1", n)
	}
	if _, ok := store.Get(stale); ok {
		t.Error("stale session survived sweep")
	}

	st := store.Stats()
	if st.TotalActiveSessions != 2 {
		t.Errorf("total = %d, want 2", st.TotalActiveSessions)
	}
	if st.InProgressSessions != 1 || st.CompletedSessions != 1 || st.NotStartedSessions != 0 {
		t.Errorf("stats = %+v", st)
	}
}
