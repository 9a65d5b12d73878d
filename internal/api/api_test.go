package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avercier/parley/internal/assessor"
	"github.com/avercier/parley/internal/config"
	"github.com/avercier/parley/internal/interview"
	"github.com/avercier/parley/internal/session"
)

type stubProvider struct {
	questions []session.Question
	evalScore int
	degraded  bool
}

func (p *stubProvider) outcome() assessor.Outcome {
	if p.degraded {
		return assessor.Outcome{Degraded: true, Reason: "stub failure"}
	}
	return assessor.Outcome{}
}

func (p *stubProvider) GenerateQuestions(_ context.Context, role, experience, difficulty, resumeText string, count int) ([]session.Question, assessor.Outcome) {
	return p.questions, p.outcome()
}

func (p *stubProvider) EvaluateAnswer(_ context.Context, question, answer, role, experience string, criteria []string) (session.Evaluation, assessor.Outcome) {
	return session.Evaluation{OverallScore: p.evalScore}, p.outcome()
}

func (p *stubProvider) GenerateFollowUp(_ context.Context, originalQuestion, answer, role, interviewContext string) (string, assessor.Outcome) {
	return "And what would you do differently?", p.outcome()
}

func (p *stubProvider) GenerateReport(_ context.Context, candidate assessor.CandidateData, digest assessor.SessionDigest) (session.Report, assessor.Outcome) {
	return session.Report{OverallScore: 80, OverallRating: "Hire"}, p.outcome()
}

func (p *stubProvider) AnswerGeneralQuestion(_ context.Context, question, questionContext string) (string, assessor.Outcome) {
	return "A thorough answer about python and databases.", p.outcome()
}

func testConfig() config.Config {
	return config.Config{
		Interview: config.InterviewConfig{
			QuestionCount:    10,
			MaxQuestionCount: 20,
			MinAnswerLength:  10,
			MaxAnswerLength:  5000,
		},
	}
}

func fiveQuestions() []session.Question {
	qs := make([]session.Question, 5)
	for i := range qs {
		qs[i] = session.Question{ID: i + 1, Question: fmt.Sprintf("Question %d?", i+1), Type: "technical"}
	}
	return qs
}

func newTestServer(t *testing.T, p *stubProvider) (*httptest.Server, *session.Store) {
	t.Helper()
	store, err := session.NewStore(t.TempDir(), 2*time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc := interview.NewService(p, store)
	srv := httptest.NewServer(NewHandler(Deps{
		Service: svc,
		Store:   store,
		Config:  testConfig(),
	}))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/interview/create-session", map[string]string{"user_email": "x@example.com"})
	body := decodeBody(t, resp)
	id, _ := body["session_id"].(string)
	if id == "" {
		t.Fatalf("no session_id in %v", body)
	}
	return id
}

func setupSession(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/interview/setup", map[string]any{
		"session_id":     id,
		"role":           "Backend Developer",
		"question_count": 5,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setup status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestLoginSuccess(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if !strings.HasPrefix(token, "token_") {
		t.Errorf("token = %q", token)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/validate-token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	vresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if v := decodeBody(t, vresp); v["valid"] != true {
		t.Errorf("validate = %v", v)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGuestSession(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/auth/guest-session", map[string]string{})
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if !strings.HasPrefix(token, "guest_token_") {
		t.Errorf("token = %q", token)
	}
}

func TestSetupValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	id := createSession(t, srv)

	resp := postJSON(t, srv.URL+"/api/interview/setup", map[string]any{"session_id": id})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing role status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/interview/setup", map[string]any{
		"session_id":     id,
		"role":           "Backend Developer",
		"question_count": 100,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized count status = %d, want 400", resp.StatusCode)
	}
}

func TestSetupUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	resp := postJSON(t, srv.URL+"/api/interview/setup", map[string]any{
		"session_id": "session_missing",
		"role":       "Backend Developer",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestInterviewFlow(t *testing.T) {
	p := &stubProvider{questions: fiveQuestions(), evalScore: 80}
	srv, _ := newTestServer(t, p)
	id := createSession(t, srv)
	setupSession(t, srv, id)

	resp, err := http.Get(srv.URL + "/api/interview/next-question/" + id)
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if body["total_questions"] != float64(5) {
		t.Errorf("total_questions = %v", body["total_questions"])
	}

	answer := postJSON(t, srv.URL+"/api/evaluation/submit-answer", map[string]any{
		"session_id":    id,
		"question_id":   1,
		"question_text": "Question 1?",
		"answer_text":   "A sufficiently long answer describing the approach.",
	})
	abody := decodeBody(t, answer)
	if abody["success"] != true || abody["overall_score"] != float64(80) {
		t.Errorf("submit-answer = %v", abody)
	}

	prog, err := http.Get(srv.URL + "/api/interview/progress/" + id)
	if err != nil {
		t.Fatal(err)
	}
	pbody := decodeBody(t, prog)
	if pbody["answered_questions"] != float64(1) {
		t.Errorf("answered = %v", pbody["answered_questions"])
	}
}

func TestSubmitAnswerTooShort(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	id := createSession(t, srv)
	setupSession(t, srv, id)

	resp := postJSON(t, srv.URL+"/api/evaluation/submit-answer", map[string]any{
		"session_id":  id,
		"question_id": 1,
		"answer_text": "short",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerateReportAndDownload(t *testing.T) {
	p := &stubProvider{questions: fiveQuestions(), evalScore: 75}
	srv, _ := newTestServer(t, p)
	id := createSession(t, srv)
	setupSession(t, srv, id)

	resp := postJSON(t, srv.URL+"/api/evaluation/submit-answer", map[string]any{
		"session_id":  id,
		"question_id": 1,
		"answer_text": "A sufficiently long answer describing the approach.",
	})
	resp.Body.Close()

	gen := postJSON(t, srv.URL+"/api/reports/generate", map[string]string{"session_id": id})
	gbody := decodeBody(t, gen)
	if gbody["success"] != true || gbody["overall_score"] != float64(80) {
		t.Errorf("generate = %v", gbody)
	}

	dl, err := http.Get(srv.URL + "/api/reports/download/" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestDownloadBeforeGenerate(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	id := createSession(t, srv)

	resp, err := http.Get(srv.URL + "/api/reports/download/" + id)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyticsRequiresAnswers(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	id := createSession(t, srv)
	setupSession(t, srv, id)

	resp, err := http.Get(srv.URL + "/api/reports/analytics/" + id)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCompareSessions(t *testing.T) {
	p := &stubProvider{questions: fiveQuestions(), evalScore: 60}
	srv, _ := newTestServer(t, p)

	first := createSession(t, srv)
	setupSession(t, srv, first)
	resp := postJSON(t, srv.URL+"/api/evaluation/submit-answer", map[string]any{
		"session_id": first, "question_id": 1,
		"answer_text": "A sufficiently long answer describing the approach.",
	})
	resp.Body.Close()

	p.evalScore = 90
	second := createSession(t, srv)
	setupSession(t, srv, second)
	resp = postJSON(t, srv.URL+"/api/evaluation/submit-answer", map[string]any{
		"session_id": second, "question_id": 1,
		"answer_text": "A sufficiently long answer describing the approach.",
	})
	resp.Body.Close()

	cmp := postJSON(t, srv.URL+"/api/reports/compare-sessions", map[string]any{
		"session_ids": []string{first, second},
	})
	body := decodeBody(t, cmp)
	if body["best_session"] != second {
		t.Errorf("best_session = %v, want %s", body["best_session"], second)
	}
	scoreRange, ok := body["score_range"].(map[string]any)
	if !ok || scoreRange["min"].(float64) >= scoreRange["max"].(float64) {
		t.Errorf("score_range = %v", body["score_range"])
	}
	if dist, ok := body["difficulty_distribution"].(map[string]any); !ok || len(dist) == 0 {
		t.Errorf("difficulty_distribution = %v", body["difficulty_distribution"])
	}
}

func TestAskQuestionValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/questions/ask", map[string]string{"question": "hi"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAskQuestion(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/questions/ask", map[string]string{
		"question": "What is a database index?",
	})
	body := decodeBody(t, resp)
	if body["success"] != true || body["answer"] == "" {
		t.Errorf("ask = %v", body)
	}
}

func TestOptionsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	for _, path := range []string{"roles", "experience-levels", "difficulties"} {
		resp, err := http.Get(srv.URL + "/api/interview/options/" + path)
		if err != nil {
			t.Fatal(err)
		}
		body := decodeBody(t, resp)
		if opts, ok := body["options"].([]any); !ok || len(opts) == 0 {
			t.Errorf("%s options = %v", path, body)
		}
	}
}

func TestScoringCriteria(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp, err := http.Get(srv.URL + "/api/evaluation/scoring-criteria")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	criteria, ok := body["criteria"].([]any)
	if !ok || len(criteria) != 5 {
		t.Errorf("criteria = %v", body)
	}
}

func TestDeleteSession(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{})
	id := createSession(t, srv)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/interview/session/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, ok := store.Get(id); ok {
		t.Error("session still present after delete")
	}
}

func TestLegacySetterCreatesSession(t *testing.T) {
	srv, store := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/interview/set-role", map[string]string{"role": "Data Scientist"})
	body := decodeBody(t, resp)
	id, _ := body["session_id"].(string)
	if id == "" {
		t.Fatalf("no session_id in %v", body)
	}
	sess, ok := store.Get(id)
	if !ok || sess.Role != "Data Scientist" {
		t.Errorf("session role = %q, ok = %v", sess.Role, ok)
	}
}

func TestGenerateQuestionsFromStoredFields(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	id := createSession(t, srv)
	setupSession(t, srv, id)

	resp := postJSON(t, srv.URL+"/api/interview/generate-questions", map[string]any{
		"session_id":     id,
		"question_count": 5,
	})
	body := decodeBody(t, resp)
	if body["success"] != true || body["total_questions"] != float64(5) {
		t.Errorf("generate-questions = %v", body)
	}
}

func TestGenerateQuestionsWithoutRole(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{questions: fiveQuestions()})
	id := createSession(t, srv)

	resp := postJSON(t, srv.URL+"/api/interview/generate-questions", map[string]any{"session_id": id})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSetResumeTooShort(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	id := createSession(t, srv)

	resp := postJSON(t, srv.URL+"/api/interview/set-resume", map[string]string{
		"session_id":  id,
		"resume_text": "too short",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

// newMultipart writes a multipart body with the given form fields and one
// file part named "file", returning the content type.
func newMultipart(buf *bytes.Buffer, fields map[string]string, filename string, content []byte) string {
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("file", filename)
	part.Write(content)
	mw.Close()
	return mw.FormDataContentType()
}

func TestUploadResumeRejectsNonPDF(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	id := createSession(t, srv)

	var buf bytes.Buffer
	mw := newMultipart(&buf, map[string]string{"session_id": id}, "resume.txt", []byte("not a pdf"))
	resp, err := http.Post(srv.URL+"/api/interview/upload-resume", mw, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExplainConceptDefaultsLevel(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/questions/explain-concept", map[string]string{"concept": "closures"})
	body := decodeBody(t, resp)
	if body["level"] != "intermediate" || body["explanation"] == "" {
		t.Errorf("explain = %v", body)
	}
}

func TestCodeReviewRequiresCode(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/questions/code-review", map[string]string{"language": "go"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCodeReview(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/questions/code-review", map[string]any{
		"code":        "func add(a, b int) int { return a + b }",
		"language":    "go",
		"focus_areas": []string{"readability"},
	})
	body := decodeBody(t, resp)
	if body["success"] != true || body["review"] == "" {
		t.Errorf("review = %v", body)
	}
}

func TestInterviewTipsCapped(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp := postJSON(t, srv.URL+"/api/questions/interview-tips", map[string]string{
		"role":             "Software Engineer",
		"experience_level": "entry",
	})
	body := decodeBody(t, resp)
	tips, ok := body["tips"].([]any)
	if !ok || len(tips) == 0 || len(tips) > 10 {
		t.Errorf("tips = %v", body)
	}
	if body["interview_type"] != "technical" {
		t.Errorf("interview_type = %v, want technical", body["interview_type"])
	}
}

func TestTrendingTopics(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{})
	resp, err := http.Get(srv.URL + "/api/questions/trending-topics")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if hot, ok := body["hot_technologies"].([]any); !ok || len(hot) != 5 {
		t.Errorf("trending = %v", body)
	}
}
