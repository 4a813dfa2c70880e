package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-interview-service/internal/models"
)

type fakeStore struct {
	session  models.Session
	statuses []models.Status
	stored   *models.FeedbackReport
	getErr   error
}

func (f *fakeStore) Get(string) (models.Session, error) {
	return f.session, f.getErr
}

func (f *fakeStore) UpdateStatus(_ string, status models.Status) error {
	f.statuses = append(f.statuses, status)
	f.session.Status = status
	return nil
}

func (f *fakeStore) StoreFeedback(_ string, report models.FeedbackReport) error {
	f.stored = &report
	f.session.Status = models.StatusEvaluated
	return nil
}

// scriptedGen returns the queued responses in order; a nil entry means an error.
type scriptedGen struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (g *scriptedGen) GenerateJSON(_ context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

type feedbackRecorder struct {
	sessionIDs []string
}

func (p *feedbackRecorder) PublishFeedback(_ context.Context, sessionID string, _ any) error {
	p.sessionIDs = append(p.sessionIDs, sessionID)
	return nil
}

func completedSession() models.Session {
	return models.Session{
		ID:     "sess-1",
		Status: models.StatusCompleted,
		Config: models.InterviewConfig{
			CandidateName: "Alex",
			Company:       "Google",
			Position:      "Software Engineer",
		},
		Questions: []models.Question{{ID: "q1", Question: "Tell me about a hard bug."}},
		Transcript: []models.TranscriptEntry{
			{Role: models.RoleInterviewer, Text: "Tell me about a hard bug.", QuestionID: "q1"},
			{Role: models.RoleCandidate, Text: "It was a race condition."},
		},
	}
}

const evalJSON = `{"overall_score": 7.5, "evaluations": [{"question_id": "q1", "overall_score": 7.5}]}`
const feedbackJSON = `{"overall_score": 7.5, "overall_grade": "B", "summary": "Strong debugging story."}`

func TestRunProducesReport(t *testing.T) {
	store := &fakeStore{session: completedSession()}
	gen := &scriptedGen{responses: []string{evalJSON, feedbackJSON}}
	pub := &feedbackRecorder{}
	p := New(store, gen, pub, 2, time.Millisecond)

	report, err := p.Run(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Summary != "Strong debugging story." {
		t.Errorf("Unexpected summary: %q", report.Summary)
	}
	if report.SessionID != "sess-1" || report.CandidateName != "Alex" {
		t.Errorf("Report identity not filled: %+v", report)
	}
	if len(report.PerQuestionFeedback) != 1 {
		t.Errorf("Expected per-question feedback from the evaluator stage, got %d", len(report.PerQuestionFeedback))
	}
	if store.stored == nil {
		t.Fatal("Expected report to be stored")
	}
	if store.session.Status != models.StatusEvaluated {
		t.Errorf("Expected final status evaluated, got %s", store.session.Status)
	}
	if len(pub.sessionIDs) != 1 {
		t.Errorf("Expected one feedback publish, got %d", len(pub.sessionIDs))
	}
}

func TestRunIncludesJDSummaryInPrompts(t *testing.T) {
	sess := completedSession()
	sess.JDSummary = "Backend role focused on distributed systems and on-call ownership."
	store := &fakeStore{session: sess}
	gen := &scriptedGen{responses: []string{evalJSON, feedbackJSON}}
	p := New(store, gen, nil, 0, time.Millisecond)

	if _, err := p.Run(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("Expected 2 stage prompts, got %d", len(gen.prompts))
	}
	for i, prompt := range gen.prompts {
		if !strings.Contains(prompt, sess.JDSummary) {
			t.Errorf("Stage %d prompt missing JD summary", i+1)
		}
	}
}

func TestRunOmitsJDSummaryWhenAbsent(t *testing.T) {
	store := &fakeStore{session: completedSession()}
	gen := &scriptedGen{responses: []string{evalJSON, feedbackJSON}}
	p := New(store, gen, nil, 0, time.Millisecond)

	if _, err := p.Run(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, prompt := range gen.prompts {
		if strings.Contains(prompt, "job description") {
			t.Errorf("Stage %d prompt should not mention a job description", i+1)
		}
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	store := &fakeStore{session: completedSession()}
	gen := &scriptedGen{
		errs:      []error{errors.New("timeout"), errors.New("timeout"), nil, nil},
		responses: []string{"", "", evalJSON, feedbackJSON},
	}
	p := New(store, gen, nil, 2, time.Millisecond)

	if _, err := p.Run(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Run should succeed after retries: %v", err)
	}
	// 2 failures + 1 success on stage one, 1 success on stage two.
	if gen.calls != 4 {
		t.Errorf("Expected 4 model calls, got %d", gen.calls)
	}
}

func TestRunRevertsStatusWhenRetriesExhaust(t *testing.T) {
	store := &fakeStore{session: completedSession()}
	gen := &scriptedGen{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	p := New(store, gen, nil, 2, time.Millisecond)

	_, err := p.Run(context.Background(), "sess-1")
	if err == nil {
		t.Fatal("Expected failure when all attempts exhaust")
	}
	if gen.calls != 3 {
		t.Errorf("Expected exactly 3 attempts (1 + 2 retries), got %d", gen.calls)
	}
	if store.session.Status != models.StatusCompleted {
		t.Errorf("Expected status reverted to completed, got %s", store.session.Status)
	}
	if store.stored != nil {
		t.Error("No report must be stored on failure")
	}
}

func TestRunRejectsUnreadySessions(t *testing.T) {
	for _, status := range []models.Status{models.StatusCreated, models.StatusInProgress, models.StatusEvaluated} {
		sess := completedSession()
		sess.Status = status
		store := &fakeStore{session: sess}
		p := New(store, &scriptedGen{}, nil, 0, time.Millisecond)

		_, err := p.Run(context.Background(), "sess-1")
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("Status %s: expected ErrNotReady, got %v", status, err)
		}
		if len(store.statuses) != 0 {
			t.Errorf("Status %s: precondition failure must not mutate state", status)
		}
	}
}

func TestRunAllowsRerunFromEvaluating(t *testing.T) {
	sess := completedSession()
	sess.Status = models.StatusEvaluating
	store := &fakeStore{session: sess}
	gen := &scriptedGen{responses: []string{evalJSON, feedbackJSON}}
	p := New(store, gen, nil, 0, time.Millisecond)

	if _, err := p.Run(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Run from evaluating should be allowed: %v", err)
	}
}

func TestRunFallsBackToRawText(t *testing.T) {
	store := &fakeStore{session: completedSession()}
	gen := &scriptedGen{responses: []string{evalJSON, "The candidate did quite well overall."}}
	p := New(store, gen, nil, 0, time.Millisecond)

	report, err := p.Run(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Unparseable feedback must not fail the pipeline: %v", err)
	}
	if report.RawText != "The candidate did quite well overall." {
		t.Errorf("Expected raw text fallback, got %q", report.RawText)
	}
	if store.session.Status != models.StatusEvaluated {
		t.Errorf("Expected status evaluated, got %s", store.session.Status)
	}
}

func TestRunStripsCodeFences(t *testing.T) {
	store := &fakeStore{session: completedSession()}
	gen := &scriptedGen{responses: []string{
		"```json\n" + evalJSON + "\n```",
		"```json\n" + feedbackJSON + "\n```",
	}}
	p := New(store, gen, nil, 0, time.Millisecond)

	report, err := p.Run(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.RawText != "" {
		t.Errorf("Fenced JSON should parse structurally, got raw text %q", report.RawText)
	}
	if report.OverallGrade != "B" {
		t.Errorf("Expected grade B, got %q", report.OverallGrade)
	}
}
