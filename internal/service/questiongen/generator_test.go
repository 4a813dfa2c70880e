package questiongen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-interview-service/internal/models"
)

type stubGen struct {
	response string
	err      error
	prompt   string
}

func (s *stubGen) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

const sampleResponse = `{
	"jd_summary": "Senior backend role with a focus on distributed systems.",
	"questions": [
		{"type": "technical", "difficulty": "hard", "question": "How would you shard a counter?", "follow_ups": ["What about hot keys?"], "evaluation_criteria": ["scaling"], "tags": ["distributed"]},
		{"type": "made_up_type", "question": "Tell me about ownership."},
		{"question": ""},
		{"type": "behavioral", "question": "Describe a conflict."}
	]
}`

func TestGenerateParsesQuestions(t *testing.T) {
	gen := New(&stubGen{response: sampleResponse})

	questions, summary, err := gen.Generate(context.Background(),
		"We build distributed systems.", "Google", "Software Engineer",
		[]models.QuestionType{models.QuestionTechnical, models.QuestionBehavioral}, 5)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if summary == "" {
		t.Error("Expected a JD summary")
	}
	if len(questions) != 3 {
		t.Fatalf("Expected 3 questions (empty one dropped), got %d", len(questions))
	}
	if questions[0].Type != models.QuestionTechnical || questions[0].Difficulty != "hard" {
		t.Errorf("Unexpected first question: %+v", questions[0])
	}
	if questions[1].Type != models.QuestionBehavioral {
		t.Errorf("Unknown type should fall back to behavioral, got %s", questions[1].Type)
	}
	if questions[2].Difficulty != "medium" {
		t.Errorf("Missing difficulty should default to medium, got %q", questions[2].Difficulty)
	}
	for i, q := range questions {
		if !strings.HasPrefix(q.ID, "jd-") {
			t.Errorf("Question %d: expected generated id, got %q", i, q.ID)
		}
		if q.Company != "Google" || q.Position != "Software Engineer" {
			t.Errorf("Question %d: expected session identity, got %+v", i, q)
		}
	}
}

func TestGenerateCapsAtRequestedCount(t *testing.T) {
	gen := New(&stubGen{response: sampleResponse})
	questions, _, err := gen.Generate(context.Background(), "jd", "Google", "SE", nil, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("Expected 2 questions, got %d", len(questions))
	}
}

func TestGeneratePropagatesCallErrors(t *testing.T) {
	gen := New(&stubGen{err: errors.New("quota exceeded")})
	if _, _, err := gen.Generate(context.Background(), "jd", "Google", "SE", nil, 5); err == nil {
		t.Fatal("Expected error from failed model call")
	}
}

func TestGenerateRejectsUnparseableOutput(t *testing.T) {
	gen := New(&stubGen{response: "I would suggest asking about..."})
	if _, _, err := gen.Generate(context.Background(), "jd", "Google", "SE", nil, 5); err == nil {
		t.Fatal("Expected error for non-JSON output")
	}
}

func TestGenerateTruncatesLongJobDescriptions(t *testing.T) {
	stub := &stubGen{response: sampleResponse}
	gen := New(stub)
	long := strings.Repeat("x", models.MaxJobDescriptionLen+500)

	if _, _, err := gen.Generate(context.Background(), long, "Google", "SE", nil, 3); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Count(stub.prompt, "x") > models.MaxJobDescriptionLen {
		t.Error("Job description was not truncated in the prompt")
	}
}
