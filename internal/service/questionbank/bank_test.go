package questionbank

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ai-interview-service/internal/models"
)

func writeCatalog(t *testing.T, questions []models.Question) string {
	t.Helper()
	raw, err := json.Marshal(questions)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCatalog() []models.Question {
	return []models.Question{
		{ID: "1", Company: "Google", Position: "Software Engineer", Type: models.QuestionBehavioral, Question: "G SE behavioral"},
		{ID: "2", Company: "Google", Position: "Software Engineer", Type: models.QuestionTechnical, Question: "G SE technical"},
		{ID: "3", Company: "Google", Position: "Product Manager", Type: models.QuestionProduct, Question: "G PM product"},
		{ID: "4", Company: "Amazon", Position: "Software Engineer", Type: models.QuestionBehavioral, Question: "A SE behavioral"},
		{ID: "5", Company: "Generic Tech", Position: "Software Engineer", Type: models.QuestionBehavioral, Question: "Generic behavioral"},
		{ID: "6", Company: "Generic Non-Tech", Position: "Program Manager", Type: models.QuestionSituational, Question: "Generic situational"},
	}
}

func loadedBank(t *testing.T) *Bank {
	t.Helper()
	b := New()
	b.Load(writeCatalog(t, testCatalog()))
	return b
}

func TestLoadMissingFileLeavesBankEmpty(t *testing.T) {
	b := New()
	b.Load("/nonexistent/questions.json")
	if b.Size() != 0 {
		t.Errorf("Expected empty bank, got %d questions", b.Size())
	}
}

func TestLoadMalformedFileLeavesBankEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	b := New()
	b.Load(path)
	if b.Size() != 0 {
		t.Errorf("Expected empty bank on parse failure, got %d", b.Size())
	}
}

func TestCompaniesAndPositions(t *testing.T) {
	b := loadedBank(t)
	if got := len(b.Companies()); got != 4 {
		t.Errorf("Expected 4 companies, got %d: %v", got, b.Companies())
	}
	positions := b.PositionsForCompany("google")
	if len(positions) != 2 {
		t.Errorf("Expected 2 Google positions (case-insensitive), got %v", positions)
	}
}

func TestFilterCriteria(t *testing.T) {
	b := loadedBank(t)
	cases := []struct {
		name     string
		company  string
		position string
		types    []models.QuestionType
		want     int
	}{
		{"company and position", "Google", "Software Engineer", nil, 2},
		{"company only", "Google", "", nil, 3},
		{"type only", "", "", []models.QuestionType{models.QuestionBehavioral}, 3},
		{"all criteria", "Google", "Software Engineer", []models.QuestionType{models.QuestionTechnical}, 1},
		{"no criteria", "", "", nil, 6},
		{"no match", "Netflix", "Chef", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(b.Filter(tc.company, tc.position, tc.types)); got != tc.want {
				t.Errorf("Expected %d questions, got %d", tc.want, got)
			}
		})
	}
}

func TestSelectFallbackChain(t *testing.T) {
	b := loadedBank(t)

	// Unknown position for a known company falls back to the company pool.
	got := b.Select("Google", "Astronaut", nil, 10)
	for _, q := range got {
		if q.Company != "Google" {
			t.Errorf("Expected Google questions from company fallback, got %s", q.Company)
		}
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 Google questions, got %d", len(got))
	}

	// Unknown company falls back to the generic catalogs.
	got = b.Select("Netflix", "Software Engineer", nil, 10)
	if len(got) != 2 {
		t.Fatalf("Expected 2 generic questions, got %d", len(got))
	}
	for _, q := range got {
		if q.Company != "Generic Tech" && q.Company != "Generic Non-Tech" {
			t.Errorf("Expected generic fallback, got %s", q.Company)
		}
	}
}

func TestSelectTypeFallbackBeforeWholeCatalog(t *testing.T) {
	b := loadedBank(t)
	// No generic catalog entry is situational+technical, so the chain lands
	// on the type-only filter.
	got := b.Select("Netflix", "Chef", []models.QuestionType{models.QuestionProduct}, 10)
	if len(got) != 1 || got[0].Type != models.QuestionProduct {
		t.Errorf("Expected the single product question from type fallback, got %v", got)
	}
}

func TestSelectCapsAtPoolSize(t *testing.T) {
	b := loadedBank(t)
	if got := b.Select("Amazon", "Software Engineer", nil, 10); len(got) != 1 {
		t.Errorf("Expected 1 question, got %d", len(got))
	}
}

func TestSelectEmptyBank(t *testing.T) {
	b := New()
	if got := b.Select("Google", "Software Engineer", nil, 5); got != nil {
		t.Errorf("Expected nil from empty bank, got %v", got)
	}
}

func TestStats(t *testing.T) {
	b := loadedBank(t)
	stats := b.Stats()
	google, ok := stats["Google"]
	if !ok || google.Total != 3 {
		t.Fatalf("Expected 3 Google questions in stats, got %+v", stats)
	}
	if google.Types["behavioral"] != 1 || google.Types["technical"] != 1 || google.Types["product"] != 1 {
		t.Errorf("Unexpected Google type breakdown: %v", google.Types)
	}
}

func TestSetCacheResolvesAndSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sets.json")
	os.WriteFile(path, []byte(`{
		"set-1": {"questions": [
			{"id": "a", "type": "technical", "difficulty": "hard", "question": "Real question"},
			{"question": ""},
			{"type": "nonsense", "question": "No id, odd type"}
		]}
	}`), 0o644)

	c := NewSetCache()
	c.Load(path)

	got := c.Get("set-1", "Google", "Software Engineer")
	if len(got) != 2 {
		t.Fatalf("Expected 2 usable questions (malformed skipped), got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Type != models.QuestionTechnical || got[0].Difficulty != "hard" {
		t.Errorf("Unexpected first question: %+v", got[0])
	}
	if got[1].ID != "set-2" {
		t.Errorf("Expected positional id default, got %q", got[1].ID)
	}
	if got[1].Type != models.QuestionBehavioral || got[1].Difficulty != "medium" {
		t.Errorf("Expected type and difficulty defaults, got %+v", got[1])
	}
	if got[0].Company != "Google" || got[0].Position != "Software Engineer" {
		t.Errorf("Expected session identity stamped, got %+v", got[0])
	}
}

func TestSetCacheUnknownID(t *testing.T) {
	c := NewSetCache()
	if got := c.Get("missing", "Google", "SE"); got != nil {
		t.Errorf("Expected nil for unknown set id, got %v", got)
	}
}

func TestSetCacheMissingFile(t *testing.T) {
	c := NewSetCache()
	c.Load("/nonexistent/sets.json")
	if got := c.Get("any", "", ""); got != nil {
		t.Errorf("Expected empty cache, got %v", got)
	}
}
