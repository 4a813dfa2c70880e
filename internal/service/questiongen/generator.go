// Package questiongen generates interview questions tailored to a job
// description via a single structured model call.
package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
)

const generationPrompt = `You are an expert interview question designer. Given a job description, generate %d interview questions tailored to the role, responsibilities, and requirements mentioned.

Job description:
%s

Company: %s
Position: %s

Requirements:
1. Generate exactly %d questions
2. Mix question types from: %s
3. Target specific skills or competencies mentioned in the job description
4. Include 1-2 follow-up questions and 2-3 evaluation criteria per question
5. Vary difficulty across the set

Return ONLY a JSON object with this structure, no markdown fences or extra text:
{
  "jd_summary": "A 2-3 sentence summary of the key role requirements.",
  "questions": [
    {
      "type": "behavioral|technical|situational|system_design|product",
      "difficulty": "easy|medium|hard",
      "question": "The interview question text",
      "follow_ups": ["..."],
      "evaluation_criteria": ["..."],
      "tags": ["..."]
    }
  ]
}`

// JSONGenerator is the narrow generation surface the generator depends on.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Generator produces JD-tailored question sets.
type Generator struct {
	gen    JSONGenerator
	logger zerolog.Logger
}

// New creates a generator on top of a structured model client.
func New(gen JSONGenerator) *Generator {
	return &Generator{gen: gen, logger: logging.WithComponent("questiongen")}
}

type generated struct {
	JDSummary string `json:"jd_summary"`
	Questions []struct {
		Type               string   `json:"type"`
		Difficulty         string   `json:"difficulty"`
		Question           string   `json:"question"`
		FollowUps          []string `json:"follow_ups"`
		EvaluationCriteria []string `json:"evaluation_criteria"`
		Tags               []string `json:"tags"`
	} `json:"questions"`
}

// Generate produces up to count questions plus a job-description summary.
// Errors are returned to the caller, which falls back to the static catalog.
func (g *Generator) Generate(ctx context.Context, jobDescription, company, position string, types []models.QuestionType, count int) ([]models.Question, string, error) {
	typeNames := make([]string, 0, len(types))
	for _, t := range types {
		typeNames = append(typeNames, string(t))
	}

	if len(jobDescription) > models.MaxJobDescriptionLen {
		jobDescription = jobDescription[:models.MaxJobDescriptionLen]
	}

	prompt := fmt.Sprintf(generationPrompt,
		count, jobDescription, company, position, count, strings.Join(typeNames, ", "))

	raw, err := g.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("question generation call: %w", err)
	}

	var parsed generated
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, "", fmt.Errorf("parse generated questions: %w", err)
	}

	questions := make([]models.Question, 0, count)
	for _, q := range parsed.Questions {
		if len(questions) == count {
			break
		}
		if q.Question == "" {
			continue
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		questions = append(questions, models.Question{
			ID:                 "jd-" + uuid.NewString()[:8],
			Company:            company,
			Position:           position,
			Type:               models.ParseQuestionType(q.Type),
			Difficulty:         difficulty,
			Question:           q.Question,
			FollowUps:          q.FollowUps,
			EvaluationCriteria: q.EvaluationCriteria,
			Tags:               q.Tags,
		})
	}

	g.logger.Info().
		Int("count", len(questions)).
		Str("company", company).
		Str("position", position).
		Msg("Generated JD-tailored questions")

	return questions, parsed.JDSummary, nil
}
