// Package models defines the data structures shared across the interview service.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the fine-grained interaction stage of a live interview.
type Phase string

const (
	PhaseGreeting  Phase = "greeting"
	PhaseQuestions Phase = "questions"
	PhaseClosing   Phase = "closing"
	PhaseComplete  Phase = "complete"
)

// ErrInvalidPhase is returned when a phase name is not one of the four known phases.
var ErrInvalidPhase = errors.New("invalid interview phase")

// ParsePhase validates a phase name coming from an external caller
// (typically a tool call issued by the conversational model).
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseGreeting, PhaseQuestions, PhaseClosing, PhaseComplete:
		return Phase(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
}

// Status is the coarse session lifecycle stage.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusEvaluating Status = "evaluating"
	StatusEvaluated  Status = "evaluated"
	StatusFailed     Status = "failed"
)

// QuestionType classifies catalog questions.
type QuestionType string

const (
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionTechnical    QuestionType = "technical"
	QuestionSituational  QuestionType = "situational"
	QuestionSystemDesign QuestionType = "system_design"
	QuestionProduct      QuestionType = "product"
)

// ParseQuestionType returns the known question type for s, falling back to
// behavioral for anything unrecognised. Generated question sets occasionally
// invent type names, and a bad type must not sink the whole set.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(s) {
	case QuestionBehavioral, QuestionTechnical, QuestionSituational, QuestionSystemDesign, QuestionProduct:
		return QuestionType(s)
	default:
		return QuestionBehavioral
	}
}

// Question is a single interview question. Immutable once placed in a
// session's question list.
type Question struct {
	ID                 string       `json:"id"`
	Company            string       `json:"company"`
	Position           string       `json:"position"`
	Type               QuestionType `json:"type"`
	Difficulty         string       `json:"difficulty"`
	Question           string       `json:"question"`
	FollowUps          []string     `json:"follow_ups"`
	EvaluationCriteria []string     `json:"evaluation_criteria"`
	Tags               []string     `json:"tags"`
}

// Config limits for interview creation.
const (
	DefaultQuestionCount = 5
	MinQuestionCount     = 3
	MaxQuestionCount     = 10
	MaxJobDescriptionLen = 5000
)

// InterviewConfig is the caller-supplied configuration for a new session.
type InterviewConfig struct {
	CandidateName  string         `json:"candidate_name"`
	Company        string         `json:"company"`
	Position       string         `json:"position"`
	QuestionTypes  []QuestionType `json:"question_types"`
	QuestionCount  int            `json:"question_count"`
	JobDescription string         `json:"job_description,omitempty"`
	QuestionSetID  string         `json:"question_set_id,omitempty"`
}

// Normalize applies defaults and clamps caller input.
func (c *InterviewConfig) Normalize() {
	if len(c.QuestionTypes) == 0 {
		c.QuestionTypes = []QuestionType{QuestionBehavioral}
	}
	if c.QuestionCount == 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	if c.QuestionCount < MinQuestionCount {
		c.QuestionCount = MinQuestionCount
	}
	if c.QuestionCount > MaxQuestionCount {
		c.QuestionCount = MaxQuestionCount
	}
	if len(c.JobDescription) > MaxJobDescriptionLen {
		c.JobDescription = c.JobDescription[:MaxJobDescriptionLen]
	}
}

// Validate reports whether the config is usable at all.
func (c *InterviewConfig) Validate() error {
	if c.CandidateName == "" {
		return errors.New("candidate_name is required")
	}
	if len(c.CandidateName) > 100 {
		return errors.New("candidate_name too long")
	}
	return nil
}

// Session is the full in-memory state of one interview run.
type Session struct {
	ID          string            `json:"session_id"`
	Config      InterviewConfig   `json:"config"`
	Status      Status            `json:"status"`
	Phase       Phase             `json:"phase"`
	Cursor      int               `json:"current_question_index"`
	Questions   []Question        `json:"questions"`
	Transcript  []TranscriptEntry `json:"transcript"`
	JDSummary   string            `json:"jd_summary,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt time.Time         `json:"completed_at,omitempty"`
}
