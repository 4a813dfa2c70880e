package models

import "time"

// Transcript roles.
const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

// TranscriptEntry is one role-tagged utterance recorded during the interview.
// Entries are append-only; their order must equal real-time arrival order.
type TranscriptEntry struct {
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	QuestionID string    `json:"question_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// QARecord is a reconstructed (question, concatenated answer) pair derived
// from the transcript. EvaluationCriteria come from the session's canonical
// question list, not from the transcript itself.
type QARecord struct {
	QuestionID         string   `json:"question_id"`
	Question           string   `json:"question"`
	Answer             string   `json:"answer"`
	EvaluationCriteria []string `json:"evaluation_criteria"`
}
