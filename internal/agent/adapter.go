// Package agent defines the boundary to the external conversational model:
// a duplex live adapter for the voice session, a typed tool interface the
// model calls back into, and structured one-shot generation for the
// evaluation pipeline.
package agent

import "context"

// Tool names exposed to the model.
const (
	ToolNextQuestion      = "get_next_question"
	ToolSignalPhaseChange = "signal_phase_change"
)

// NextQuestionResult is the response shape of the get_next_question tool.
type NextQuestionResult struct {
	HasQuestion    bool     `json:"has_question"`
	Question       string   `json:"question,omitempty"`
	QuestionNumber int      `json:"question_number,omitempty"`
	TotalQuestions int      `json:"total_questions,omitempty"`
	QuestionType   string   `json:"question_type,omitempty"`
	FollowUps      []string `json:"follow_ups,omitempty"`
	Message        string   `json:"message,omitempty"`
}

// PhaseChangeResult is the response shape of the signal_phase_change tool.
type PhaseChangeResult struct {
	Success bool   `json:"success"`
	Phase   string `json:"phase"`
	Error   string `json:"error,omitempty"`
}

// Tools is the fixed, enumerable RPC surface the orchestration core exposes
// to the model. Implementations must be safe to call from the adapter's
// receive loop.
type Tools interface {
	NextQuestion() NextQuestionResult
	SignalPhaseChange(phase string) PhaseChangeResult
}

// LiveParams configures one live interview session.
type LiveParams struct {
	SessionID      string
	CandidateName  string
	Company        string
	Position       string
	TotalQuestions int
}

// LiveAdapter is the duplex connection to the conversational voice model.
//
// Lifecycle: Start opens the connection and begins delivering events;
// SendAudio/SendText feed the model; Close tears the connection down, after
// which the Events channel drains and closes.
type LiveAdapter interface {
	// Start opens the live session. Tool calls issued by the model are
	// dispatched to tools and their results returned to the model.
	Start(ctx context.Context, params LiveParams, tools Tools) error

	// SendAudio forwards a raw audio frame to the model's realtime input.
	SendAudio(data []byte) error

	// SendText forwards a text turn to the model.
	SendText(text string) error

	// Events returns the model event stream. Closed when the connection
	// ends; a normal close produces no terminal event, an abnormal one is
	// preceded by an ErrorEvent.
	Events() <-chan Event

	// Close ends the session and releases resources. Idempotent.
	Close() error
}
