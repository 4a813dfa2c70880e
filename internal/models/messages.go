package models

// WebSocket control message types, one JSON object per text frame.
const (
	MsgTypeTranscript = "transcript"
	MsgTypePhase      = "phase"
	MsgTypeMetadata   = "metadata"
	MsgTypeComplete   = "interview_complete"
	MsgTypeError      = "error"
	MsgTypeTextInput  = "text_input"
)

// Transcript roles as seen by the client. The client-facing protocol uses
// agent/user; the stored transcript uses interviewer/candidate.
const (
	WSRoleAgent = "agent"
	WSRoleUser  = "user"
)

// ClientMessage is an inbound text frame from the client.
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TranscriptMessage streams a speech-transcription fragment to the client.
type TranscriptMessage struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// PhaseMessage announces the session's current phase.
type PhaseMessage struct {
	Type  string `json:"type"`
	Phase Phase  `json:"phase"`
}

// MetadataMessage reports question progress.
type MetadataMessage struct {
	Type           string `json:"type"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
}

// CompleteMessage tells the client the interview has finished.
type CompleteMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// ErrorMessage is the single client-facing error emitted on abnormal teardown.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
