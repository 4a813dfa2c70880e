package agent

// Event is one event from the live conversational model stream. The set of
// variants is closed: consumers switch exhaustively on the concrete types
// below. The adapter closes its event channel when the model connection ends
// normally; an abnormal termination is delivered as a final ErrorEvent.
type Event interface {
	liveEventType() string
}

// AudioEvent carries an inline synthesized-audio payload.
type AudioEvent struct {
	Data []byte
}

func (AudioEvent) liveEventType() string { return "audio" }

// ModelTranscriptionEvent is a fragment of the model's own speech
// transcription (the interviewer talking).
type ModelTranscriptionEvent struct {
	Text  string
	Final bool
}

func (ModelTranscriptionEvent) liveEventType() string { return "model_transcription" }

// CandidateTranscriptionEvent is a fragment of the candidate's speech
// transcription.
type CandidateTranscriptionEvent struct {
	Text  string
	Final bool
}

func (CandidateTranscriptionEvent) liveEventType() string { return "candidate_transcription" }

// TurnCompleteEvent marks the end of a model turn.
type TurnCompleteEvent struct{}

func (TurnCompleteEvent) liveEventType() string { return "turn_complete" }

// ErrorEvent reports an abnormal termination of the model connection. It is
// always the last event before the channel closes.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) liveEventType() string { return "error" }
