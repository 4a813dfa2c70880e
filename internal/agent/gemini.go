package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"ai-interview-service/internal/observability/logging"
)

const conductorInstruction = `You are a professional job interviewer conducting a practice interview.

Context:
- Candidate: %s
- Company: %s
- Position: %s
- Total questions: %d

Follow this flow strictly, using the provided tools:
1. Greeting: introduce yourself, welcome the candidate by name, then call
   signal_phase_change with phase "questions" when they are ready.
2. Questions: call get_next_question for every question, ask it naturally,
   wait for a substantive answer before moving on. When get_next_question
   reports no more questions, call signal_phase_change with phase "closing".
3. Closing: thank the candidate, mention that feedback will follow, then
   call signal_phase_change with phase "complete".

Never invent questions and never score answers during the interview.`

// GeminiLive is the production LiveAdapter backed by the Gemini Live API.
type GeminiLive struct {
	client *genai.Client
	model  string

	mu      sync.Mutex
	session *genai.Session
	events  chan Event
	done    chan struct{}
	closed  bool
	logger  zerolog.Logger
}

// NewGeminiLive creates a live adapter for the given model.
func NewGeminiLive(client *genai.Client, model string) *GeminiLive {
	return &GeminiLive{
		client: client,
		model:  model,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		logger: logging.WithComponent("gemini-live"),
	}
}

// Start opens the bidirectional live session and begins the receive loop.
func (g *GeminiLive) Start(ctx context.Context, params LiveParams, tools Tools) error {
	instruction := fmt.Sprintf(conductorInstruction,
		params.CandidateName, params.Company, params.Position, params.TotalQuestions)

	cfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
		Tools:                    toolDeclarations(),
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
	}

	session, err := g.client.Live.Connect(ctx, g.model, cfg)
	if err != nil {
		return fmt.Errorf("live connect: %w", err)
	}

	g.mu.Lock()
	g.session = session
	g.logger = logging.WithRelay(params.SessionID, g.model)
	g.mu.Unlock()

	go g.receiveLoop(tools)
	return nil
}

// SendAudio forwards a raw PCM frame to the model's realtime audio input.
func (g *GeminiLive) SendAudio(data []byte) error {
	g.mu.Lock()
	session := g.session
	g.mu.Unlock()
	if session == nil {
		return errors.New("live session not started")
	}
	return session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{MIMEType: "audio/pcm", Data: data},
	})
}

// SendText forwards a complete text turn to the model.
func (g *GeminiLive) SendText(text string) error {
	g.mu.Lock()
	session := g.session
	g.mu.Unlock()
	if session == nil {
		return errors.New("live session not started")
	}
	return session.SendClientContent(genai.LiveClientContentInput{
		Turns: []*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}},
		TurnComplete: genai.Ptr(true),
	})
}

// Events returns the model event stream.
func (g *GeminiLive) Events() <-chan Event {
	return g.events
}

// Close tears down the live session. Idempotent.
func (g *GeminiLive) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	close(g.done)
	if g.session != nil {
		return g.session.Close()
	}
	return nil
}

// emit delivers an event to the consumer, or reports false when the adapter
// has been closed. The consumer may stop reading before the stream drains, so
// a bare channel send could block the receive loop forever.
func (g *GeminiLive) emit(ev Event) bool {
	select {
	case g.events <- ev:
		return true
	case <-g.done:
		return false
	}
}

func (g *GeminiLive) receiveLoop(tools Tools) {
	defer close(g.events)

	for {
		msg, err := g.session.Receive()
		if err != nil {
			if !isNormalClose(err) {
				g.logger.Error().Err(err).Msg("Live stream terminated abnormally")
				g.emit(ErrorEvent{Err: err})
			} else {
				g.logger.Debug().Msg("Live stream closed normally")
			}
			return
		}

		if msg.ToolCall != nil {
			g.handleToolCall(msg.ToolCall, tools)
			continue
		}

		sc := msg.ServerContent
		if sc == nil {
			continue
		}

		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					if !g.emit(AudioEvent{Data: part.InlineData.Data}) {
						return
					}
				}
			}
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			if !g.emit(ModelTranscriptionEvent{
				Text:  sc.OutputTranscription.Text,
				Final: sc.OutputTranscription.Finished,
			}) {
				return
			}
		}
		if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
			if !g.emit(CandidateTranscriptionEvent{
				Text:  sc.InputTranscription.Text,
				Final: sc.InputTranscription.Finished,
			}) {
				return
			}
		}
		if sc.TurnComplete {
			if !g.emit(TurnCompleteEvent{}) {
				return
			}
		}
	}
}

func (g *GeminiLive) handleToolCall(call *genai.LiveServerToolCall, tools Tools) {
	responses := make([]*genai.FunctionResponse, 0, len(call.FunctionCalls))

	for _, fc := range call.FunctionCalls {
		var result any
		switch fc.Name {
		case ToolNextQuestion:
			result = tools.NextQuestion()
		case ToolSignalPhaseChange:
			phase, _ := fc.Args["phase"].(string)
			result = tools.SignalPhaseChange(phase)
		default:
			g.logger.Warn().Str("tool", fc.Name).Msg("Model called unknown tool")
			result = map[string]any{"error": fmt.Sprintf("unknown tool %q", fc.Name)}
		}

		responses = append(responses, &genai.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: toResponseMap(result),
		})
	}

	if err := g.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: responses,
	}); err != nil {
		g.logger.Error().Err(err).Msg("Failed to send tool response")
	}
}

func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolNextQuestion,
				Description: "Get the next interview question, or a signal that no questions remain.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{},
				},
			},
			{
				Name:        ToolSignalPhaseChange,
				Description: "Signal an interview phase transition. Phase must be one of: greeting, questions, closing, complete.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"phase": {Type: genai.TypeString},
					},
					Required: []string{"phase"},
				},
			},
		},
	}}
}

// toResponseMap converts a typed tool result into the map shape the
// FunctionResponse API expects.
func toResponseMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"error": err.Error()}
	}
	return out
}

// isNormalClose reports whether the live stream ended with a graceful close.
// The underlying transport surfaces close codes in the error text; 1000 is
// the normal-closure code.
func isNormalClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	return strings.Contains(err.Error(), "1000")
}
