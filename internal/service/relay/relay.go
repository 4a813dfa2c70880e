// Package relay bridges one WebSocket client to one live model session:
// client audio and text flow up to the model, synthesized audio and
// transcription fragments flow back down, and phase changes made through
// tool calls are announced to the client as they happen.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/agent"
	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
	"ai-interview-service/internal/observability/metrics"
)

const kickoffPrompt = "The candidate has just connected. Greet them by name, briefly explain how the interview will run, and begin."

// Sender is the client-facing write surface. *websocket.Conn satisfies it.
// All writes happen from the relay's outbound loop, never concurrently.
type Sender interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
}

// Relay drives one live interview session end to end.
type Relay struct {
	sessionID string
	store     Store
	adapter   agent.LiveAdapter
	conn      Sender
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	// Turn dedup: the live API can re-deliver fragments of a turn after its
	// final transcription. Once a role's final arrives, all of that role's
	// fragments are suppressed until the other role produces a final.
	agentFinalSeen bool
	userFinalSeen  bool

	lastPhase models.Phase
}

// New creates a relay for one session over an already-accepted connection.
func New(sessionID string, store Store, adapter agent.LiveAdapter, conn Sender) *Relay {
	return &Relay{
		sessionID: sessionID,
		store:     store,
		adapter:   adapter,
		conn:      conn,
		metrics:   metrics.DefaultMetrics,
		logger:    logging.WithRelay(sessionID, ""),
		lastPhase: models.PhaseGreeting,
	}
}

// Run starts the model session and pumps model events to the client until
// the stream ends. It blocks for the lifetime of the interview.
func (r *Relay) Run(ctx context.Context) error {
	sess, err := r.store.Get(r.sessionID)
	if err != nil {
		return err
	}

	r.metrics.RecordRelayStart()
	start := time.Now()
	defer func() {
		r.metrics.RecordRelayEnd(time.Since(start))
	}()

	params := agent.LiveParams{
		SessionID:      sess.ID,
		CandidateName:  sess.Config.CandidateName,
		Company:        sess.Config.Company,
		Position:       sess.Config.Position,
		TotalQuestions: len(sess.Questions),
	}
	if err := r.adapter.Start(ctx, params, NewToolbox(r.sessionID, r.store)); err != nil {
		return fmt.Errorf("start live session: %w", err)
	}
	defer r.adapter.Close()

	// Orient the client, then nudge the model to open the conversation.
	r.send(models.PhaseMessage{Type: models.MsgTypePhase, Phase: models.PhaseGreeting})
	r.send(models.MetadataMessage{
		Type:           models.MsgTypeMetadata,
		TotalQuestions: len(sess.Questions),
	})
	if err := r.adapter.SendText(kickoffPrompt); err != nil {
		r.logger.Warn().Err(err).Msg("Kickoff prompt failed")
	}

	for ev := range r.adapter.Events() {
		done := r.processEvent(ev)
		if r.announcePhase() {
			done = true
		}
		if done {
			return nil
		}
	}
	return nil
}

// HandleInbound processes one client frame. Binary frames are raw audio;
// text frames carry a JSON control message. Malformed frames are dropped.
func (r *Relay) HandleInbound(messageType int, data []byte) {
	r.metrics.ClientFramesIn.Inc()

	switch messageType {
	case websocket.BinaryMessage:
		r.metrics.AudioBytesIn.Add(float64(len(data)))
		if err := r.adapter.SendAudio(data); err != nil {
			r.logger.Warn().Err(err).Msg("Audio forward failed")
		}
	case websocket.TextMessage:
		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			r.logger.Debug().Err(err).Msg("Dropping malformed client frame")
			return
		}
		if msg.Type != models.MsgTypeTextInput || msg.Text == "" {
			return
		}
		if err := r.store.AddTranscript(r.sessionID, models.RoleCandidate, msg.Text, ""); err != nil {
			r.logger.Error().Err(err).Msg("Failed to record typed answer")
		}
		if err := r.adapter.SendText(msg.Text); err != nil {
			r.logger.Warn().Err(err).Msg("Text forward failed")
		}
	}
}

// processEvent relays one model event to the client and returns true when
// the stream is finished from the client's point of view.
func (r *Relay) processEvent(ev agent.Event) bool {
	switch e := ev.(type) {
	case agent.AudioEvent:
		r.metrics.AudioBytesOut.Add(float64(len(e.Data)))
		if err := r.conn.WriteMessage(websocket.BinaryMessage, e.Data); err != nil {
			r.logger.Debug().Err(err).Msg("Audio write failed, client likely gone")
		}

	case agent.ModelTranscriptionEvent:
		if r.agentFinalSeen {
			return false
		}
		if e.Final {
			r.agentFinalSeen = true
			r.userFinalSeen = false
			r.metrics.TranscriptsFinal.WithLabelValues(models.WSRoleAgent).Inc()
		} else {
			r.metrics.TranscriptsPartial.WithLabelValues(models.WSRoleAgent).Inc()
		}
		r.send(models.TranscriptMessage{
			Type:    models.MsgTypeTranscript,
			Role:    models.WSRoleAgent,
			Text:    e.Text,
			IsFinal: e.Final,
		})

	case agent.CandidateTranscriptionEvent:
		if r.userFinalSeen {
			return false
		}
		if e.Final {
			r.userFinalSeen = true
			r.agentFinalSeen = false
			r.metrics.TranscriptsFinal.WithLabelValues(models.WSRoleUser).Inc()
			if err := r.store.AddTranscript(r.sessionID, models.RoleCandidate, e.Text, ""); err != nil {
				r.logger.Error().Err(err).Msg("Failed to record candidate answer")
			}
		} else {
			r.metrics.TranscriptsPartial.WithLabelValues(models.WSRoleUser).Inc()
		}
		r.send(models.TranscriptMessage{
			Type:    models.MsgTypeTranscript,
			Role:    models.WSRoleUser,
			Text:    e.Text,
			IsFinal: e.Final,
		})

	case agent.TurnCompleteEvent:
		// Nothing to forward; the client tracks turns from transcripts.

	case agent.ErrorEvent:
		r.logger.Error().Err(e.Err).Msg("Live session ended abnormally")
		r.send(models.ErrorMessage{
			Type:    models.MsgTypeError,
			Message: "The interview connection was interrupted. Please reconnect.",
		})
		return true
	}
	return false
}

// announcePhase pushes a phase message whenever a tool call moved the
// session's phase since the last event, and the completion message when the
// interview reaches its terminal phase. Returns true on completion.
func (r *Relay) announcePhase() bool {
	phase, err := r.store.Phase(r.sessionID)
	if err != nil || phase == r.lastPhase {
		return false
	}
	r.lastPhase = phase
	r.send(models.PhaseMessage{Type: models.MsgTypePhase, Phase: phase})

	if phase == models.PhaseComplete {
		r.send(models.CompleteMessage{Type: models.MsgTypeComplete, SessionID: r.sessionID})
		return true
	}
	return false
}

func (r *Relay) send(v any) {
	if err := r.conn.WriteJSON(v); err != nil {
		r.logger.Debug().Err(err).Msg("Control write failed, client likely gone")
	}
}
