package relay

import (
	"github.com/rs/zerolog"

	"ai-interview-service/internal/agent"
	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
	"ai-interview-service/internal/observability/metrics"
)

// Store is the session state surface the relay and its toolbox depend on.
// *session.Store satisfies it.
type Store interface {
	Get(id string) (models.Session, error)
	Phase(id string) (models.Phase, error)
	Progress(id string) (current, total int, err error)
	NextQuestion(id string) (models.Question, bool, error)
	AddTranscript(id, role, text, questionID string) error
	UpdatePhase(id, phase string) (models.Phase, error)
}

// Toolbox is the tool surface one live session exposes to the model. Each
// relay owns one toolbox bound to its session id.
type Toolbox struct {
	sessionID string
	store     Store
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewToolbox binds the tool surface to a session.
func NewToolbox(sessionID string, store Store) *Toolbox {
	return &Toolbox{
		sessionID: sessionID,
		store:     store,
		metrics:   metrics.DefaultMetrics,
		logger:    logging.WithSession(sessionID),
	}
}

// NextQuestion advances the question cursor and records the question in the
// transcript under its id. Exhaustion is a normal result, not an error, and
// has no side effects.
func (t *Toolbox) NextQuestion() agent.NextQuestionResult {
	q, ok, err := t.store.NextQuestion(t.sessionID)
	if err != nil {
		t.metrics.RecordToolCall(agent.ToolNextQuestion, "error")
		t.logger.Error().Err(err).Msg("Next-question tool failed")
		return agent.NextQuestionResult{Message: "The question list is unavailable. Wrap up the interview."}
	}
	if !ok {
		t.metrics.RecordToolCall(agent.ToolNextQuestion, "exhausted")
		return agent.NextQuestionResult{
			Message: "All questions have been asked. Thank the candidate and move to the closing phase.",
		}
	}

	if err := t.store.AddTranscript(t.sessionID, models.RoleInterviewer, q.Question, q.ID); err != nil {
		t.logger.Error().Err(err).Str("questionId", q.ID).Msg("Failed to record question in transcript")
	}

	current, total, _ := t.store.Progress(t.sessionID)
	t.metrics.RecordToolCall(agent.ToolNextQuestion, "ok")
	t.logger.Info().Str("questionId", q.ID).Int("number", current).Int("total", total).Msg("Issued next question")

	return agent.NextQuestionResult{
		HasQuestion:    true,
		Question:       q.Question,
		QuestionNumber: current,
		TotalQuestions: total,
		QuestionType:   string(q.Type),
		FollowUps:      q.FollowUps,
	}
}

// SignalPhaseChange applies a phase transition requested by the model. An
// unknown phase name is reported back as a failed call so the model can
// correct itself; session state is untouched.
func (t *Toolbox) SignalPhaseChange(phase string) agent.PhaseChangeResult {
	parsed, err := t.store.UpdatePhase(t.sessionID, phase)
	if err != nil {
		t.metrics.RecordToolCall(agent.ToolSignalPhaseChange, "rejected")
		t.logger.Warn().Err(err).Str("phase", phase).Msg("Rejected phase change")
		return agent.PhaseChangeResult{Success: false, Phase: phase, Error: err.Error()}
	}

	t.metrics.RecordToolCall(agent.ToolSignalPhaseChange, "ok")
	t.logger.Info().Str("phase", string(parsed)).Msg("Phase changed")
	return agent.PhaseChangeResult{Success: true, Phase: string(parsed)}
}
