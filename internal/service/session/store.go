// Package session owns interview session state: identity, configuration,
// the question list and cursor, the transcript, and the phase/status
// lifecycle. The store is the single mutation point for a session; all
// access is guarded by one RWMutex so the store stays correct even when
// callers span multiple goroutines.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/events"
	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
	"ai-interview-service/internal/observability/metrics"
)

// ErrSessionNotFound is returned for unknown session ids. Never retried.
var ErrSessionNotFound = errors.New("session not found")

// Catalog selects questions from the static question bank.
type Catalog interface {
	Select(company, position string, types []models.QuestionType, count int) []models.Question
}

// SetResolver resolves precomputed tailored question sets.
type SetResolver interface {
	Get(id, company, position string) []models.Question
}

// Generator produces JD-tailored questions. May be nil when no model client
// is configured.
type Generator interface {
	Generate(ctx context.Context, jobDescription, company, position string, types []models.QuestionType, count int) ([]models.Question, string, error)
}

// Publisher is the best-effort write-through collaborator. Failures are
// logged, never propagated.
type Publisher interface {
	PublishSession(ctx context.Context, sessionID string, record any) error
}

// Store is the in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	feedback map[string]*models.FeedbackReport

	catalog   Catalog
	sets      SetResolver
	generator Generator
	publisher Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewStore creates a session store. sets, generator, and publisher may be
// nil; the corresponding resolution steps are then skipped.
func NewStore(catalog Catalog, sets SetResolver, generator Generator, publisher Publisher) *Store {
	return &Store{
		sessions:  map[string]*models.Session{},
		feedback:  map[string]*models.FeedbackReport{},
		catalog:   catalog,
		sets:      sets,
		generator: generator,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		logger:    logging.WithComponent("session-store"),
	}
}

// Create allocates a new session, resolving its question list in priority
// order: precomputed tailored set, then JD-generated set, then the static
// catalog. If every source comes up empty the session is still created with
// an empty question list; the sequencer then signals exhaustion immediately.
func (s *Store) Create(ctx context.Context, cfg models.InterviewConfig) (models.Session, error) {
	if err := cfg.Validate(); err != nil {
		return models.Session{}, err
	}
	cfg.Normalize()

	id := uuid.NewString()
	logger := logging.WithSession(id)

	var questions []models.Question
	var jdSummary string

	if cfg.QuestionSetID != "" && s.sets != nil {
		questions = s.sets.Get(cfg.QuestionSetID, cfg.Company, cfg.Position)
		if len(questions) > 0 {
			logger.Info().Int("count", len(questions)).Str("setId", cfg.QuestionSetID).
				Msg("Loaded tailored question set")
		}
	}

	if len(questions) == 0 && cfg.JobDescription != "" && s.generator != nil {
		generated, summary, err := s.generator.Generate(ctx,
			cfg.JobDescription, cfg.Company, cfg.Position, cfg.QuestionTypes, cfg.QuestionCount)
		if err != nil {
			logger.Warn().Err(err).Msg("JD question generation failed, falling back to catalog")
		} else {
			questions = generated
			jdSummary = summary
		}
	}

	if len(questions) == 0 && s.catalog != nil {
		questions = s.catalog.Select(cfg.Company, cfg.Position, cfg.QuestionTypes, cfg.QuestionCount)
	}

	sess := &models.Session{
		ID:        id,
		Config:    cfg,
		Status:    models.StatusCreated,
		Phase:     models.PhaseGreeting,
		Questions: questions,
		JDSummary: jdSummary,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.metrics.SessionsCreated.Inc()
	logger.Info().Int("questions", len(questions)).Msg("Created session")

	s.writeThrough(ctx, sess)
	return snapshot(sess), nil
}

// Get returns a point-in-time copy of a session.
func (s *Store) Get(id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return snapshot(sess), nil
}

// Phase returns the session's current phase.
func (s *Store) Phase(id string) (models.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return "", ErrSessionNotFound
	}
	return sess.Phase, nil
}

// NextQuestion returns the question at the current cursor and advances it.
// ok is false once the cursor has passed the end of the list; every later
// call also reports false.
func (s *Store) NextQuestion(id string) (models.Question, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.Question{}, false, ErrSessionNotFound
	}
	if sess.Cursor >= len(sess.Questions) {
		return models.Question{}, false, nil
	}
	q := sess.Questions[sess.Cursor]
	sess.Cursor++
	return q, true, nil
}

// Progress returns the cursor position and total question count.
func (s *Store) Progress(id string) (current, total int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return 0, 0, ErrSessionNotFound
	}
	return sess.Cursor, len(sess.Questions), nil
}

// AddTranscript appends one transcript entry. Entries are append-only and
// keep arrival order.
func (s *Store) AddTranscript(id, role, text, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Transcript = append(sess.Transcript, models.TranscriptEntry{
		Role:       role,
		Text:       text,
		QuestionID: questionID,
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

// UpdatePhase executes a phase transition. Only the four named phases are
// accepted; anything else is rejected with no state change. Ordering is
// deliberately not enforced here: the orchestrating model owns the forward
// sequence, and the phase machine only maintains the dependent status
// fields (questions forces in_progress, complete forces completed and
// stamps the completion time).
func (s *Store) UpdatePhase(id, phase string) (models.Phase, error) {
	parsed, err := models.ParsePhase(phase)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return "", ErrSessionNotFound
	}

	sess.Phase = parsed
	switch parsed {
	case models.PhaseQuestions:
		sess.Status = models.StatusInProgress
	case models.PhaseComplete:
		sess.Status = models.StatusCompleted
		sess.CompletedAt = time.Now().UTC()
	}

	s.metrics.PhaseTransitions.WithLabelValues(string(parsed)).Inc()
	return parsed, nil
}

// UpdateStatus sets the coarse session status.
func (s *Store) UpdateStatus(id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Status = status
	s.metrics.SessionsByState.WithLabelValues(string(status)).Inc()
	return nil
}

// StoreFeedback stores the feedback report and marks the session evaluated.
// A re-run of the pipeline replaces the report wholesale.
func (s *Store) StoreFeedback(id string, report models.FeedbackReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.feedback[id] = &report
	sess.Status = models.StatusEvaluated
	s.metrics.SessionsByState.WithLabelValues(string(models.StatusEvaluated)).Inc()
	return nil
}

// Feedback returns the stored report, or ok=false when none exists yet.
func (s *Store) Feedback(id string) (models.FeedbackReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.feedback[id]
	if !ok {
		return models.FeedbackReport{}, false
	}
	return *report, true
}

// Summary is the shape returned by List.
type Summary struct {
	SessionID     string        `json:"session_id"`
	CandidateName string        `json:"candidate_name"`
	Company       string        `json:"company"`
	Position      string        `json:"position"`
	Status        models.Status `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// List returns basic info for every known session.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, Summary{
			SessionID:     sess.ID,
			CandidateName: sess.Config.CandidateName,
			Company:       sess.Config.Company,
			Position:      sess.Config.Position,
			Status:        sess.Status,
			CreatedAt:     sess.CreatedAt,
		})
	}
	return out
}

// writeThrough publishes the session record, best-effort.
func (s *Store) writeThrough(ctx context.Context, sess *models.Session) {
	if s.publisher == nil {
		return
	}
	record := events.SessionRecord{
		SessionID:     sess.ID,
		CandidateName: sess.Config.CandidateName,
		Company:       sess.Config.Company,
		Position:      sess.Config.Position,
		Status:        string(sess.Status),
		QuestionCount: len(sess.Questions),
		CreatedAt:     sess.CreatedAt.UnixMilli(),
	}
	if err := s.publisher.PublishSession(ctx, sess.ID, record); err != nil {
		s.logger.Warn().Err(err).Str("sessionId", sess.ID).Msg("Session write-through failed")
	}
}

// snapshot copies a session so callers never hold a reference into the
// store's mutable state. Transcript and question slices are copied; their
// elements are value types.
func snapshot(sess *models.Session) models.Session {
	out := *sess
	out.Questions = append([]models.Question(nil), sess.Questions...)
	out.Transcript = append([]models.TranscriptEntry(nil), sess.Transcript...)
	return out
}
