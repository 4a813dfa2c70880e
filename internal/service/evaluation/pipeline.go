// Package evaluation runs the post-interview pipeline: an evaluator stage
// that scores each answer, then a feedback stage that turns the scores into
// a candidate-facing report. Each stage is a structured model call with
// bounded constant-delay retries.
package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"ai-interview-service/internal/agent"
	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
	"ai-interview-service/internal/observability/metrics"
	"ai-interview-service/internal/service/transcript"
)

// ErrNotReady is returned when the session is not in a state the pipeline
// may run from. The caller surfaces this as a client error, not a failure.
var ErrNotReady = errors.New("session is not ready for evaluation")

// SessionStore is the session state surface the pipeline needs.
type SessionStore interface {
	Get(id string) (models.Session, error)
	UpdateStatus(id string, status models.Status) error
	StoreFeedback(id string, report models.FeedbackReport) error
}

// JSONGenerator makes one structured model call per invocation.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Publisher receives the finished report, best-effort.
type Publisher interface {
	PublishFeedback(ctx context.Context, sessionID string, report any) error
}

// Pipeline orchestrates the two evaluation stages for one session at a time.
type Pipeline struct {
	store      SessionStore
	gen        JSONGenerator
	publisher  Publisher
	maxRetries uint64
	retryDelay time.Duration
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// New creates a pipeline. maxRetries is the number of retries after the
// first attempt; both stages share the same budget.
func New(store SessionStore, gen JSONGenerator, publisher Publisher, maxRetries int, retryDelay time.Duration) *Pipeline {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Pipeline{
		store:      store,
		gen:        gen,
		publisher:  publisher,
		maxRetries: uint64(maxRetries),
		retryDelay: retryDelay,
		metrics:    metrics.DefaultMetrics,
		logger:     logging.WithComponent("evaluation-pipeline"),
	}
}

const evaluatorPrompt = `You are a rigorous interview evaluator. Assess each answer below against its question and evaluation criteria.

Candidate: %s
Company: %s
Position: %s
%s
Question/answer pairs:
%s

Score every answer from 1-10 on relevance, depth, structure, and communication, each with a one-sentence justification. An empty answer scores 1 across the board.

Return ONLY a JSON object, no markdown fences or extra text:
{
  "overall_score": 0.0,
  "evaluations": [
    {
      "question_id": "...",
      "question_text": "...",
      "answer_summary": "...",
      "relevance": {"score": 0, "justification": "..."},
      "depth": {"score": 0, "justification": "..."},
      "structure": {"score": 0, "justification": "..."},
      "communication": {"score": 0, "justification": "..."},
      "overall_score": 0.0,
      "strengths": ["..."],
      "improvements": ["..."]
    }
  ]
}`

const feedbackPrompt = `You are an encouraging interview coach. Turn the evaluation below into a feedback report the candidate will actually read.

Candidate: %s
Company: %s
Position: %s
%s
Evaluation:
%s

Be specific, kind, and practical. Ground every suggestion in something the candidate said.

Return ONLY a JSON object, no markdown fences or extra text:
{
  "overall_score": 0.0,
  "overall_grade": "A|B|C|D",
  "summary": "...",
  "top_strengths": ["..."],
  "key_improvements": ["..."],
  "action_items": [{"area": "...", "suggestion": "...", "example": "..."}],
  "encouragement": "..."
}`

// Run executes the full pipeline for a session. Preconditions: status must
// be completed (or evaluating, for a retry of an interrupted run). On any
// stage failure the status reverts to completed so the caller can re-run.
func (p *Pipeline) Run(ctx context.Context, sessionID string) (models.FeedbackReport, error) {
	start := time.Now()
	logger := p.logger.With().Str("sessionId", sessionID).Logger()

	sess, err := p.store.Get(sessionID)
	if err != nil {
		return models.FeedbackReport{}, err
	}
	if sess.Status != models.StatusCompleted && sess.Status != models.StatusEvaluating {
		return models.FeedbackReport{}, fmt.Errorf("%w: status is %s", ErrNotReady, sess.Status)
	}

	if err := p.store.UpdateStatus(sessionID, models.StatusEvaluating); err != nil {
		return models.FeedbackReport{}, err
	}

	report, err := p.run(ctx, sess, logger)
	if err != nil {
		// Leave the session re-runnable.
		if revertErr := p.store.UpdateStatus(sessionID, models.StatusCompleted); revertErr != nil {
			logger.Error().Err(revertErr).Msg("Failed to revert session status")
		}
		p.metrics.PipelineRuns.WithLabelValues("failure").Inc()
		return models.FeedbackReport{}, err
	}

	if err := p.store.StoreFeedback(sessionID, report); err != nil {
		p.metrics.PipelineRuns.WithLabelValues("failure").Inc()
		return models.FeedbackReport{}, err
	}

	if p.publisher != nil {
		if pubErr := p.publisher.PublishFeedback(ctx, sessionID, report); pubErr != nil {
			logger.Warn().Err(pubErr).Msg("Feedback write-through failed")
		}
	}

	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	logger.Info().Dur("elapsed", time.Since(start)).Msg("Evaluation pipeline finished")
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, sess models.Session, logger zerolog.Logger) (models.FeedbackReport, error) {
	records := transcript.BuildQARecords(sess.Transcript, sess.Questions)
	recordsJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return models.FeedbackReport{}, fmt.Errorf("marshal qa records: %w", err)
	}

	jdBlock := ""
	if sess.JDSummary != "" {
		jdBlock = "\nRole summary from the job description:\n" + sess.JDSummary + "\n"
	}

	// Stage 1: evaluator.
	evalRaw, err := p.callStage(ctx, "evaluator", fmt.Sprintf(evaluatorPrompt,
		sess.Config.CandidateName, sess.Config.Company, sess.Config.Position, jdBlock, recordsJSON))
	if err != nil {
		return models.FeedbackReport{}, fmt.Errorf("evaluator stage: %w", err)
	}

	// An unparseable evaluation is still usable prose for the feedback
	// stage, so parse failure here does not fail the pipeline.
	var evalResult models.EvaluationResult
	evalForFeedback := evalRaw
	if err := json.Unmarshal([]byte(evalRaw), &evalResult); err != nil {
		logger.Warn().Err(err).Msg("Evaluator output is not valid JSON, passing raw text downstream")
		evalResult = models.EvaluationResult{}
	} else {
		evalResult.SessionID = sess.ID
	}

	// Stage 2: feedback.
	feedbackRaw, err := p.callStage(ctx, "feedback", fmt.Sprintf(feedbackPrompt,
		sess.Config.CandidateName, sess.Config.Company, sess.Config.Position, jdBlock, evalForFeedback))
	if err != nil {
		return models.FeedbackReport{}, fmt.Errorf("feedback stage: %w", err)
	}

	var report models.FeedbackReport
	if err := json.Unmarshal([]byte(feedbackRaw), &report); err != nil {
		logger.Warn().Err(err).Msg("Feedback output is not valid JSON, storing raw text")
		report = models.FeedbackReport{RawText: feedbackRaw}
	}

	report.SessionID = sess.ID
	report.CandidateName = sess.Config.CandidateName
	report.Company = sess.Config.Company
	report.Position = sess.Config.Position
	if len(report.PerQuestionFeedback) == 0 {
		report.PerQuestionFeedback = evalResult.Evaluations
	}
	if report.OverallScore == 0 {
		report.OverallScore = evalResult.OverallScore
	}
	return report, nil
}

// callStage runs one structured model call with bounded constant-delay
// retries. Every call error is retryable; the budget is maxRetries retries
// after the initial attempt.
func (p *Pipeline) callStage(ctx context.Context, stage, prompt string) (string, error) {
	var out string
	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewConstant(p.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p.metrics.PipelineStageAttempts.WithLabelValues(stage).Inc()
		raw, err := p.gen.GenerateJSON(ctx, prompt)
		if err != nil {
			p.logger.Warn().Err(err).Str("stage", stage).Msg("Stage attempt failed")
			return retry.RetryableError(err)
		}
		out = strings.TrimSpace(agent.StripFences(raw))
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
