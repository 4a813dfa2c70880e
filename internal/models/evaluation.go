package models

// AnswerScore is a single scored dimension for one answer.
type AnswerScore struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// QuestionEvaluation is the evaluator's assessment of one question/answer pair.
type QuestionEvaluation struct {
	QuestionID    string      `json:"question_id"`
	QuestionText  string      `json:"question_text"`
	AnswerSummary string      `json:"answer_summary"`
	Relevance     AnswerScore `json:"relevance"`
	Depth         AnswerScore `json:"depth"`
	Structure     AnswerScore `json:"structure"`
	Communication AnswerScore `json:"communication"`
	OverallScore  float64     `json:"overall_score"`
	Strengths     []string    `json:"strengths"`
	Improvements  []string    `json:"improvements"`
}

// EvaluationResult is the stage-one output of the evaluation pipeline.
type EvaluationResult struct {
	SessionID    string               `json:"session_id"`
	Evaluations  []QuestionEvaluation `json:"evaluations"`
	OverallScore float64              `json:"overall_score"`
}

// ActionItem is one concrete improvement suggestion in a feedback report.
type ActionItem struct {
	Area       string `json:"area"`
	Suggestion string `json:"suggestion"`
	Example    string `json:"example,omitempty"`
}

// FeedbackReport is the stage-two output: the human-facing report and the
// single artifact persisted per session. Immutable once stored; only a full
// pipeline re-run replaces it.
type FeedbackReport struct {
	SessionID           string               `json:"session_id"`
	CandidateName       string               `json:"candidate_name"`
	Company             string               `json:"company"`
	Position            string               `json:"position"`
	OverallScore        float64              `json:"overall_score"`
	OverallGrade        string               `json:"overall_grade"`
	Summary             string               `json:"summary"`
	TopStrengths        []string             `json:"top_strengths"`
	KeyImprovements     []string             `json:"key_improvements"`
	PerQuestionFeedback []QuestionEvaluation `json:"per_question_feedback"`
	ActionItems         []ActionItem         `json:"action_items"`
	Encouragement       string               `json:"encouragement"`

	// RawText is set instead of the structured fields when the agent's
	// output survived retries but could not be parsed as JSON. Consumers
	// accept either shape.
	RawText string `json:"raw_text,omitempty"`
}
