// Package transcript reconstructs question/answer pairs from the raw
// role-tagged utterance log of a finished interview.
package transcript

import (
	"strings"

	"ai-interview-service/internal/models"
)

// BuildQARecords walks the transcript in arrival order and groups candidate
// utterances under the most recent question. A new record opens whenever an
// interviewer entry carries a question id; candidate text spoken before the
// first question (greeting small talk) is not attributed to any question.
// Interviewer entries without a question id are conversational glue and do
// not open records.
//
// The function is pure: same inputs, same output, no side effects.
func BuildQARecords(entries []models.TranscriptEntry, questions []models.Question) []models.QARecord {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var records []models.QARecord
	var answers []string
	current := -1

	flush := func() {
		if current >= 0 {
			records[current].Answer = strings.Join(answers, " ")
		}
		answers = nil
	}

	for _, entry := range entries {
		switch entry.Role {
		case models.RoleInterviewer:
			if entry.QuestionID == "" {
				continue
			}
			flush()
			record := models.QARecord{
				QuestionID: entry.QuestionID,
				Question:   entry.Text,
			}
			if q, ok := byID[entry.QuestionID]; ok {
				record.Question = q.Question
				record.EvaluationCriteria = q.EvaluationCriteria
			}
			records = append(records, record)
			current = len(records) - 1
		case models.RoleCandidate:
			if current < 0 {
				continue
			}
			text := strings.TrimSpace(entry.Text)
			if text != "" {
				answers = append(answers, text)
			}
		}
	}
	flush()

	return records
}
