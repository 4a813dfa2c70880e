package questionbank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
)

// SetCache holds precomputed tailored question sets keyed by an opaque set
// id. The file layout is {"<set-id>": {"questions": [...]}}.
type SetCache struct {
	sets   map[string]cachedSet
	logger zerolog.Logger
}

type cachedSet struct {
	Questions []cachedQuestion `json:"questions"`
}

type cachedQuestion struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Question   string `json:"question"`
}

// NewSetCache creates an empty cache.
func NewSetCache() *SetCache {
	return &SetCache{
		sets:   map[string]cachedSet{},
		logger: logging.WithComponent("question-set-cache"),
	}
}

// Load reads the cache file if present. Absence is not an error.
func (c *SetCache) Load(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		c.logger.Debug().Str("path", path).Msg("No question set cache file")
		return
	}
	sets := map[string]cachedSet{}
	if err := json.Unmarshal(raw, &sets); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("Failed to parse question set cache")
		return
	}
	c.sets = sets
	c.logger.Info().Int("sets", len(sets)).Msg("Loaded question set cache")
}

// Put stores a set under the given id. The cache is otherwise read-only at
// runtime; set producers write the cache file out of band.
func (c *SetCache) Put(id string, questions []models.Question) {
	set := cachedSet{}
	for _, q := range questions {
		set.Questions = append(set.Questions, cachedQuestion{
			ID:         q.ID,
			Type:       string(q.Type),
			Difficulty: q.Difficulty,
			Question:   q.Question,
		})
	}
	c.sets[id] = set
}

// Get resolves a cached set into session questions, stamping the session's
// company and position. Entries with no question text are skipped with a
// warning; nil is returned when the id is unknown or nothing usable remains.
func (c *SetCache) Get(id, company, position string) []models.Question {
	set, ok := c.sets[id]
	if !ok {
		return nil
	}

	var out []models.Question
	for i, q := range set.Questions {
		if q.Question == "" {
			c.logger.Warn().Str("setId", id).Int("index", i).Msg("Skipping malformed cached question")
			continue
		}
		qid := q.ID
		if qid == "" {
			qid = fmt.Sprintf("set-%d", i)
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		out = append(out, models.Question{
			ID:         qid,
			Company:    company,
			Position:   position,
			Type:       models.ParseQuestionType(q.Type),
			Difficulty: difficulty,
			Question:   q.Question,
			Tags:       []string{"tailored"},
		})
	}
	return out
}
