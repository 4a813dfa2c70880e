// Package questionbank loads the static question catalog and selects
// question lists for sessions with a graceful filter-fallback chain.
package questionbank

import (
	"encoding/json"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
)

// Generic catalog companies used as a selection fallback when no questions
// match the requested company.
var genericCompanies = []string{"Generic Tech", "Generic Non-Tech"}

// Bank holds the loaded catalog. Read-only after Load.
type Bank struct {
	questions []models.Question
	companies []string
	positions []string
	logger    zerolog.Logger
}

// New creates an empty bank.
func New() *Bank {
	return &Bank{logger: logging.WithComponent("questionbank")}
}

// Load reads the catalog from a JSON file. A missing or malformed file
// leaves the bank empty rather than failing: sessions can still be created
// with generated questions.
func (b *Bank) Load(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		b.logger.Warn().Err(err).Str("path", path).Msg("Question catalog not found, using empty bank")
		b.questions = nil
		return
	}

	var questions []models.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		b.logger.Error().Err(err).Str("path", path).Msg("Failed to parse question catalog")
		b.questions = nil
		return
	}

	b.questions = questions

	companySet := map[string]struct{}{}
	positionSet := map[string]struct{}{}
	for _, q := range questions {
		companySet[q.Company] = struct{}{}
		positionSet[q.Position] = struct{}{}
	}
	b.companies = sortedKeys(companySet)
	b.positions = sortedKeys(positionSet)

	b.logger.Info().Int("count", len(questions)).Str("path", path).Msg("Loaded question catalog")
}

// Size returns the number of catalog questions.
func (b *Bank) Size() int { return len(b.questions) }

// Companies lists all companies present in the catalog, sorted.
func (b *Bank) Companies() []string { return b.companies }

// Positions lists all positions present in the catalog, sorted.
func (b *Bank) Positions() []string { return b.positions }

// PositionsForCompany lists positions available for one company, sorted.
func (b *Bank) PositionsForCompany(company string) []string {
	set := map[string]struct{}{}
	for _, q := range b.questions {
		if strings.EqualFold(q.Company, company) {
			set[q.Position] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// CompanyStats is the per-company breakdown returned by Stats.
type CompanyStats struct {
	Total int            `json:"total"`
	Types map[string]int `json:"types"`
}

// Stats returns catalog totals broken down by company and question type.
func (b *Bank) Stats() map[string]CompanyStats {
	stats := map[string]CompanyStats{}
	for _, q := range b.questions {
		s, ok := stats[q.Company]
		if !ok {
			s = CompanyStats{Types: map[string]int{}}
		}
		s.Total++
		s.Types[string(q.Type)]++
		stats[q.Company] = s
	}
	return stats
}

// Filter returns catalog questions matching all provided criteria. Empty
// criteria match everything.
func (b *Bank) Filter(company, position string, types []models.QuestionType) []models.Question {
	typeSet := map[models.QuestionType]struct{}{}
	for _, t := range types {
		typeSet[t] = struct{}{}
	}

	var out []models.Question
	for _, q := range b.questions {
		if company != "" && !strings.EqualFold(q.Company, company) {
			continue
		}
		if position != "" && !strings.EqualFold(q.Position, position) {
			continue
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[q.Type]; !ok {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// Select picks a random subset of up to count questions, relaxing filters
// step by step until a non-empty pool is found: company+position+types,
// then company+types, then the generic companies, then types alone, and
// finally the whole catalog.
func (b *Bank) Select(company, position string, types []models.QuestionType, count int) []models.Question {
	pool := b.Filter(company, position, types)

	if len(pool) == 0 {
		pool = b.Filter(company, "", types)
	}
	if len(pool) == 0 {
		for _, generic := range genericCompanies {
			pool = append(pool, b.Filter(generic, "", types)...)
		}
	}
	if len(pool) == 0 {
		pool = b.Filter("", "", types)
	}
	if len(pool) == 0 {
		pool = b.questions
	}
	if len(pool) == 0 {
		return nil
	}

	if count > len(pool) {
		count = len(pool)
	}

	shuffled := make([]models.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
