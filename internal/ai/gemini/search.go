package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/ai"
	"github.com/spigell/bewatu/internal/network"
	"github.com/spigell/bewatu/internal/utils"
)

const maxQueryRunes = 500

//go:embed search_prompt.md
var searchPromptTemplate string

// Searcher matches recruiter queries against candidate profiles.
type Searcher struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.CandidateSearcher = (*Searcher)(nil)

func NewSearcher(generator jsonGenerator, maxLogLength int, logger *zap.Logger) *Searcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Searcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Searcher) SearchCandidates(ctx context.Context, query string, candidates []*network.User) ([]*network.SearchResult, error) {
	query = sanitizeSingleLine(query, maxQueryRunes)
	if query == "" {
		return nil, errors.New("search query is required")
	}

	if len(candidates) == 0 {
		return []*network.SearchResult{}, nil
	}

	candidatesJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidates payload: %w", err)
	}

	prompt := buildSearchPrompt(query, string(candidatesJSON))

	s.logger.Debug("gemini candidate search request",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateJSON(ctx, searchSystemInstruction, prompt, candidateSearchSchema())
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	s.logger.Debug("gemini candidate search response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return network.DecodeSearchResults(raw)
}

func buildSearchPrompt(query, candidatesJSON string) string {
	template := searchPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Recruiter query:\n{{QUERY}}\n\nCandidates:\n{{CANDIDATES_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{QUERY}}", query)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", candidatesJSON)
	return prompt
}

// sanitizeSingleLine collapses whitespace, neutralises square brackets so user
// text cannot open a new prompt section, and truncates to limit runes.
func sanitizeSingleLine(value string, limit int) string {
	value = strings.NewReplacer("[", "(", "]", ")").Replace(value)
	value = strings.Join(strings.FieldsFunc(value, unicode.IsSpace), " ")

	runes := []rune(value)
	if limit > 0 && len(runes) > limit {
		value = strings.TrimSpace(string(runes[:limit]))
	}
	return value
}
