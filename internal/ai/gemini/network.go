package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/bewatu/internal/ai"
	"github.com/spigell/bewatu/internal/network"
	"github.com/spigell/bewatu/internal/utils"
)

const (
	defaultMaxLogLength = 200
	defaultLanguage     = "en"

	networkSystemInstruction = "You generate realistic sample data for a professional networking platform."
	searchSystemInstruction  = "You are an expert AI Recruiter Co-pilot for the BeWatu professional network."
)

//go:embed network_prompt.md
var networkPromptTemplate string

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, system, message string, schema *genai.Schema) (string, error)
	Model() string
}

// NetworkGenerator asks Gemini for a complete network snapshot.
type NetworkGenerator struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.NetworkGenerator = (*NetworkGenerator)(nil)

func NewNetworkGenerator(generator jsonGenerator, maxLogLength int, logger *zap.Logger) *NetworkGenerator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NetworkGenerator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (n *NetworkGenerator) GenerateNetwork(ctx context.Context, req ai.NetworkRequest) (*network.Data, error) {
	prompt := buildNetworkPrompt(req)

	n.logger.Debug("gemini network request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, n.maxLogLen)),
	)

	raw, err := n.generator.GenerateJSON(ctx, networkSystemInstruction, prompt, networkSchema())
	if err != nil {
		return nil, fmt.Errorf("generate network: %w", err)
	}

	n.logger.Debug("gemini network response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, n.maxLogLen)),
	)

	data, err := network.DecodeData(raw)
	if err != nil {
		return nil, err
	}

	n.logger.Info("generated network data",
		zap.Int("users", len(data.Users)),
		zap.Int("posts", len(data.Posts)),
		zap.Int("circles", len(data.Circles)),
		zap.Int("jobs", len(data.Jobs)),
	)

	return data, nil
}

func buildNetworkPrompt(req ai.NetworkRequest) string {
	language := sanitizeSingleLine(req.Language, 16)
	if language == "" {
		language = defaultLanguage
	}

	template := networkPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Generate professional network data in language {{LANGUAGE}} as JSON."
	}
	return strings.ReplaceAll(template, "{{LANGUAGE}}", language)
}
