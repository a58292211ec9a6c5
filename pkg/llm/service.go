// Package llm provides the content and verdict capabilities backed by
// langchaingo.
//
// The service wraps OpenAI-compatible chat completion endpoints: one model
// generates and refines participant utterances, a second (typically
// stronger) model judges the finished transcript. Both are configured with a
// base URL, so local OpenAI-compatible servers work unchanged.
//
// Example:
//
//	config := llm.Config{
//	    BaseURL:    "https://api.openai.com/v1",
//	    Model:      "gpt-3.5-turbo",
//	    JudgeModel: "gpt-4",
//	    APIKey:     os.Getenv("OPENAI_API_KEY"),
//	}
//	service, err := llm.NewService(config, logger)
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/deliberd/internal/deliberation"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid llm configuration")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Config holds configuration for the LLM service.
type Config struct {
	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string

	// Model generates and refines utterances.
	Model string

	// JudgeModel evaluates the finished transcript.
	JudgeModel string

	// APIKey authenticates against the API.
	APIKey string

	// Temperature applies to utterance generation.
	Temperature float64

	// JudgeTemperature applies to judging.
	JudgeTemperature float64
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if c.JudgeModel == "" {
		return fmt.Errorf("%w: judge model required", ErrInvalidConfig)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required (set OPENAI_API_KEY)", ErrInvalidConfig)
	}
	return nil
}

// Service implements the content and verdict capabilities.
type Service struct {
	model llms.Model
	judge llms.Model
	cfg   Config
	log   *zap.Logger
}

// NewService creates a service with the given configuration.
func NewService(cfg Config, log *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	model, err := newClient(cfg, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating content client: %w", err)
	}
	judge, err := newClient(cfg, cfg.JudgeModel)
	if err != nil {
		return nil, fmt.Errorf("creating judge client: %w", err)
	}

	return &Service{model: model, judge: judge, cfg: cfg, log: log}, nil
}

func newClient(cfg Config, model string) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

// Generate produces a candidate utterance for the active participant.
func (s *Service) Generate(ctx context.Context, topic string, tc deliberation.TurnContext) (string, error) {
	system := buildGenerationPrompt(topic, tc)
	return s.complete(ctx, s.model, s.cfg.Temperature, system, "Provide your argument about: "+topic)
}

// Refine produces a revised utterance from the rejection feedback prompt.
func (s *Service) Refine(ctx context.Context, prompt string) (string, error) {
	return s.complete(ctx, s.model, s.cfg.Temperature,
		"You are a participant in a formal debate. You need to refine your argument.", prompt)
}

// Evaluate asks the judge model for a structured verdict on the transcript.
func (s *Service) Evaluate(ctx context.Context, topic, transcriptBlock, participantBlock string, winners []string) (string, error) {
	return s.complete(ctx, s.judge, s.cfg.JudgeTemperature,
		judgeSystemPrompt, buildJudgePrompt(topic, transcriptBlock, participantBlock, winners))
}

// complete runs one chat completion and returns the trimmed first choice.
func (s *Service) complete(ctx context.Context, model llms.Model, temperature float64, system, human string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, human),
	}

	resp, err := model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
