package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"money-mate/internal/models"
	"money-mate/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// LLMService asks GigaChat for a spending category when keywords give up.
type LLMService struct {
	client  *gigago.Client
	model   *gigago.GenerativeModel
	timeout time.Duration
	logger  *zap.Logger
}

func buildSystemInstruction() string {
	return `You categorise personal bank transactions from Indian bank SMS messages.
Answer with exactly one category name from this list and nothing else:
` + strings.Join(models.SpendingCategories, "\n") + `
If the merchant or purpose is unclear, answer Others.`
}

func NewLLMService(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.1

	logger.Info("GigaChat categorizer enabled", zap.String("model", cfg.Model))

	return &LLMService{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (s *LLMService) CategorizeTransaction(ctx context.Context, description string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: "Transaction SMS:\n" + description},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("LLM category", zap.String("answer", answer))
	return answer, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
