package completion

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"

	"medassist-backend/internal/config"
)

// NewArkCompleter builds a Completer backed by an Ark hosted model.
// Model, temperature and token limit are fixed for the life of the process.
func NewArkCompleter(ctx context.Context, cfg config.AIConfig) (*ModelCompleter, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	temperature := float32(cfg.Temperature)
	maxTokens := cfg.MaxTokens

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      cfg.APIKey,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	return NewModelCompleter(chatModel), nil
}
