package narrative

import (
	"context"
	"fmt"

	"storybook-server/internal/models"

	"go.uber.org/zap"
)

// Mode - форма ответа, которую запрашиваем у модели.
type Mode string

const (
	ModePaged Mode = "paged"
	ModeFlat  Mode = "flat"
)

// Generator генерирует историю по параметрам книги.
type Generator interface {
	// Generate возвращает заголовок и текст (или страницы) истории.
	// Любая ошибка провайдера или разбора оборачивается в models.ErrStoryGenerationFailed.
	Generate(ctx context.Context, req *models.BookRequest) (Result, error)
}

// StoryGenerator реализует Generator поверх ChatClient.
type StoryGenerator struct {
	client ChatClient
	mode   Mode
	logger *zap.Logger
}

var _ Generator = (*StoryGenerator)(nil)

func NewStoryGenerator(client ChatClient, mode Mode, logger *zap.Logger) *StoryGenerator {
	if mode != ModeFlat {
		mode = ModePaged
	}
	return &StoryGenerator{
		client: client,
		mode:   mode,
		logger: logger.Named("narrative"),
	}
}

func (g *StoryGenerator) Generate(ctx context.Context, req *models.BookRequest) (Result, error) {
	systemMsg, userMsg := buildPrompts(req, g.mode)
	log := g.logger.With(zap.String("mode", string(g.mode)), zap.String("story_length", req.StoryLength))

	raw, usage, err := g.client.Complete(ctx, systemMsg, userMsg)
	if err != nil {
		log.Error("Story generation request failed", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", models.ErrStoryGenerationFailed, err)
	}

	result, err := parseResult(raw, g.mode)
	if err != nil {
		log.Error("Failed to parse story response",
			zap.Error(err),
			zap.Int("response_length", len(raw)),
		)
		return Result{}, fmt.Errorf("%w: %v", models.ErrStoryGenerationFailed, err)
	}

	log.Info("Story generated",
		zap.String("title", result.Title),
		zap.Stringer("kind", result.Kind),
		zap.Int("pages", len(result.Pages)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return result, nil
}
