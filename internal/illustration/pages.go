package illustration

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storybook-server/internal/models"
)

// GeneratePages генерирует иллюстрации страниц. refs[i] соответствует pages[i], пустых элементов нет.
// Первая страница генерируется заранее и, если ее нарисовал провайдер, служит референсом для остальных.
func (s *Service) GeneratePages(ctx context.Context, pages []models.StoryPage, style, characterDescription string) []string {
	refs := make([]string, len(pages))
	if len(pages) == 0 {
		return refs
	}

	var mu sync.Mutex
	used := make(map[int]bool)
	fallback := func(prompt string) string {
		mu.Lock()
		defer mu.Unlock()
		return s.pool.SelectUnused(prompt, used)
	}

	opts := Options{Style: style, CharacterDescription: characterDescription}

	anchor := s.render(ctx, sceneOf(pages[0]), opts, fallback)
	refs[0] = anchor.Ref
	if anchor.FromProvider() {
		opts.ReferenceImage = anchor.Ref
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.batchWidth)
	for i := 1; i < len(pages); i++ {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			refs[i] = s.render(egCtx, sceneOf(pages[i]), opts, fallback).Ref
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Warn("Page illustration batch interrupted", zap.Error(err))
	}

	// Финальный проход: любая пустая ячейка получает запись пула по индексу
	for i := range refs {
		if refs[i] == "" {
			refs[i] = s.pool.At(i)
		}
	}
	return refs
}

func sceneOf(page models.StoryPage) string {
	if page.IllustrationDescription != "" {
		return page.IllustrationDescription
	}
	return firstSentence(page.Text)
}
