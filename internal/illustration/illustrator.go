package illustration

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storybook-server/internal/models"
)

// Options - дополнительные параметры иллюстрации.
type Options struct {
	Style                string
	CharacterDescription string
	ReferenceImage       string
}

// Illustrator генерирует иллюстрации. Методы никогда не возвращают ошибок:
// при сбое провайдера подставляется изображение из запасного пула.
type Illustrator interface {
	GenerateImage(ctx context.Context, prompt string, opts Options) string
	GeneratePages(ctx context.Context, pages []models.StoryPage, style, characterDescription string) []string
}

// Stage - этап конвейера, на котором получена иллюстрация.
type Stage int

const (
	StagePrimary Stage = iota
	StageSimplified
	StageFallback
)

func (s Stage) String() string {
	switch s {
	case StagePrimary:
		return "primary"
	case StageSimplified:
		return "simplified"
	default:
		return "fallback"
	}
}

// Illustration - результат конвейера.
type Illustration struct {
	Ref   string
	Stage Stage
}

// FromProvider сообщает, получено ли изображение от провайдера (а не из пула).
func (i Illustration) FromProvider() bool {
	return i.Stage != StageFallback
}

// Config - параметры сервиса иллюстраций.
type Config struct {
	BatchWidth   int
	RateInterval time.Duration
}

// Service реализует Illustrator поверх ImageProvider.
type Service struct {
	provider   ImageProvider // nil - провайдер не настроен, сразу используется пул
	store      *FileStore
	pool       *FallbackPool
	limiter    *rate.Limiter
	batchWidth int
	logger     *zap.Logger
}

var _ Illustrator = (*Service)(nil)

func NewService(provider ImageProvider, store *FileStore, pool *FallbackPool, cfg Config, logger *zap.Logger) *Service {
	width := cfg.BatchWidth
	if width < 1 {
		width = 2
	}
	limit := rate.Inf
	if cfg.RateInterval > 0 {
		limit = rate.Every(cfg.RateInterval)
	}
	return &Service{
		provider:   provider,
		store:      store,
		pool:       pool,
		limiter:    rate.NewLimiter(limit, 2),
		batchWidth: width,
		logger:     logger.Named("illustration"),
	}
}

// GenerateImage возвращает ссылку на иллюстрацию для сцены. Всегда непустая.
func (s *Service) GenerateImage(ctx context.Context, prompt string, opts Options) string {
	return s.render(ctx, prompt, opts, s.pool.Select).Ref
}

// render проводит сцену через этапы: основной промпт, упрощенный промпт, запасной пул.
func (s *Service) render(ctx context.Context, scene string, opts Options, fallback func(prompt string) string) Illustration {
	result := s.attempt(ctx, StagePrimary, EnrichPrompt(scene, opts), opts.ReferenceImage)
	if result.Ref == "" {
		result = s.attempt(ctx, StageSimplified, SimplifyPrompt(scene, opts.Style), "")
	}
	if result.Ref == "" {
		result = Illustration{Ref: fallback(scene), Stage: StageFallback}
	}
	illustrationsTotal.WithLabelValues(result.Stage.String()).Inc()
	return result
}

// attempt выполняет один вызов провайдера. Пустой Ref означает неудачу этапа.
func (s *Service) attempt(ctx context.Context, stage Stage, prompt, reference string) Illustration {
	if s.provider == nil {
		return Illustration{Stage: stage}
	}
	log := s.logger.With(zap.Stringer("stage", stage), zap.String("provider", s.provider.Name()))

	if err := s.limiter.Wait(ctx); err != nil {
		log.Warn("Rate limiter wait aborted", zap.Error(err))
		return Illustration{Stage: stage}
	}

	startTime := time.Now()
	res, err := s.provider.Generate(ctx, ImageRequest{Prompt: prompt, ReferenceImage: reference})
	providerRequestDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(startTime).Seconds())
	if err != nil {
		providerRequestsTotal.WithLabelValues(s.provider.Name(), "error").Inc()
		log.Warn("Image provider call failed", zap.Error(err))
		return Illustration{Stage: stage}
	}

	ref := res.URL
	if len(res.Data) > 0 {
		ref, err = s.store.Save(res.Data)
		if err != nil {
			providerRequestsTotal.WithLabelValues(s.provider.Name(), "error_save").Inc()
			log.Error("Failed to save generated image", zap.Error(err))
			return Illustration{Stage: stage}
		}
	}
	if ref == "" {
		providerRequestsTotal.WithLabelValues(s.provider.Name(), "error_empty_response").Inc()
		log.Warn("Image provider returned no image")
		return Illustration{Stage: stage}
	}

	providerRequestsTotal.WithLabelValues(s.provider.Name(), "success").Inc()
	return Illustration{Ref: ref, Stage: stage}
}
