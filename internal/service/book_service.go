package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storybook-server/internal/illustration"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"
	"storybook-server/internal/narrative"
	"storybook-server/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const maxPreviewImages = 2

var (
	booksGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_books_generated_total",
			Help: "Total number of book generation attempts by outcome.",
		},
		[]string{"status"},
	)
	bookGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storybook_book_generation_duration_seconds",
			Help:    "Histogram of full book generation durations (narrative + illustrations).",
			Buckets: []float64{5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
	)
)

// BookServiceConfig - параметры сборки книги.
type BookServiceConfig struct {
	// IllustrationBudget ограничивает суммарное время на обложку и иллюстрации страниц.
	// Слоты, не успевшие получить изображение, заполняются из запасного пула. 0 - без ограничения.
	IllustrationBudget time.Duration
}

// BookService собирает книгу: история, обложка, иллюстрации страниц, сохранение.
type BookService struct {
	generator   narrative.Generator
	illustrator illustration.Illustrator
	books       interfaces.BookRepository
	cfg         BookServiceConfig
	logger      *zap.Logger
}

func NewBookService(
	generator narrative.Generator,
	illustrator illustration.Illustrator,
	books interfaces.BookRepository,
	cfg BookServiceConfig,
	logger *zap.Logger,
) *BookService {
	return &BookService{
		generator:   generator,
		illustrator: illustrator,
		books:       books,
		cfg:         cfg,
		logger:      logger.Named("book_service"),
	}
}

// GenerateBook генерирует и сохраняет новую книгу.
// Каждый вызов создает новую запись, даже при одинаковых параметрах.
func (s *BookService) GenerateBook(ctx context.Context, req *models.BookRequest) (*models.GenerateBookResponse, error) {
	// 1. Валидация до любых внешних вызовов
	if err := validation.ValidateBookRequest(req); err != nil {
		booksGeneratedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	startTime := time.Now()
	log := s.logger.With(
		zap.String("story_length", req.StoryLength),
		zap.String("character_style", req.CharacterStyle),
	)
	log.Info("Generating book")

	// 2. История
	story, err := s.generator.Generate(ctx, req)
	if err != nil {
		booksGeneratedTotal.WithLabelValues("error").Inc()
		log.Error("Narrative generation failed", zap.Error(err))
		if !errors.Is(err, models.ErrStoryGenerationFailed) {
			err = fmt.Errorf("%w: %v", models.ErrStoryGenerationFailed, err)
		}
		return nil, err
	}

	// 3. Описание героя, общее для текста и иллюстраций
	description := narrative.CharacterDescription(req)

	var pages []models.StoryPage
	switch story.Kind {
	case narrative.KindPaged:
		pages = story.Pages
	case narrative.KindFlat:
		pages = narrative.SplitIntoPages(story.Content, narrative.TierFor(req.StoryLength).Pages)
	}
	if len(pages) == 0 {
		booksGeneratedTotal.WithLabelValues("error").Inc()
		log.Error("Narrative result has no pages", zap.Stringer("kind", story.Kind))
		return nil, fmt.Errorf("%w: story has no pages", models.ErrStoryGenerationFailed)
	}

	// 4-5. Обложка и иллюстрации страниц в общем бюджете времени
	illustrationCtx, cancel := s.illustrationContext(ctx)
	coverPrompt := fmt.Sprintf("Book cover for %s, featuring %s", story.Title, description)
	cover := s.illustrator.GenerateImage(illustrationCtx, coverPrompt, illustration.Options{
		Style:                req.CharacterStyle,
		CharacterDescription: description,
	})
	pageImages := s.illustrator.GeneratePages(illustrationCtx, pages, req.CharacterStyle, description)
	if errors.Is(illustrationCtx.Err(), context.DeadlineExceeded) {
		log.Warn("Illustration budget exhausted, remaining slots taken from fallback pool",
			zap.Duration("budget", s.cfg.IllustrationBudget),
		)
	}
	cancel()

	// 6. Превью - первые страницы
	previewCount := len(pageImages)
	if previewCount > maxPreviewImages {
		previewCount = maxPreviewImages
	}
	previews := append([]string(nil), pageImages[:previewCount]...)

	// 7. Сохранение
	book, err := s.books.CreateBook(ctx, &models.Book{
		BookRequest:   *req,
		Title:         story.Title,
		Content:       story.Text(),
		CoverImageURL: cover,
		PreviewImages: previews,
		PageImages:    pageImages,
		Pages:         pages,
		Format:        models.BookFormatPending,
		Price:         models.BookPricePending,
	})
	if err != nil {
		booksGeneratedTotal.WithLabelValues("error").Inc()
		log.Error("Failed to save book", zap.Error(err))
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	booksGeneratedTotal.WithLabelValues("success").Inc()
	bookGenerationDuration.Observe(time.Since(startTime).Seconds())
	log.Info("Book generated",
		zap.Int64("book_id", book.ID),
		zap.Int("pages", len(book.Pages)),
		zap.Duration("duration", time.Since(startTime)),
	)

	// 8. Ответ
	return buildGenerateResponse(book), nil
}

// illustrationContext ограничивает этап иллюстраций бюджетом. Сохранение книги идет уже в исходном контексте.
func (s *BookService) illustrationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.IllustrationBudget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.IllustrationBudget)
}

// GetBook возвращает сохраненную книгу.
func (s *BookService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: book id must be positive", models.ErrBadRequest)
	}
	return s.books.GetBookByID(ctx, id)
}

func buildGenerateResponse(book *models.Book) *models.GenerateBookResponse {
	pages := make([]models.GeneratedPage, len(book.Pages))
	for i, p := range book.Pages {
		pages[i] = models.GeneratedPage{
			Text:                    p.Text,
			IllustrationDescription: p.IllustrationDescription,
		}
		if i < len(book.PageImages) {
			pages[i].ImageURL = book.PageImages[i]
		}
	}
	return &models.GenerateBookResponse{
		BookID:        book.ID,
		Title:         book.Title,
		Content:       book.Content,
		CoverImageURL: book.CoverImageURL,
		PreviewImages: book.PreviewImages,
		Pages:         pages,
	}
}
