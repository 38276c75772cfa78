package illustration

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrImageGenerationFailed - провайдер не вернул изображение.
	ErrImageGenerationFailed = errors.New("image generation failed")
	// ErrImageSaveFailed - ошибка при сохранении файла.
	ErrImageSaveFailed = errors.New("image save failed")
)

var (
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_illustration_provider_requests_total",
			Help: "Total number of requests to the image generation provider.",
		},
		[]string{"provider", "status"},
	)
	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_illustration_provider_request_duration_seconds",
			Help:    "Histogram of image provider request durations.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)
	illustrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_illustrations_total",
			Help: "Total number of illustrations by the pipeline stage that produced them.",
		},
		[]string{"stage"},
	)
)

// ImageRequest - запрос к провайдеру изображений.
type ImageRequest struct {
	Prompt string
	// ReferenceImage - ссылка на ранее сгенерированную иллюстрацию (может быть пустой).
	ReferenceImage string
}

// ImageResult - ответ провайдера: либо готовый URL, либо сырые байты изображения.
type ImageResult struct {
	URL  string
	Data []byte
}

// ImageProvider вызывает внешний сервис генерации изображений.
type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, req ImageRequest) (ImageResult, error)
}
