package illustration

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig - параметры OpenAI Images API.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Size    string
	Timeout time.Duration
}

// OpenAIProvider генерирует изображения через OpenAI Images API.
// Если ссылка-референс указывает на локально сохраненный файл, используется CreateEditImage.
type OpenAIProvider struct {
	client *openaigo.Client
	model  string
	size   string
	store  *FileStore
	logger *zap.Logger
}

var _ ImageProvider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(cfg OpenAIConfig, store *FileStore, logger *zap.Logger) *OpenAIProvider {
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIProvider{
		client: openaigo.NewClientWithConfig(openaiConfig),
		model:  cfg.Model,
		size:   cfg.Size,
		store:  store,
		logger: logger.Named("openai_images"),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, req ImageRequest) (ImageResult, error) {
	if path, ok := p.store.LocalPath(req.ReferenceImage); ok {
		result, err := p.edit(ctx, path, req.Prompt)
		if err == nil {
			return result, nil
		}
		// Референс - лишь подсказка: при ошибке генерируем без него
		p.logger.Warn("Image edit with reference failed, generating without reference", zap.Error(err))
	}

	resp, err := p.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.model,
		N:              1,
		Size:           p.size,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return ImageResult{}, fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}
	return decodeImageResponse(resp)
}

func (p *OpenAIProvider) edit(ctx context.Context, path, prompt string) (ImageResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageResult{}, err
	}
	defer f.Close()

	resp, err := p.client.CreateEditImage(ctx, openaigo.ImageEditRequest{
		Image:          f,
		Prompt:         prompt,
		Model:          p.model,
		N:              1,
		Size:           p.size,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return ImageResult{}, fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}
	return decodeImageResponse(resp)
}

func decodeImageResponse(resp openaigo.ImageResponse) (ImageResult, error) {
	if len(resp.Data) == 0 {
		return ImageResult{}, fmt.Errorf("%w: empty response", ErrImageGenerationFailed)
	}
	item := resp.Data[0]
	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return ImageResult{}, fmt.Errorf("%w: decode b64_json: %v", ErrImageGenerationFailed, err)
		}
		return ImageResult{Data: data}, nil
	}
	if item.URL != "" {
		return ImageResult{URL: item.URL}, nil
	}
	return ImageResult{}, fmt.Errorf("%w: response has neither url nor b64_json", ErrImageGenerationFailed)
}
