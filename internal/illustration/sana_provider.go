package illustration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SanaConfig - параметры HTTP-сервера SANA.
type SanaConfig struct {
	BaseURL string
	Ratio   string
	Timeout time.Duration
}

// SanaAPIRequest - тело запроса к SANA API.
type SanaAPIRequest struct {
	Prompt string `json:"prompt"`
	Ratio  string `json:"ratio"`
}

// SanaProvider вызывает SANA API, который возвращает изображение в теле ответа.
// Референсные изображения SANA не поддерживает, они игнорируются.
type SanaProvider struct {
	baseURL string
	ratio   string
	client  *http.Client
	logger  *zap.Logger
}

var _ ImageProvider = (*SanaProvider)(nil)

func NewSanaProvider(cfg SanaConfig, logger *zap.Logger) *SanaProvider {
	ratio := cfg.Ratio
	if ratio == "" {
		ratio = "1:1"
	}
	return &SanaProvider{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		ratio:   ratio,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("sana").With(zap.String("api_url", cfg.BaseURL)),
	}
}

func (p *SanaProvider) Name() string { return "sana" }

func (p *SanaProvider) Generate(ctx context.Context, req ImageRequest) (ImageResult, error) {
	reqBodyBytes, err := json.Marshal(SanaAPIRequest{Prompt: req.Prompt, Ratio: p.ratio})
	if err != nil {
		return ImageResult{}, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	endpointURL := p.baseURL + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return ImageResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return ImageResult{}, fmt.Errorf("%w: http request failed: %v", ErrImageGenerationFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		p.logger.Error("SANA API returned non-OK status",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", truncate(bodyBytes, 512)),
		)
		return ImageResult{}, fmt.Errorf("%w: API returned status %d", ErrImageGenerationFailed, resp.StatusCode)
	}
	if readErr != nil {
		return ImageResult{}, fmt.Errorf("%w: failed to read response body: %v", ErrImageGenerationFailed, readErr)
	}
	if len(bodyBytes) == 0 {
		return ImageResult{}, fmt.Errorf("%w: API returned empty data", ErrImageGenerationFailed)
	}
	return ImageResult{Data: bodyBytes}, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
