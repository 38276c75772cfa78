package illustration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const okURL = "https://cdn.test/ok.png"

// stubProvider - потокобезопасный провайдер с настраиваемым поведением.
type stubProvider struct {
	mu    sync.Mutex
	calls []ImageRequest
	fn    func(req ImageRequest) (ImageResult, error)
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, req ImageRequest) (ImageResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	return p.fn(req)
}

func (p *stubProvider) Calls() []ImageRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ImageRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

func alwaysFail(ImageRequest) (ImageResult, error) {
	return ImageResult{}, errors.New("provider down")
}

func newTestService(t *testing.T, provider ImageProvider) (*Service, *FallbackPool, string) {
	t.Helper()
	dir := t.TempDir()
	pool := NewFallbackPool("/static/fallback")
	svc := NewService(provider, NewFileStore(dir, "/images"), pool, Config{BatchWidth: 2}, zap.NewNop())
	return svc, pool, dir
}

func TestGenerateImage_ProviderAlwaysFails(t *testing.T) {
	provider := &stubProvider{fn: alwaysFail}
	svc, pool, _ := newTestService(t, provider)

	ref := svc.GenerateImage(context.Background(), "A dark forest at night", Options{Style: "cartoon"})

	assert.Equal(t, "/static/fallback/forest.png", ref)
	assert.Contains(t, pool.Refs(), ref)
	// Основная попытка и упрощенная, без дальнейших повторов
	assert.Len(t, provider.Calls(), 2)
}

func TestGenerateImage_NoProviderUsesPool(t *testing.T) {
	svc, pool, _ := newTestService(t, nil)

	ref := svc.GenerateImage(context.Background(), "Sailing the ocean", Options{})

	assert.NotEmpty(t, ref)
	assert.Equal(t, pool.Select("Sailing the ocean"), ref)
}

func TestGenerateImage_SimplifiedAttemptSucceeds(t *testing.T) {
	scene := "Mia builds a rocket. It is very tall and shiny and red."
	simplified := SimplifyPrompt(scene, "watercolor")

	provider := &stubProvider{fn: func(req ImageRequest) (ImageResult, error) {
		if req.Prompt == simplified {
			return ImageResult{URL: okURL}, nil
		}
		return ImageResult{}, errors.New("content policy")
	}}
	svc, _, _ := newTestService(t, provider)

	ref := svc.GenerateImage(context.Background(), scene, Options{Style: "watercolor", CharacterDescription: "Mia"})

	assert.Equal(t, okURL, ref)
	calls := provider.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, EnrichPrompt(scene, Options{Style: "watercolor", CharacterDescription: "Mia"}), calls[0].Prompt)
	assert.Equal(t, simplified, calls[1].Prompt)
}

func TestGenerateImage_SavesBinaryData(t *testing.T) {
	provider := &stubProvider{fn: func(ImageRequest) (ImageResult, error) {
		return ImageResult{Data: []byte("\x89PNG fake")}, nil
	}}
	svc, _, dir := newTestService(t, provider)

	ref := svc.GenerateImage(context.Background(), "Mia reads a book", Options{})

	require.True(t, strings.HasPrefix(ref, "/images/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"))
	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/images/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), data)
}

func TestGenerateImage_EmptyResultFallsBack(t *testing.T) {
	provider := &stubProvider{fn: func(ImageRequest) (ImageResult, error) {
		return ImageResult{}, nil
	}}
	svc, pool, _ := newTestService(t, provider)

	ref := svc.GenerateImage(context.Background(), "A castle", Options{})
	assert.Equal(t, pool.Select("A castle"), ref)
}

func storyPages(n int) []models.StoryPage {
	pages := make([]models.StoryPage, n)
	for i := range pages {
		pages[i] = models.StoryPage{
			Text:                    "Text of page.",
			IllustrationDescription: "Scene page-" + string(rune('0'+i)) + ".",
		}
	}
	return pages
}

func TestGeneratePages_PartialFailures(t *testing.T) {
	provider := &stubProvider{fn: func(req ImageRequest) (ImageResult, error) {
		if strings.Contains(req.Prompt, "page-1") || strings.Contains(req.Prompt, "page-3") {
			return ImageResult{}, errors.New("provider error")
		}
		return ImageResult{URL: okURL}, nil
	}}
	svc, pool, _ := newTestService(t, provider)

	refs := svc.GeneratePages(context.Background(), storyPages(5), "cartoon", "Mia, a girl")

	require.Len(t, refs, 5)
	for _, i := range []int{0, 2, 4} {
		assert.Equal(t, okURL, refs[i], "page %d", i)
	}
	for _, i := range []int{1, 3} {
		assert.Contains(t, pool.Refs(), refs[i], "page %d", i)
	}
	// Запасные изображения в одной книге не повторяются
	assert.NotEqual(t, refs[1], refs[3])
}

func TestGeneratePages_AnchorBecomesReference(t *testing.T) {
	provider := &stubProvider{fn: func(ImageRequest) (ImageResult, error) {
		return ImageResult{URL: okURL}, nil
	}}
	svc, _, _ := newTestService(t, provider)

	refs := svc.GeneratePages(context.Background(), storyPages(3), "cartoon", "Mia")

	require.Len(t, refs, 3)
	calls := provider.Calls()
	require.Len(t, calls, 3)
	assert.Empty(t, calls[0].ReferenceImage)
	for _, c := range calls[1:] {
		assert.Equal(t, okURL, c.ReferenceImage)
	}
}

func TestGeneratePages_TotalFailure(t *testing.T) {
	provider := &stubProvider{fn: alwaysFail}
	svc, pool, _ := newTestService(t, provider)

	refs := svc.GeneratePages(context.Background(), storyPages(6), "watercolor", "")

	require.Len(t, refs, 6)
	seen := make(map[string]bool)
	for i, ref := range refs {
		assert.NotEmpty(t, ref, "page %d", i)
		assert.Contains(t, pool.Refs(), ref)
		assert.False(t, seen[ref], "fallback %s repeated", ref)
		seen[ref] = true
	}
	// Референс не передается, если первая страница не от провайдера
	for _, c := range provider.Calls() {
		assert.Empty(t, c.ReferenceImage)
	}
}

func TestGeneratePages_CanceledContextFillsEverySlot(t *testing.T) {
	provider := &stubProvider{fn: func(ImageRequest) (ImageResult, error) {
		return ImageResult{URL: okURL}, nil
	}}
	svc, _, _ := newTestService(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	refs := svc.GeneratePages(ctx, storyPages(4), "cartoon", "Mia")

	require.Len(t, refs, 4)
	for i, ref := range refs {
		assert.NotEmpty(t, ref, "page %d", i)
	}
}

func TestGeneratePages_Empty(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	assert.Empty(t, svc.GeneratePages(context.Background(), nil, "cartoon", ""))
}
