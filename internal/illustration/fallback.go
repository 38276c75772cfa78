package illustration

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed assets/fallback/*.png
var fallbackAssets embed.FS

// FallbackImages возвращает файлы пула, встроенные в бинарник. Корень - каталог с файлами пула.
func FallbackImages() fs.FS {
	sub, err := fs.Sub(fallbackAssets, "assets/fallback")
	if err != nil {
		// Путь фиксирован на этапе сборки
		panic("illustration: fallback assets missing: " + err.Error())
	}
	return sub
}

// fallbackFiles - пул запасных иллюстраций. Порядок значим: ключевые слова ссылаются на индексы.
var fallbackFiles = []string{
	"forest.png",
	"ocean.png",
	"space.png",
	"castle.png",
	"animals.png",
	"adventure.png",
	"magic.png",
	"storybook.png",
}

var fallbackKeywords = []struct {
	words []string
	index int
}{
	{[]string{"forest"}, 0},
	{[]string{"ocean", "sea"}, 1},
	{[]string{"space", "star", "planet"}, 2},
	{[]string{"castle", "princess", "king"}, 3},
	{[]string{"animal", "dog", "cat"}, 4},
	{[]string{"adventure", "journey"}, 5},
	{[]string{"magic", "wizard", "fairy"}, 6},
}

// FallbackPool - фиксированный набор стоковых изображений.
type FallbackPool struct {
	refs []string
}

// NewFallbackPool строит пул ссылок вида <baseURL>/<file>.
func NewFallbackPool(baseURL string) *FallbackPool {
	baseURL = strings.TrimSuffix(baseURL, "/")
	refs := make([]string, len(fallbackFiles))
	for i, f := range fallbackFiles {
		refs[i] = baseURL + "/" + f
	}
	return &FallbackPool{refs: refs}
}

func (p *FallbackPool) Len() int { return len(p.refs) }

// At возвращает запись пула по индексу (по модулю размера пула).
func (p *FallbackPool) At(i int) string {
	if i < 0 {
		i = -i
	}
	return p.refs[i%len(p.refs)]
}

// Refs возвращает копию всех ссылок пула.
func (p *FallbackPool) Refs() []string {
	out := make([]string, len(p.refs))
	copy(out, p.refs)
	return out
}

// Index выбирает запись по ключевым словам промпта, без совпадений по длине промпта.
func (p *FallbackPool) Index(prompt string) int {
	lower := strings.ToLower(prompt)
	for _, kw := range fallbackKeywords {
		for _, w := range kw.words {
			if strings.Contains(lower, w) {
				return kw.index
			}
		}
	}
	return len(prompt) % len(p.refs)
}

// Select возвращает запись пула для промпта.
func (p *FallbackPool) Select(prompt string) string {
	return p.refs[p.Index(prompt)]
}

// SelectUnused предпочитает записи, которых еще нет в used, и помечает выбранную.
// Если все записи заняты, возвращается запись по ключевым словам.
func (p *FallbackPool) SelectUnused(prompt string, used map[int]bool) string {
	preferred := p.Index(prompt)
	for offset := 0; offset < len(p.refs); offset++ {
		idx := (preferred + offset) % len(p.refs)
		if !used[idx] {
			used[idx] = true
			return p.refs[idx]
		}
	}
	return p.refs[preferred]
}
