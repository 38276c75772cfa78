package narrative

import (
	"strings"

	"storybook-server/internal/models"
)

// Kind - вариант результата генерации истории.
type Kind int

const (
	// KindPaged - история разбита на страницы с описаниями иллюстраций.
	KindPaged Kind = iota
	// KindFlat - заголовок и сплошной текст.
	KindFlat
)

func (k Kind) String() string {
	switch k {
	case KindPaged:
		return "paged"
	case KindFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Result - результат генерации. Для KindPaged заполнено Pages, для KindFlat заполнено Content.
type Result struct {
	Kind    Kind
	Title   string
	Content string
	Pages   []models.StoryPage
}

// Text возвращает полный текст истории. Тексты страниц разделяются пустой строкой.
func (r Result) Text() string {
	if r.Kind == KindFlat {
		return r.Content
	}
	texts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n")
}

// SplitIntoPages делит сплошной текст на pageCount страниц по абзацам.
// Описанием иллюстрации страницы становится ее первое предложение.
func SplitIntoPages(content string, pageCount int) []models.StoryPage {
	paragraphs := splitParagraphs(content)
	if len(paragraphs) == 0 {
		return nil
	}
	if pageCount <= 0 || pageCount > len(paragraphs) {
		pageCount = len(paragraphs)
	}

	pages := make([]models.StoryPage, 0, pageCount)
	// Абзацы распределяются равномерно, остаток уходит в первые страницы
	per := len(paragraphs) / pageCount
	extra := len(paragraphs) % pageCount
	idx := 0
	for i := 0; i < pageCount; i++ {
		n := per
		if i < extra {
			n++
		}
		text := strings.Join(paragraphs[idx:idx+n], "\n\n")
		idx += n
		pages = append(pages, models.StoryPage{
			Text:                    text,
			IllustrationDescription: FirstSentence(text),
		})
	}
	return pages
}

// FirstSentence возвращает первое предложение текста (до . ! или ? включительно).
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return strings.TrimSpace(text[:i+1])
	}
	return text
}

func splitParagraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var paragraphs []string
	for _, p := range strings.Split(content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	// Модель могла разделить абзацы одиночным переводом строки
	if len(paragraphs) == 1 && strings.Contains(paragraphs[0], "\n") {
		paragraphs = paragraphs[:0]
		for _, p := range strings.Split(content, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				paragraphs = append(paragraphs, p)
			}
		}
	}
	return paragraphs
}
