package narrative

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"storybook-server/internal/models"
)

var (
	jsonBlockRegex = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyBlockRegex  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

var errEmptyResponse = errors.New("response contains no JSON object")

// ExtractJSONContent извлекает JSON-объект из ответа модели:
// блок ```json, любой блок ```, затем текст между первой { и последней }.
func ExtractJSONContent(rawText string) string {
	rawText = strings.TrimSpace(rawText)

	if m := jsonBlockRegex.FindStringSubmatch(rawText); len(m) > 1 {
		if result := processPotentialJSON(m[1]); result != "" {
			return result
		}
	}
	if m := anyBlockRegex.FindStringSubmatch(rawText); len(m) > 1 {
		if result := processPotentialJSON(m[1]); result != "" {
			return result
		}
	}

	first := strings.Index(rawText, "{")
	if first == -1 {
		return ""
	}
	last := strings.LastIndex(rawText, "}")
	candidate := rawText[first:]
	if last > first {
		candidate = rawText[first : last+1]
	}
	if result := processPotentialJSON(candidate); result != "" {
		return result
	}
	// Ответ мог оборваться по лимиту токенов: пробуем дописать закрывающие скобки
	return processPotentialJSON(rawText[first:])
}

func processPotentialJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}
	if balanced := balanceBrackets(trimmed); json.Valid([]byte(balanced)) {
		return balanced
	}
	return ""
}

// balanceBrackets дописывает недостающие закрывающие скобки, игнорируя скобки внутри строк.
func balanceBrackets(text string) string {
	var stack []rune
	inString, escape := false, false
	for _, r := range text {
		if escape {
			escape = false
			continue
		}
		if r == '\\' && inString {
			escape = true
			continue
		}
		if r == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch r {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != r {
				return text
			}
			stack = stack[:len(stack)-1]
		}
	}
	if inString {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteRune(stack[i])
	}
	return b.String()
}

type storyPayload struct {
	Title   string             `json:"title"`
	Content string             `json:"content"`
	Pages   []models.StoryPage `json:"pages"`
}

// parseResult разбирает ответ модели в Result нужного вида.
func parseResult(raw string, mode Mode) (Result, error) {
	content := ExtractJSONContent(raw)
	if content == "" {
		return Result{}, errEmptyResponse
	}

	var payload storyPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return Result{}, fmt.Errorf("decode story JSON: %w", err)
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return Result{}, errors.New("story JSON has no title")
	}

	if mode == ModeFlat {
		text := strings.TrimSpace(payload.Content)
		if text == "" {
			return Result{}, errors.New("story JSON has empty content")
		}
		return Result{Kind: KindFlat, Title: title, Content: text}, nil
	}

	pages := make([]models.StoryPage, 0, len(payload.Pages))
	for _, p := range payload.Pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		desc := strings.TrimSpace(p.IllustrationDescription)
		if desc == "" {
			desc = FirstSentence(text)
		}
		pages = append(pages, models.StoryPage{Text: text, IllustrationDescription: desc})
	}
	if len(pages) == 0 {
		return Result{}, errors.New("story JSON has no pages")
	}
	return Result{Kind: KindPaged, Title: title, Pages: pages}, nil
}
