package illustration

import (
	"strings"
	"unicode/utf8"
)

const maxSimplifiedPromptLen = 200

// StyleDirective возвращает указание по стилю. Неизвестные стили получают стиль с четким контуром.
func StyleDirective(style string) string {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "watercolor":
		return "Soft watercolor illustration with gentle brush strokes and flowing, blended colors."
	case "3d":
		return "Dimensional 3D-rendered illustration with soft lighting and tactile, textured surfaces."
	default:
		return "Bright children's book illustration with clean outlines and vivid, cheerful colors."
	}
}

// consistencyDirective просит провайдера сохранять внешность героя между иллюстрациями.
// Пустая строка, если нет ни описания героя, ни референса.
func consistencyDirective(opts Options) string {
	desc := strings.TrimSpace(opts.CharacterDescription)
	switch {
	case desc != "":
		return "Main character: " + desc + ". Keep the character's facial features, hair and outfit identical in every illustration."
	case opts.ReferenceImage != "":
		return "Match the character from the reference illustration. Keep the character's facial features, hair and outfit identical in every illustration."
	default:
		return ""
	}
}

// EnrichPrompt собирает полный промпт: сцена, стиль и указание на постоянство героя.
func EnrichPrompt(scene string, opts Options) string {
	parts := []string{ensurePeriod(strings.TrimSpace(scene)), StyleDirective(opts.Style)}
	if c := consistencyDirective(opts); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}

// SimplifyPrompt оставляет первое предложение сцены (не длиннее 200 символов) и стиль.
func SimplifyPrompt(scene, style string) string {
	short := firstSentence(scene)
	if utf8.RuneCountInString(short) > maxSimplifiedPromptLen {
		short = string([]rune(short)[:maxSimplifiedPromptLen])
	}
	return ensurePeriod(strings.TrimSpace(short)) + " " + StyleDirective(style)
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return text[:i+1]
	}
	return text
}

func ensurePeriod(s string) string {
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
