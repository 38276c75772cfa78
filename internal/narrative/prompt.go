package narrative

import (
	"fmt"
	"strings"

	"storybook-server/internal/models"
)

// Tier - целевой объем истории для уровня длины.
type Tier struct {
	Pages int
	Words int
}

// TierFor возвращает целевой объем: "1" короткая, "3" длинная, все остальное средняя.
func TierFor(storyLength string) Tier {
	switch storyLength {
	case models.StoryLengthShort:
		return Tier{Pages: 6, Words: 500}
	case models.StoryLengthLong:
		return Tier{Pages: 14, Words: 1500}
	default:
		return Tier{Pages: 10, Words: 1000}
	}
}

// CharacterDescription собирает описание героя для текстовых и графических промптов.
// Необязательные атрибуты добавляются только если заданы.
func CharacterDescription(req *models.BookRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, a %s with %s hair and %s skin",
		strings.TrimSpace(req.ChildName), genderNoun(req.Gender),
		strings.TrimSpace(req.HairStyle), strings.TrimSpace(req.SkinTone))

	appendAttr := func(format, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, format, value)
		}
	}
	appendAttr(", %s hair color", req.HairColor)
	appendAttr(", %s eyes", req.EyeColor)
	appendAttr(", %s height", req.Height)
	appendAttr(", %s build", req.BuildType)
	appendAttr(", facial features: %s", joinNonEmpty(req.FacialFeatures))
	appendAttr(", wearing %s clothing", req.ClothingStyle)
	appendAttr(", accessories: %s", joinNonEmpty(req.Accessories))

	return b.String()
}

func genderNoun(gender string) string {
	switch gender {
	case "boy", "girl":
		return gender
	default:
		return "child"
	}
}

func joinNonEmpty(items []string) string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

const systemPrompt = "You are a children's book author. You write warm, age-appropriate, imaginative stories " +
	"with a clear beginning, middle and end. You always answer with a single valid JSON object and nothing else."

// buildPrompts возвращает системное и пользовательское сообщения для модели.
func buildPrompts(req *models.BookRequest, mode Mode) (string, string) {
	tier := TierFor(req.StoryLength)

	var b strings.Builder
	fmt.Fprintf(&b, "Write a personalized children's story for a child aged %s.\n", strings.TrimSpace(req.AgeRange))
	fmt.Fprintf(&b, "Main character: %s.\n", CharacterDescription(req))
	fmt.Fprintf(&b, "Interests: %s.\n", joinNonEmpty(req.Interests))
	fmt.Fprintf(&b, "Theme: %s.\n", strings.TrimSpace(req.StoryTheme))
	fmt.Fprintf(&b, "The story should teach: %s.\n", strings.TrimSpace(req.StoryGoal))
	if companions := joinNonEmpty(req.Companions); companions != "" {
		fmt.Fprintf(&b, "Companions on the adventure: %s.\n", companions)
	}
	fmt.Fprintf(&b, "Illustration style: %s.\n", req.CharacterStyle)
	fmt.Fprintf(&b, "Target length: about %d words.\n\n", tier.Words)

	switch mode {
	case ModeFlat:
		b.WriteString("Respond with JSON of exactly this shape:\n")
		b.WriteString(`{"title": "story title", "content": "full story text, paragraphs separated by blank lines"}`)
	default:
		fmt.Fprintf(&b, "Split the story into exactly %d pages. For every page give the page text and a short "+
			"visual description of the scene for the illustrator.\n", tier.Pages)
		b.WriteString("Respond with JSON of exactly this shape:\n")
		b.WriteString(`{"title": "story title", "pages": [{"text": "page text", "illustrationDescription": "scene description"}]}`)
	}

	return systemPrompt, b.String()
}
