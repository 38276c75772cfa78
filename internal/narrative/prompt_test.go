package narrative

import (
	"testing"

	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCharacterDescription_BaseOnly(t *testing.T) {
	req := &models.BookRequest{ChildName: "Mia", Gender: "girl", HairStyle: "curly", SkinTone: "light"}
	assert.Equal(t, "Mia, a girl with curly hair and light skin", CharacterDescription(req))

	req.Gender = "neutral"
	assert.Equal(t, "Mia, a child with curly hair and light skin", CharacterDescription(req))
}

func TestCharacterDescription_OptionalAttributesInOrder(t *testing.T) {
	req := &models.BookRequest{
		ChildName:      "Leo",
		Gender:         "boy",
		HairStyle:      "short",
		SkinTone:       "olive",
		HairColor:      "brown",
		EyeColor:       "green",
		Height:         "tall",
		BuildType:      "slim",
		FacialFeatures: []string{"freckles", " "},
		ClothingStyle:  "sporty",
		Accessories:    []string{"glasses", "a red cap"},
	}

	want := "Leo, a boy with short hair and olive skin, brown hair color, green eyes, tall height, slim build, " +
		"facial features: freckles, wearing sporty clothing, accessories: glasses, a red cap"
	assert.Equal(t, want, CharacterDescription(req))
}

func TestCharacterDescription_OmitsAbsentFields(t *testing.T) {
	req := &models.BookRequest{ChildName: "Ada", Gender: "girl", HairStyle: "long", SkinTone: "dark", EyeColor: "brown"}
	desc := CharacterDescription(req)

	assert.Equal(t, "Ada, a girl with long hair and dark skin, brown eyes", desc)
	assert.NotContains(t, desc, "accessories")
	assert.NotContains(t, desc, "wearing")
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, Tier{Pages: 6, Words: 500}, TierFor("1"))
	assert.Equal(t, Tier{Pages: 10, Words: 1000}, TierFor("2"))
	assert.Equal(t, Tier{Pages: 14, Words: 1500}, TierFor("3"))
	assert.Equal(t, Tier{Pages: 10, Words: 1000}, TierFor(""))
}

func TestBuildPrompts(t *testing.T) {
	req := &models.BookRequest{
		ChildName:      "Mia",
		AgeRange:       "4-6",
		Gender:         "girl",
		Interests:      []string{"space", "dinosaurs"},
		CharacterStyle: "watercolor",
		HairStyle:      "curly",
		SkinTone:       "light",
		StoryTheme:     "friendship",
		StoryGoal:      "sharing",
		Companions:     []string{"a puppy"},
		StoryLength:    "1",
	}

	system, user := buildPrompts(req, ModePaged)
	assert.Contains(t, system, "children's book author")
	assert.Contains(t, user, "Mia, a girl with curly hair and light skin")
	assert.Contains(t, user, "space, dinosaurs")
	assert.Contains(t, user, "friendship")
	assert.Contains(t, user, "sharing")
	assert.Contains(t, user, "a puppy")
	assert.Contains(t, user, "exactly 6 pages")
	assert.Contains(t, user, `"pages"`)

	_, flat := buildPrompts(req, ModeFlat)
	assert.Contains(t, flat, `"content"`)
	assert.NotContains(t, flat, `"pages"`)
}
