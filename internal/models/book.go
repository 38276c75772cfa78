package models

import "time"

// Значения-заглушки, которые получает книга до оформления заказа.
const (
	BookFormatPending = "pending"
	BookPricePending  = "0"
)

// Уровни длины истории, приходящие из мастера настройки.
const (
	StoryLengthShort  = "1"
	StoryLengthMedium = "2"
	StoryLengthLong   = "3"
)

// BookRequest - параметры персональной книги, собранные мастером на клиенте.
// Теги binding проверяются валидатором gin (go-playground/validator).
type BookRequest struct {
	ChildName      string   `json:"childName" binding:"required,notblank"`
	AgeRange       string   `json:"ageRange" binding:"required,notblank"`
	Gender         string   `json:"gender" binding:"required,oneof=boy girl neutral"`
	Interests      []string `json:"interests" binding:"required,min=1,max=3,dive,required,notblank"`
	CharacterStyle string   `json:"characterStyle" binding:"required,oneof=cartoon watercolor 3d anime classic"`
	HairStyle      string   `json:"hairStyle" binding:"required,notblank"`
	SkinTone       string   `json:"skinTone" binding:"required,notblank"`

	// Расширенные атрибуты внешности (необязательные)
	HairColor      string   `json:"hairColor,omitempty"`
	EyeColor       string   `json:"eyeColor,omitempty"`
	ClothingStyle  string   `json:"clothingStyle,omitempty"`
	Accessories    []string `json:"accessories,omitempty" binding:"max=3"`
	FacialFeatures []string `json:"facialFeatures,omitempty" binding:"max=3"`
	Height         string   `json:"height,omitempty" binding:"omitempty,oneof=short average tall"`
	BuildType      string   `json:"buildType,omitempty" binding:"omitempty,oneof=slim average sturdy"`

	StoryTheme  string   `json:"storyTheme" binding:"required,notblank"`
	StoryGoal   string   `json:"storyGoal" binding:"required,notblank"`
	Companions  []string `json:"companions,omitempty" binding:"max=2"`
	StoryLength string   `json:"storyLength" binding:"required,oneof=1 2 3"`
}

// StoryPage - одна страница истории: текст и описание иллюстрации.
type StoryPage struct {
	Text                    string `json:"text"`
	IllustrationDescription string `json:"illustrationDescription"`
}

// Book - сохраненная книга со всеми параметрами запроса и результатами генерации.
type Book struct {
	ID int64 `json:"id"`
	BookRequest

	Title         string      `json:"title"`
	Content       string      `json:"content"`
	CoverImageURL string      `json:"coverImageUrl"`
	PreviewImages []string    `json:"previewImages"`
	PageImages    []string    `json:"pageImages"`
	Pages         []StoryPage `json:"pages"`
	Format        string      `json:"format"`
	Price         string      `json:"price"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Clone возвращает глубокую копию книги, чтобы вызывающий код не держал ссылки на данные хранилища.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Interests = cloneStrings(b.Interests)
	cp.Accessories = cloneStrings(b.Accessories)
	cp.FacialFeatures = cloneStrings(b.FacialFeatures)
	cp.Companions = cloneStrings(b.Companions)
	cp.PreviewImages = cloneStrings(b.PreviewImages)
	cp.PageImages = cloneStrings(b.PageImages)
	if b.Pages != nil {
		cp.Pages = make([]StoryPage, len(b.Pages))
		copy(cp.Pages, b.Pages)
	}
	return &cp
}

// GeneratedPage - страница в ответе генерации: текст, описание и ссылка на иллюстрацию.
type GeneratedPage struct {
	Text                    string `json:"text"`
	IllustrationDescription string `json:"illustrationDescription"`
	ImageURL                string `json:"imageUrl"`
}

// GenerateBookResponse - ответ эндпоинта генерации книги.
type GenerateBookResponse struct {
	BookID        int64           `json:"bookId"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	CoverImageURL string          `json:"coverImageUrl"`
	PreviewImages []string        `json:"previewImages"`
	Pages         []GeneratedPage `json:"pages"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
