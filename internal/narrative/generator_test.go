package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockChatClient struct {
	mock.Mock
}

func (m *mockChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, UsageInfo, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Get(1).(UsageInfo), args.Error(2)
}

func testRequest() *models.BookRequest {
	return &models.BookRequest{
		ChildName:      "Mia",
		AgeRange:       "4-6",
		Gender:         "girl",
		Interests:      []string{"space", "dinosaurs"},
		CharacterStyle: "cartoon",
		HairStyle:      "curly",
		SkinTone:       "light",
		StoryTheme:     "adventure",
		StoryGoal:      "courage",
		StoryLength:    "1",
	}
}

func TestStoryGenerator_Paged(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(user string) bool {
		return strings.Contains(user, "Mia") && strings.Contains(user, "exactly 6 pages")
	})).Return("```json\n{\"title\":\"Mia in Space\",\"pages\":[{\"text\":\"Up!\",\"illustrationDescription\":\"rocket\"}]}\n```", UsageInfo{TotalTokens: 10}, nil).Once()

	gen := NewStoryGenerator(client, ModePaged, zap.NewNop())
	res, err := gen.Generate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, KindPaged, res.Kind)
	assert.Equal(t, "Mia in Space", res.Title)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, "rocket", res.Pages[0].IllustrationDescription)
	client.AssertExpectations(t)
}

func TestStoryGenerator_Flat(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"title":"T","content":"Once upon a time."}`, UsageInfo{}, nil).Once()

	gen := NewStoryGenerator(client, ModeFlat, zap.NewNop())
	res, err := gen.Generate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, KindFlat, res.Kind)
	assert.Equal(t, "Once upon a time.", res.Content)
}

func TestStoryGenerator_ProviderErrorIsWrapped(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", UsageInfo{}, errors.New("upstream 503")).Once()

	gen := NewStoryGenerator(client, ModePaged, zap.NewNop())
	_, err := gen.Generate(context.Background(), testRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStoryGenerationFailed)
	// Вызов не повторяется
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestStoryGenerator_MalformedResponseIsWrapped(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"title":"No pages here"}`, UsageInfo{}, nil).Once()

	gen := NewStoryGenerator(client, ModePaged, zap.NewNop())
	_, err := gen.Generate(context.Background(), testRequest())

	assert.ErrorIs(t, err, models.ErrStoryGenerationFailed)
}
