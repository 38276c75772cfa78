package mocks

import (
	"context"

	"storybook-server/internal/illustration"
	"storybook-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockIllustrator is a mock type for the illustration.Illustrator type
type MockIllustrator struct {
	mock.Mock
}

// GenerateImage provides a mock function with given fields: ctx, prompt, opts
func (_m *MockIllustrator) GenerateImage(ctx context.Context, prompt string, opts illustration.Options) string {
	ret := _m.Called(ctx, prompt, opts)

	if rf, ok := ret.Get(0).(func(context.Context, string, illustration.Options) string); ok {
		return rf(ctx, prompt, opts)
	}
	return ret.String(0)
}

// GeneratePages provides a mock function with given fields: ctx, pages, style, characterDescription
func (_m *MockIllustrator) GeneratePages(ctx context.Context, pages []models.StoryPage, style, characterDescription string) []string {
	ret := _m.Called(ctx, pages, style, characterDescription)

	if rf, ok := ret.Get(0).(func(context.Context, []models.StoryPage, string, string) []string); ok {
		return rf(ctx, pages, style, characterDescription)
	}
	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

// NewMockIllustrator creates a new instance of MockIllustrator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockIllustrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIllustrator {
	m := &MockIllustrator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ illustration.Illustrator = (*MockIllustrator)(nil)
