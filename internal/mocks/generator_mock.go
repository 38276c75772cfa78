package mocks

import (
	"context"

	"storybook-server/internal/models"
	"storybook-server/internal/narrative"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock type for the narrative.Generator type
type MockGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, req
func (_m *MockGenerator) Generate(ctx context.Context, req *models.BookRequest) (narrative.Result, error) {
	ret := _m.Called(ctx, req)

	var r0 narrative.Result
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.BookRequest) (narrative.Result, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, *models.BookRequest) narrative.Result); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(narrative.Result)
	}
	if rf, ok := ret.Get(1).(func(context.Context, *models.BookRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ narrative.Generator = (*MockGenerator)(nil)
