package mocks

import (
	"context"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockOrderEventPublisher is a mock type for the OrderEventPublisher type
type MockOrderEventPublisher struct {
	mock.Mock
}

// PublishOrderCreated provides a mock function with given fields: ctx, order
func (_m *MockOrderEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	ret := _m.Called(ctx, order)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.Order) error); ok {
		r0 = rf(ctx, order)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Close provides a mock function with given fields:
func (_m *MockOrderEventPublisher) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockOrderEventPublisher creates a new instance of MockOrderEventPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockOrderEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrderEventPublisher {
	m := &MockOrderEventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.OrderEventPublisher = (*MockOrderEventPublisher)(nil)
