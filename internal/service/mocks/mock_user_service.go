package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundapi/internal/model"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]model.UserRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserRef), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
