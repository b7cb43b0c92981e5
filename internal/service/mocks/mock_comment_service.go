package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundapi/internal/model"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Create(ctx context.Context, callerID, soundID, text string) (*model.Comment, error) {
	args := m.Called(ctx, callerID, soundID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Get(ctx context.Context, id string) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) ListBySound(ctx context.Context, soundID string) ([]model.Comment, error) {
	args := m.Called(ctx, soundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, callerID, id, text string) (*model.Comment, error) {
	args := m.Called(ctx, callerID, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, callerID, id string) error {
	args := m.Called(ctx, callerID, id)
	return args.Error(0)
}
