package mocks

import (
	"context"

	"soundapi/internal/model"
	"soundapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockSoundRepository struct {
	mock.Mock
}

func (m *MockSoundRepository) Create(ctx context.Context, s *model.Sound) (*model.Sound, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockSoundRepository) FindByID(ctx context.Context, id string) (*model.Sound, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockSoundRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.Sound, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sound), args.Error(1)
}

func (m *MockSoundRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Sound], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Sound]), args.Error(1)
}

func (m *MockSoundRepository) Update(ctx context.Context, s *model.Sound) (*model.Sound, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockSoundRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
