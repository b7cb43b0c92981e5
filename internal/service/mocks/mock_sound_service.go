package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundapi/internal/model"
	"soundapi/internal/service"
)

type MockSoundService struct {
	mock.Mock
}

func (m *MockSoundService) Upload(ctx context.Context, in service.UploadInput) (*model.Sound, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockSoundService) List(ctx context.Context, limit, offset int) (*service.SoundListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SoundListResult), args.Error(1)
}

func (m *MockSoundService) Get(ctx context.Context, id string) (*model.Sound, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockSoundService) Update(ctx context.Context, callerID, id string, in service.UpdateInput) (*model.Sound, error) {
	args := m.Called(ctx, callerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockSoundService) Delete(ctx context.Context, callerID, id string) error {
	args := m.Called(ctx, callerID, id)
	return args.Error(0)
}

func (m *MockSoundService) OpenStream(ctx context.Context, req service.StreamRequest) (*service.Stream, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Stream), args.Error(1)
}
