package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundapi/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, username, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, username, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}
