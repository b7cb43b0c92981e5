package mocks

import (
	"bytes"
	"context"

	"soundapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) OpenWrite(ctx context.Context, filename, contentType string, declaredSize int64) (storage.WriteHandle, error) {
	args := m.Called(ctx, filename, contentType, declaredSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(storage.WriteHandle), args.Error(1)
}

func (m *MockBlobStore) OpenRead(ctx context.Context, id string, rng *storage.ByteRange) (*storage.ReadResult, error) {
	args := m.Called(ctx, id, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ReadResult), args.Error(1)
}

func (m *MockBlobStore) Stat(ctx context.Context, id string) (storage.BlobInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(storage.BlobInfo), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWriteHandle buffers written bytes in memory and records terminal calls,
// standing in for an in-flight blob upload in service tests.
type MockWriteHandle struct {
	mock.Mock
	Buf bytes.Buffer
}

func (h *MockWriteHandle) Write(p []byte) (int, error) {
	args := h.Called(p)
	if err := args.Error(1); err != nil {
		return args.Int(0), err
	}
	return h.Buf.Write(p)
}

func (h *MockWriteHandle) Commit(ctx context.Context) (storage.BlobInfo, error) {
	args := h.Called(ctx)
	return args.Get(0).(storage.BlobInfo), args.Error(1)
}

func (h *MockWriteHandle) Abort() {
	h.Called()
}
