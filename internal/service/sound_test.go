package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"soundapi/internal/model"
	"soundapi/internal/repository"
	repoMocks "soundapi/internal/repository/mocks"
	"soundapi/internal/storage"
	storeMocks "soundapi/internal/storage/mocks"
)

func TestSoundService_Upload(t *testing.T) {
	ctx := context.Background()
	owner := model.UserRef{ID: "user-1", Username: "alice"}

	tests := []struct {
		name       string
		input      func() UploadInput
		setupMocks func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository)
		wantErr    error
		wantErrMsg string
		checkRes   func(t *testing.T, snd *model.Sound)
	}{
		{
			name: "happy path",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "Rain on glass",
					Description: "Field recording",
					RawTags:     `["Ambient","Foley"]`,
					Filename:    "rain.mp3",
					ContentType: "audio/mpeg",
					Size:        11,
					File:        strings.NewReader("hello world"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, nil)
				handle.On("Commit", ctx).Return(storage.BlobInfo{
					ID:          "blob-1",
					Filename:    "rain.mp3",
					ContentType: "audio/mpeg",
					Size:        11,
					UploadedAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
				}, nil)

				mStore.On("OpenWrite", ctx, "rain.mp3", "audio/mpeg", int64(11)).
					Return(handle, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(snd *model.Sound) bool {
					return snd.OwnerID == "user-1" &&
						snd.Blob.FileID == "blob-1" &&
						snd.Blob.Size == 11 &&
						len(snd.Tags) == 2
				})).Return(&model.Sound{
					ID:      "snd-1",
					OwnerID: "user-1",
					Title:   "Rain on glass",
					Blob:    model.BlobRef{FileID: "blob-1", Size: 11},
					Tags:    []model.Tag{model.TagAmbient, model.TagFoley},
				}, nil)
			},
			checkRes: func(t *testing.T, snd *model.Sound) {
				assert.Equal(t, "blob-1", snd.Blob.FileID)
				assert.Equal(t, int64(11), snd.Blob.Size)
				assert.NotNil(t, snd.Author)
				assert.Equal(t, "alice", snd.Author.Username)
			},
		},
		{
			name: "unauthorized - no identity",
			input: func() UploadInput {
				return UploadInput{Title: "x", Description: "y", File: strings.NewReader("a")}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {},
			wantErr:    ErrUnauthorized,
		},
		{
			name: "validation - missing title and file",
			input: func() UploadInput {
				return UploadInput{Owner: owner, Description: "y"}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {},
			wantErr:    ErrValidation,
			wantErrMsg: "title, audio",
		},
		{
			name: "unsupported media rejected before any byte",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					Filename:    "notes.txt",
					ContentType: "text/plain",
					Size:        5,
					File:        strings.NewReader("hello"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mStore.On("OpenWrite", ctx, "notes.txt", "text/plain", int64(5)).
					Return(nil, storage.ErrUnsupportedMedia)
			},
			wantErr: storage.ErrUnsupportedMedia,
		},
		{
			name: "payload too large aborts the handle",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					Filename:    "big.mp3",
					ContentType: "audio/mpeg",
					Size:        5,
					File:        strings.NewReader("hello"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, storage.ErrPayloadTooLarge)
				handle.On("Abort").Return()
				mStore.On("OpenWrite", ctx, "big.mp3", "audio/mpeg", int64(5)).
					Return(handle, nil)
			},
			wantErr: storage.ErrPayloadTooLarge,
		},
		{
			name: "client disconnect maps to incomplete upload",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					Filename:    "cut.mp3",
					ContentType: "audio/mpeg",
					Size:        100,
					File:        io.MultiReader(strings.NewReader("partial"), errReader{}),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, nil)
				handle.On("Abort").Return()
				mStore.On("OpenWrite", ctx, "cut.mp3", "audio/mpeg", int64(100)).
					Return(handle, nil)
			},
			wantErr: storage.ErrIncompleteUpload,
		},
		{
			name: "short payload fails at commit",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					Filename:    "short.mp3",
					ContentType: "audio/mpeg",
					Size:        100,
					File:        strings.NewReader("hello"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, nil)
				handle.On("Commit", ctx).Return(storage.BlobInfo{}, storage.ErrIncompleteUpload)
				mStore.On("OpenWrite", ctx, "short.mp3", "audio/mpeg", int64(100)).
					Return(handle, nil)
			},
			wantErr: storage.ErrIncompleteUpload,
		},
		{
			name: "repository error triggers compensating blob delete",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					Filename:    "a.mp3",
					ContentType: "audio/mpeg",
					Size:        5,
					File:        strings.NewReader("hello"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, nil)
				handle.On("Commit", ctx).Return(storage.BlobInfo{ID: "blob-x", Size: 5}, nil)
				mStore.On("OpenWrite", ctx, "a.mp3", "audio/mpeg", int64(5)).
					Return(handle, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, "blob-x").Return(nil)
			},
			wantErrMsg: "record metadata: db fail",
		},
		{
			name: "failed compensating delete is swallowed",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					Filename:    "a.mp3",
					ContentType: "audio/mpeg",
					Size:        5,
					File:        strings.NewReader("hello"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, nil)
				handle.On("Commit", ctx).Return(storage.BlobInfo{ID: "blob-x", Size: 5}, nil)
				mStore.On("OpenWrite", ctx, "a.mp3", "audio/mpeg", int64(5)).
					Return(handle, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, "blob-x").Return(errors.New("minio down"))
			},
			wantErrMsg: "record metadata: db fail",
		},
		{
			name: "malformed tags degrade to empty set",
			input: func() UploadInput {
				return UploadInput{
					Owner:       owner,
					Title:       "x",
					Description: "y",
					RawTags:     `["NotATag"`,
					Filename:    "a.mp3",
					ContentType: "audio/mpeg",
					Size:        5,
					File:        strings.NewReader("hello"),
				}
			},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				handle := new(storeMocks.MockWriteHandle)
				handle.On("Write", mock.Anything).Return(0, nil)
				handle.On("Commit", ctx).Return(storage.BlobInfo{ID: "blob-1", Size: 5}, nil)
				mStore.On("OpenWrite", ctx, "a.mp3", "audio/mpeg", int64(5)).
					Return(handle, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(snd *model.Sound) bool {
					return len(snd.Tags) == 0
				})).Return(&model.Sound{ID: "snd-2", OwnerID: "user-1"}, nil)
			},
			checkRes: func(t *testing.T, snd *model.Sound) {
				assert.Empty(t, snd.Tags)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			mRepo := new(repoMocks.MockSoundRepository)
			svc := NewSoundService(mStore, mRepo, "audio/mpeg")

			tt.setupMocks(mStore, mRepo)

			snd, err := svc.Upload(ctx, tt.input())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, snd)
				if tt.checkRes != nil {
					tt.checkRes(t, snd)
				}
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

// errReader simulates a transport fault mid-stream.
type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSoundService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockSoundRepository)
		wantErr    bool
		checkRes   func(t *testing.T, res *SoundListResult)
	}{
		{
			name:   "happy path",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Sound]{
						Items: []model.Sound{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *SoundListResult) {
				assert.Len(t, res.Items, 2)
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:   "pagination boundary - zero limit uses default",
			limit:  0,
			offset: -3,
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Sound]{Items: []model.Sound{}, Total: 0}, nil)
			},
		},
		{
			name:  "repository error",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockSoundRepository)
			svc := NewSoundService(nil, mRepo, "")

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.limit, tt.offset)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestSoundService_Update(t *testing.T) {
	ctx := context.Background()
	stored := &model.Sound{
		ID:      "snd-1",
		OwnerID: "user-1",
		Title:   "old",
		Author:  &model.UserRef{ID: "user-1", Username: "alice"},
	}

	tests := []struct {
		name       string
		callerID   string
		id         string
		input      UpdateInput
		setupMocks func(mRepo *repoMocks.MockSoundRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			callerID: "user-1",
			id:       "snd-1",
			input:    UpdateInput{Title: "new title", Description: "new desc", RawTags: `["Music"]`},
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
				mRepo.On("Update", ctx, mock.MatchedBy(func(snd *model.Sound) bool {
					return snd.ID == "snd-1" && snd.Title == "new title" && len(snd.Tags) == 1
				})).Return(&model.Sound{ID: "snd-1", Title: "new title"}, nil)
			},
		},
		{
			name:       "unauthorized - empty caller",
			callerID:   "",
			id:         "snd-1",
			input:      UpdateInput{Title: "t", Description: "d"},
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {},
			wantErr:    ErrUnauthorized,
		},
		{
			name:     "forbidden - caller is not the owner",
			callerID: "user-2",
			id:       "snd-1",
			input:    UpdateInput{Title: "t", Description: "d"},
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:     "not found",
			callerID: "user-1",
			id:       "missing",
			input:    UpdateInput{Title: "t", Description: "d"},
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:     "validation - missing fields",
			callerID: "user-1",
			id:       "snd-1",
			input:    UpdateInput{},
			setupMocks: func(mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
			},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockSoundRepository)
			svc := NewSoundService(nil, mRepo, "")

			tt.setupMocks(mRepo)

			snd, err := svc.Update(ctx, tt.callerID, tt.id, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, snd)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, snd)
				assert.NotNil(t, snd.Author)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestSoundService_Delete(t *testing.T) {
	ctx := context.Background()
	stored := &model.Sound{
		ID:      "snd-1",
		OwnerID: "user-1",
		Blob:    model.BlobRef{FileID: "blob-1"},
	}

	tests := []struct {
		name       string
		callerID   string
		id         string
		setupMocks func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path",
			callerID: "user-1",
			id:       "snd-1",
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
				mStore.On("Delete", ctx, "blob-1").Return(nil)
				mRepo.On("Delete", ctx, "snd-1").Return(nil)
			},
		},
		{
			name:     "blob already gone is tolerated",
			callerID: "user-1",
			id:       "snd-1",
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
				mStore.On("Delete", ctx, "blob-1").Return(storage.ErrBlobNotFound)
				mRepo.On("Delete", ctx, "snd-1").Return(nil)
			},
		},
		{
			name:     "forbidden - caller is not the owner",
			callerID: "user-2",
			id:       "snd-1",
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:     "blob delete error stops before the record",
			callerID: "user-1",
			id:       "snd-1",
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
				mStore.On("Delete", ctx, "blob-1").Return(errors.New("minio down"))
			},
			wantErrMsg: "delete blob: minio down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			mRepo := new(repoMocks.MockSoundRepository)
			svc := NewSoundService(mStore, mRepo, "")

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.callerID, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestSoundService_OpenStream(t *testing.T) {
	ctx := context.Background()
	stored := &model.Sound{
		ID:      "snd-1",
		OwnerID: "user-1",
		Blob: model.BlobRef{
			FileID:      "blob-1",
			Filename:    "rain.mp3",
			ContentType: "audio/mpeg",
			Size:        100,
		},
	}

	tests := []struct {
		name       string
		req        StreamRequest
		setupMocks func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository)
		wantErr    error
		checkRes   func(t *testing.T, s *Stream)
	}{
		{
			name: "full stream by sound id",
			req:  StreamRequest{SoundID: "snd-1"},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
				mStore.On("OpenRead", ctx, "blob-1", (*storage.ByteRange)(nil)).
					Return(&storage.ReadResult{
						Body: io.NopCloser(strings.NewReader("data")),
						Info: storage.BlobInfo{ID: "blob-1", Size: 100},
					}, nil)
			},
			checkRes: func(t *testing.T, s *Stream) {
				assert.False(t, s.Partial)
				assert.Equal(t, "audio/mpeg", s.ContentType)
				assert.Equal(t, "rain.mp3", s.Filename)
				assert.Equal(t, int64(100), s.Size)
			},
		},
		{
			name: "range stream by raw blob id",
			req:  StreamRequest{FileID: "blob-1", Range: &storage.ByteRange{Start: 0, End: 9}},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mStore.On("OpenRead", ctx, "blob-1", &storage.ByteRange{Start: 0, End: 9}).
					Return(&storage.ReadResult{
						Body:    io.NopCloser(strings.NewReader("0123456789")),
						Info:    storage.BlobInfo{ID: "blob-1", Size: 100, ContentType: "audio/wav"},
						Partial: true,
						Start:   0,
						End:     9,
					}, nil)
			},
			checkRes: func(t *testing.T, s *Stream) {
				assert.True(t, s.Partial)
				assert.Equal(t, int64(0), s.Start)
				assert.Equal(t, int64(9), s.End)
				assert.Equal(t, "audio/wav", s.ContentType)
			},
		},
		{
			name: "content type falls back to default",
			req:  StreamRequest{FileID: "blob-2"},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mStore.On("OpenRead", ctx, "blob-2", (*storage.ByteRange)(nil)).
					Return(&storage.ReadResult{
						Body: io.NopCloser(strings.NewReader("data")),
						Info: storage.BlobInfo{ID: "blob-2", Size: 4},
					}, nil)
			},
			checkRes: func(t *testing.T, s *Stream) {
				assert.Equal(t, "audio/mpeg", s.ContentType)
			},
		},
		{
			name: "metadata missing",
			req:  StreamRequest{SoundID: "missing"},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "metadata present but blob gone",
			req:  StreamRequest{SoundID: "snd-1"},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mRepo.On("FindByID", ctx, "snd-1").Return(stored, nil)
				mStore.On("OpenRead", ctx, "blob-1", (*storage.ByteRange)(nil)).
					Return(nil, storage.ErrBlobNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "read fault is normalized to not found",
			req:  StreamRequest{FileID: "blob-1"},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {
				mStore.On("OpenRead", ctx, "blob-1", (*storage.ByteRange)(nil)).
					Return(nil, errors.New("minio down"))
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "neither id set",
			req:        StreamRequest{},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockSoundRepository) {},
			wantErr:    ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			mRepo := new(repoMocks.MockSoundRepository)
			svc := NewSoundService(mStore, mRepo, "audio/mpeg")

			tt.setupMocks(mStore, mRepo)

			s, err := svc.OpenStream(ctx, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, s)
				if tt.checkRes != nil {
					tt.checkRes(t, s)
				}
				s.Body.Close()
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
