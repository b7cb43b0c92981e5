package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"soundapi/internal/model"
	"soundapi/internal/service"
	svcMocks "soundapi/internal/service/mocks"
	"soundapi/internal/storage"
)

// uploadBody builds a multipart body matching the upload form contract,
// carrying fileParts "audio" file parts.
func uploadBody(t *testing.T, fileParts int) (*bytes.Buffer, string) {
	t.Helper()

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	assert.NoError(t, w.WriteField("title", "Rain on glass"))
	assert.NoError(t, w.WriteField("description", "Field recording"))
	assert.NoError(t, w.WriteField("tags", `["Ambient"]`))

	for i := 0; i < fileParts; i++ {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="audio"; filename="rain.mp3"`)
		hdr.Set("Content-Type", "audio/mpeg")
		part, err := w.CreatePart(hdr)
		assert.NoError(t, err)
		_, err = part.Write([]byte("not really audio"))
		assert.NoError(t, err)
	}

	assert.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadSound(t *testing.T) {
	tests := []struct {
		name       string
		fileParts  int
		withAuth   bool
		setupMocks func(mSound *svcMocks.MockSoundService)
		wantStatus int
	}{
		{
			name:      "happy path",
			fileParts: 1,
			withAuth:  true,
			setupMocks: func(mSound *svcMocks.MockSoundService) {
				mSound.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
					return in.Owner.ID == "user-1" &&
						in.Title == "Rain on glass" &&
						in.Filename == "rain.mp3" &&
						in.ContentType == "audio/mpeg"
				})).Return(&model.Sound{ID: "snd-1", OwnerID: "user-1"}, nil)
			},
			wantStatus: fiber.StatusCreated,
		},
		{
			name:       "missing token",
			fileParts:  1,
			withAuth:   false,
			setupMocks: func(mSound *svcMocks.MockSoundService) {},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "missing file part",
			fileParts:  0,
			withAuth:   true,
			setupMocks: func(mSound *svcMocks.MockSoundService) {},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "duplicate file parts",
			fileParts:  2,
			withAuth:   true,
			setupMocks: func(mSound *svcMocks.MockSoundService) {},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:      "payload too large",
			fileParts: 1,
			withAuth:  true,
			setupMocks: func(mSound *svcMocks.MockSoundService) {
				mSound.On("Upload", mock.Anything, mock.Anything).
					Return(nil, storage.ErrPayloadTooLarge)
			},
			wantStatus: fiber.StatusRequestEntityTooLarge,
		},
		{
			name:      "unsupported media",
			fileParts: 1,
			withAuth:  true,
			setupMocks: func(mSound *svcMocks.MockSoundService) {
				mSound.On("Upload", mock.Anything, mock.Anything).
					Return(nil, storage.ErrUnsupportedMedia)
			},
			wantStatus: fiber.StatusUnsupportedMediaType,
		},
		{
			name:      "incomplete upload",
			fileParts: 1,
			withAuth:  true,
			setupMocks: func(mSound *svcMocks.MockSoundService) {
				mSound.On("Upload", mock.Anything, mock.Anything).
					Return(nil, storage.ErrIncompleteUpload)
			},
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mSound := new(svcMocks.MockSoundService)
			app, tokens := newTestApp(t, Services{Sound: mSound})

			tt.setupMocks(mSound)

			body, contentType := uploadBody(t, tt.fileParts)
			req := httptest.NewRequest("POST", "/sounds", body)
			req.Header.Set(fiber.HeaderContentType, contentType)
			if tt.withAuth {
				req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "user-1", "alice"))
			}

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			mSound.AssertExpectations(t)
		})
	}
}

func TestGetSound(t *testing.T) {
	mSound := new(svcMocks.MockSoundService)
	app, _ := newTestApp(t, Services{Sound: mSound})

	mSound.On("Get", mock.Anything, "snd-1").
		Return(&model.Sound{ID: "snd-1", Title: "Rain"}, nil)
	mSound.On("Get", mock.Anything, "missing").
		Return(nil, service.ErrNotFound)

	resp, _ := app.Test(httptest.NewRequest("GET", "/sounds/snd-1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snd model.Sound
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&snd))
	assert.Equal(t, "Rain", snd.Title)

	resp, _ = app.Test(httptest.NewRequest("GET", "/sounds/missing", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	mSound.AssertExpectations(t)
}

func TestListSounds(t *testing.T) {
	mSound := new(svcMocks.MockSoundService)
	app, _ := newTestApp(t, Services{Sound: mSound})

	mSound.On("List", mock.Anything, 5, 10).
		Return(&service.SoundListResult{Items: []model.Sound{{ID: "1"}}, Total: 1}, nil)

	resp, _ := app.Test(httptest.NewRequest("GET", "/sounds?limit=5&offset=10", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest("GET", "/sounds?limit=abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	mSound.AssertExpectations(t)
}

func TestUpdateSound_Forbidden(t *testing.T) {
	mSound := new(svcMocks.MockSoundService)
	app, tokens := newTestApp(t, Services{Sound: mSound})

	mSound.On("Update", mock.Anything, "user-2", "snd-1", mock.Anything).
		Return(nil, service.ErrForbidden)

	req := httptest.NewRequest("PUT", "/sounds/snd-1",
		strings.NewReader(`{"title":"x","description":"y","tags":["Music"]}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "user-2", "mallory"))

	resp, _ := app.Test(req)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	mSound.AssertExpectations(t)
}

func TestStreamSound_Range(t *testing.T) {
	mSound := new(svcMocks.MockSoundService)
	app, _ := newTestApp(t, Services{Sound: mSound})

	mSound.On("OpenStream", mock.Anything, service.StreamRequest{
		SoundID: "snd-1",
		Range:   &storage.ByteRange{Start: 0, End: 99},
	}).Return(&service.Stream{
		Body:        io.NopCloser(strings.NewReader(strings.Repeat("a", 100))),
		ContentType: "audio/mpeg",
		Filename:    "rain.mp3",
		Size:        1000,
		Partial:     true,
		Start:       0,
		End:         99,
	}, nil)

	req := httptest.NewRequest("GET", "/sounds/snd-1/stream", nil)
	req.Header.Set(fiber.HeaderRange, "bytes=0-99")
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 0-99/1000", resp.Header.Get(fiber.HeaderContentRange))
	assert.Equal(t, "bytes", resp.Header.Get(fiber.HeaderAcceptRanges))
	assert.Equal(t, "audio/mpeg", resp.Header.Get(fiber.HeaderContentType))

	data, _ := io.ReadAll(resp.Body)
	assert.Len(t, data, 100)
	mSound.AssertExpectations(t)
}

func TestStreamFile_Full(t *testing.T) {
	mSound := new(svcMocks.MockSoundService)
	app, _ := newTestApp(t, Services{Sound: mSound})

	mSound.On("OpenStream", mock.Anything, service.StreamRequest{FileID: "blob-1"}).
		Return(&service.Stream{
			Body:        io.NopCloser(strings.NewReader("audio-bytes")),
			ContentType: "audio/wav",
			Size:        11,
		}, nil)
	mSound.On("OpenStream", mock.Anything, service.StreamRequest{FileID: "gone"}).
		Return(nil, service.ErrNotFound)

	resp, _ := app.Test(httptest.NewRequest("GET", "/sounds/stream/blob-1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/wav", resp.Header.Get(fiber.HeaderContentType))

	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "audio-bytes", string(data))

	resp, _ = app.Test(httptest.NewRequest("GET", "/sounds/stream/gone", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	mSound.AssertExpectations(t)
}

func TestBodyLength(t *testing.T) {
	assert.Equal(t, 0, bodyLength(0))
	assert.Equal(t, 100, bodyLength(100))
	assert.Equal(t, -1, bodyLength(-5))

	// Values past the platform int degrade to chunked transfer instead of
	// truncating.
	if strconv.IntSize == 32 {
		assert.Equal(t, -1, bodyLength(int64(math.MaxInt32)+1))
	} else {
		assert.Equal(t, int64(math.MaxInt64-1), int64(bodyLength(math.MaxInt64-1)))
	}
}

func TestParseRangeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   *storage.ByteRange
	}{
		{"empty", "", nil},
		{"bounded", "bytes=0-99", &storage.ByteRange{Start: 0, End: 99}},
		{"open ended", "bytes=100-", &storage.ByteRange{Start: 100, End: -1}},
		{"suffix", "bytes=-50", &storage.ByteRange{Start: -50, End: -1}},
		{"multi range ignored", "bytes=0-1,5-9", nil},
		{"wrong unit", "items=0-99", nil},
		{"inverted", "bytes=9-5", nil},
		{"garbage", "bytes=abc-def", nil},
		{"zero suffix", "bytes=-0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRangeHeader(tt.header))
		})
	}
}
