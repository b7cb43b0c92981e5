package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"soundapi/internal/config"
)

const metaOriginalFilename = "Original-Filename"

// minioStore implements the BlobStore interface using an S3-compatible
// backend (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple
// goroutines; a single WriteHandle expects one logical writer.
type minioStore struct {
	client     *minio.Client
	bucket     string
	maxSize    int64
	typePrefix string
}

// NewMinIO creates a new S3-compatible blob store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig, up config.UploadConfig) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStore{
		client:     cli,
		bucket:     cfg.Bucket,
		maxSize:    up.MaxSizeBytes,
		typePrefix: up.AllowedContentTypePrefix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

type putResult struct {
	info minio.UploadInfo
	err  error
}

// minioWriteHandle streams bytes into an in-flight PutObject through a pipe.
// The object is not visible to reads until PutObject completes in Commit.
type minioWriteHandle struct {
	store       *minioStore
	id          string
	filename    string
	contentType string
	declared    int64
	written     int64
	pw          *io.PipeWriter
	done        chan putResult
	writeErr    error
}

// OpenWrite runs the content-type and size gates, then begins a streaming
// upload under a freshly generated object id. No byte is persisted when a
// gate rejects the request.
func (m *minioStore) OpenWrite(ctx context.Context, filename, contentType string, declaredSize int64) (WriteHandle, error) {
	if m.typePrefix != "" && !strings.HasPrefix(contentType, m.typePrefix) {
		return nil, fmt.Errorf("content type %q: %w", contentType, ErrUnsupportedMedia)
	}
	if m.maxSize > 0 && declaredSize > m.maxSize {
		return nil, fmt.Errorf("declared size %d exceeds cap %d: %w", declaredSize, m.maxSize, ErrPayloadTooLarge)
	}

	id := uuid.New().String() + strings.ToLower(filepath.Ext(filename))

	pr, pw := io.Pipe()
	h := &minioWriteHandle{
		store:       m,
		id:          id,
		filename:    filename,
		contentType: contentType,
		declared:    declaredSize,
		pw:          pw,
		done:        make(chan putResult, 1),
	}

	go func() {
		info, err := m.client.PutObject(ctx, m.bucket, id, pr, declaredSize, minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{metaOriginalFilename: filename},
		})
		// Unblock the writer if PutObject gave up mid-stream.
		_ = pr.CloseWithError(err)
		h.done <- putResult{info: info, err: err}
	}()

	return h, nil
}

// Write appends bytes to the open object, enforcing the size cap as data
// streams in so a runaway payload is cut off without buffering.
func (h *minioWriteHandle) Write(p []byte) (int, error) {
	if h.writeErr != nil {
		return 0, h.writeErr
	}
	if max := h.store.maxSize; max > 0 && h.written+int64(len(p)) > max {
		h.writeErr = ErrPayloadTooLarge
		_ = h.pw.CloseWithError(ErrPayloadTooLarge)
		return 0, h.writeErr
	}
	n, err := h.pw.Write(p)
	h.written += int64(n)
	if err != nil {
		h.writeErr = err
	}
	return n, err
}

// Commit finalizes the object and makes it visible to reads.
func (h *minioWriteHandle) Commit(ctx context.Context) (BlobInfo, error) {
	_ = h.pw.Close()
	res := <-h.done
	// Keep the result buffered for a follow-up Abort after a failed commit.
	h.done <- res

	if h.writeErr != nil {
		h.cleanup(ctx)
		return BlobInfo{}, h.writeErr
	}
	if h.declared >= 0 && h.written != h.declared {
		h.cleanup(ctx)
		return BlobInfo{}, fmt.Errorf("wrote %d of %d declared bytes: %w", h.written, h.declared, ErrIncompleteUpload)
	}
	if res.err != nil {
		h.cleanup(ctx)
		return BlobInfo{}, fmt.Errorf("finalize object: %w", res.err)
	}

	return BlobInfo{
		ID:          h.id,
		Filename:    h.filename,
		ContentType: h.contentType,
		Size:        res.info.Size,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// Abort discards the partial object. Invoked when an upstream step fails
// after the write began, or after a failed Commit.
func (h *minioWriteHandle) Abort() {
	_ = h.pw.CloseWithError(ErrIncompleteUpload)
	<-h.done
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.cleanup(ctx)
}

func (h *minioWriteHandle) cleanup(ctx context.Context) {
	_ = h.store.client.RemoveObject(ctx, h.store.bucket, h.id, minio.RemoveObjectOptions{})
}

// OpenRead opens a streaming read of the object, honoring the byte range when
// it is satisfiable against the stored size.
func (m *minioStore) OpenRead(ctx context.Context, id string, rng *ByteRange) (*ReadResult, error) {
	info, err := m.Stat(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, partial := resolveRange(rng, info.Size)

	opts := minio.GetObjectOptions{}
	if partial {
		if err := opts.SetRange(start, end); err != nil {
			return nil, fmt.Errorf("set range: %w", err)
		}
	}
	obj, err := m.client.GetObject(ctx, m.bucket, id, opts)
	if err != nil {
		return nil, mapMinioErr(err)
	}

	return &ReadResult{
		Body:    obj,
		Info:    info,
		Partial: partial,
		Start:   start,
		End:     end,
	}, nil
}

// Stat fetches object metadata without reading content.
func (m *minioStore) Stat(ctx context.Context, id string) (BlobInfo, error) {
	st, err := m.client.StatObject(ctx, m.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return BlobInfo{}, mapMinioErr(err)
	}
	return BlobInfo{
		ID:          id,
		Filename:    st.UserMetadata[metaOriginalFilename],
		ContentType: st.ContentType,
		Size:        st.Size,
		UploadedAt:  st.LastModified,
	}, nil
}

// Delete removes an object by id. Unknown ids surface as ErrBlobNotFound so
// the caller can decide that already-gone is fine.
func (m *minioStore) Delete(ctx context.Context, id string) error {
	if _, err := m.Stat(ctx, id); err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, id, minio.RemoveObjectOptions{})
}

// resolveRange clamps a requested range to the object size. An unsatisfiable
// request degrades to a full read rather than an error.
func resolveRange(rng *ByteRange, size int64) (start, end int64, partial bool) {
	full := func() (int64, int64, bool) { return 0, size - 1, false }

	if rng == nil || size <= 0 {
		return full()
	}
	if rng.Start < 0 {
		// Suffix range: the final -Start bytes.
		n := -rng.Start
		if n >= size {
			return full()
		}
		return size - n, size - 1, true
	}
	if rng.Start >= size {
		return full()
	}
	end = rng.End
	if end < 0 || end >= size {
		end = size - 1
	}
	if rng.Start > end {
		return full()
	}
	return rng.Start, end, true
}

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return ErrBlobNotFound
	}
	return err
}
