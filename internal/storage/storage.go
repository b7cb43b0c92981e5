package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains the blob store abstraction used for audio payloads.
// Implementations must rely on streaming I/O only; a payload is never held
// fully in memory on either the write or the read path.

var (
	// ErrBlobNotFound means the requested blob id is unknown to the store.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrUnsupportedMedia means the declared content type is outside the allowed prefix.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrPayloadTooLarge means the payload exceeds the configured size cap.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrIncompleteUpload means the transport terminated before all declared bytes arrived.
	ErrIncompleteUpload = errors.New("incomplete upload")
)

// BlobInfo describes one committed blob object.
type BlobInfo struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// ByteRange is a requested byte span. End is inclusive; End < 0 means "to the
// end of the object". Start < 0 requests the final -Start bytes (suffix range).
type ByteRange struct {
	Start int64
	End   int64
}

// ReadResult is an open read stream plus the span that was actually served.
// Partial reports whether a requested range was honored; when false the
// stream covers the whole object. The caller owns Body and must close it.
type ReadResult struct {
	Body    io.ReadCloser
	Info    BlobInfo
	Partial bool
	Start   int64
	End     int64
}

// WriteHandle is one in-progress, uniquely identified upload. Writes append
// in order from a single logical writer. The object becomes visible to reads
// only after Commit succeeds; Abort discards whatever was written.
type WriteHandle interface {
	io.Writer

	// Commit finalizes the object. It fails with ErrIncompleteUpload when the
	// number of bytes written does not match the declared size.
	Commit(ctx context.Context) (BlobInfo, error)

	// Abort discards the partial object. Safe to call after a failed Commit.
	Abort()
}

// BlobStore is the write-once, range-capable blob storage contract.
type BlobStore interface {
	// OpenWrite begins a new object. Content-type and size gates run here,
	// before any byte is persisted.
	OpenWrite(ctx context.Context, filename, contentType string, declaredSize int64) (WriteHandle, error)

	// OpenRead opens the object for sequential reading, honoring rng when it
	// is satisfiable. An unsatisfiable range degrades to a full read.
	OpenRead(ctx context.Context, id string, rng *ByteRange) (*ReadResult, error)

	// Stat returns object metadata without opening the payload.
	Stat(ctx context.Context, id string) (BlobInfo, error)

	// Delete removes an object. Deleting an unknown id returns ErrBlobNotFound;
	// callers treat already-gone as an acceptable end state.
	Delete(ctx context.Context, id string) error
}
