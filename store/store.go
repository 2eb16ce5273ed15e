// Package store provides content-addressed blob storage for keys and encrypted tables.
package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// ErrNotFound is returned when no blob has the requested handle.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidHandle is returned when a handle cannot be parsed.
var ErrInvalidHandle = errors.New("invalid handle")

// HandleSize is the size of a Handle in bytes.
const HandleSize = 32

// Handle identifies a blob by the BLAKE3 hash of its content.
type Handle [HandleSize]byte

// ComputeHandle returns the handle of data.
func ComputeHandle(data []byte) Handle {
	return Handle(blake3.Sum256(data))
}

// ParseHandle parses the hexadecimal form of a handle.
func ParseHandle(s string) (Handle, error) {
	var h Handle
	if hex.DecodedLen(len(s)) != HandleSize {
		return h, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	return h, nil
}

// String returns the hexadecimal form of h.
func (h Handle) String() string {
	return hex.EncodeToString(h[:])
}

// Store saves and loads immutable blobs.
// Storing the same content twice yields the same handle.
type Store interface {
	// Put saves data and returns its handle.
	Put(ctx context.Context, data []byte) (Handle, error)
	// Get loads the blob with handle h.
	Get(ctx context.Context, h Handle) ([]byte, error)
	// Delete removes the blob with handle h.
	Delete(ctx context.Context, h Handle) error
	// Exists reports whether a blob with handle h is stored.
	Exists(ctx context.Context, h Handle) (bool, error)
	// Close releases the resources of the store.
	Close() error
}

// Open returns the store described by rawURL:
//
//	mem://                      in-memory store
//	file:///path/to/dir         one file per blob under dir
//	redis://[:pass@]host:port/db  Redis keys
//
// A URL without scheme is a directory.
func Open(ctx context.Context, rawURL string) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("store url: %w", err)
	}

	switch u.Scheme {
	case "mem":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(filepath.FromSlash(u.Host + u.Path))
	case "":
		return NewFileStore(rawURL)
	case "redis", "rediss":
		return NewRedisStore(ctx, rawURL)
	}
	return nil, fmt.Errorf("store url: unknown scheme %q", u.Scheme)
}

// Verify returns an error if data does not have handle h.
func Verify(h Handle, data []byte) error {
	if got := ComputeHandle(data); got != h {
		return fmt.Errorf("blob %v: content hash %v", h, got)
	}
	return nil
}
