package compare

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sdejongh/musicsort/pkg/ratelimit"
)

// Partial hashing configuration
const (
	// Minimum file size to enable partial hashing (1MB)
	partialHashThreshold = 1 * 1024 * 1024
	// Size of partial hash to compute (256KB)
	partialHashSize = 256 * 1024
)

// Hasher computes SHA-256 digests of local files
type Hasher struct {
	bufferSize int
	bufferPool *sync.Pool
	limiter    *ratelimit.Limiter
}

// NewHasher creates a hasher using buffers of bufferSize bytes.
// A nil limiter disables bandwidth limiting.
func NewHasher(bufferSize int, limiter *ratelimit.Limiter) *Hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Hasher{
		bufferSize: bufferSize,
		limiter:    limiter,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Hash returns the hex SHA-256 of the whole file
func (h *Hasher) Hash(ctx context.Context, path string) (string, error) {
	return h.hash(ctx, path, -1)
}

// PartialHash returns the hex SHA-256 of the first 256KB of the file
func (h *Hasher) PartialHash(ctx context.Context, path string) (string, error) {
	return h.hash(ctx, path, partialHashSize)
}

// hash digests at most limit bytes (all of them when limit < 0)
func (h *Hasher) hash(ctx context.Context, path string, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = ratelimit.NewReader(ctx, f, h.limiter)
	if limit >= 0 {
		reader = io.LimitReader(reader, limit)
	}

	hasher := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
