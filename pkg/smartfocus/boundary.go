package smartfocus

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// BoundaryCodec mints multipart boundary tokens and recovers them from built bodies.
type BoundaryCodec struct {
	random func() uint64
	now    func() time.Time
}

// BoundaryOption configures a BoundaryCodec.
type BoundaryOption func(*BoundaryCodec)

// WithRandomSource replaces the random value generator.
func WithRandomSource(fn func() uint64) BoundaryOption {
	return func(c *BoundaryCodec) {
		c.random = fn
	}
}

// WithClock replaces the timestamp source.
func WithClock(fn func() time.Time) BoundaryOption {
	return func(c *BoundaryCodec) {
		c.now = fn
	}
}

// NewBoundaryCodec creates a codec backed by math/rand and the wall clock
// unless overridden.
func NewBoundaryCodec(opts ...BoundaryOption) *BoundaryCodec {
	c := &BoundaryCodec{
		random: rand.Uint64,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns a new boundary token: the hex MD5 digest of a random value
// and a microsecond timestamp.
func (c *BoundaryCodec) Generate() string {
	seed := fmt.Sprintf("%d %d", c.random(), c.now().UnixMicro())
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// ExtractBoundary returns the boundary of a body that starts with
// "--<boundary>\r\n". It is the value a caller must declare in the
// Content-Type header sent with that body.
func ExtractBoundary(body string) (string, error) {
	if !strings.HasPrefix(body, "--") {
		return "", fmt.Errorf("%w: body does not start with a boundary", ErrInvalidFormat)
	}
	end := strings.Index(body, crlf)
	if end < 0 {
		return "", fmt.Errorf("%w: boundary line is not terminated", ErrInvalidFormat)
	}
	boundary := strings.TrimSpace(body[2:end])
	if boundary == "" {
		return "", fmt.Errorf("%w: cannot find boundary seed", ErrInvalidFormat)
	}
	return boundary, nil
}
