package snapshot

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// rateLimitedWriter throttles writes to a fixed byte rate. Large writes
// are split into burst-sized chunks so the limiter never sees a request
// bigger than its burst.
type rateLimitedWriter struct {
	ctx     context.Context
	w       io.Writer
	limiter *rate.Limiter
}

func newRateLimitedWriter(ctx context.Context, w io.Writer, bytesPerSec int) *rateLimitedWriter {
	return &rateLimitedWriter{
		ctx:     ctx,
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
	}
}

func (w *rateLimitedWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > w.limiter.Burst() {
			chunk = chunk[:w.limiter.Burst()]
		}
		if err := w.limiter.WaitN(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
