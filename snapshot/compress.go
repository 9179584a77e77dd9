package snapshot

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor compresses the ent stream of a snapshot. Implementations are
// looked up by stable name at restore time, so names must never change.
type Compressor interface {
	// Name returns the stable identifier recorded in the manifest.
	Name() string

	// NewWriter wraps w with a compressing writer. The returned writer
	// must be closed to flush the stream.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader wraps r with a decompressing reader.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// ByName returns the compressor registered under the given stable name.
func ByName(name string) (Compressor, bool) {
	switch name {
	case "none":
		return None{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// None is the identity compressor.
type None struct{}

// Name returns "none".
func (None) Name() string { return "none" }

// NewWriter returns w unchanged.
func (None) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// NewReader returns r unchanged.
func (None) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Zstd compresses with Zstandard. Good ratio at high speed; the default.
type Zstd struct{}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// NewWriter wraps w with a zstd encoder.
func (Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

// NewReader wraps r with a zstd decoder.
func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

// LZ4 compresses with LZ4 frames. Lower ratio than zstd but cheaper to
// decompress, which matters when restores gate startup.
type LZ4 struct{}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

// NewWriter wraps w with an lz4 frame writer.
func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

// NewReader wraps r with an lz4 frame reader.
func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
