package snapshot

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/entdb"
	"github.com/hupe1980/entdb/blobstore"
	"github.com/hupe1980/entdb/codec"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
)

// maxEntSize bounds a single encoded ent so a corrupt length prefix cannot
// trigger a giant allocation during restore.
const maxEntSize = 64 << 20

// Options configures Save and Restore.
type Options struct {
	// Codec encodes individual ents. Defaults to codec.Default.
	Codec codec.Codec

	// Compression wraps the ent stream. Defaults to Zstd.
	Compression Compressor

	// RateLimitBytesPerSec throttles snapshot writes so a background save
	// does not starve foreground traffic. Zero means unlimited.
	RateLimitBytesPerSec int
}

// Option mutates Options.
type Option func(*Options)

// WithCodec sets the ent codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c != nil {
			o.Codec = c
		}
	}
}

// WithCompression sets the stream compressor.
func WithCompression(c Compressor) Option {
	return func(o *Options) {
		if c != nil {
			o.Compression = c
		}
	}
}

// WithRateLimit throttles snapshot writes to bytesPerSec.
func WithRateLimit(bytesPerSec int) Option {
	return func(o *Options) { o.RateLimitBytesPerSec = bytesPerSec }
}

func applyOptions(opts []Option) Options {
	o := Options{
		Codec:       codec.Default,
		Compression: Zstd{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Save writes every live ent in db to store under name. The data blob is
// written before the manifest, so a snapshot without a manifest is an
// aborted write and is ignored by List and Restore.
func Save(ctx context.Context, db entdb.Database, store blobstore.Store, name string, opts ...Option) (*Manifest, error) {
	o := applyOptions(opts)

	ents, err := db.FindAll(ctx, query.New())
	if err != nil {
		return nil, fmt.Errorf("snapshot: enumerate ents: %w", err)
	}

	w, err := store.Create(ctx, entsKey(name))
	if err != nil {
		return nil, fmt.Errorf("snapshot: create data blob: %w", err)
	}

	count, err := writeEnts(ctx, w, ents, o)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: commit data blob: %w", err)
	}

	m := &Manifest{
		Version:     CurrentVersion,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Codec:       o.Codec.Name(),
		Compression: o.Compression.Name(),
		Count:       count,
	}
	if err := saveManifest(ctx, store, name, m); err != nil {
		return nil, err
	}
	return m, nil
}

func writeEnts(ctx context.Context, w io.Writer, ents []*ent.Ent, o Options) (uint64, error) {
	if o.RateLimitBytesPerSec > 0 {
		w = newRateLimitedWriter(ctx, w, o.RateLimitBytesPerSec)
	}

	cw, err := o.Compression.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("snapshot: init compressor: %w", err)
	}

	buf := bufio.NewWriter(cw)
	var prefix [binary.MaxVarintLen64]byte

	var count uint64
	for _, e := range ents {
		data, err := o.Codec.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("snapshot: encode ent %d: %w", uint64(e.ID()), err)
		}
		n := binary.PutUvarint(prefix[:], uint64(len(data)))
		if _, err := buf.Write(prefix[:n]); err != nil {
			return 0, fmt.Errorf("snapshot: write ent stream: %w", err)
		}
		if _, err := buf.Write(data); err != nil {
			return 0, fmt.Errorf("snapshot: write ent stream: %w", err)
		}
		count++
	}

	if err := buf.Flush(); err != nil {
		return 0, fmt.Errorf("snapshot: flush ent stream: %w", err)
	}
	if err := cw.Close(); err != nil {
		return 0, fmt.Errorf("snapshot: close compressor: %w", err)
	}
	return count, nil
}

// Restore inserts every ent of the named snapshot into db. Ids and
// timestamps are preserved; the id allocator of db advances past the
// highest restored id. The target database is expected to be empty, but
// restoring over existing ents simply replaces ids that collide.
func Restore(ctx context.Context, db entdb.Database, store blobstore.Store, name string, opts ...Option) (uint64, error) {
	m, err := loadManifest(ctx, store, name)
	if err != nil {
		return 0, err
	}

	c, ok := codec.ByName(m.Codec)
	if !ok {
		return 0, fmt.Errorf("snapshot: unknown codec %q in manifest", m.Codec)
	}
	comp, ok := ByName(m.Compression)
	if !ok {
		return 0, fmt.Errorf("snapshot: unknown compression %q in manifest", m.Compression)
	}

	blob, err := store.Open(ctx, entsKey(name))
	if err != nil {
		return 0, fmt.Errorf("snapshot: open data blob: %w", err)
	}
	defer blob.Close()

	cr, err := comp.NewReader(blob)
	if err != nil {
		return 0, fmt.Errorf("snapshot: init decompressor: %w", err)
	}
	defer cr.Close()

	r := bufio.NewReader(cr)
	var restored uint64
	for {
		size, err := binary.ReadUvarint(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return restored, fmt.Errorf("snapshot: read ent length: %w", err)
		}
		if size > maxEntSize {
			return restored, fmt.Errorf("snapshot: ent record of %d bytes exceeds limit", size)
		}

		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return restored, fmt.Errorf("snapshot: read ent record: %w", err)
		}

		var e ent.Ent
		if err := c.Unmarshal(data, &e); err != nil {
			return restored, fmt.Errorf("snapshot: decode ent record: %w", err)
		}
		if _, err := db.Insert(ctx, &e); err != nil {
			return restored, fmt.Errorf("snapshot: insert ent %d: %w", uint64(e.ID()), err)
		}
		restored++
	}

	if restored != m.Count {
		return restored, fmt.Errorf("snapshot: manifest promises %d ents, stream held %d", m.Count, restored)
	}
	return restored, nil
}

// List returns the names of complete snapshots in store, sorted.
func List(ctx context.Context, store blobstore.Store) ([]string, error) {
	keys, err := store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("snapshot: list blobs: %w", err)
	}

	var names []string
	for _, key := range keys {
		if strings.HasSuffix(key, "/"+manifestFileName) {
			names = append(names, strings.TrimSuffix(key, "/"+manifestFileName))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named snapshot from store. The manifest goes first so
// a partially deleted snapshot is never mistaken for a complete one.
func Delete(ctx context.Context, store blobstore.Store, name string) error {
	if err := store.Remove(ctx, manifestKey(name)); err != nil {
		return fmt.Errorf("snapshot: remove manifest: %w", err)
	}
	if err := store.Remove(ctx, entsKey(name)); err != nil {
		return fmt.Errorf("snapshot: remove data blob: %w", err)
	}
	return nil
}
