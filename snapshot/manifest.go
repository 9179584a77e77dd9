package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/hupe1980/entdb/blobstore"
)

const (
	manifestFileName = "MANIFEST"
	entsFileName     = "ents.dat"

	// CurrentVersion is the manifest format version this build writes.
	CurrentVersion = 1
)

// Manifest describes a snapshot: how its ent stream is encoded and how
// many ents it holds. It is stored as plain JSON next to the data blob so
// it stays readable without the module.
type Manifest struct {
	Version     int       `json:"version"`
	ID          string    `json:"id"` // random UUID, unique per snapshot
	CreatedAt   time.Time `json:"created_at"`
	Codec       string    `json:"codec"`
	Compression string    `json:"compression"`
	Count       uint64    `json:"count"`
}

func manifestKey(name string) string { return path.Join(name, manifestFileName) }
func entsKey(name string) string     { return path.Join(name, entsFileName) }

func loadManifest(ctx context.Context, store blobstore.Store, name string) (*Manifest, error) {
	r, err := store.Open(ctx, manifestKey(name))
	if err != nil {
		return nil, fmt.Errorf("snapshot: open manifest: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot: decode manifest: %w", err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("snapshot: unsupported manifest version %d (expected %d)", m.Version, CurrentVersion)
	}
	return &m, nil
}

func saveManifest(ctx context.Context, store blobstore.Store, name string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode manifest: %w", err)
	}

	w, err := store.Create(ctx, manifestKey(name))
	if err != nil {
		return fmt.Errorf("snapshot: create manifest: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("snapshot: write manifest: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("snapshot: commit manifest: %w", err)
	}
	return nil
}
