// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package storage provides model persistence for the recommendation engine.
//
// The trained model is serialized with Go's gob encoding, gzip-compressed
// and written as a single artifact with metadata including a SHA-256
// checksum that is verified on load. Saves go through a temporary file
// followed by an atomic rename, so a failed save never corrupts an
// existing artifact.
//
// # Thread Safety
//
// All store operations are safe for concurrent use.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoArtifact is returned by Load when no model artifact exists yet.
var ErrNoArtifact = errors.New("no model artifact found")

// ModelState is the serializable state of a trained latent factor model.
// It carries everything needed to reproduce recommendation and similarity
// output exactly.
type ModelState struct {
	// NFactors is the latent dimensionality.
	NFactors int

	// SingularValues are the retained singular values, largest first.
	SingularValues []float64

	// UserFactors is the users × NFactors projection matrix, row-major.
	UserFactors [][]float64

	// EventFactors is the events × NFactors matrix, row-major.
	EventFactors [][]float64

	// Matrix is the dense user × event rating table, row-major.
	Matrix [][]float64

	// UserIDs and EventIDs are the row/column labels in matrix order.
	UserIDs  []string
	EventIDs []string

	// ExplainedVariance is the captured variance ratio.
	ExplainedVariance float64
}

// ModelMetadata describes a stored model artifact.
type ModelMetadata struct {
	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// InteractionCount is the number of interactions used for training.
	InteractionCount int `json:"interaction_count"`

	// UserCount is the number of unique users.
	UserCount int `json:"user_count"`

	// EventCount is the number of unique events.
	EventCount int `json:"event_count"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed artifact size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk format for the artifact.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store manages persistence of the single model artifact.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore creates a store for the artifact at the given path, creating
// the parent directory when needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the artifact location.
func (s *Store) Path() string { return s.path }

// Save persists the model state. The artifact is written to a temporary
// file in the same directory and atomically renamed into place, so
// readers either see the previous artifact or the new one in full.
func (s *Store) Save(ctx context.Context, state *ModelState, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	sf := storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}

	return nil
}

// Load reads and verifies the artifact. ErrNoArtifact is returned when
// the file does not exist.
func (s *Store) Load(ctx context.Context) (*ModelState, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNoArtifact
		}
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("read artifact: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	var state ModelState
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&state); err != nil {
		return nil, nil, fmt.Errorf("decode model: %w", err)
	}

	return &state, &sf.Metadata, nil
}
