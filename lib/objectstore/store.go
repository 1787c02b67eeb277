// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ohchase/blizztools/lib/codec"
	"github.com/ohchase/blizztools/lib/hashid"
)

// Directory names within the store root.
const (
	objectDir = "objects"
	metaDir   = "meta"
	tmpDir    = "tmp"
)

// RecordVersion is the current metadata record format.
const RecordVersion = 1

// ErrNotFound is returned for keys with no committed object.
var ErrNotFound = errors.New("object not in store")

// ErrCorrupt is returned when stored bytes do not match their
// recorded digest or size.
var ErrCorrupt = errors.New("stored object is corrupt")

// Record is the metadata stored alongside each object.
type Record struct {
	Version int `json:"version"`

	// Key is the content key the object was stored under.
	Key hashid.ID `json:"key"`

	// Name is an optional label, such as the install manifest path.
	Name string `json:"name,omitempty"`

	// Size is the object's length in bytes.
	Size int64 `json:"size"`

	// StoredSize is the length of the bytes on disk.
	StoredSize int64 `json:"stored_size"`

	Compression CompressionTag `json:"compression"`

	// Digest is the keyed BLAKE3 hash of the stored bytes.
	Digest Digest `json:"digest"`

	StoredAt time.Time `json:"stored_at"`
}

// Store manages an object store directory. Concurrent Puts of
// different keys are safe; concurrent Puts of one key leave one of
// the writes in place.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// Open creates a Store rooted at root, creating the directory
// structure if needed. A nil logger uses slog.Default().
func Open(root string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{
		root,
		filepath.Join(root, objectDir),
		filepath.Join(root, metaDir),
		filepath.Join(root, tmpDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}
	return &Store{root: root, logger: logger, now: time.Now}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) objectPath(key hashid.ID) string {
	return filepath.Join(s.root, objectDir, filepath.FromSlash(key.Shard()), key.String())
}

func (s *Store) metaPath(key hashid.ID) string {
	return filepath.Join(s.root, metaDir, filepath.FromSlash(key.Shard()), key.String()+".cbor")
}

// Put stores data under key, replacing any previous object.
// CompressionAuto selects compression by probing data.
func (s *Store) Put(key hashid.ID, name string, data []byte, compression CompressionTag) (*Record, error) {
	stored, tag, err := compressWithFallback(data, compression)
	if err != nil {
		return nil, fmt.Errorf("compressing %s: %w", key, err)
	}

	record := &Record{
		Version:     RecordVersion,
		Key:         key,
		Name:        name,
		Size:        int64(len(data)),
		StoredSize:  int64(len(stored)),
		Compression: tag,
		Digest:      DigestOf(stored),
		StoredAt:    s.now().UTC().Truncate(time.Second),
	}
	encoded, err := codec.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding record for %s: %w", key, err)
	}

	if err := s.writeAtomic(s.objectPath(key), "object-*", stored); err != nil {
		return nil, err
	}
	if err := s.writeAtomic(s.metaPath(key), "meta-*", encoded); err != nil {
		return nil, err
	}

	s.logger.Debug("stored object",
		"key", key,
		"size", record.Size,
		"stored_size", record.StoredSize,
		"compression", tag.String(),
	)
	return record, nil
}

// writeAtomic writes data to a temp file and renames it to path.
func (s *Store) writeAtomic(path, pattern string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Join(s.root, tmpDir), pattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating shard directory: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	success = true
	return nil
}

// Stat returns the metadata record for key.
func (s *Store) Stat(key hashid.ID) (*Record, error) {
	data, err := os.ReadFile(s.metaPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record for %s: %w", key, err)
	}
	var record Record
	if err := codec.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record for %s: %w", key, err)
	}
	if record.Key != key {
		return nil, fmt.Errorf("record for %s names key %s: %w", key, record.Key, ErrCorrupt)
	}
	return &record, nil
}

// Has reports whether key has a committed object.
func (s *Store) Has(key hashid.ID) bool {
	_, err := os.Stat(s.metaPath(key))
	return err == nil
}

// Get returns the object stored under key after checking its digest.
func (s *Store) Get(key hashid.ID) ([]byte, *Record, error) {
	record, err := s.Stat(key)
	if err != nil {
		return nil, nil, err
	}

	stored, err := os.ReadFile(s.objectPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%s: object file missing: %w", key, ErrCorrupt)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading object %s: %w", key, err)
	}
	if int64(len(stored)) != record.StoredSize {
		return nil, nil, fmt.Errorf("%s: %d stored bytes, record says %d: %w", key, len(stored), record.StoredSize, ErrCorrupt)
	}
	if digest := DigestOf(stored); digest != record.Digest {
		return nil, nil, fmt.Errorf("%s: digest %s, record says %s: %w", key, digest, record.Digest, ErrCorrupt)
	}

	data, err := decompress(stored, record.Compression, int(record.Size))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %w", key, ErrCorrupt, err)
	}
	return data, record, nil
}

// List returns every committed record, ordered by key.
func (s *Store) List() ([]Record, error) {
	var records []Record
	root := filepath.Join(s.root, metaDir)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cbor") {
			return nil
		}
		key, err := hashid.Parse(strings.TrimSuffix(entry.Name(), ".cbor"))
		if err != nil {
			s.logger.Warn("ignoring unexpected file in store", "path", path)
			return nil
		}
		record, err := s.Stat(key)
		if err != nil {
			return err
		}
		records = append(records, *record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	sort.Slice(records, func(i, j int) bool {
		return hashid.Compare(records[i].Key, records[j].Key) < 0
	})
	return records, nil
}
