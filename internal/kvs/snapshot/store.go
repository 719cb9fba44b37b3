// Package snapshot implements the on-disk snapshot ring: fixed-depth
// generation rotation, atomic temp-file-then-rename writes, and
// hash-verified reads. Writes go through a temp file, fsync, then rename,
// with a sidecar digest file per generation and a fixed ring depth.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kvsdriver/kvs/internal/kvs/integrity"
	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
	"github.com/kvsdriver/kvs/internal/kvs/value"
)

// MaxSnapshots is the fixed rotation depth (excluding the current
// generation 0).
const MaxSnapshots = 3

// Store manages the payload/sidecar file pairs for one instance's
// generation ring.
type Store struct {
	dir        string
	instanceID uint32
}

// NewStore returns a Store rooted at dir for instanceID. It does not touch
// the filesystem; callers ensure dir exists (C5's open does this).
func NewStore(dir string, instanceID uint32) *Store {
	return &Store{dir: dir, instanceID: instanceID}
}

func (s *Store) payloadPath(g int) string {
	return filepath.Join(s.dir, fmt.Sprintf("kvs_%d_%d.json", s.instanceID, g))
}

func (s *Store) sidecarPath(g int) string {
	return filepath.Join(s.dir, fmt.Sprintf("kvs_%d_%d.hash", s.instanceID, g))
}

func (s *Store) exists(g int) bool {
	_, err := os.Stat(s.payloadPath(g))
	return err == nil
}

// Count returns the number of generations currently on disk with g >= 1,
// capped at MaxSnapshots. Rotation never leaves gaps, so it is enough to
// walk from g=1 upward until a generation is missing.
func (s *Store) Count() int {
	count := 0
	for g := 1; g <= MaxSnapshots; g++ {
		if !s.exists(g) {
			break
		}
		count++
	}
	return count
}

// WriteCurrent serializes m, rotates older generations one slot down
// (deleting whatever currently sits at MaxSnapshots), and atomically
// writes the new generation 0 payload and sidecar. Rotation happens on
// entry, so the first successful WriteCurrent leaves Count() == 0.
func (s *Store) WriteCurrent(m map[string]value.Value) (payloadPath, hashPath string, err error) {
	payload, err := value.EncodeMap(m)
	if err != nil {
		return "", "", kvserr.Wrap(kvserr.JsonParserError, "encode live map", err)
	}

	if err := s.rotate(); err != nil {
		return "", "", err
	}

	if err := s.writeGeneration(0, payload); err != nil {
		return "", "", err
	}

	return s.payloadPath(0), s.sidecarPath(0), nil
}

// rotate renames generation g to g+1 for g = MaxSnapshots-1 .. 0, after
// first deleting anything already at MaxSnapshots. A missing generation g
// is skipped rather than treated as an error.
func (s *Store) rotate() error {
	if err := s.removeGeneration(MaxSnapshots); err != nil {
		return err
	}

	for g := MaxSnapshots - 1; g >= 0; g-- {
		if !s.exists(g) {
			continue
		}
		if err := os.Rename(s.payloadPath(g), s.payloadPath(g+1)); err != nil {
			return kvserr.Wrap(kvserr.IoError, "rotate snapshot payload", err)
		}
		if err := os.Rename(s.sidecarPath(g), s.sidecarPath(g+1)); err != nil {
			return kvserr.Wrap(kvserr.IoError, "rotate snapshot sidecar", err)
		}
	}
	return nil
}

func (s *Store) removeGeneration(g int) error {
	if err := os.Remove(s.payloadPath(g)); err != nil && !os.IsNotExist(err) {
		return kvserr.Wrap(kvserr.IoError, "remove expired snapshot payload", err)
	}
	if err := os.Remove(s.sidecarPath(g)); err != nil && !os.IsNotExist(err) {
		return kvserr.Wrap(kvserr.IoError, "remove expired snapshot sidecar", err)
	}
	return nil
}

// writeGeneration writes payload (and its digest) to generation g via a
// temp-file-then-rename sequence: write, sync, close, rename. This keeps
// any prior content at g readable by any reader racing the write, and
// leaves g either fully old or fully new after a crash.
func (s *Store) writeGeneration(g int, payload []byte) error {
	payloadPath := s.payloadPath(g)
	sidecarPath := s.sidecarPath(g)
	digest := integrity.Hash(payload)

	if err := atomicWrite(payloadPath, payload); err != nil {
		return kvserr.Wrap(kvserr.IoError, "write snapshot payload", err)
	}
	if err := atomicWrite(sidecarPath, []byte(digest)); err != nil {
		return kvserr.Wrap(kvserr.IoError, "write snapshot sidecar", err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Read loads generation g: it checks file existence, verifies the sidecar
// digest, and decodes the payload.
func (s *Store) Read(g int) (map[string]value.Value, error) {
	if !s.exists(g) {
		return nil, kvserr.New(kvserr.FileNotFound, fmt.Sprintf("snapshot generation %d not found", g))
	}

	payload, err := os.ReadFile(s.payloadPath(g))
	if err != nil {
		return nil, kvserr.Wrap(kvserr.IoError, "read snapshot payload", err)
	}

	sidecar, err := os.ReadFile(s.sidecarPath(g))
	if err != nil {
		return nil, kvserr.Wrap(kvserr.IoError, "read snapshot sidecar", err)
	}

	if err := integrity.Verify(payload, string(sidecar)); err != nil {
		return nil, err
	}

	m, err := value.DecodeMap(payload)
	if err != nil {
		return nil, kvserr.Wrap(kvserr.JsonParserError, "decode snapshot payload", err)
	}
	return m, nil
}

// Exists reports whether generation g has a payload on disk.
func (s *Store) Exists(g int) bool {
	return s.exists(g)
}

// Paths returns the payload and sidecar paths for generation g if both
// exist, else FileNotFound.
func (s *Store) Paths(g int) (payloadPath, hashPath string, err error) {
	if !s.exists(g) {
		return "", "", kvserr.New(kvserr.FileNotFound, fmt.Sprintf("snapshot generation %d not found", g))
	}
	if _, err := os.Stat(s.sidecarPath(g)); err != nil {
		return "", "", kvserr.New(kvserr.FileNotFound, fmt.Sprintf("snapshot generation %d not found", g))
	}
	return s.payloadPath(g), s.sidecarPath(g), nil
}
