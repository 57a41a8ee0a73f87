/*------------------------------------------------------------------------------
* cache.go : serialized model snapshot cache
*
* A whole-model snapshot guarded by an advisory file lock shared across
* processes, so multiple service instances can share one cache directory
* safely.
*-----------------------------------------------------------------------------*/
package cache

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"taupgo/internal/branch"
	"taupgo/internal/earth"
	"taupgo/internal/logging"
	"taupgo/internal/model"
	"taupgo/internal/taperror"
	"taupgo/internal/upgoing"
)

// Snapshot is the opaque binary blob content: model-conversions, P model,
// S model, branch array, P up-going, S up-going, in that order.
type Snapshot struct {
	Conv     *model.Conversion
	EarthP   *earth.Model
	EarthS   *earth.Model
	Branches []*branch.SurfaceFocus
	UpGoingP *upgoing.Table
	UpGoingS *upgoing.Table
}

func init() {
	gob.Register(&model.Conversion{})
	gob.Register(&earth.Model{})
	gob.Register(&upgoing.Table{})
	gob.Register(&branch.SurfaceFocus{})
}

// Store reads and writes Snapshot blobs to a directory cache file, keyed by
// model name, valid only if its modification time is newer than every one
// of the model's source files.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "creating cache directory")
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(modelName string) string {
	return filepath.Join(s.Dir, modelName+".tpcache")
}

// Load reads the cached snapshot for modelName if it exists and is newer
// than every path in sourcePaths. A stale or missing cache, or one that
// fails to decode, is reported as taperror.SerializationMismatch, which
// callers treat as a cache miss rather than a fatal error.
func (s *Store) Load(modelName string, sourcePaths []string) (*Snapshot, error) {
	cachePath := s.path(modelName)
	info, err := os.Stat(cachePath)
	if err != nil {
		return nil, taperror.Wrap(taperror.SerializationMismatch, err, "cache file missing")
	}
	for _, src := range sourcePaths {
		srcInfo, err := os.Stat(src)
		if err != nil {
			continue
		}
		if srcInfo.ModTime().After(info.ModTime()) {
			return nil, taperror.New(taperror.SerializationMismatch, "cache older than source file "+src)
		}
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return nil, taperror.Wrap(taperror.SerializationMismatch, err, "opening cache file")
	}
	defer f.Close()

	if err := flock(f, false); err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "locking cache file for read")
	}
	defer funlock(f)

	snap, err := decodeSnapshot(f)
	if err != nil {
		return nil, taperror.Wrap(taperror.SerializationMismatch, err, "decoding cache snapshot")
	}
	logging.Trace(2, "cache: loaded snapshot for model %s\n", modelName)
	return snap, nil
}

// Save writes snap as the cache entry for modelName, under an exclusive
// lock covering the full file range.
func (s *Store) Save(modelName string, snap *Snapshot) error {
	cachePath := s.path(modelName)
	f, err := os.OpenFile(cachePath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return taperror.Wrap(taperror.ModelReadFailure, err, "creating cache file")
	}
	defer f.Close()

	if err := flock(f, true); err != nil {
		return taperror.Wrap(taperror.ModelReadFailure, err, "locking cache file for write")
	}
	defer funlock(f)

	if err := encodeSnapshot(f, snap); err != nil {
		return taperror.Wrap(taperror.ModelReadFailure, err, "encoding cache snapshot")
	}
	logging.Trace(2, "cache: saved snapshot for model %s\n", modelName)
	return nil
}

func encodeSnapshot(w io.Writer, snap *Snapshot) error {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(snap); err != nil {
		return errors.Wrap(err, "gob encode")
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "zstd writer")
	}
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return errors.Wrap(err, "zstd write")
	}
	return zw.Close()
}

func decodeSnapshot(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "zstd reader")
	}
	defer zr.Close()

	var snap Snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "gob decode")
	}
	return &snap, nil
}

// flock takes an advisory lock on f's full range: shared for reads,
// exclusive for writes.
func flock(f *os.File, exclusive bool) error {
	how := syscall.LOCK_SH
	if exclusive {
		how = syscall.LOCK_EX
	}
	return syscall.Flock(int(f.Fd()), how)
}

func funlock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

// RebuildRecord is the audit trail entry written when the cache is
// rejected and rebuilt from source files: indexing layers (see index.go)
// want to know when and why.
type RebuildRecord struct {
	ModelName string
	Reason    string
	At        time.Time
}

// Rebuild replaces the cache entry for modelName with snap and returns the
// RebuildRecord an index layer can persist for audit purposes.
func (s *Store) Rebuild(modelName string, snap *Snapshot, reason string, now time.Time) (RebuildRecord, error) {
	if err := s.Save(modelName, snap); err != nil {
		return RebuildRecord{}, err
	}
	return RebuildRecord{ModelName: modelName, Reason: reason, At: now}, nil
}
