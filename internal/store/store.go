// Package store is the intermediate result store handed from the
// calculation stage to its consumers: a zstd-compressed JSON Lines file
// whose first line is a header and every following line one AlloyResult.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/mdlhea/heapp/internal/descriptor"
)

const (
	formatName    = "heapp-results"
	formatVersion = 1

	// Ext is the file extension of store files.
	Ext = ".jsonl.zst"
)

// ErrFormat is returned when a file is not a store this version can read.
var ErrFormat = errors.New("store: unrecognized format")

type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
}

// PathFor returns the store path for runID inside dir.
func PathFor(dir, runID string) string {
	return filepath.Join(dir, "heapp-"+runID+Ext)
}

// Writer appends results to a new store. It is not safe for concurrent use.
type Writer struct {
	path  string
	f     *os.File
	zw    *zstd.Encoder
	enc   *json.Encoder
	count int
}

// Create starts a new store for runID in dir (the system temp directory
// when dir is empty). The file must not exist yet.
func Create(dir, runID string) (*Writer, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	path := PathFor(dir, runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: create %s: %w", path, err)
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderConcurrency(1))
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("store: create %s: %w", path, err)
	}
	w := &Writer{path: path, f: f, zw: zw, enc: json.NewEncoder(zw)}
	w.enc.SetEscapeHTML(false)
	if err := w.enc.Encode(header{Format: formatName, Version: formatVersion, RunID: runID}); err != nil {
		zw.Close()
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("store: write header %s: %w", path, err)
	}
	return w, nil
}

// Append writes one result.
func (w *Writer) Append(r descriptor.AlloyResult) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("store: append to %s: %w", w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of results appended so far.
func (w *Writer) Count() int { return w.count }

// Path returns the store's file path.
func (w *Writer) Path() string { return w.path }

// Close flushes the compressed stream and syncs the file. The store must be
// closed before it is read.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	if err := w.zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("store: close %s: %w", w.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("store: sync %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", w.path, err)
	}
	return nil
}

// Reader reads a closed store in chunks.
type Reader struct {
	path  string
	f     *os.File
	zr    *zstd.Decoder
	dec   *json.Decoder
	runID string
}

// Open opens the store at path and checks its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	r := &Reader{path: path, f: f, zr: zr, dec: json.NewDecoder(zr)}

	var h header
	if err := r.dec.Decode(&h); err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}
	if h.Format != formatName || h.Version != formatVersion {
		r.Close()
		return nil, fmt.Errorf("%w: %s: %s v%d", ErrFormat, path, h.Format, h.Version)
	}
	r.runID = h.RunID
	return r, nil
}

// RunID returns the id of the run that wrote the store.
func (r *Reader) RunID() string { return r.runID }

// Next returns up to n results. It returns io.EOF, and no results, once the
// store is exhausted.
func (r *Reader) Next(n int) ([]descriptor.AlloyResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("store: chunk size must be positive, got %d", n)
	}
	out := make([]descriptor.AlloyResult, 0, n)
	for len(out) < n {
		var rec descriptor.AlloyResult
		if err := r.dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return out, fmt.Errorf("store: read %s: %w", r.path, err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// Chunks iterates the remaining results in chunks of size. Iteration stops
// after the first error.
func (r *Reader) Chunks(size int) iter.Seq2[[]descriptor.AlloyResult, error] {
	return func(yield func([]descriptor.AlloyResult, error) bool) {
		for {
			chunk, err := r.Next(size)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the file.
func (r *Reader) Close() error {
	r.zr.Close()
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", r.path, err)
	}
	return nil
}

// CountRecords reads the store once, chunk by chunk, and returns the number
// of results in it.
func CountRecords(path string, chunkSize int) (int, error) {
	r, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n := 0
	for chunk, err := range r.Chunks(chunkSize) {
		if err != nil {
			return n, err
		}
		n += len(chunk)
	}
	return n, nil
}

// Remove deletes the store at path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: remove %s: %w", path, err)
	}
	return nil
}
