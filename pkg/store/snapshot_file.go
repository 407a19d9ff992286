package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ssargent/stockroom/pkg/codec"
)

const snapshotBufferSize = 64 * 1024

// SnapshotFile reads and atomically rewrites one store's snapshot. File
// handles are held only for the duration of a single Read or Write call.
type SnapshotFile struct {
	path string
}

// NewSnapshotFile creates a snapshot file handle for path
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Path returns the file path
func (f *SnapshotFile) Path() string {
	return f.path
}

// Read opens the snapshot and passes a buffered reader to fn. It returns the
// file size. A missing file is reported as an error matching fs.ErrNotExist.
func (f *SnapshotFile) Read(fn func(r io.Reader) error) (int64, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return 0, err
	}

	if err := fn(bufio.NewReaderSize(file, snapshotBufferSize)); err != nil {
		return stat.Size(), err
	}
	return stat.Size(), nil
}

// Write replaces the snapshot with whatever fn writes. The data goes to a
// temporary file in the same directory which is fsynced and renamed over the
// target, so readers only ever see the old or the new snapshot.
func (f *SnapshotFile) Write(fn func(w io.Writer) error) (int64, error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	written, err := writeAndSync(tmp, fn)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0600)
	}
	if err == nil {
		err = os.Rename(tmpPath, f.path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return written, nil
}

func writeAndSync(file *os.File, fn func(w io.Writer) error) (int64, error) {
	counter := &countingWriter{w: file}
	writer := bufio.NewWriterSize(counter, snapshotBufferSize)

	if err := fn(writer); err != nil {
		return 0, err
	}
	if err := writer.Flush(); err != nil {
		return 0, err
	}
	if err := file.Sync(); err != nil {
		return 0, err
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// loadSnapshot decodes every record from file. missing is true when the file
// does not exist, which is not an error.
func loadSnapshot[T any](file *SnapshotFile, c codec.RecordCodec[T]) (records []T, size int64, missing bool, err error) {
	size, err = file.Read(func(r io.Reader) error {
		var decodeErr error
		records, decodeErr = codec.DecodeSnapshot(r, c)
		return decodeErr
	})
	switch {
	case err == nil:
		return records, size, false, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, 0, true, nil
	case isCodecError(err):
		return nil, size, false, fmt.Errorf("%w: %s: %w", ErrCorruption, file.Path(), err)
	default:
		return nil, size, false, fmt.Errorf("%w: read %s: %w", ErrPersist, file.Path(), err)
	}
}

// saveSnapshot rewrites file with records
func saveSnapshot[T any](file *SnapshotFile, c codec.RecordCodec[T], records []T) (int64, error) {
	n, err := file.Write(func(w io.Writer) error {
		return codec.EncodeSnapshot(w, c, records)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: write %s: %w", ErrPersist, file.Path(), err)
	}
	return n, nil
}

func isCodecError(err error) bool {
	var codecErr *codec.CodecError
	return errors.As(err, &codecErr)
}
