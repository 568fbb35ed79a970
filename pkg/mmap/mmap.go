// Package mmap maps table files into memory so that readers needing random
// access, such as the parquet reader, can work without copying the file.
package mmap

import (
	"bytes"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/logger"
)

// File is a read-only view of a whole file. It satisfies io.Reader,
// io.ReaderAt and io.Seeker. The view is invalid after Close.
type File struct {
	*bytes.Reader

	file   *os.File
	data   []byte
	mapped bool
	mu     sync.Mutex
}

// Open maps path into memory. Empty files and platforms without mmap fall
// back to an in-memory copy.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller chooses the file
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to open file").
			WithDetail("path", path)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to stat file").
			WithDetail("path", path)
	}

	m := &File{file: f}
	size := stat.Size()
	if size > 0 {
		m.data, m.mapped, err = mapFile(f, int(size))
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to map file").
				WithDetail("path", path)
		}
	}
	m.Reader = bytes.NewReader(m.data)

	logger.Debug("file opened",
		zap.String("path", path),
		zap.Int64("bytes", size),
		zap.Bool("mapped", m.mapped))
	return m, nil
}

// Bytes returns the mapped contents without copying
func (m *File) Bytes() []byte {
	return m.data
}

// Close unmaps the file and closes it. Calling Close twice is safe.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.mapped && m.data != nil {
		err = unmap(m.data)
	}
	m.data, m.mapped = nil, false
	m.Reader = bytes.NewReader(nil)

	if m.file != nil {
		if cerr := m.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.file = nil
	}
	return err
}
