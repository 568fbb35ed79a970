// Package compression wraps the stream codecs used for table documents.
//
// # Overview
//
// Documents read by the command line may be compressed with any of the
// supported algorithms; the algorithm is chosen from the file extension:
//
//	.gz      Gzip
//	.sz      Snappy (framed)
//	.snappy  Snappy (framed)
//	.lz4     LZ4
//	.zst     Zstd
//	.s2      S2
//
// # Basic Usage
//
//	alg := compression.FromPath("table.json.zst")
//	r, err := compression.NewReader(f, alg)
//	defer r.Close()
//
// Speed (fastest to slowest): LZ4 > Snappy/S2 > Zstd > Gzip.
// Compression ratio (best to worst): Zstd > Gzip > Snappy/S2 > LZ4.
package compression

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/pool"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level trades compression speed for ratio
type Level int

const (
	// Fastest prioritizes speed over compression ratio
	Fastest Level = 1
	// Default balances speed and compression
	Default Level = 5
	// Best maximizes compression ratio
	Best Level = 9
)

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".sz":     Snappy,
	".snappy": Snappy,
	".lz4":    LZ4,
	".zst":    Zstd,
	".s2":     S2,
}

var bufferPool = pool.New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// ParseAlgorithm validates an algorithm name. The empty string means None.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "", None:
		return None, nil
	case Gzip, Snappy, LZ4, Zstd, S2:
		return a, nil
	}
	return None, errors.Newf(errors.ErrorTypeValidation, "unknown compression algorithm %q", s)
}

// FromPath picks the algorithm implied by the last extension of path
func FromPath(path string) Algorithm {
	if a, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return a
	}
	return None
}

// TrimExtension removes a compression extension from path, so that
// "t.json.gz" yields "t.json"
func TrimExtension(path string) string {
	ext := filepath.Ext(path)
	if _, ok := extensions[strings.ToLower(ext)]; ok {
		return strings.TrimSuffix(path, ext)
	}
	return path
}

// NewReader returns a reader decompressing r with alg. Closing it releases
// decoder resources but never closes r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid gzip stream")
		}
		return zr, nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid zstd stream")
		}
		return dec.IOReadCloser(), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	}
	return nil, errors.Newf(errors.ErrorTypeValidation, "unknown compression algorithm %q", alg)
}

// NewWriter returns a writer compressing into w with alg. Close flushes the
// stream but never closes w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		gw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, err
		}
		return gw, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, err
		}
		return lw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, err
		}
		return enc, nil
	case S2:
		if level >= Best {
			return s2.NewWriter(w, s2.WriterBetterCompression()), nil
		}
		return s2.NewWriter(w), nil
	}
	return nil, errors.Newf(errors.ErrorTypeValidation, "unknown compression algorithm %q", alg)
}

// Compress compresses data in one shot
func Compress(data []byte, alg Algorithm, level Level) ([]byte, error) {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	w, err := NewWriter(buf, alg, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// Decompress reverses Compress
func Decompress(data []byte, alg Algorithm) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), alg)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, r); err != nil { //nolint:gosec // G110: inputs are local documents
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to decompress").
			WithDetail("algorithm", string(alg))
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
