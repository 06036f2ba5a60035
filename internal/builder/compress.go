package builder

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Compressor writes a compressed copy of an output next to it
type Compressor struct {
	Ext string
	New func(w io.Writer) (io.WriteCloser, error)
}

const (
	gzipLevel   = 9
	brotliLevel = 11
)

// Gzip is the .gz compressor at maximum compression
var Gzip = &Compressor{
	Ext: "gz",
	New: func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, gzipLevel)
	},
}

// Brotli is the .br compressor at maximum quality
var Brotli = &Compressor{
	Ext: "br",
	New: func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriterLevel(w, brotliLevel), nil
	},
}

// Zstd returns a .zst compressor for a zstd level between 1 and 22
func Zstd(level int) *Compressor {
	return &Compressor{
		Ext: "zst",
		New: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		},
	}
}

// Path returns the compressed file name for filename
func (c *Compressor) Path(filename string) string {
	return filename + "." + c.Ext
}

// WriteFile compresses data into filename plus the compressor extension.
// A partially written file is removed on failure.
func (c *Compressor) WriteFile(filename string, data []byte) (n int64, err error) {
	outfile := c.Path(filename)
	out, err := os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(outfile)
			return
		}
		if info, serr := os.Stat(outfile); serr == nil {
			n = info.Size()
		}
	}()

	z, err := c.New(out)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.Ext, err)
	}
	if _, err := z.Write(data); err != nil {
		z.Close()
		return 0, fmt.Errorf("%s: %w", c.Ext, err)
	}
	if err := z.Close(); err != nil {
		return 0, fmt.Errorf("%s: %w", c.Ext, err)
	}
	return 0, nil
}

// CompressedSize is the size of one compressed copy of an output
type CompressedSize struct {
	Ext  string
	Size int64
}

// compressAll writes every compressed copy of filename concurrently and
// returns their sizes in compressor order along with the first error.
func compressAll(compressors []*Compressor, filename string, data []byte) ([]CompressedSize, error) {
	type result struct {
		i    int
		size int64
		err  error
	}

	done := make(chan result, len(compressors))
	for i, c := range compressors {
		i, c := i, c
		go func() {
			n, err := c.WriteFile(filename, data)
			done <- result{i: i, size: n, err: err}
		}()
	}

	sizes := make([]CompressedSize, len(compressors))
	var firstErr error
	for range compressors {
		r := <-done
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		sizes[r.i] = CompressedSize{Ext: compressors[r.i].Ext, Size: r.size}
	}
	return sizes, firstErr
}
