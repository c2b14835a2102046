package lasio

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ChunkReader streams a LAS file's points in fixed-size chunks without
// ever materializing more than chunkSize points at once, for callers
// (the metadata extractor) that only need a
// single pass over a file that may be far larger than memory allows.
type ChunkReader struct {
	f           *os.File
	br          *bufio.Reader
	header      Header
	sel         ColumnSelection
	format      uint8
	recordLen   uint16
	chunkSize   int
	remaining   uint64
	buf         []byte
}

// StreamChunks opens path and returns a ChunkReader positioned at the
// first point record. Callers must call Close when done, even after an
// error from Next.
func StreamChunks(path string, chunkSize int, sel ColumnSelection) (*ChunkReader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("lasio: chunk size must be positive, got %d", chunkSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lasio: open %q: %w", path, err)
	}

	h, offsetToPoints, format, recordLen, err := decodeHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(int64(offsetToPoints), io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("lasio: seeking to point data: %w", err)
	}

	return &ChunkReader{
		f:         f,
		br:        bufio.NewReaderSize(f, 1<<20),
		header:    h,
		sel:       sel,
		format:    format,
		recordLen: recordLen,
		chunkSize: chunkSize,
		remaining: h.PointCount,
		buf:       make([]byte, recordLen),
	}, nil
}

// Header returns the file's public header, available immediately after
// StreamChunks succeeds.
func (c *ChunkReader) Header() Header {
	return c.header
}

// Next reads up to chunkSize more points, returning (nil, false, nil)
// once the file is exhausted. Successive chunks share no backing array
// with one another.
func (c *ChunkReader) Next() (*PointCloud, bool, error) {
	if c.remaining == 0 {
		return nil, false, nil
	}
	n := c.chunkSize
	if uint64(n) > c.remaining {
		n = int(c.remaining)
	}

	pc := &PointCloud{Header: c.header}
	pc.X = make([]float64, 0, n)
	pc.Y = make([]float64, 0, n)
	pc.Z = make([]float64, 0, n)
	if c.sel.Intensity {
		pc.Intensity = make([]uint16, 0, n)
	}
	if c.sel.Classification {
		pc.Classification = make([]uint8, 0, n)
	}
	if c.sel.ReturnNumber {
		pc.ReturnNumber = make([]uint8, 0, n)
	}
	if c.sel.NumberOfReturns {
		pc.NumberOfReturns = make([]uint8, 0, n)
	}

	for i := 0; i < n; i++ {
		if _, err := readFull(c.br, c.buf); err != nil {
			return nil, false, fmt.Errorf("lasio: reading point: %w", err)
		}
		x, y, z, intensity, class, ret, numRet := decodePointRecord(c.buf, c.format)
		pc.X = append(pc.X, float64(x)*c.header.ScaleX+c.header.OffsetX)
		pc.Y = append(pc.Y, float64(y)*c.header.ScaleY+c.header.OffsetY)
		pc.Z = append(pc.Z, float64(z)*c.header.ScaleZ+c.header.OffsetZ)
		if c.sel.Intensity {
			pc.Intensity = append(pc.Intensity, intensity)
		}
		if c.sel.Classification {
			pc.Classification = append(pc.Classification, class)
		}
		if c.sel.ReturnNumber {
			pc.ReturnNumber = append(pc.ReturnNumber, ret)
		}
		if c.sel.NumberOfReturns {
			pc.NumberOfReturns = append(pc.NumberOfReturns, numRet)
		}
	}
	c.remaining -= uint64(n)
	return pc, true, nil
}

// Close releases the underlying file handle.
func (c *ChunkReader) Close() error {
	return c.f.Close()
}
