package lasio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// WritePointCloud serializes cloud to path in the given point format,
// computing fresh offsets (the component-wise minimum of the cloud's
// coordinates) so the quantized x/y/z fit in a signed 32-bit integer.
// compressed must be false; this codec has no LAZ encoder
// (ErrCodecUnavailable).
func WritePointCloud(cloud *PointCloud, path string, format uint8, compressed bool) (retErr error) {
	if compressed {
		return ErrCodecUnavailable
	}
	if !isSupportedFormat(format) {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
	n := cloud.PointCount()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lasio: create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); retErr == nil && cerr != nil {
			retErr = fmt.Errorf("lasio: closing %q: %w", path, cerr)
		}
	}()

	scale := [3]float64{cloud.Header.ScaleX, cloud.Header.ScaleY, cloud.Header.ScaleZ}
	for i, s := range scale {
		if s <= 0 {
			scale[i] = 0.001
		}
	}

	minX, minY, minZ := math.MaxFloat64, math.MaxFloat64, math.MaxFloat64
	maxX, maxY, maxZ := -math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64
	for i := 0; i < n; i++ {
		if cloud.X[i] < minX {
			minX = cloud.X[i]
		}
		if cloud.Y[i] < minY {
			minY = cloud.Y[i]
		}
		if cloud.Z[i] < minZ {
			minZ = cloud.Z[i]
		}
		if cloud.X[i] > maxX {
			maxX = cloud.X[i]
		}
		if cloud.Y[i] > maxY {
			maxY = cloud.Y[i]
		}
		if cloud.Z[i] > maxZ {
			maxZ = cloud.Z[i]
		}
	}
	if n == 0 {
		minX, minY, minZ, maxX, maxY, maxZ = 0, 0, 0, 0, 0, 0
	}

	minorVersion := uint8(2)
	if format >= 6 {
		minorVersion = 4
	}
	headerSize := headerSizeForVersion(minorVersion)
	recordLen := pointRecordLength(format)

	var vlrCount uint32
	var vlrBytes []byte
	if cloud.Header.CRS != "" {
		vlrBuf := &countingBuffer{}
		vw := bufio.NewWriter(vlrBuf)
		if _, err := writeWKTVLR(vw, cloud.Header.CRS); err != nil {
			return fmt.Errorf("lasio: encoding crs vlr: %w", err)
		}
		vw.Flush()
		vlrBytes = vlrBuf.buf
		vlrCount = 1
	}

	offsetToPoints := uint32(headerSize) + uint32(len(vlrBytes))

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := writeHeader(bw, cloud, format, minorVersion, headerSize, offsetToPoints, vlrCount,
		scale, [3]float64{minX, minY, minZ}, [3]float64{minX, minY, minZ}, [3]float64{maxX, maxY, maxZ}, uint64(n)); err != nil {
		return fmt.Errorf("lasio: writing header: %w", err)
	}
	if len(vlrBytes) > 0 {
		if _, err := bw.Write(vlrBytes); err != nil {
			return fmt.Errorf("lasio: writing vlrs: %w", err)
		}
	}

	buf := make([]byte, recordLen)
	for i := 0; i < n; i++ {
		for j := range buf {
			buf[j] = 0
		}
		encodePointRecord(buf, format,
			int32(math.Round((cloud.X[i]-minX)/scale[0])),
			int32(math.Round((cloud.Y[i]-minY)/scale[1])),
			int32(math.Round((cloud.Z[i]-minZ)/scale[2])),
			columnU16(cloud.Intensity, i),
			columnU8(cloud.Classification, i),
			columnU8(cloud.ReturnNumber, i),
			columnU8(cloud.NumberOfReturns, i),
		)
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("lasio: writing point %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func columnU16(col []uint16, i int) uint16 {
	if i < len(col) {
		return col[i]
	}
	return 0
}

func columnU8(col []uint8, i int) uint8 {
	if i < len(col) {
		return col[i]
	}
	return 0
}

// countingBuffer is a minimal io.Writer that just accumulates bytes,
// used to size the CRS VLR before the header's offset-to-point-data is
// known.
type countingBuffer struct{ buf []byte }

func (b *countingBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func writeHeader(w *bufio.Writer, cloud *PointCloud, format, minorVersion uint8, headerSize uint16,
	offsetToPoints, vlrCount uint32, scale, offset, minv, maxv [3]float64, pointCount uint64) error {

	write := func(v interface{}) error { return binary.Write(w, binary.LittleEndian, v) }

	if _, err := w.WriteString("LASF"); err != nil {
		return err
	}
	if err := write(uint16(0)); err != nil { // file source id
		return err
	}
	if err := write(uint16(0)); err != nil { // global encoding
		return err
	}
	if _, err := w.Write(make([]byte, 16)); err != nil { // GUID
		return err
	}
	if err := write(uint8(1)); err != nil {
		return err
	}
	if err := write(minorVersion); err != nil {
		return err
	}
	sysID := make([]byte, 32)
	copy(sysID, "lidarforest")
	if _, err := w.Write(sysID); err != nil {
		return err
	}
	swID := make([]byte, 32)
	copy(swID, "lidarforest-processing")
	if _, err := w.Write(swID); err != nil {
		return err
	}
	if err := write(uint16(1)); err != nil { // creation DOY
		return err
	}
	if err := write(uint16(2026)); err != nil { // creation year
		return err
	}
	if err := write(headerSize); err != nil {
		return err
	}
	if err := write(offsetToPoints); err != nil {
		return err
	}
	if err := write(vlrCount); err != nil {
		return err
	}

	rawFormat := format
	if err := write(rawFormat); err != nil {
		return err
	}
	if err := write(pointRecordLength(format)); err != nil {
		return err
	}

	legacyCount := uint32(pointCount)
	if pointCount > math.MaxUint32 {
		legacyCount = 0 // forces LAS 1.4 readers to use the extended field
	}
	if err := write(legacyCount); err != nil {
		return err
	}
	if err := write([5]uint32{legacyCount, 0, 0, 0, 0}); err != nil {
		return err
	}
	if err := write(scale[0]); err != nil {
		return err
	}
	if err := write(scale[1]); err != nil {
		return err
	}
	if err := write(scale[2]); err != nil {
		return err
	}
	if err := write(offset[0]); err != nil {
		return err
	}
	if err := write(offset[1]); err != nil {
		return err
	}
	if err := write(offset[2]); err != nil {
		return err
	}
	if err := write(maxv[0]); err != nil {
		return err
	}
	if err := write(minv[0]); err != nil {
		return err
	}
	if err := write(maxv[1]); err != nil {
		return err
	}
	if err := write(minv[1]); err != nil {
		return err
	}
	if err := write(maxv[2]); err != nil {
		return err
	}
	if err := write(minv[2]); err != nil {
		return err
	}

	if minorVersion == 3 {
		if err := write(uint64(0)); err != nil { // waveform offset
			return err
		}
	} else if minorVersion == 4 {
		if err := write(uint64(0)); err != nil { // start of waveform data packet record
			return err
		}
		if err := write(uint64(0)); err != nil { // start of first extended vlr
			return err
		}
		if err := write(uint32(0)); err != nil { // num extended vlrs
			return err
		}
		if err := write(pointCount); err != nil {
			return err
		}
		var byReturn [15]uint64
		byReturn[0] = pointCount
		if err := write(byReturn); err != nil {
			return err
		}
	}
	return nil
}

func encodePointRecord(buf []byte, format uint8, x, y, z int32, intensity uint16, class, ret, numRet uint8) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(x))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(y))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(z))
	binary.LittleEndian.PutUint16(buf[12:14], intensity)

	if isExtendedFormat(format) {
		buf[14] = (ret & 0x0F) | ((numRet & 0x0F) << 4)
		buf[15] = 0
		buf[16] = class
	} else {
		buf[14] = (ret & 0x07) | ((numRet & 0x07) << 3)
		buf[15] = class & 0x1F
	}
}
