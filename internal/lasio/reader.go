package lasio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// rawHeaderFixed mirrors the on-disk field order of the LAS public header
// block. Every field is decoded, but only the ones this package uses are
// copied into Header; the rest (GUID, system/software identifiers,
// creation date) are dropped.
type rawHeaderFixed struct {
	Signature             [4]byte
	FileSourceID           uint16
	GlobalEncoding         uint16
	GUID1                  uint32
	GUID2                  uint16
	GUID3                  uint16
	GUID4                  [8]byte
	VersionMajor           uint8
	VersionMinor           uint8
	SystemID               [32]byte
	SoftwareID             [32]byte
	CreationDOY            uint16
	CreationYear           uint16
	HeaderSize             uint16
	OffsetToPoints         uint32
	NumVLRs                uint32
	PointFormatRaw         uint8
	PointRecordLengthField uint16
	LegacyNumPointRecords  uint32
	LegacyNumByReturn      [5]uint32
	ScaleX, ScaleY, ScaleZ float64
	OffX, OffY, OffZ       float64
	MaxX, MinX             float64
	MaxY, MinY             float64
	MaxZ, MinZ             float64
}

type rawHeader14Extra struct {
	StartOfWaveformDataPacketRecord uint64
	StartOfFirstExtendedVLR         uint64
	NumExtendedVLRs                 uint32
	NumPointRecords                 uint64
	NumByReturn                     [15]uint64
}

func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return n, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return n, err
}

// ReadHeader decodes just the public header block and CRS VLR of a LAS
// file, without materializing any points.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("lasio: open %q: %w", path, err)
	}
	defer f.Close()

	h, _, _, _, err := decodeHeader(f)
	return h, err
}

// decodeHeader reads the fixed header, version-dependent extension, and
// CRS VLR from f (positioned at offset 0). It returns the decoded
// Header plus the raw offset-to-point-data, point format, and on-disk
// point record length needed by callers that go on to read points.
func decodeHeader(f *os.File) (h Header, offsetToPoints uint32, pointFormat uint8, recordLength uint16, err error) {
	var fixed rawHeaderFixed
	if err = binary.Read(f, binary.LittleEndian, &fixed); err != nil {
		return Header{}, 0, 0, 0, fmt.Errorf("lasio: reading header: %w", err)
	}
	if string(fixed.Signature[:]) != "LASF" {
		return Header{}, 0, 0, 0, ErrNotLAS
	}
	if !isSupportedVersion(fixed.VersionMajor, fixed.VersionMinor) {
		return Header{}, 0, 0, 0, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, fixed.VersionMajor, fixed.VersionMinor)
	}

	pointCount := uint64(fixed.LegacyNumPointRecords)
	format := fixed.PointFormatRaw
	compressed := format&0x80 != 0
	format &= 0x3F

	if fixed.VersionMinor == 4 {
		var extra rawHeader14Extra
		if err = binary.Read(f, binary.LittleEndian, &extra); err != nil {
			return Header{}, 0, 0, 0, fmt.Errorf("lasio: reading 1.4 header extension: %w", err)
		}
		if extra.NumPointRecords != 0 {
			pointCount = extra.NumPointRecords
		}
	} else if fixed.VersionMinor == 3 {
		var waveformOffset uint64
		if err = binary.Read(f, binary.LittleEndian, &waveformOffset); err != nil {
			return Header{}, 0, 0, 0, fmt.Errorf("lasio: reading 1.3 header extension: %w", err)
		}
	}

	if compressed {
		return Header{}, 0, 0, 0, ErrCodecUnavailable
	}
	if !isSupportedFormat(format) {
		return Header{}, 0, 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}

	// VLRs begin at the reported header size, which may include writer
	// padding beyond the fields we decoded above.
	if _, err = f.Seek(int64(fixed.HeaderSize), io.SeekStart); err != nil {
		return Header{}, 0, 0, 0, fmt.Errorf("lasio: seeking to vlrs: %w", err)
	}
	vlrReader := bufio.NewReader(f)
	crs, verr := readVLRs(vlrReader, fixed.NumVLRs)
	if verr != nil {
		return Header{}, 0, 0, 0, verr
	}

	h = Header{
		VersionMajor: fixed.VersionMajor,
		VersionMinor: fixed.VersionMinor,
		PointFormat:  format,
		PointCount:   pointCount,
		ScaleX:       fixed.ScaleX, ScaleY: fixed.ScaleY, ScaleZ: fixed.ScaleZ,
		OffsetX: fixed.OffX, OffsetY: fixed.OffY, OffsetZ: fixed.OffZ,
		MinX: fixed.MinX, MinY: fixed.MinY, MinZ: fixed.MinZ,
		MaxX: fixed.MaxX, MaxY: fixed.MaxY, MaxZ: fixed.MaxZ,
		CRS: crs,
	}
	return h, fixed.OffsetToPoints, format, fixed.PointRecordLengthField, nil
}

// ReadPointCloud reads an entire LAS file into memory, decoding only the
// columns select requests (plus x/y/z, which are always materialized).
func ReadPointCloud(path string, sel ColumnSelection) (*PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lasio: open %q: %w", path, err)
	}
	defer f.Close()

	h, offsetToPoints, format, recordLen, err := decodeHeader(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(int64(offsetToPoints), io.SeekStart); err != nil {
		return nil, fmt.Errorf("lasio: seeking to point data: %w", err)
	}

	pc := &PointCloud{Header: h}
	n := int(h.PointCount)
	pc.X = make([]float64, 0, n)
	pc.Y = make([]float64, 0, n)
	pc.Z = make([]float64, 0, n)
	if sel.Intensity {
		pc.Intensity = make([]uint16, 0, n)
	}
	if sel.Classification {
		pc.Classification = make([]uint8, 0, n)
	}
	if sel.ReturnNumber {
		pc.ReturnNumber = make([]uint8, 0, n)
	}
	if sel.NumberOfReturns {
		pc.NumberOfReturns = make([]uint8, 0, n)
	}

	br := bufio.NewReaderSize(f, 1<<20)
	buf := make([]byte, recordLen)
	for i := uint64(0); i < h.PointCount; i++ {
		if _, err := readFull(br, buf); err != nil {
			return nil, fmt.Errorf("lasio: reading point %d: %w", i, err)
		}
		x, y, z, intensity, class, ret, numRet := decodePointRecord(buf, format)
		pc.X = append(pc.X, float64(x)*h.ScaleX+h.OffsetX)
		pc.Y = append(pc.Y, float64(y)*h.ScaleY+h.OffsetY)
		pc.Z = append(pc.Z, float64(z)*h.ScaleZ+h.OffsetZ)
		if sel.Intensity {
			pc.Intensity = append(pc.Intensity, intensity)
		}
		if sel.Classification {
			pc.Classification = append(pc.Classification, class)
		}
		if sel.ReturnNumber {
			pc.ReturnNumber = append(pc.ReturnNumber, ret)
		}
		if sel.NumberOfReturns {
			pc.NumberOfReturns = append(pc.NumberOfReturns, numRet)
		}
	}
	return pc, nil
}

// decodePointRecord extracts the fields this codec carries from a raw
// point record buffer of the appropriate length for format.
func decodePointRecord(buf []byte, format uint8) (x, y, z int32, intensity uint16, class, ret, numRet uint8) {
	x = int32(binary.LittleEndian.Uint32(buf[0:4]))
	y = int32(binary.LittleEndian.Uint32(buf[4:8]))
	z = int32(binary.LittleEndian.Uint32(buf[8:12]))
	intensity = binary.LittleEndian.Uint16(buf[12:14])

	if isExtendedFormat(format) {
		retByte := buf[14]
		ret = retByte & 0x0F
		numRet = (retByte >> 4) & 0x0F
		class = buf[16]
	} else {
		retByte := buf[14]
		ret = retByte & 0x07
		numRet = (retByte >> 3) & 0x07
		class = buf[15] & 0x1F // low 5 bits are the classification code; high 3 are flags
	}
	return
}
