package lasio

import "fmt"

// Header carries the LAS public header block fields this package
// round-trips. Fields outside this set (waveform packet offsets, GUIDs,
// system/software identifier strings, creation date) are not carried
// over from the source: on write they are zero or this package's own
// fixed values — this package is a processing codec, not an archival one.
type Header struct {
	VersionMajor uint8
	VersionMinor uint8

	PointFormat uint8
	PointCount  uint64

	ScaleX, ScaleY, ScaleZ    float64
	OffsetX, OffsetY, OffsetZ float64
	MinX, MinY, MinZ          float64
	MaxX, MaxY, MaxZ          float64

	// CRS is the WKT coordinate reference system string carried in VLR
	// record id 2112; GeoTIFF-key VLRs are not read. Empty if the source
	// file had none.
	CRS string
}

// Version returns "major.minor", e.g. "1.4".
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor)
}

// SupportedVersions lists the LAS versions this codec can decode.
var SupportedVersions = []string{"1.2", "1.3", "1.4"}

// SupportedPointFormats lists the point data record formats this codec
// understands.
var SupportedPointFormats = []uint8{0, 1, 2, 3, 6, 7, 8}

func isSupportedVersion(major, minor uint8) bool {
	return major == 1 && (minor == 2 || minor == 3 || minor == 4)
}

func isSupportedFormat(f uint8) bool {
	for _, v := range SupportedPointFormats {
		if v == f {
			return true
		}
	}
	return false
}

// legacyHeaderSize is the LAS 1.2 public header block size.
const legacyHeaderSize = 227

// headerSizeForVersion returns the canonical public header block size
// for each supported minor version.
func headerSizeForVersion(minor uint8) uint16 {
	switch minor {
	case 2:
		return 227
	case 3:
		return 235
	case 4:
		return 375
	default:
		return 227
	}
}

// wktProjectionUserID and wktProjectionRecord identify the VLR that
// carries the CRS as WKT text.
const (
	wktProjectionUserID = "LASF_Projection"
	wktProjectionRecord = 2112
)
