package lasio

// pointRecordLength returns the on-disk size, in bytes, of one point
// record for the given point data format. Only formats 0,1,2,3,6,7,8
// are supported; callers must check isSupportedFormat first.
func pointRecordLength(format uint8) uint16 {
	switch format {
	case 0:
		return 20
	case 1:
		return 28
	case 2:
		return 26
	case 3:
		return 34
	case 6:
		return 30
	case 7:
		return 36
	case 8:
		return 38
	default:
		return 0
	}
}

// isExtendedFormat reports whether a format uses the LAS 1.4 extended
// point record layout (4-bit return number/number-of-returns packed in
// one byte, classification as a plain byte 0-255 with a separate flags
// byte), as opposed to legacy formats 0-3 (3-bit fields, classification
// packed with a "synthetic/key-point/withheld" flag in the high bits).
func isExtendedFormat(format uint8) bool {
	return format >= 6
}
