package lasio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"strings"
)

// vlrHeader is the 54-byte header that precedes every Variable Length
// Record's payload.
type vlrHeader struct {
	UserID       [16]byte
	RecordID     uint16
	RecordLength uint16
	Description  [32]byte
}

// readVLRs consumes count VLRs from r (already positioned just past the
// public header block) and returns the WKT CRS string, if any VLR with
// user id "LASF_Projection" and record id 2112 was present.
func readVLRs(r *bufio.Reader, count uint32) (crs string, err error) {
	for i := uint32(0); i < count; i++ {
		var reserved uint16
		if err := binary.Read(r, binary.LittleEndian, &reserved); err != nil {
			return "", fmt.Errorf("lasio: reading vlr %d reserved field: %w", i, err)
		}
		var hdr vlrHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr.UserID); err != nil {
			return "", fmt.Errorf("lasio: reading vlr %d user id: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &hdr.RecordID); err != nil {
			return "", fmt.Errorf("lasio: reading vlr %d record id: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &hdr.RecordLength); err != nil {
			return "", fmt.Errorf("lasio: reading vlr %d record length: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &hdr.Description); err != nil {
			return "", fmt.Errorf("lasio: reading vlr %d description: %w", i, err)
		}

		data := make([]byte, hdr.RecordLength)
		if _, err := readFull(r, data); err != nil {
			return "", fmt.Errorf("lasio: reading vlr %d payload: %w", i, err)
		}

		userID := cstring(hdr.UserID[:])
		if userID == wktProjectionUserID && hdr.RecordID == wktProjectionRecord && crs == "" {
			crs = strings.TrimRight(string(data), "\x00")
		}
	}
	return crs, nil
}

// cstring trims a fixed-size, NUL-padded byte array down to its string
// content.
func cstring(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// writeWKTVLR writes a single VLR carrying crs as WKT text under record
// id 2112, returning the total byte count written (54-byte header plus
// payload), for the caller to fold into offset-to-point-data.
func writeWKTVLR(w *bufio.Writer, crs string) (int, error) {
	payload := append([]byte(crs), 0) // NUL-terminate, matching common LAS writers
	hdr := vlrHeader{RecordID: wktProjectionRecord, RecordLength: uint16(len(payload))}
	copy(hdr.UserID[:], wktProjectionUserID)
	copy(hdr.Description[:], "WKT CRS")

	if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil { // reserved
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, hdr.UserID); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, hdr.RecordID); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, hdr.RecordLength); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, hdr.Description); err != nil {
		return 0, err
	}
	if _, err := w.Write(payload); err != nil {
		return 0, err
	}
	return 54 + len(payload), nil
}
