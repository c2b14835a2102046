// Package lasio reads and writes the LAS 1.2/1.3/1.4 binary point-cloud
// format. It exposes a structure-of-arrays PointCloud, header metadata
// (scale, offset, bounds, CRS, point-format id), and a chunked streaming
// reader for files too large to hold entirely in memory.
//
// LAZ (compressed LAS) is not decoded: a compressed point format byte
// is reported as ErrCodecUnavailable rather than silently misread.
package lasio
