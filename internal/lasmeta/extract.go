// Package lasmeta streams a LAS/LAZ file in fixed-size chunks and
// aggregates the classification and return-number histograms, point
// density, and header fields needed to describe a file without holding
// its full point cloud in memory.
package lasmeta

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/lidarforest/processing/internal/lasio"
)

// ClassificationBucket is one row of the classification histogram.
type ClassificationBucket struct {
	Code  uint8
	Name  string
	Count uint64
}

// ReturnBucket is one row of the return-number histogram.
type ReturnBucket struct {
	ReturnNumber int
	Count        uint64
	Percentage   float64
}

// LidarMetadata aggregates everything the extractor tallies about a
// single file.
type LidarMetadata struct {
	FilePath      string
	FileSizeBytes int64

	Header     lasio.Header
	PointCount uint64

	// Density is points per square meter of the header's planar bounds,
	// or nil if the bounds describe a zero-area footprint.
	Density *float64

	ClassificationHistogram []ClassificationBucket
	ReturnNumberHistogram   []ReturnBucket

	ExtractedAt        time.Time
	ExtractionDuration time.Duration
}

// Options controls what the extractor tallies and how it streams.
type Options struct {
	ChunkSize                   int
	IncludeClassificationCounts bool
	IncludeReturnStatistics     bool
	CalculateDensity            bool
	// ProgressFunc, if set, is called after each chunk with the number
	// of points processed so far and the header's total point count.
	ProgressFunc func(processed, total uint64)
}

// DefaultOptions enables every tally with a 1,000,000-point chunk size.
func DefaultOptions() Options {
	return Options{
		ChunkSize:                   1_000_000,
		IncludeClassificationCounts: true,
		IncludeReturnStatistics:     true,
		CalculateDensity:            true,
	}
}

// Extract streams path and produces its LidarMetadata.
func Extract(path string, opts Options) (LidarMetadata, error) {
	start := time.Now()

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1_000_000
	}

	info, err := os.Stat(path)
	if err != nil {
		return LidarMetadata{}, fmt.Errorf("lasmeta: stat %q: %w", path, err)
	}

	sel := lasio.ColumnSelection{
		Classification:  opts.IncludeClassificationCounts,
		ReturnNumber:    opts.IncludeReturnStatistics,
		NumberOfReturns: opts.IncludeReturnStatistics,
	}

	cr, err := lasio.StreamChunks(path, chunkSize, sel)
	if err != nil {
		return LidarMetadata{}, err
	}
	defer cr.Close()

	header := cr.Header()

	var classCounts map[uint8]uint64
	if opts.IncludeClassificationCounts {
		classCounts = make(map[uint8]uint64)
	}
	var returnCounts map[int]uint64
	if opts.IncludeReturnStatistics {
		returnCounts = make(map[int]uint64)
	}

	var processed uint64
	for {
		chunk, ok, err := cr.Next()
		if err != nil {
			return LidarMetadata{}, err
		}
		if !ok {
			break
		}
		n := chunk.PointCount()
		processed += uint64(n)

		if classCounts != nil {
			for _, c := range chunk.Classification {
				classCounts[c]++
			}
		}
		if returnCounts != nil {
			for _, r := range chunk.ReturnNumber {
				if r >= 1 && r <= 15 {
					returnCounts[int(r)]++
				}
			}
		}
		if opts.ProgressFunc != nil {
			opts.ProgressFunc(processed, header.PointCount)
		}
	}

	meta := LidarMetadata{
		FilePath:      path,
		FileSizeBytes: info.Size(),
		Header:        header,
		PointCount:    processed,
		ExtractedAt:   start,
	}

	if opts.CalculateDensity {
		width := header.MaxX - header.MinX
		height := header.MaxY - header.MinY
		if area := width * height; area > 0 {
			d := float64(processed) / area
			meta.Density = &d
		}
	}

	if classCounts != nil {
		meta.ClassificationHistogram = buildClassificationHistogram(classCounts)
	}
	if returnCounts != nil {
		meta.ReturnNumberHistogram = buildReturnHistogram(returnCounts, processed)
	}

	meta.ExtractionDuration = time.Since(start)
	return meta, nil
}

func buildClassificationHistogram(counts map[uint8]uint64) []ClassificationBucket {
	codes := lo.Keys(counts)
	buckets := lo.Map(codes, func(code uint8, _ int) ClassificationBucket {
		return ClassificationBucket{Code: code, Name: ClassificationName(code), Count: counts[code]}
	})
	sortClassificationBuckets(buckets)
	return buckets
}

func buildReturnHistogram(counts map[int]uint64, total uint64) []ReturnBucket {
	returns := lo.Keys(counts)
	buckets := lo.Map(returns, func(ret int, _ int) ReturnBucket {
		count := counts[ret]
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(count) / float64(total)
		}
		return ReturnBucket{ReturnNumber: ret, Count: count, Percentage: pct}
	})
	sortReturnBuckets(buckets)
	return buckets
}

func sortClassificationBuckets(b []ClassificationBucket) {
	sort.Slice(b, func(i, j int) bool { return b[i].Code < b[j].Code })
}

func sortReturnBuckets(b []ReturnBucket) {
	sort.Slice(b, func(i, j int) bool { return b[i].ReturnNumber < b[j].ReturnNumber })
}
