// Package timeline turns raw snapshot runs into bounded-size series for
// rendering. Downsampling uses largest-triangle-three-buckets over the
// (timestamp, cpu_percent) plane: the CPU signal drives which snapshots
// survive, and each survivor carries its memory reading along unchanged.
package timeline

import (
	"math"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/telemetry"
)

// Downsample reduces points to at most target snapshots, preserving the
// visual shape of the CPU series. The first and last snapshots are always
// kept. Input must already be sorted by timestamp; output order matches
// input order. When the input already fits, a copy of it is returned as is.
func Downsample(points []telemetry.Snapshot, target int) ([]telemetry.Snapshot, error) {
	if target < 2 {
		return nil, errors.NewInvalidValue("target", target, errors.ErrInvalidTarget)
	}

	n := len(points)
	if n <= target {
		out := make([]telemetry.Snapshot, n)
		copy(out, points)
		return out, nil
	}

	sampled := make([]telemetry.Snapshot, 0, target)
	sampled = append(sampled, points[0])

	// Interior points are split into target-2 equal buckets; one survivor
	// per bucket.
	bucketSize := float64(n-2) / float64(target-2)

	a := 0
	for i := 0; i < target-2; i++ {
		// Average of the following bucket is the third triangle vertex;
		// the final bucket anchors on the last point itself.
		var avgX, avgY float64
		if i == target-3 {
			avgX = points[n-1].Timestamp
			avgY = points[n-1].CPUPercent
		} else {
			avgStart := int(float64(i+1)*bucketSize) + 1
			avgEnd := int(float64(i+2)*bucketSize) + 1
			if avgEnd > n {
				avgEnd = n
			}
			for _, p := range points[avgStart:avgEnd] {
				avgX += p.Timestamp
				avgY += p.CPUPercent
			}
			c := float64(avgEnd - avgStart)
			avgX /= c
			avgY /= c
		}

		rangeStart := int(float64(i)*bucketSize) + 1
		rangeEnd := int(float64(i+1)*bucketSize) + 1

		ax := points[a].Timestamp
		ay := points[a].CPUPercent

		// Strict > keeps the earliest point on equal areas.
		maxArea := -1.0
		next := rangeStart
		for idx := rangeStart; idx < rangeEnd; idx++ {
			area := math.Abs((ax-avgX)*(points[idx].CPUPercent-ay)-
				(ax-points[idx].Timestamp)*(avgY-ay)) * 0.5
			if area > maxArea {
				maxArea = area
				next = idx
			}
		}

		sampled = append(sampled, points[next])
		a = next
	}

	sampled = append(sampled, points[n-1])
	return sampled, nil
}
