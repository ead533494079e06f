package timeline

import (
	"github.com/aurasys/aura/config"
	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/store"
	"github.com/aurasys/aura/internal/telemetry"
)

// Request selects the snapshots to render. Nil bounds are open; Resolution
// zero means the default.
type Request struct {
	Start      *float64
	End        *float64
	Resolution int
}

// Query pulls the requested window out of the store and downsamples it to
// the requested resolution. The store prunes expired snapshots as part of
// the read, so the result never reaches past the retention window.
func Query(s store.Store, req Request) ([]telemetry.Snapshot, error) {
	resolution := req.Resolution
	if resolution == 0 {
		resolution = config.DefaultTimelineResolution
	}
	if resolution < config.MinTimelineResolution {
		return nil, errors.NewInvalidValue("resolution", resolution, errors.ErrInvalidResolution)
	}

	points, err := s.Between(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	return Downsample(points, resolution)
}
