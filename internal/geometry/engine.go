package geometry

import (
	"errors"
	"sort"
	"time"

	"backend-rucktracker/internal/shared/geo"
)

// ErrInsufficientData signals that no metrics can be derived from the given
// samples. Callers must treat the metrics as undefined, not zero.
var ErrInsufficientData = errors.New("insufficient samples to derive metrics")

// MaxSegmentSpeedMps is the plausibility ceiling for a foot activity. Segments
// implying a faster instantaneous speed are GPS jumps and contribute nothing.
const MaxSegmentSpeedMps = 12.0

// TeleportM bounds the jump allowed between samples with unusable timestamps,
// where no speed can be computed.
const TeleportM = 120.0

// Sample is a single GPS/altitude reading. Coordinates and altitude are
// optional; a sample without a fix still counts toward PointCount but its
// segments contribute no distance.
type Sample struct {
	Lat        *float64  `json:"latitude"`
	Lng        *float64  `json:"longitude"`
	AltitudeM  *float64  `json:"altitude_m,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	AccuracyM  *float64  `json:"accuracy_m,omitempty"`
	SpeedMps   *float64  `json:"speed_mps,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
}

func (s Sample) hasFix() bool {
	return s.Lat != nil && s.Lng != nil
}

// Summary holds the metrics derived from a sample sequence.
type Summary struct {
	DistanceM      float64 `json:"distance_m"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	ElevationLossM float64 `json:"elevation_loss_m"`
	PointCount     int     `json:"point_count"`
}

// Derive computes distance and elevation metrics from a sample sequence.
// Samples are sorted by timestamp and duplicate timestamps collapsed before
// use, so out-of-order ingestion is safe. Zero samples is an error: an empty
// session has undefined metrics, not zero-valued ones.
func Derive(samples []Sample) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrInsufficientData
	}

	ordered := normalize(samples)
	sum := Summary{PointCount: len(ordered)}

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if !prev.hasFix() || !cur.hasFix() {
			continue
		}

		d := geo.HaversineM(*prev.Lat, *prev.Lng, *cur.Lat, *cur.Lng)
		if !segmentPlausible(prev, cur, d) {
			continue
		}

		sum.DistanceM += d
		if prev.AltitudeM != nil && cur.AltitudeM != nil {
			delta := *cur.AltitudeM - *prev.AltitudeM
			if delta > 0 {
				sum.ElevationGainM += delta
			} else {
				sum.ElevationLossM += -delta
			}
		}
	}
	return sum, nil
}

// segmentPlausible applies the outlier policy: reject segments faster than
// MaxSegmentSpeedMps, and segments jumping more than TeleportM when no speed
// can be computed (missing timestamps).
func segmentPlausible(prev, cur Sample, distanceM float64) bool {
	if prev.Timestamp.IsZero() || cur.Timestamp.IsZero() {
		return distanceM <= TeleportM
	}
	dt := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	return geo.SegmentSpeedMps(distanceM, dt) <= MaxSegmentSpeedMps
}

// normalize returns the samples sorted by timestamp with duplicate timestamps
// collapsed to the first occurrence. The input slice is not modified.
func normalize(samples []Sample) []Sample {
	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	out := ordered[:1]
	for _, s := range ordered[1:] {
		if s.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// LastTimestamp returns the most recent sample timestamp, or the zero time
// when no sample carries one.
func LastTimestamp(samples []Sample) time.Time {
	var last time.Time
	for _, s := range samples {
		if s.Timestamp.After(last) {
			last = s.Timestamp
		}
	}
	return last
}
