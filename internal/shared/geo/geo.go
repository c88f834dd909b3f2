package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// HaversineM returns the great-circle distance in meters.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineKm(lat1, lng1, lat2, lng2) * 1000
}

// SegmentSpeedMps returns the instantaneous speed in m/s implied by covering
// distanceM in dtSeconds. A non-positive time delta yields +Inf when any
// distance was covered, 0 otherwise.
func SegmentSpeedMps(distanceM, dtSeconds float64) float64 {
	if dtSeconds <= 0 {
		if distanceM > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return distanceM / dtSeconds
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
