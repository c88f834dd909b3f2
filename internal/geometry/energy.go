package geometry

import "math"

// DefaultBodyWeightKg is assumed when the profile store has no weight on file.
const DefaultBodyWeightKg = 75.0

// PaceSecPerKm derives pace from distance and active duration. The second
// return value is false when pace is undefined (no distance or no duration).
func PaceSecPerKm(distanceM, durationS float64) (float64, bool) {
	if distanceM <= 0 || durationS <= 0 {
		return 0, false
	}
	return durationS / (distanceM / 1000), true
}

// CalorieParams are the inputs to the calorie estimate. DurationS of zero
// falls back to an assumed moderate pace of 5 km/h.
type CalorieParams struct {
	BodyWeightKg      float64
	LoadWeightKg      float64
	DistanceKm        float64
	ElevationGainM    float64
	ElevationLossM    float64
	DurationS         float64
	Gender            string  // "male", "female", or empty
	TerrainMultiplier float64 // 1.0 = pavement baseline
}

// Calories estimates energy expenditure for a loaded walk using a MET value
// adjusted for speed, grade, and carried load. Pure: the same inputs always
// produce the same estimate.
func Calories(p CalorieParams) float64 {
	if p.BodyWeightKg <= 0 || p.DistanceKm < 0 || p.ElevationGainM < 0 {
		return 0
	}
	if p.TerrainMultiplier <= 0 {
		p.TerrainMultiplier = 1.0
	}

	durationHours := p.DurationS / 3600
	speedKmh := 5.0
	if durationHours > 0 {
		speedKmh = p.DistanceKm / durationHours
	} else {
		durationHours = p.DistanceKm / speedKmh
	}

	grade := 0.0
	if p.DistanceKm > 0 {
		grade = (p.ElevationGainM - p.ElevationLossM) / (p.DistanceKm * 1000) * 100
	}

	met := ruckingMET(speedKmh*0.621371, grade, p.LoadWeightKg*2.20462)
	calories := met * (p.BodyWeightKg + p.LoadWeightKg) * durationHours
	calories *= p.TerrainMultiplier

	switch p.Gender {
	case "female":
		calories *= 0.85
	case "male":
	default:
		calories *= 0.925
	}
	return math.Max(0, calories)
}

// ruckingMET maps speed (mph), grade (%), and load (lbs) to a MET value,
// clamped to [2, 15].
func ruckingMET(speedMph, grade, loadLbs float64) float64 {
	var base float64
	switch {
	case speedMph < 2.0:
		base = 2.5
	case speedMph < 2.5:
		base = 3.0
	case speedMph < 3.0:
		base = 3.5
	case speedMph < 3.5:
		base = 4.0
	case speedMph < 4.0:
		base = 4.5
	case speedMph < 5.0:
		base = 5.0
	default:
		base = 6.0
	}

	var gradeAdj float64
	if grade > 0 {
		gradeAdj = grade * 0.6 * (speedMph / 4.0)
	} else if grade < 0 {
		abs := -grade
		if abs <= 10 {
			gradeAdj = -abs * 0.1
		} else {
			// Steep downhill costs braking energy.
			gradeAdj = (abs - 10) * 0.15
		}
	}

	loadAdj := math.Min(loadLbs*0.05, 5.0)

	return math.Max(2.0, math.Min(base+gradeAdj+loadAdj, 15.0))
}

// PowerPoints scores a session by carried load, distance, and climb.
// Tunable scoring constant, not a physical quantity.
func PowerPoints(loadWeightKg, distanceKm, elevationGainM float64) float64 {
	if loadWeightKg <= 0 || distanceKm <= 0 {
		return 0
	}
	return loadWeightKg * distanceKm * (1 + elevationGainM/100)
}
