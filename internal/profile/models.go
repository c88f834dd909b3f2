package profile

// UnitPreference gates which achievements apply to a user.
const (
	UnitMetric   = "metric"
	UnitStandard = "standard"
)

// Profile is the slice of the identity store this core reads: display units
// for achievement partitioning, body weight and gender for calorie estimates.
type Profile struct {
	UserID         string  `json:"user_id"`
	UnitPreference string  `json:"unit_preference"`
	BodyWeightKg   float64 `json:"body_weight_kg"`
	Gender         string  `json:"gender,omitempty"`
}
