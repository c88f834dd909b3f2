package facts

import "time"

// UserFacts is a derived, rebuildable snapshot of a user's completed-session
// history. Never authoritative: recomputing from the session set must always
// reproduce it.
type UserFacts struct {
	UserID string `json:"user_id"`

	TotalSessions       int     `json:"total_sessions"`
	TotalDistanceKm     float64 `json:"total_distance_km"`
	TotalDurationS      int64   `json:"total_duration_seconds"`
	TotalElevationGainM float64 `json:"total_elevation_gain_m"`
	TotalCalories       float64 `json:"total_calories"`

	RecentSessions   int     `json:"recent_sessions"`
	RecentDistanceKm float64 `json:"recent_distance_km"`
	RecentDurationS  int64   `json:"recent_duration_seconds"`
	RecentAvgPaceS   float64 `json:"recent_avg_pace_seconds_per_km"`

	CurrentStreakDays int `json:"current_streak_days"`
	LongestStreakDays int `json:"longest_streak_days"`

	// PaceCV is the coefficient of variation of per-session pace, defined
	// only once the user has enough sessions with a valid pace.
	PaceCV *float64 `json:"pace_cv,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

// sessionFact is the per-session slice of history the aggregator consumes.
type sessionFact struct {
	CompletedAt    time.Time
	DistanceKm     *float64
	DurationS      *int64
	ElevationGainM *float64
	Calories       *float64
	PaceSecPerKm   *float64
}
