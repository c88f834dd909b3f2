package achievement

import "time"

// Criteria is the tagged variant stored in the catalog's criteria column.
// Type selects the evaluator; the remaining fields are its parameters and
// only the ones the evaluator reads need to be set.
type Criteria struct {
	Type   string  `json:"type"`
	Target float64 `json:"target,omitempty"`

	// time_of_day
	BeforeHour *int `json:"before_hour,omitempty"`
	AfterHour  *int `json:"after_hour,omitempty"`

	// windowed_count
	WindowDays    int     `json:"window_days,omitempty"`
	MinDistanceKm float64 `json:"min_distance_km,omitempty"`
	MinDurationS  int64   `json:"min_duration_s,omitempty"`

	// pace_consistency
	MaxCV       float64 `json:"max_cv,omitempty"`
	MinSessions int     `json:"min_sessions,omitempty"`
}

// Definition is one row of the achievement catalog.
type Definition struct {
	Key         string   `json:"achievement_key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tier        string   `json:"tier"`
	Criteria    Criteria `json:"criteria"`
	// UnitPreference gates the definition to users of one display system.
	// Empty applies to everyone.
	UnitPreference string `json:"unit_preference,omitempty"`
	IsActive       bool   `json:"is_active"`
}

// AppliesTo reports whether the definition is eligible for a user with the
// given unit preference.
func (d Definition) AppliesTo(unitPreference string) bool {
	return d.UnitPreference == "" || d.UnitPreference == unitPreference
}

// Award is a persistent, unique (user, achievement) satisfaction record.
type Award struct {
	UserID              string    `json:"user_id"`
	AchievementKey      string    `json:"achievement_key"`
	TriggeringSessionID *string   `json:"triggering_session_id,omitempty"`
	EarnedAt            time.Time `json:"earned_at"`
}

// Stats summarizes a user's awards for the profile screen.
type Stats struct {
	TotalEarned int            `json:"total_earned"`
	ByCategory  map[string]int `json:"by_category"`
	LatestKey   string         `json:"latest_key,omitempty"`
	LatestAt    *time.Time     `json:"latest_at,omitempty"`
}
