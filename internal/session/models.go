package session

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrNotFound            = errors.New("session not found")
	ErrInvalidState        = errors.New("invalid session state transition")
	ErrActiveSessionExists = errors.New("user already has an active session")
	ErrManualMetrics       = errors.New("manual session requires caller-supplied metrics")
)

// Metrics are the final derived (or, for manual sessions, caller-supplied)
// figures. Nil fields are undefined: a sampleless session completes with nil
// distance and pace, never zero.
type Metrics struct {
	DistanceKm     *float64 `json:"distance_km"`
	DurationS      *int64   `json:"duration_seconds"`
	ElevationGainM *float64 `json:"elevation_gain_m"`
	ElevationLossM *float64 `json:"elevation_loss_m"`
	PaceSecPerKm   *float64 `json:"pace_seconds_per_km"`
	Calories       *float64 `json:"calories"`
	PowerPoints    *float64 `json:"power_points"`
	PointCount     int      `json:"point_count"`
}

// Session is one tracked or manually entered activity.
type Session struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Status           Status     `json:"status"`
	IsManual         bool       `json:"is_manual"`
	IsPublic         bool       `json:"is_public"`
	LoadWeightKg     float64    `json:"load_weight_kg"`
	PlannedDurationS *int64     `json:"planned_duration_seconds,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	PausedAt         *time.Time `json:"paused_at,omitempty"`
	PausedDurationS  int64      `json:"paused_duration_seconds"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Recovered        bool       `json:"recovered"`
	Metrics          Metrics    `json:"metrics"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateInput describes a new session. Manual sessions carry no samples and
// keep whatever metrics the caller supplies at completion.
type CreateInput struct {
	UserID           string  `json:"user_id"`
	LoadWeightKg     float64 `json:"load_weight_kg"`
	PlannedDurationS *int64  `json:"planned_duration_seconds,omitempty"`
	IsManual         bool    `json:"is_manual"`
	IsPublic         bool    `json:"is_public"`
}
