package profile

import (
	"context"

	"backend-rucktracker/internal/db"
	"backend-rucktracker/internal/geometry"
)

// Service reads user attributes owned by the identity/profile store. This
// core never writes them.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Get returns the user's profile. Missing weight falls back to the default
// body weight; missing unit preference defaults to metric.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(unit_preference, 'metric'), COALESCE(body_weight_kg, 0), COALESCE(gender, '')
		FROM users WHERE id=$1
	`, userID)

	p := Profile{UserID: userID}
	if err := row.Scan(&p.UnitPreference, &p.BodyWeightKg, &p.Gender); err != nil {
		return Profile{}, err
	}
	if p.BodyWeightKg <= 0 {
		p.BodyWeightKg = geometry.DefaultBodyWeightKg
	}
	return p, nil
}
