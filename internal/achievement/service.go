package achievement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"backend-rucktracker/internal/db"
	"backend-rucktracker/internal/profile"
	"backend-rucktracker/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// ProfileSource supplies the unit preference gating which definitions apply.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
}

// EventSink receives fire-and-forget award events.
type EventSink interface {
	Broadcast(channel string, payload []byte)
}

// Service evaluates the catalog against a user's completed history and records
// awards. The unique constraint on (user_id, achievement_key) is the final
// idempotence guarantee; the pre-check only saves work.
type Service struct {
	db       db.Querier
	catalog  *Catalog
	profiles ProfileSource
	sink     EventSink
}

var nowFn = time.Now

func NewService(database db.Querier, catalog *Catalog, profiles ProfileSource, sink EventSink) *Service {
	return &Service{db: database, catalog: catalog, profiles: profiles, sink: sink}
}

// EvaluateForSession runs evaluation for the owner of the given session.
// Registered as a completion hook and exposed for explicit re-checks.
func (s *Service) EvaluateForSession(ctx context.Context, sessionID string) ([]Award, error) {
	var userID string
	err := s.db.QueryRow(ctx, `
		SELECT user_id FROM ruck_sessions WHERE id=$1 AND deleted_at IS NULL
	`, sessionID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s.EvaluateForUser(ctx, userID)
}

// EvaluateForUser checks every applicable, not-yet-earned definition against
// the user's full completed history and returns the newly earned awards.
func (s *Service) EvaluateForUser(ctx context.Context, userID string) ([]Award, error) {
	prof, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	defs, err := s.catalog.ForUnitPreference(ctx, prof.UnitPreference)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, nil
	}

	earned, err := s.earnedKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []Award
	for _, def := range defs {
		if earned[def.Key] {
			continue
		}
		triggeringID, ok := evaluate(def.Criteria, history)
		if !ok {
			continue
		}
		award, inserted, err := s.record(ctx, userID, def.Key, triggeringID)
		if err != nil {
			return awarded, err
		}
		if !inserted {
			// A concurrent evaluation got there first. Success either way.
			continue
		}
		awarded = append(awarded, award)
		s.announce(userID, def, award)
	}
	return awarded, nil
}

// record inserts the award. ON CONFLICT DO NOTHING makes a duplicate a no-op
// so racing evaluations never double-award.
func (s *Service) record(ctx context.Context, userID, key, triggeringID string) (Award, bool, error) {
	award := Award{
		UserID:         userID,
		AchievementKey: key,
		EarnedAt:       nowFn().UTC(),
	}
	if triggeringID != "" {
		award.TriggeringSessionID = &triggeringID
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_key, triggering_session_id, earned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_key) DO NOTHING
	`, uuid.New().String(), userID, key, award.TriggeringSessionID, award.EarnedAt)
	if err != nil {
		return Award{}, false, err
	}
	return award, tag.RowsAffected() > 0, nil
}

func (s *Service) announce(userID string, def Definition, award Award) {
	if s.sink == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"type":            "achievement_earned",
		"achievement_key": def.Key,
		"name":            def.Name,
		"earned_at":       award.EarnedAt,
	})
	if err != nil {
		return
	}
	s.sink.Broadcast("user:"+userID, payload)
}

func (s *Service) earnedKeys(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT achievement_key FROM user_achievements WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := map[string]bool{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		earned[key] = true
	}
	return earned, rows.Err()
}

func (s *Service) history(ctx context.Context, userID string) ([]historySession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, started_at, completed_at, distance_km, duration_s,
		       elevation_gain_m, load_weight_kg, power_points, pace_s_per_km
		FROM ruck_sessions
		WHERE user_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY completed_at`,
		userID, session.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []historySession
	for rows.Next() {
		var h historySession
		if err := rows.Scan(&h.ID, &h.StartedAt, &h.CompletedAt, &h.DistanceKm, &h.DurationS,
			&h.ElevationGainM, &h.LoadWeightKg, &h.PowerPoints, &h.PaceSecPerKm); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// Awards lists a user's earned achievements, newest first.
func (s *Service) Awards(ctx context.Context, userID string) ([]Award, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, achievement_key, triggering_session_id, earned_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY earned_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var awards []Award
	for rows.Next() {
		var a Award
		if err := rows.Scan(&a.UserID, &a.AchievementKey, &a.TriggeringSessionID, &a.EarnedAt); err != nil {
			return nil, err
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}

// UserStats summarizes a user's awards by category.
func (s *Service) UserStats(ctx context.Context, userID string) (Stats, error) {
	awards, err := s.Awards(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{ByCategory: map[string]int{}, TotalEarned: len(awards)}
	if len(awards) > 0 {
		stats.LatestKey = awards[0].AchievementKey
		stats.LatestAt = &awards[0].EarnedAt
	}

	defs, err := s.catalog.Active(ctx)
	if err != nil {
		// Category breakdown is best-effort; the counts above still stand.
		log.Printf("achievement stats: catalog load failed: %v", err)
		return stats, nil
	}
	byKey := map[string]Definition{}
	for _, d := range defs {
		byKey[d.Key] = d
	}
	for _, a := range awards {
		if d, ok := byKey[a.AchievementKey]; ok {
			stats.ByCategory[d.Category]++
		}
	}
	return stats, nil
}

// Recent lists the most recently earned awards across all users.
func (s *Service) Recent(ctx context.Context, limit int) ([]Award, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT user_id, achievement_key, triggering_session_id, earned_at
		FROM user_achievements
		ORDER BY earned_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var awards []Award
	for rows.Next() {
		var a Award
		if err := rows.Scan(&a.UserID, &a.AchievementKey, &a.TriggeringSessionID, &a.EarnedAt); err != nil {
			return nil, err
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}
