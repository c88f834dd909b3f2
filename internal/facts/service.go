package facts

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"backend-rucktracker/internal/db"
	"backend-rucktracker/internal/session"
)

const (
	recentWindowDays = 30
	minPaceSessions  = 10
)

var nowFn = time.Now

// Service aggregates completed-session history into per-user facts. The redis
// cache is an optimization only; a rebuild from the session table is always
// possible and always wins.
type Service struct {
	db    db.Querier
	redis *redis.Client
	ttl   time.Duration
}

func NewService(database db.Querier, redisClient *redis.Client, ttl time.Duration) *Service {
	return &Service{db: database, redis: redisClient, ttl: ttl}
}

func cacheKey(userID string) string { return "facts:" + userID }

// Get returns the user's facts, serving from cache unless forceRefresh is set
// or the cache misses.
func (s *Service) Get(ctx context.Context, userID string, forceRefresh bool) (UserFacts, error) {
	if !forceRefresh && s.redis != nil {
		raw, err := s.redis.Get(ctx, cacheKey(userID)).Result()
		if err == nil {
			var cached UserFacts
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("facts cache read for %s failed: %v", userID, err)
		}
	}

	facts, err := s.Rebuild(ctx, userID)
	if err != nil {
		return UserFacts{}, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(facts); err == nil {
			if err := s.redis.Set(ctx, cacheKey(userID), raw, s.ttl).Err(); err != nil {
				log.Printf("facts cache write for %s failed: %v", userID, err)
			}
		}
	}
	return facts, nil
}

// Invalidate drops the cached snapshot so the next read recomputes it.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey(userID)).Err(); err != nil {
		log.Printf("facts cache invalidate for %s failed: %v", userID, err)
	}
}

// Rebuild recomputes facts from the completed, non-deleted session history.
func (s *Service) Rebuild(ctx context.Context, userID string) (UserFacts, error) {
	rows, err := s.db.Query(ctx, `
		SELECT completed_at, distance_km, elevation_gain_m, duration_s, calories, pace_s_per_km
		FROM ruck_sessions
		WHERE user_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY completed_at`,
		userID, session.StatusCompleted)
	if err != nil {
		return UserFacts{}, err
	}
	defer rows.Close()

	var history []sessionFact
	for rows.Next() {
		var f sessionFact
		if err := rows.Scan(&f.CompletedAt, &f.DistanceKm, &f.ElevationGainM, &f.DurationS, &f.Calories, &f.PaceSecPerKm); err != nil {
			return UserFacts{}, err
		}
		history = append(history, f)
	}
	if err := rows.Err(); err != nil {
		return UserFacts{}, err
	}

	return compute(userID, history, nowFn().UTC()), nil
}

// compute folds the history into a snapshot. Pure so the aggregation rules are
// testable without a database.
func compute(userID string, history []sessionFact, now time.Time) UserFacts {
	facts := UserFacts{UserID: userID, ComputedAt: now}

	recentCutoff := now.AddDate(0, 0, -recentWindowDays)
	var days []time.Time
	var paces []float64
	var recentDistKm float64

	for _, f := range history {
		facts.TotalSessions++
		days = append(days, f.CompletedAt)
		if f.DistanceKm != nil {
			facts.TotalDistanceKm += *f.DistanceKm
		}
		if f.DurationS != nil {
			facts.TotalDurationS += *f.DurationS
		}
		if f.ElevationGainM != nil {
			facts.TotalElevationGainM += *f.ElevationGainM
		}
		if f.Calories != nil {
			facts.TotalCalories += *f.Calories
		}
		if f.PaceSecPerKm != nil && *f.PaceSecPerKm > 0 {
			paces = append(paces, *f.PaceSecPerKm)
		}

		if !f.CompletedAt.Before(recentCutoff) {
			facts.RecentSessions++
			if f.DistanceKm != nil {
				recentDistKm += *f.DistanceKm
			}
			if f.DurationS != nil {
				facts.RecentDurationS += *f.DurationS
			}
		}
	}

	facts.RecentDistanceKm = recentDistKm
	if recentDistKm > 0 {
		facts.RecentAvgPaceS = float64(facts.RecentDurationS) / recentDistKm
	}

	facts.CurrentStreakDays, facts.LongestStreakDays = Streaks(days, now)

	if cv, ok := paceCV(paces); ok {
		facts.PaceCV = &cv
	}
	return facts
}

// paceCV is the coefficient of variation of per-session pace, undefined below
// the minimum sample count so sparse histories do not produce a noise figure.
func paceCV(paces []float64) (float64, bool) {
	if len(paces) < minPaceSessions {
		return 0, false
	}
	var sum float64
	for _, p := range paces {
		sum += p
	}
	mean := sum / float64(len(paces))
	if mean == 0 {
		return 0, false
	}
	var sq float64
	for _, p := range paces {
		d := p - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(paces))) / mean, true
}
