package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"backend-rucktracker/internal/db"
	"backend-rucktracker/internal/geometry"
	"backend-rucktracker/internal/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileSource supplies body weight and gender for calorie estimates.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
}

// EventSink receives fire-and-forget activity events (live samples,
// completions). Failures are the sink's problem, never the ledger's.
type EventSink interface {
	Broadcast(channel string, payload []byte)
}

// CompletionHook runs asynchronously after a session reaches completed.
// The facts aggregator and the achievement engine register here.
type CompletionHook func(userID, sessionID string)

type Service struct {
	db          db.Querier
	profiles    ProfileSource
	sink        EventSink
	hooks       []CompletionHook
	deleteHooks []CompletionHook
	locks       sync.Map // session id -> *sync.Mutex
}

var nowFn = time.Now

func NewService(db db.Querier, profiles ProfileSource, sink EventSink) *Service {
	return &Service{db: db, profiles: profiles, sink: sink}
}

// OnComplete registers a hook invoked (in its own goroutine) whenever a
// session transitions to completed, including sweeper-forced completions.
func (s *Service) OnComplete(h CompletionHook) {
	s.hooks = append(s.hooks, h)
}

// OnDelete registers a hook invoked after a session is soft-deleted, so
// derived caches can drop stale aggregates.
func (s *Service) OnDelete(h CompletionHook) {
	s.deleteHooks = append(s.deleteHooks, h)
}

// lock serializes ingestion and completion per session. Cross-process safety
// comes from the CAS transitions, not from this mutex.
func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

const sessionColumns = `id, user_id, status, is_manual, is_public, load_weight_kg, planned_duration_s,
	       started_at, paused_at, paused_duration_s, completed_at, recovered,
	       distance_km, duration_s, elevation_gain_m, elevation_loss_m,
	       pace_s_per_km, calories, power_points, COALESCE(point_count, 0), created_at`

func scanSession(row pgx.Row) (Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Status, &sess.IsManual, &sess.IsPublic,
		&sess.LoadWeightKg, &sess.PlannedDurationS,
		&sess.StartedAt, &sess.PausedAt, &sess.PausedDurationS, &sess.CompletedAt, &sess.Recovered,
		&sess.Metrics.DistanceKm, &sess.Metrics.DurationS,
		&sess.Metrics.ElevationGainM, &sess.Metrics.ElevationLossM,
		&sess.Metrics.PaceSecPerKm, &sess.Metrics.Calories, &sess.Metrics.PowerPoints,
		&sess.Metrics.PointCount, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Session, error) {
	sess := Session{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		Status:           StatusPending,
		IsManual:         input.IsManual,
		IsPublic:         input.IsPublic,
		LoadWeightKg:     input.LoadWeightKg,
		PlannedDurationS: input.PlannedDurationS,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO ruck_sessions (id, user_id, status, is_manual, is_public, load_weight_kg, planned_duration_s)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, sess.ID, sess.UserID, sess.Status, sess.IsManual, sess.IsPublic, sess.LoadWeightKg, sess.PlannedDurationS)
	if err := row.Scan(&sess.CreatedAt); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Start transitions a pending session to in_progress. A user may hold at most
// one unterminated session; a second start is rejected, not auto-terminated.
func (s *Service) Start(ctx context.Context, id, userID string) (Session, error) {
	var active bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ruck_sessions
			WHERE user_id=$1 AND status = ANY($2) AND deleted_at IS NULL
		)
	`, userID, []string{string(StatusInProgress), string(StatusPaused)}).Scan(&active)
	if err != nil {
		return Session{}, err
	}
	if active {
		return Session{}, ErrActiveSessionExists
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE ruck_sessions SET status=$3, started_at=$2
		WHERE id=$1 AND user_id=$4 AND status=$5 AND deleted_at IS NULL
	`, id, nowFn().UTC(), StatusInProgress, userID, StatusPending)
	if err != nil {
		return Session{}, err
	}
	if tag.RowsAffected() == 0 {
		return Session{}, ErrInvalidState
	}
	return s.Get(ctx, id)
}

// Ingest appends samples and recomputes the running geometry outputs. Valid
// only while in_progress, and never for manual sessions.
func (s *Service) Ingest(ctx context.Context, id string, samples []geometry.Sample) (geometry.Summary, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return geometry.Summary{}, err
	}
	if sess.Status != StatusInProgress || sess.IsManual {
		return geometry.Summary{}, ErrInvalidState
	}
	if len(samples) == 0 {
		return geometry.Summary{PointCount: sess.Metrics.PointCount}, nil
	}

	for _, sample := range samples {
		_, err := s.db.Exec(ctx, `
			INSERT INTO location_samples (session_id, latitude, longitude, altitude_m, recorded_at, accuracy_m, speed_mps, heading_deg)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, id, sample.Lat, sample.Lng, sample.AltitudeM, sample.Timestamp, sample.AccuracyM, sample.SpeedMps, sample.HeadingDeg)
		if err != nil {
			return geometry.Summary{}, err
		}
	}

	all, err := s.Samples(ctx, id)
	if err != nil {
		return geometry.Summary{}, err
	}
	sum, err := geometry.Derive(all)
	if err != nil {
		return geometry.Summary{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE ruck_sessions
		SET distance_km=$2, elevation_gain_m=$3, elevation_loss_m=$4, point_count=$5
		WHERE id=$1 AND status=$6
	`, id, sum.DistanceM/1000, sum.ElevationGainM, sum.ElevationLossM, sum.PointCount, StatusInProgress)
	if err != nil {
		return geometry.Summary{}, err
	}

	if s.sink != nil && len(samples) > 0 {
		payload, _ := json.Marshal(map[string]any{
			"type":       "live_sample",
			"session_id": id,
			"sample":     samples[len(samples)-1],
			"summary":    sum,
		})
		s.sink.Broadcast("session:"+id, payload)
	}
	return sum, nil
}

func (s *Service) Pause(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ruck_sessions SET status=$3, paused_at=$2
		WHERE id=$1 AND status=$4 AND deleted_at IS NULL
	`, id, nowFn().UTC(), StatusPaused, StatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Resume folds the elapsed pause into paused_duration_s in the same statement
// that flips the status, so accumulated paused time is never dropped.
func (s *Service) Resume(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ruck_sessions
		SET status=$3,
		    paused_duration_s = paused_duration_s + EXTRACT(EPOCH FROM ($2::timestamptz - paused_at))::bigint,
		    paused_at=NULL
		WHERE id=$1 AND status=$4 AND deleted_at IS NULL
	`, id, nowFn().UTC(), StatusInProgress, StatusPaused)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Complete finalizes a session. Tracked sessions derive metrics from their
// samples unless the caller overrides; manual sessions must supply metrics
// and never have them overwritten by derivation.
func (s *Service) Complete(ctx context.Context, id string, override *Metrics) (Session, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Status != StatusInProgress && sess.Status != StatusPaused {
		return Session{}, ErrInvalidState
	}

	completedAt := nowFn().UTC()
	pausedTotal := foldPause(sess, completedAt)

	var m Metrics
	switch {
	case override != nil:
		m = *override
	case sess.IsManual:
		return Session{}, ErrManualMetrics
	default:
		samples, err := s.Samples(ctx, id)
		if err != nil {
			return Session{}, err
		}
		sum, derr := geometry.Derive(samples)
		if derr != nil {
			// Insufficient data: metrics stay undefined, not zero.
			log.Printf("session %s completed with undefined metrics: %v", id, derr)
		} else {
			m = s.deriveMetrics(ctx, sess, sum, completedAt, pausedTotal)
		}
	}

	if m.DurationS == nil && sess.StartedAt != nil {
		d := activeDuration(*sess.StartedAt, completedAt, pausedTotal)
		m.DurationS = &d
	}

	if err := s.finalize(ctx, sess, completedAt, pausedTotal, m, false); err != nil {
		return Session{}, err
	}
	return s.Get(ctx, id)
}

// Cancel terminates a session without metrics. Valid from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.cancel(ctx, id, false)
}

func (s *Service) cancel(ctx context.Context, id string, recovered bool) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ruck_sessions SET status=$2, recovered=$3
		WHERE id=$1 AND status = ANY($4) AND deleted_at IS NULL
	`, id, StatusCancelled, recovered,
		[]string{string(StatusPending), string(StatusInProgress), string(StatusPaused)})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Delete soft-deletes a session and removes the awards it triggered. Awards
// earned through other sessions are untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	var userID string
	err := s.db.QueryRow(ctx, `
		UPDATE ruck_sessions SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL
		RETURNING user_id
	`, id, nowFn().UTC()).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM user_achievements WHERE triggering_session_id=$1`, id); err != nil {
		return err
	}
	for _, h := range s.deleteHooks {
		go h(userID, id)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM ruck_sessions WHERE id=$1 AND deleted_at IS NULL
	`, id)
	return scanSession(row)
}

func (s *Service) List(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM ruck_sessions WHERE user_id=$1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// Samples returns the session's readings ordered by recording time.
func (s *Service) Samples(ctx context.Context, id string) ([]geometry.Sample, error) {
	rows, err := s.db.Query(ctx, `
		SELECT latitude, longitude, altitude_m, recorded_at, accuracy_m, speed_mps, heading_deg
		FROM location_samples WHERE session_id=$1
		ORDER BY recorded_at
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []geometry.Sample
	for rows.Next() {
		var sample geometry.Sample
		var ts *time.Time
		if err := rows.Scan(&sample.Lat, &sample.Lng, &sample.AltitudeM, &ts,
			&sample.AccuracyM, &sample.SpeedMps, &sample.HeadingDeg); err != nil {
			return nil, err
		}
		if ts != nil {
			sample.Timestamp = *ts
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// StaleSession pairs a non-terminal session with its last observed activity
// (latest sample, else start, else creation).
type StaleSession struct {
	Session
	LastActivity time.Time
}

// ListStale finds in_progress/paused sessions whose last activity predates
// the cutoff. Input for the recovery sweeper.
func (s *Service) ListStale(ctx context.Context, cutoff time.Time) ([]StaleSession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+sessionColumns+`,
		       COALESCE((SELECT MAX(recorded_at) FROM location_samples ls WHERE ls.session_id = ruck_sessions.id),
		                started_at, created_at) AS last_activity
		FROM ruck_sessions
		WHERE status = ANY($1) AND deleted_at IS NULL
		  AND COALESCE((SELECT MAX(recorded_at) FROM location_samples ls WHERE ls.session_id = ruck_sessions.id),
		               started_at, created_at) < $2
	`, []string{string(StatusInProgress), string(StatusPaused)}, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []StaleSession
	for rows.Next() {
		var st StaleSession
		err := rows.Scan(&st.ID, &st.UserID, &st.Status, &st.IsManual, &st.IsPublic,
			&st.LoadWeightKg, &st.PlannedDurationS,
			&st.StartedAt, &st.PausedAt, &st.PausedDurationS, &st.CompletedAt, &st.Recovered,
			&st.Metrics.DistanceKm, &st.Metrics.DurationS,
			&st.Metrics.ElevationGainM, &st.Metrics.ElevationLossM,
			&st.Metrics.PaceSecPerKm, &st.Metrics.Calories, &st.Metrics.PowerPoints,
			&st.Metrics.PointCount, &st.CreatedAt, &st.LastActivity)
		if err != nil {
			return nil, err
		}
		stale = append(stale, st)
	}
	return stale, nil
}

// ForceComplete drives an abandoned session to completed using whatever
// samples exist. completedAt should be the last sample's timestamp so sweep
// latency does not inflate duration.
func (s *Service) ForceComplete(ctx context.Context, sess Session, completedAt time.Time, samples []geometry.Sample) error {
	sum, err := geometry.Derive(samples)
	if err != nil {
		return err
	}
	pausedTotal := foldPause(sess, completedAt)
	m := s.deriveMetrics(ctx, sess, sum, completedAt, pausedTotal)
	return s.finalize(ctx, sess, completedAt, pausedTotal, m, true)
}

// ForceCancel terminates an abandoned session that has no samples to derive
// metrics from.
func (s *Service) ForceCancel(ctx context.Context, id string) error {
	return s.cancel(ctx, id, true)
}

// foldPause returns the total paused seconds as of completedAt, folding in an
// open pause if the session is sitting in paused.
func foldPause(sess Session, completedAt time.Time) int64 {
	total := sess.PausedDurationS
	if sess.Status == StatusPaused && sess.PausedAt != nil && sess.PausedAt.Before(completedAt) {
		total += int64(completedAt.Sub(*sess.PausedAt).Seconds())
	}
	return total
}

func activeDuration(startedAt, completedAt time.Time, pausedTotal int64) int64 {
	d := int64(completedAt.Sub(startedAt).Seconds()) - pausedTotal
	if d < 0 {
		d = 0
	}
	return d
}

// deriveMetrics turns a geometry summary into final metrics: pace from active
// duration, calories from the owner's profile, power points from the load.
func (s *Service) deriveMetrics(ctx context.Context, sess Session, sum geometry.Summary, completedAt time.Time, pausedTotal int64) Metrics {
	distanceKm := sum.DistanceM / 1000
	m := Metrics{
		DistanceKm:     &distanceKm,
		ElevationGainM: &sum.ElevationGainM,
		ElevationLossM: &sum.ElevationLossM,
		PointCount:     sum.PointCount,
	}

	if sess.StartedAt != nil {
		d := activeDuration(*sess.StartedAt, completedAt, pausedTotal)
		m.DurationS = &d
	}

	var durationS float64
	if m.DurationS != nil {
		durationS = float64(*m.DurationS)
	}
	if pace, ok := geometry.PaceSecPerKm(sum.DistanceM, durationS); ok {
		m.PaceSecPerKm = &pace
	}

	prof := profile.Profile{BodyWeightKg: geometry.DefaultBodyWeightKg}
	if s.profiles != nil {
		if p, err := s.profiles.Get(ctx, sess.UserID); err == nil {
			prof = p
		} else {
			log.Printf("profile lookup failed for %s, using defaults: %v", sess.UserID, err)
		}
	}
	cal := geometry.Calories(geometry.CalorieParams{
		BodyWeightKg:   prof.BodyWeightKg,
		LoadWeightKg:   sess.LoadWeightKg,
		DistanceKm:     distanceKm,
		ElevationGainM: sum.ElevationGainM,
		ElevationLossM: sum.ElevationLossM,
		DurationS:      durationS,
		Gender:         prof.Gender,
	})
	if cal > 0 {
		m.Calories = &cal
	}
	if pp := geometry.PowerPoints(sess.LoadWeightKg, distanceKm, sum.ElevationGainM); pp > 0 {
		m.PowerPoints = &pp
	}
	return m
}

// finalize is the single completed-transition writer, guarded by the status
// CAS so the sweeper and a late client cannot both complete a session.
func (s *Service) finalize(ctx context.Context, sess Session, completedAt time.Time, pausedTotal int64, m Metrics, recovered bool) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ruck_sessions
		SET status=$2, completed_at=$3, paused_at=NULL, paused_duration_s=$4, recovered=$5,
		    distance_km=$6, duration_s=$7, elevation_gain_m=$8, elevation_loss_m=$9,
		    pace_s_per_km=$10, calories=$11, power_points=$12, point_count=$13
		WHERE id=$1 AND status = ANY($14) AND deleted_at IS NULL
	`, sess.ID, StatusCompleted, completedAt, pausedTotal, recovered,
		m.DistanceKm, m.DurationS, m.ElevationGainM, m.ElevationLossM,
		m.PaceSecPerKm, m.Calories, m.PowerPoints, m.PointCount,
		[]string{string(StatusInProgress), string(StatusPaused)})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}

	if s.sink != nil {
		payload, _ := json.Marshal(map[string]any{
			"type":       "session_completed",
			"session_id": sess.ID,
			"user_id":    sess.UserID,
			"recovered":  recovered,
			"metrics":    m,
		})
		s.sink.Broadcast("user:"+sess.UserID, payload)
	}
	for _, h := range s.hooks {
		go h(sess.UserID, sess.ID)
	}
	return nil
}
