package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-rucktracker/internal/geometry"
	"backend-rucktracker/internal/profile"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var errSession = errors.New("session error")

type fakeProfiles struct {
	prof profile.Profile
	err  error
}

func (f fakeProfiles) Get(context.Context, string) (profile.Profile, error) {
	return f.prof, f.err
}

type fakeSink struct {
	channels []string
	payloads [][]byte
}

func (f *fakeSink) Broadcast(channel string, payload []byte) {
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, payload)
}

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

var sessionCols = []string{
	"id", "user_id", "status", "is_manual", "is_public", "load_weight_kg", "planned_duration_s",
	"started_at", "paused_at", "paused_duration_s", "completed_at", "recovered",
	"distance_km", "duration_s", "elevation_gain_m", "elevation_loss_m",
	"pace_s_per_km", "calories", "power_points", "point_count", "created_at",
}

func sessionRow(sess Session) *pgxmock.Rows {
	return pgxmock.NewRows(sessionCols).AddRow(
		sess.ID, sess.UserID, sess.Status, sess.IsManual, sess.IsPublic,
		sess.LoadWeightKg, sess.PlannedDurationS,
		sess.StartedAt, sess.PausedAt, sess.PausedDurationS, sess.CompletedAt, sess.Recovered,
		sess.Metrics.DistanceKm, sess.Metrics.DurationS,
		sess.Metrics.ElevationGainM, sess.Metrics.ElevationLossM,
		sess.Metrics.PaceSecPerKm, sess.Metrics.Calories, sess.Metrics.PowerPoints,
		sess.Metrics.PointCount, sess.CreatedAt,
	)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func withNow(t *testing.T, fixed time.Time) {
	t.Helper()
	old := nowFn
	nowFn = func() time.Time { return fixed }
	t.Cleanup(func() { nowFn = old })
}

func TestCreateAndStart(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`INSERT INTO ruck_sessions`).
		WithArgs(pgxmock.AnyArg(), "user-1", StatusPending, false, true, 12.5, (*int64)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	sess, err := svc.Create(context.Background(), CreateInput{UserID: "user-1", LoadWeightKg: 12.5, IsPublic: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.Status != StatusPending {
		t.Fatalf("expected pending, got %s", sess.Status)
	}

	started := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	withNow(t, started)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE ruck_sessions SET status=\$3, started_at=\$2`).
		WithArgs(sess.ID, started, StatusInProgress, "user-1", StatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs(sess.ID).
		WillReturnRows(sessionRow(Session{ID: sess.ID, UserID: "user-1", Status: StatusInProgress,
			LoadWeightKg: 12.5, StartedAt: &started, CreatedAt: started}))

	out, err := svc.Start(context.Background(), sess.ID, "user-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", out.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStartRejectsSecondActiveSession(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Start(context.Background(), "sess-1", "user-1")
	if !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
}

func TestStartInvalidFromNonPending(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE ruck_sessions SET status=\$3, started_at=\$2`).
		WithArgs("sess-1", pgxmock.AnyArg(), StatusInProgress, "user-1", StatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := svc.Start(context.Background(), "sess-1", "user-1")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestIngestAppendsAndRecomputes(t *testing.T) {
	mock := newMock(t)
	sink := &fakeSink{}
	svc := NewService(mock, nil, sink)

	started := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress,
			StartedAt: &started, CreatedAt: started}))

	t1 := started.Add(time.Minute)
	mock.ExpectExec(`INSERT INTO location_samples`).
		WithArgs("sess-1", fp(0.001), fp(0.0), (*float64)(nil), t1,
			(*float64)(nil), (*float64)(nil), (*float64)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectQuery(`SELECT latitude, longitude, altitude_m`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "altitude_m", "recorded_at", "accuracy_m", "speed_mps", "heading_deg"}).
			AddRow(fp(0.0), fp(0.0), (*float64)(nil), &started, (*float64)(nil), (*float64)(nil), (*float64)(nil)).
			AddRow(fp(0.001), fp(0.0), (*float64)(nil), &t1, (*float64)(nil), (*float64)(nil), (*float64)(nil)))

	mock.ExpectExec(`UPDATE ruck_sessions`).
		WithArgs("sess-1", pgxmock.AnyArg(), 0.0, 0.0, 2, StatusInProgress).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	sum, err := svc.Ingest(context.Background(), "sess-1", []geometry.Sample{
		{Lat: fp(0.001), Lng: fp(0.0), Timestamp: t1},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if sum.PointCount != 2 {
		t.Fatalf("expected 2 points, got %d", sum.PointCount)
	}
	if sum.DistanceM < 105 || sum.DistanceM > 117 {
		t.Fatalf("expected ~111m, got %v", sum.DistanceM)
	}
	if len(sink.channels) != 1 || sink.channels[0] != "session:sess-1" {
		t.Fatalf("expected live broadcast, got %v", sink.channels)
	}
}

func TestIngestRejectsWrongState(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusCompleted}))

	_, err := svc.Ingest(context.Background(), "sess-1", []geometry.Sample{{Timestamp: time.Now()}})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestIngestRejectsManualSession(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress, IsManual: true}))

	_, err := svc.Ingest(context.Background(), "sess-1", []geometry.Sample{{Timestamp: time.Now()}})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestPauseResumeCAS(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectExec(`UPDATE ruck_sessions SET status=\$3, paused_at=\$2`).
		WithArgs("sess-1", pgxmock.AnyArg(), StatusPaused, StatusInProgress).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := svc.Pause(context.Background(), "sess-1"); err != nil {
		t.Fatalf("pause: %v", err)
	}

	// Pausing an already paused session loses the CAS.
	mock.ExpectExec(`UPDATE ruck_sessions SET status=\$3, paused_at=\$2`).
		WithArgs("sess-1", pgxmock.AnyArg(), StatusPaused, StatusInProgress).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if err := svc.Pause(context.Background(), "sess-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	mock.ExpectExec(`UPDATE ruck_sessions\s+SET status=\$3,\s+paused_duration_s = paused_duration_s \+ EXTRACT`).
		WithArgs("sess-1", pgxmock.AnyArg(), StatusInProgress, StatusPaused).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := svc.Resume(context.Background(), "sess-1"); err != nil {
		t.Fatalf("resume: %v", err)
	}
}

func TestPauseAccounting(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	pausedAt := t0.Add(10 * time.Minute)
	completedAt := t0.Add(30 * time.Minute)

	sess := Session{
		Status:          StatusPaused,
		StartedAt:       &t0,
		PausedAt:        &pausedAt,
		PausedDurationS: 300, // 5 minutes from an earlier pause cycle
	}

	pausedTotal := foldPause(sess, completedAt)
	if pausedTotal != 300+1200 {
		t.Fatalf("expected 1500s paused, got %d", pausedTotal)
	}
	if d := activeDuration(t0, completedAt, pausedTotal); d != 300 {
		t.Fatalf("expected 300s active duration, got %d", d)
	}

	// Resumed sessions keep only the accumulated total.
	sess.Status = StatusInProgress
	sess.PausedAt = nil
	if got := foldPause(sess, completedAt); got != 300 {
		t.Fatalf("expected accumulated 300s, got %d", got)
	}
}

func TestCompleteDerivesMetrics(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, fakeProfiles{prof: profile.Profile{BodyWeightKg: 80, Gender: "male"}}, nil)

	t0 := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	completedAt := t0.Add(time.Hour)
	withNow(t, completedAt)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress,
			LoadWeightKg: 10, StartedAt: &t0, CreatedAt: t0}))

	t1 := t0.Add(time.Minute)
	mock.ExpectQuery(`SELECT latitude, longitude, altitude_m`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "altitude_m", "recorded_at", "accuracy_m", "speed_mps", "heading_deg"}).
			AddRow(fp(0.0), fp(0.0), fp(100.0), &t0, (*float64)(nil), (*float64)(nil), (*float64)(nil)).
			AddRow(fp(0.001), fp(0.0), fp(105.0), &t1, (*float64)(nil), (*float64)(nil), (*float64)(nil)))

	mock.ExpectExec(`UPDATE ruck_sessions`).
		WithArgs("sess-1", StatusCompleted, completedAt, int64(0), false,
			pgxmock.AnyArg(), ip(3600), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	final := Session{ID: "sess-1", UserID: "user-1", Status: StatusCompleted,
		StartedAt: &t0, CompletedAt: &completedAt, CreatedAt: t0}
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(final))

	out, err := svc.Complete(context.Background(), "sess-1", nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", out.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteZeroSamplesLeavesMetricsUndefined(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	t0 := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	completedAt := t0.Add(20 * time.Minute)
	withNow(t, completedAt)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress,
			StartedAt: &t0, CreatedAt: t0}))

	mock.ExpectQuery(`SELECT latitude, longitude, altitude_m`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "altitude_m", "recorded_at", "accuracy_m", "speed_mps", "heading_deg"}))

	// Distance and pace stay NULL; only duration is known.
	mock.ExpectExec(`UPDATE ruck_sessions`).
		WithArgs("sess-1", StatusCompleted, completedAt, int64(0), false,
			(*float64)(nil), ip(1200), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*float64)(nil), 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dur := int64(1200)
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusCompleted,
			StartedAt: &t0, CompletedAt: &completedAt, CreatedAt: t0,
			Metrics: Metrics{DurationS: &dur}}))

	out, err := svc.Complete(context.Background(), "sess-1", nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Metrics.DistanceKm != nil {
		t.Fatalf("expected undefined distance, got %v", *out.Metrics.DistanceKm)
	}
	if out.Metrics.PaceSecPerKm != nil {
		t.Fatalf("expected undefined pace")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteManualRequiresMetrics(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	t0 := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress,
			IsManual: true, StartedAt: &t0, CreatedAt: t0}))

	_, err := svc.Complete(context.Background(), "sess-1", nil)
	if !errors.Is(err, ErrManualMetrics) {
		t.Fatalf("expected ErrManualMetrics, got %v", err)
	}
}

func TestCompleteManualKeepsSuppliedMetrics(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	t0 := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	completedAt := t0.Add(time.Hour)
	withNow(t, completedAt)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress,
			IsManual: true, StartedAt: &t0, CreatedAt: t0}))

	dist := 8.0
	dur := int64(3200)
	// The supplied figures are written untouched; no sample query happens.
	mock.ExpectExec(`UPDATE ruck_sessions`).
		WithArgs("sess-1", StatusCompleted, completedAt, int64(0), false,
			&dist, &dur, (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*float64)(nil), 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusCompleted,
			IsManual: true, StartedAt: &t0, CompletedAt: &completedAt, CreatedAt: t0,
			Metrics: Metrics{DistanceKm: &dist, DurationS: &dur}}))

	out, err := svc.Complete(context.Background(), "sess-1", &Metrics{DistanceKm: &dist, DurationS: &dur})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Metrics.DistanceKm == nil || *out.Metrics.DistanceKm != 8.0 {
		t.Fatalf("manual metrics overwritten: %+v", out.Metrics)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteInvalidState(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusCompleted}))

	_, err := svc.Complete(context.Background(), "sess-1", nil)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCompleteRunsHooks(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	done := make(chan string, 1)
	svc.OnComplete(func(userID, sessionID string) {
		done <- userID + "/" + sessionID
	})

	t0 := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	completedAt := t0.Add(time.Hour)
	withNow(t, completedAt)

	dist := 5.0
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusInProgress,
			StartedAt: &t0, CreatedAt: t0}))
	mock.ExpectExec(`UPDATE ruck_sessions`).
		WithArgs("sess-1", StatusCompleted, completedAt, int64(0), false,
			&dist, pgxmock.AnyArg(), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*float64)(nil), 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(Session{ID: "sess-1", UserID: "user-1", Status: StatusCompleted,
			StartedAt: &t0, CompletedAt: &completedAt, CreatedAt: t0}))

	if _, err := svc.Complete(context.Background(), "sess-1", &Metrics{DistanceKm: &dist}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	select {
	case got := <-done:
		if got != "user-1/sess-1" {
			t.Fatalf("unexpected hook payload: %s", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("completion hook not invoked")
	}
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectExec(`UPDATE ruck_sessions SET status=\$2, recovered=\$3`).
		WithArgs("sess-1", StatusCancelled, false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := svc.Cancel(context.Background(), "sess-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	mock.ExpectExec(`UPDATE ruck_sessions SET status=\$2, recovered=\$3`).
		WithArgs("sess-1", StatusCancelled, false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if err := svc.Cancel(context.Background(), "sess-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestDeleteCascadesTriggeredAwards(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`UPDATE ruck_sessions SET deleted_at=\$2`).
		WithArgs("sess-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("user-1"))
	mock.ExpectExec(`DELETE FROM user_achievements WHERE triggering_session_id=\$1`).
		WithArgs("sess-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	if err := svc.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`UPDATE ruck_sessions SET deleted_at=\$2`).
		WithArgs("sess-9", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	if err := svc.Delete(context.Background(), "sess-9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT id, user_id, status`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(sessionCols))

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateError(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`INSERT INTO ruck_sessions`).
		WithArgs(pgxmock.AnyArg(), "user-1", StatusPending, false, false, 0.0, (*int64)(nil)).
		WillReturnError(errSession)

	if _, err := svc.Create(context.Background(), CreateInput{UserID: "user-1"}); err == nil {
		t.Fatalf("expected error")
	}
}
