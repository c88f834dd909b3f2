package profile

import (
	"context"
	"errors"
	"testing"

	"backend-rucktracker/internal/geometry"

	"github.com/pashagolub/pgxmock/v3"
)

func TestGetProfile(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE\(unit_preference, 'metric'\)`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"unit_preference", "body_weight_kg", "gender"}).
			AddRow("standard", 82.5, "male"))

	svc := NewService(mock)
	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.UnitPreference != "standard" || p.BodyWeightKg != 82.5 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestGetProfileDefaultsWeight(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE\(unit_preference, 'metric'\)`).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"unit_preference", "body_weight_kg", "gender"}).
			AddRow("metric", 0.0, ""))

	svc := NewService(mock)
	p, err := svc.Get(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.BodyWeightKg != geometry.DefaultBodyWeightKg {
		t.Fatalf("expected default body weight, got %v", p.BodyWeightKg)
	}
}

func TestGetProfileError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE\(unit_preference, 'metric'\)`).
		WithArgs("user-3").
		WillReturnError(errors.New("no rows"))

	svc := NewService(mock)
	if _, err := svc.Get(context.Background(), "user-3"); err == nil {
		t.Fatalf("expected error")
	}
}
