package gpx

import (
	"strings"
	"testing"
	"time"

	"backend-rucktracker/internal/geometry"
)

func f(v float64) *float64 { return &v }

func TestMarshal(t *testing.T) {
	ts := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	samples := []geometry.Sample{
		{Lat: f(-6.2), Lng: f(106.8), AltitudeM: f(12), Timestamp: ts},
		{Lat: f(-6.201), Lng: f(106.801), Timestamp: ts.Add(time.Minute)},
		{Timestamp: ts.Add(2 * time.Minute)}, // no fix, skipped
	}

	out, err := Marshal("morning ruck", samples)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, `version="1.1"`) {
		t.Fatalf("missing gpx version: %s", doc)
	}
	if !strings.Contains(doc, `lat="-6.2"`) || !strings.Contains(doc, `lon="106.8"`) {
		t.Fatalf("missing track point: %s", doc)
	}
	if !strings.Contains(doc, "<ele>12</ele>") {
		t.Fatalf("missing elevation: %s", doc)
	}
	if !strings.Contains(doc, "2025-03-01T07:00:00Z") {
		t.Fatalf("missing timestamp: %s", doc)
	}
	if strings.Count(doc, "<trkpt") != 2 {
		t.Fatalf("expected fixless sample skipped: %s", doc)
	}
}

func TestMarshalEmpty(t *testing.T) {
	out, err := Marshal("empty", nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "<trkseg>") {
		t.Fatalf("expected empty segment present: %s", out)
	}
}
