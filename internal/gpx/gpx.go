package gpx

import (
	"encoding/xml"
	"time"

	"backend-rucktracker/internal/geometry"
)

// GPX is a minimal GPX 1.1 document: one track, one segment.
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Xmlns   string   `xml:"xmlns,attr"`
	Track   Track    `xml:"trk"`
}

type Track struct {
	Name     string    `xml:"name"`
	Segments []Segment `xml:"trkseg"`
}

type Segment struct {
	Points []Point `xml:"trkpt"`
}

type Point struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele,omitempty"`
	Time string   `xml:"time,omitempty"`
}

// Marshal serializes a session's samples as a GPX 1.1 track. Samples without
// a fix are skipped; timestamps are RFC3339 UTC.
func Marshal(name string, samples []geometry.Sample) ([]byte, error) {
	seg := Segment{}
	for _, s := range samples {
		if s.Lat == nil || s.Lng == nil {
			continue
		}
		p := Point{Lat: *s.Lat, Lon: *s.Lng, Ele: s.AltitudeM}
		if !s.Timestamp.IsZero() {
			p.Time = s.Timestamp.UTC().Format(time.RFC3339)
		}
		seg.Points = append(seg.Points, p)
	}

	doc := GPX{
		Version: "1.1",
		Creator: "rucktracker",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Track:   Track{Name: name, Segments: []Segment{seg}},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
