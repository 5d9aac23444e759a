package geomap

import (
	"math"
	"strings"
	"testing"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
)

var testOrigin = Origin{Latitude: 3.1390, Longitude: 101.6869}

func TestLocationsSkipsGrass(t *testing.T) {
	detections := []annotations.Detection{
		{BBox: []float64{0, 0, 10, 10}, Class: annotations.ClassMatureHealthy, Confidence: 0.9},
		{BBox: []float64{50, 50, 60, 60}, Class: annotations.ClassGrass, Confidence: 0.8},
		{BBox: []float64{100, 100, 110, 110}, Class: annotations.ClassYoung, Confidence: 0.7},
	}

	trees := Locations(detections, testOrigin)
	if len(trees) != 2 {
		t.Fatalf("Expected 2 trees, got %d", len(trees))
	}
	if trees[0].ID != "T001" || trees[1].ID != "T002" {
		t.Errorf("Expected sequential identifiers T001, T002; got %q, %q", trees[0].ID, trees[1].ID)
	}
	if trees[0].Type != "Mature" {
		t.Errorf("Expected type Mature, got %q", trees[0].Type)
	}
	if trees[1].Type != "Young" {
		t.Errorf("Expected type Young, got %q", trees[1].Type)
	}
}

func TestLocationsCoordinates(t *testing.T) {
	// Center of [100, 200, 300, 400] is (200, 300): longitude grows east of
	// the origin, latitude shrinks as pixels go down.
	trees := Locations([]annotations.Detection{
		{BBox: []float64{100, 200, 300, 400}, Class: annotations.ClassMatureHealthy},
	}, testOrigin)
	if len(trees) != 1 {
		t.Fatalf("Expected 1 tree, got %d", len(trees))
	}

	wantLat := testOrigin.Latitude - 300*degreesPerPixel
	wantLng := testOrigin.Longitude + 200*degreesPerPixel
	if math.Abs(trees[0].Latitude-wantLat) > 1e-12 {
		t.Errorf("Expected latitude %v, got %v", wantLat, trees[0].Latitude)
	}
	if math.Abs(trees[0].Longitude-wantLng) > 1e-12 {
		t.Errorf("Expected longitude %v, got %v", wantLng, trees[0].Longitude)
	}
	if trees[0].Latitude >= testOrigin.Latitude {
		t.Error("Expected tree south of the origin")
	}
}

func TestLocationsShortBBox(t *testing.T) {
	tests := []struct {
		name string
		bbox []float64
	}{
		{name: "point box", bbox: []float64{10, 20}},
		{name: "empty box", bbox: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trees := Locations([]annotations.Detection{
				{BBox: tt.bbox, Class: annotations.ClassYoung},
			}, testOrigin)
			if len(trees) != 1 {
				t.Fatalf("Expected 1 tree, got %d", len(trees))
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		class    string
		expected string
	}{
		{annotations.ClassMatureHealthy, "Mature"},
		{annotations.ClassMatureDead, "Mature"},
		{annotations.ClassMatureYellow, "Mature"},
		{annotations.ClassYoung, "Young"},
		{"shrub", "shrub"},
	}
	for _, tt := range tests {
		if got := typeOf(tt.class); got != tt.expected {
			t.Errorf("typeOf(%q): expected %q, got %q", tt.class, tt.expected, got)
		}
	}
}

func TestFeatures(t *testing.T) {
	trees := []TreeLocation{
		{ID: "T001", Latitude: 3.139, Longitude: 101.687, Type: "Mature", Class: annotations.ClassMatureHealthy, Confidence: 0.9},
	}

	fc := Features(trees)
	if fc.Type != "FeatureCollection" {
		t.Errorf("Expected FeatureCollection, got %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(fc.Features))
	}

	f := fc.Features[0]
	if f.Geometry.Type != "Point" {
		t.Errorf("Expected Point geometry, got %q", f.Geometry.Type)
	}
	// GeoJSON positions are [longitude, latitude].
	if f.Geometry.Coordinates[0] != 101.687 || f.Geometry.Coordinates[1] != 3.139 {
		t.Errorf("Unexpected coordinates: %v", f.Geometry.Coordinates)
	}
	if f.Properties["id"] != "T001" || f.Properties["type"] != "Mature" {
		t.Errorf("Unexpected properties: %v", f.Properties)
	}
}

func TestRenderHTML(t *testing.T) {
	var buf strings.Builder
	err := RenderHTML(&buf, &Page{
		Title:     "Grove Survey",
		Token:     "pk.test",
		Latitude:  3.1390,
		Longitude: 101.6869,
		Zoom:      14,
		Trees: []TreeLocation{
			{ID: "T001", Latitude: 3.139, Longitude: 101.687, Type: "Mature", Class: annotations.ClassMatureHealthy, Confidence: 0.9},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"Grove Survey", "pk.test", "mapbox-gl", "T001", "tree-marker"} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected rendered page to contain %q", want)
		}
	}
}
