package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/geomap"
)

func testResults() *annotations.Results {
	return &annotations.Results{
		Counts:  annotations.Counts{MatureHealthy: 1, Young: 1, Grass: 1},
		Summary: annotations.Summary{TotalMature: 1, TotalPalms: 2, TotalYoung: 1},
		Detections: []annotations.Detection{
			{BBox: []float64{0, 0, 100, 100}, Class: annotations.ClassMatureHealthy, Confidence: 0.91},
			{BBox: []float64{200, 200, 260, 260}, Class: annotations.ClassYoung, Confidence: 0.72},
			{BBox: []float64{400, 400, 500, 500}, Class: annotations.ClassGrass, Confidence: 0.88},
		},
	}
}

var testOrigin = geomap.Origin{Latitude: 3.1390, Longitude: 101.6869}

func TestNewReportExcludesGrass(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)
	if report.FileName != "grove.png" {
		t.Errorf("Expected filename grove.png, got %q", report.FileName)
	}
	if len(report.Trees) != 2 {
		t.Errorf("Expected 2 trees (grass excluded), got %d", len(report.Trees))
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected a generation timestamp")
	}
}

func TestWriteCSV(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	wantHeader := []string{"id", "type", "class", "confidence", "latitude", "longitude"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("Expected header column %d to be %q, got %q", i, col, records[0][i])
		}
	}
	if records[1][0] != "T001" || records[1][1] != "Mature" {
		t.Errorf("Unexpected first row: %v", records[1])
	}
	if records[1][3] != "0.9100" {
		t.Errorf("Expected confidence 0.9100, got %q", records[1][3])
	}
}

func TestWriteGeoJSON(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)

	var buf bytes.Buffer
	if err := report.WriteGeoJSON(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var fc geomap.FeatureCollection
	if err := json.Unmarshal(buf.Bytes(), &fc); err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Errorf("Unexpected collection: type=%q features=%d", fc.Type, len(fc.Features))
	}
}

func TestWriteYAML(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)

	var buf bytes.Buffer
	if err := report.WriteYAML(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	if decoded["filename"] != "grove.png" {
		t.Errorf("Expected filename grove.png, got %v", decoded["filename"])
	}
	if !strings.Contains(buf.String(), "trees:") {
		t.Error("Expected a trees section in the output")
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)

	var buf bytes.Buffer
	if err := report.WriteParquet(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rows, err := parquet.Read[treeRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Failed to read output back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "T001" || rows[0].Class != annotations.ClassMatureHealthy {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[1].Type != "Young" {
		t.Errorf("Expected second row type Young, got %q", rows[1].Type)
	}
}

func TestWriteParquetEmpty(t *testing.T) {
	report := &Report{FileName: "empty.png"}

	var buf bytes.Buffer
	if err := report.WriteParquet(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected a valid parquet file even with no rows")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)

	var buf bytes.Buffer
	err := report.Write(&buf, "xml")
	if err == nil {
		t.Fatal("Expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("Expected error to name the format, got %v", err)
	}
}

func TestWriteDispatch(t *testing.T) {
	report := NewReport("grove.png", testResults(), testOrigin)
	for _, format := range []string{FormatCSV, FormatGeoJSON, FormatYAML, FormatParquet} {
		var buf bytes.Buffer
		if err := report.Write(&buf, format); err != nil {
			t.Errorf("Write(%q) failed: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%q) produced no output", format)
		}
	}
}
