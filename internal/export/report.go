// Package export writes detection reports in the download formats the web
// interface offers: CSV, GeoJSON, YAML and Parquet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
	"github.com/PlashSpeed-Aiman/palma-cli/internal/geomap"
)

// Formats supported by Write.
const (
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

// Report is a flattened detection report for one analyzed image.
type Report struct {
	FileName    string                `yaml:"filename"`
	GeneratedAt time.Time             `yaml:"generatedat"`
	Counts      annotations.Counts    `yaml:"counts"`
	Summary     annotations.Summary   `yaml:"summary"`
	Trees       []geomap.TreeLocation `yaml:"trees"`
}

// NewReport builds a Report from detection results, anchoring tree
// coordinates at origin.
func NewReport(fileName string, results *annotations.Results, origin geomap.Origin) *Report {
	return &Report{
		FileName:    fileName,
		GeneratedAt: time.Now().UTC(),
		Counts:      results.Counts,
		Summary:     results.Summary,
		Trees:       geomap.Locations(results.Detections, origin),
	}
}

// Write renders the report in the named format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatGeoJSON:
		return r.WriteGeoJSON(w)
	case FormatYAML:
		return r.WriteYAML(w)
	case FormatParquet:
		return r.WriteParquet(w)
	default:
		return fmt.Errorf("unsupported format %q (supported: csv, geojson, yaml, parquet)", format)
	}
}

// WriteCSV writes one row per tree.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "type", "class", "confidence", "latitude", "longitude"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, tree := range r.Trees {
		row := []string{
			tree.ID,
			tree.Type,
			tree.Class,
			strconv.FormatFloat(tree.Confidence, 'f', 4, 64),
			strconv.FormatFloat(tree.Latitude, 'f', 6, 64),
			strconv.FormatFloat(tree.Longitude, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGeoJSON writes the trees as a GeoJSON FeatureCollection.
func (r *Report) WriteGeoJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(geomap.Features(r.Trees)); err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	return nil
}

// WriteYAML writes the full report including counts and summary.
func (r *Report) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// treeRow is the parquet row schema for exported trees.
type treeRow struct {
	ID         string  `parquet:"id"`
	Type       string  `parquet:"type"`
	Class      string  `parquet:"class"`
	Confidence float64 `parquet:"confidence"`
	Latitude   float64 `parquet:"latitude"`
	Longitude  float64 `parquet:"longitude"`
}

// WriteParquet writes one parquet row per tree.
func (r *Report) WriteParquet(w io.Writer) error {
	rows := make([]treeRow, 0, len(r.Trees))
	for _, tree := range r.Trees {
		rows = append(rows, treeRow{
			ID:         tree.ID,
			Type:       tree.Type,
			Class:      tree.Class,
			Confidence: tree.Confidence,
			Latitude:   tree.Latitude,
			Longitude:  tree.Longitude,
		})
	}

	writer := parquet.NewGenericWriter[treeRow](w)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
