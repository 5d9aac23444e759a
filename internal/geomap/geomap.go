// Package geomap turns detection results into geographic tree locations and
// renders them as an interactive map page or GeoJSON.
package geomap

import (
	"fmt"
	"strings"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/annotations"
)

// degreesPerPixel approximates the ground footprint of one image pixel at
// typical drone survey altitude (~10cm per pixel near the equator).
const degreesPerPixel = 0.0000009

// Origin anchors pixel-space detections to a geographic coordinate: the
// top-left corner of the analyzed image.
type Origin struct {
	Latitude  float64
	Longitude float64
}

// TreeLocation is one detected tree placed on the map.
type TreeLocation struct {
	ID         string  `json:"id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Type       string  `json:"type"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Locations derives one TreeLocation per palm detection, anchored at origin.
// Grass detections are not trees and are skipped.
func Locations(detections []annotations.Detection, origin Origin) []TreeLocation {
	trees := make([]TreeLocation, 0, len(detections))
	for _, det := range detections {
		if det.Class == annotations.ClassGrass {
			continue
		}
		cx, cy := bboxCenter(det.BBox)
		trees = append(trees, TreeLocation{
			ID:         fmt.Sprintf("T%03d", len(trees)+1),
			Latitude:   origin.Latitude - cy*degreesPerPixel,
			Longitude:  origin.Longitude + cx*degreesPerPixel,
			Type:       typeOf(det.Class),
			Class:      det.Class,
			Confidence: det.Confidence,
		})
	}
	return trees
}

// typeOf collapses the detection classes into the two map marker types.
func typeOf(class string) string {
	if class == annotations.ClassYoung {
		return "Young"
	}
	if strings.HasPrefix(class, "Mature") {
		return "Mature"
	}
	return class
}

func bboxCenter(bbox []float64) (x, y float64) {
	// Boxes arrive as [x1, y1, x2, y2]; tolerate short slices from older
	// backend versions by treating them as a point.
	switch {
	case len(bbox) >= 4:
		return (bbox[0] + bbox[2]) / 2, (bbox[1] + bbox[3]) / 2
	case len(bbox) >= 2:
		return bbox[0], bbox[1]
	default:
		return 0, 0
	}
}
