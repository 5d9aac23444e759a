package geomap

// GeoJSON output for tree locations, consumable by GIS tooling.

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Features builds a GeoJSON FeatureCollection with one point per tree.
func Features(trees []TreeLocation) *FeatureCollection {
	fc := &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(trees)),
	}
	for _, tree := range trees {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{tree.Longitude, tree.Latitude},
			},
			Properties: map[string]any{
				"id":         tree.ID,
				"type":       tree.Type,
				"class":      tree.Class,
				"confidence": tree.Confidence,
			},
		})
	}
	return fc
}
