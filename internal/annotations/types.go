package annotations

import (
	"encoding/json"
	"time"
)

// Class labels emitted by the detection backend.
const (
	ClassMatureDead    = "Mature(Dead)"
	ClassMatureHealthy = "Mature(Healthy)"
	ClassMatureYellow  = "Mature(Yellow)"
	ClassGrass         = "grass"
	ClassYoung         = "young"
)

// AnnotatedImage is the base64-encoded annotated output image.
type AnnotatedImage struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

// Detection is a single detected object with its bounding box.
type Detection struct {
	BBox       []float64 `json:"bbox"`
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
}

// Counts holds per-class detection counts.
//
// The backend spells some class keys inconsistently between endpoints
// ("young" vs "Young"); decoding accepts both, encoding always emits the
// canonical keys above.
type Counts struct {
	MatureDead    int `json:"Mature(Dead)"`
	MatureHealthy int `json:"Mature(Healthy)"`
	MatureYellow  int `json:"Mature(Yellow)"`
	Grass         int `json:"grass"`
	Young         int `json:"young"`
}

func (c *Counts) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.MatureDead = firstInt(raw, "Mature(Dead)", "mature_dead")
	c.MatureHealthy = firstInt(raw, "Mature(Healthy)", "mature_healthy")
	c.MatureYellow = firstInt(raw, "Mature(Yellow)", "mature_yellow")
	c.Grass = firstInt(raw, "grass", "Grass")
	c.Young = firstInt(raw, "young", "Young")
	return nil
}

// Summary aggregates detection totals. Canonical wire keys are snake_case;
// the camelCase spellings used by some backend endpoints are accepted on
// decode.
type Summary struct {
	TotalMature int `json:"total_mature"`
	TotalPalms  int `json:"total_palms"`
	TotalYoung  int `json:"total_young"`
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.TotalMature = firstInt(raw, "total_mature", "totalMature", "TotalMature")
	s.TotalPalms = firstInt(raw, "total_palms", "totalPalms", "TotalPalms")
	s.TotalYoung = firstInt(raw, "total_young", "totalYoung", "TotalYoung")
	return nil
}

func firstInt(raw map[string]int, keys ...string) int {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v
		}
	}
	return 0
}

// Results is the full detection payload for one image.
type Results struct {
	Counts     Counts      `json:"counts"`
	Detections []Detection `json:"detections"`
	Summary    Summary     `json:"summary"`
}

// Metadata describes the originally uploaded file.
type Metadata struct {
	OriginalFileName string    `json:"originalFileName"`
	UploadDate       time.Time `json:"uploadDate"`
}

// Annotation is a persisted snapshot of a completed detection job. The
// authoritative copy always lives server-side.
type Annotation struct {
	ID             string         `json:"id"`
	AnnotatedImage AnnotatedImage `json:"annotatedImage"`
	Results        Results        `json:"results"`
	Success        bool           `json:"success"`
	Metadata       Metadata       `json:"metadata"`
}

// UnmarshalJSON tolerates the two identifier spellings the backend uses
// ("id" on the service endpoints, "annotationId" on list responses).
func (a *Annotation) UnmarshalJSON(data []byte) error {
	type alias Annotation
	aux := struct {
		*alias
		AnnotationID string `json:"annotationId"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = aux.AnnotationID
	}
	return nil
}

// UploadRequest creates a new annotation from a completed job.
type UploadRequest struct {
	UserID         string         `json:"userId"`
	AnnotatedImage AnnotatedImage `json:"annotatedImage"`
	Results        Results        `json:"results"`
	Success        bool           `json:"success"`
	Metadata       Metadata       `json:"metadata"`
}

// UpdateRequest mutates an existing annotation. Only results, success and
// metadata are mutable; the image and identity are fixed at creation.
type UpdateRequest struct {
	Results  Results  `json:"results"`
	Success  bool     `json:"success"`
	Metadata Metadata `json:"metadata"`
}
