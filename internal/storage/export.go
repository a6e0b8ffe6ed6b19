package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/clothsim/internal/sim"
)

// ExportData is the full JSON view of a run: the measurement series plus
// the final frame geometry (positions and edge index pairs) an external
// renderer can draw.
type ExportData struct {
	ID         string             `json:"id"`
	Cols       int                `json:"cols"`
	Rows       int                `json:"rows"`
	Mode       string             `json:"mode"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Residuals  []float64          `json:"residuals"`
	MaxStretch []float64          `json:"max_stretch"`
	Kinetic    []float64          `json:"kinetic"`
	Positions  [][3]float64       `json:"positions"`
	Edges      [][2]int           `json:"edges"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run result as indented JSON.
func ExportJSON(w io.Writer, id string, cfg sim.Config, result *sim.Result) error {
	data := ExportData{
		ID:         id,
		Cols:       cfg.Cols,
		Rows:       cfg.Rows,
		Mode:       cfg.Params.Mode.String(),
		Steps:      result.StepsTaken,
		Times:      make([]float64, len(result.Samples)),
		Residuals:  make([]float64, len(result.Samples)),
		MaxStretch: make([]float64, len(result.Samples)),
		Kinetic:    make([]float64, len(result.Samples)),
		Positions:  make([][3]float64, len(result.FinalPositions)),
		Edges:      result.Edges,
		Metrics:    result.Metrics,
	}

	for i, s := range result.Samples {
		data.Times[i] = s.Time
		data.Residuals[i] = s.Residual
		data.MaxStretch[i] = s.MaxStretch
		data.Kinetic[i] = s.Kinetic
	}
	for i, p := range result.FinalPositions {
		data.Positions[i] = [3]float64{p.X, p.Y, p.Z}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
