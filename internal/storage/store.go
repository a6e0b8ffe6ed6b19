// Package storage persists headless runs as a per-run directory holding
// metadata.json and a samples.csv time series.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/clothsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Cols       int                `json:"cols"`
	Rows       int                `json:"rows"`
	Duration   float64            `json:"duration"`
	Iterations int                `json:"iterations"`
	Stiffness  float64            `json:"stiffness"`
	Mode       string             `json:"mode"`
	WarmStart  bool               `json:"warm_start"`
	Eta        float64            `json:"eta"`
	Damping    float64            `json:"damping"`
	Relaxation float64            `json:"jacobi_relaxation"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(cfg sim.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("cloth_%dx%d_%d", cfg.Cols, cfg.Rows, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Cols:       cfg.Cols,
		Rows:       cfg.Rows,
		Duration:   cfg.Duration,
		Iterations: cfg.Params.Iterations,
		Stiffness:  cfg.Params.Stiffness,
		Mode:       cfg.Params.Mode.String(),
		WarmStart:  cfg.Params.WarmStart,
		Eta:        cfg.Params.Eta,
		Damping:    cfg.Params.Damping,
		Relaxation: cfg.Params.JacobiRelaxation,
		Steps:      result.StepsTaken,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "residual", "max_stretch", "kinetic"}); err != nil {
		return "", err
	}
	for _, sm := range result.Samples {
		row := []string{
			strconv.FormatFloat(sm.Time, 'f', 6, 64),
			strconv.FormatFloat(sm.Residual, 'g', 8, 64),
			strconv.FormatFloat(sm.MaxStretch, 'g', 8, 64),
			strconv.FormatFloat(sm.Kinetic, 'g', 8, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads the stored time series back.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		var vals [4]float64
		ok := true
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		samples = append(samples, sim.Sample{
			Time:       vals[0],
			Residual:   vals[1],
			MaxStretch: vals[2],
			Kinetic:    vals[3],
		})
	}

	return samples, nil
}
