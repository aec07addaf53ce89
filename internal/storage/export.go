package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/quadsim/internal/dynamo"
)

type ExportData struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Halted   bool               `json:"halted"`
	Steps    int                `json:"steps"`
	Labels   []string           `json:"labels"`
	Times    []float64          `json:"times"`
	States   []dynamo.State     `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Export bundles a stored run's metadata and states.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		ID:       meta.ID,
		Name:     meta.Name,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Halted:   meta.Halted,
		Steps:    len(times),
		Labels:   dynamo.StateLabels,
		Times:    times,
		States:   states,
		Metrics:  meta.Metrics,
	}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}
