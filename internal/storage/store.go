package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
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

// RunInfo is what the caller knows about a run beyond its result.
type RunInfo struct {
	Name     string
	Seed     int64
	Dt       float64
	Duration float64
	Vehicle  physics.Spec
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	StepsTaken int                `json:"steps_taken"`
	Halted     bool               `json:"halted"`
	Vehicle    physics.Spec       `json:"vehicle"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       info.Name,
		Timestamp:  time.Now(),
		Seed:       info.Seed,
		Dt:         info.Dt,
		Duration:   info.Duration,
		StepsTaken: result.StepsTaken,
		Halted:     result.Halted,
		Vehicle:    info.Vehicle,
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

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Times, result.States()); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes one row per state with a time column and the columns
// named by dynamo.StateLabels.
func WriteCSV(out io.Writer, times []float64, states []dynamo.State) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, dynamo.StateLabels...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, state := range states {
		row := make([]string, 0, len(state)+1)
		row = append(row, strconv.FormatFloat(times[i], 'f', 6, 64))
		for _, val := range state {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all stored runs, oldest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

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

// LoadStates reads the recorded states of a run back, with their times.
// Malformed rows are skipped.
func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []dynamo.State{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(dynamo.StateLabels)+1 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make(dynamo.State, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				break
			}
			state = append(state, val)
		}
		if len(state) != len(dynamo.StateLabels) {
			continue
		}

		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}
