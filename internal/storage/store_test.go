package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		Snapshots: []dynamo.Snapshot{
			{EulerAngles: dynamo.Vec3{X: 0.1}, Position: dynamo.Vec3{Z: 10}},
			{Step: 1, Time: 0.01, EulerAngles: dynamo.Vec3{X: 0.09}, Motors: [4]float64{300, 310, 320, 330}},
		},
		Times:      []float64{0.0, 0.01},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"stability": 0.5,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	info := RunInfo{Name: "tilt", Seed: 42, Dt: 0.01, Duration: 1.0, Vehicle: physics.DefaultSpec()}
	runID, err := st.Save(info, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "tilt" {
		t.Errorf("expected name 'tilt', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["stability"] != 0.5 {
		t.Errorf("expected stability 0.5, got %f", meta.Metrics["stability"])
	}
	if meta.Vehicle != physics.DefaultSpec() {
		t.Error("vehicle spec not persisted")
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 states and times, got %d and %d", len(states), len(times))
	}
	if len(states[0]) != len(dynamo.StateLabels) {
		t.Errorf("expected %d columns, got %d", len(dynamo.StateLabels), len(states[0]))
	}
	if states[0][3] != 0.1 {
		t.Errorf("expected roll 0.1, got %f", states[0][3])
	}
	if states[1][13] != 310 {
		t.Errorf("expected m1 310, got %f", states[1][13])
	}
}

func TestUniqueRunIDs(t *testing.T) {
	st := New(t.TempDir())
	a, err := st.Save(RunInfo{}, testResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(RunInfo{}, testResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("run ids collided")
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.After(runs[1].Timestamp) {
		t.Error("runs not sorted oldest first")
	}
}

func TestListEmpty(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestLoadRejectsBadID(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("../etc"); err == nil {
		t.Error("expected error for non-uuid id")
	}
	if _, _, err := st.LoadStates("nope"); err == nil {
		t.Error("expected error for non-uuid id")
	}
}

func TestLoadStatesSkipsMalformedRows(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunInfo{}, testResult())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(st.baseDir, runID, "states.csv")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("0.02,1,2\n")
	f.WriteString("abc" + strings.Repeat(",0", len(dynamo.StateLabels)) + "\n")
	f.Close()

	states, _, err := st.LoadStates(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 {
		t.Errorf("expected malformed rows skipped, got %d states", len(states))
	}
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, nil); err != nil {
		t.Fatal(err)
	}
	header := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(header, "time,x,y,z,roll") {
		t.Errorf("unexpected header %q", header)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunInfo{Name: "hover", Dt: 0.01, Duration: 1}, testResult())
	if err != nil {
		t.Fatal(err)
	}

	data, err := st.Export(runID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if data.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", data.Steps)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded ExportData
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Name != "hover" || len(decoded.Labels) != len(dynamo.StateLabels) {
		t.Errorf("unexpected export: %+v", decoded)
	}
}
