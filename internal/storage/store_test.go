package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
)

func solved(t *testing.T) *modes.ModeSet {
	t.Helper()
	g, err := fiber.NewStepIndex(fiber.Params{Radius: 3, NA: 0.25, N1: 1.45, NPoints: 14, AreaSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	s := modes.NewSolver(nil)
	s.SetIndexProfile(g)
	s.SetWavelength(1)
	set, err := s.Solve(context.Background(), modes.SolveOptions{NModesMax: 3})
	if err != nil {
		t.Fatal(err)
	}
	if set.Number() == 0 {
		t.Fatal("fixture should guide at least one mode")
	}
	return set
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	set := solved(t)
	runID, err := st.Save(RunMetadata{Boundary: "close", Poisson: 0.17, Fiber: FiberMetadata{Profile: "step", Radius: 3}}, set)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}
	for _, name := range []string{metadataFile, modesFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.NumModes != set.Number() || meta.Wavelength != 1 || meta.Fiber.NPoints != 14 || meta.Fiber.AreaSize != 12 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Curvature != nil {
		t.Errorf("straight fiber stored with curvature %v", *meta.Curvature)
	}

	loaded, _, err := st.LoadModes(runID)
	if err != nil {
		t.Fatalf("load modes failed: %v", err)
	}
	if loaded.Number() != set.Number() || loaded.Saturated() != set.Saturated() {
		t.Fatalf("got %d modes (saturated=%v), want %d (saturated=%v)",
			loaded.Number(), loaded.Saturated(), set.Number(), set.Saturated())
	}
	for i := 0; i < set.Number(); i++ {
		if loaded.Beta(i) != set.Beta(i) {
			t.Errorf("beta %d: got %v, want %v", i, loaded.Beta(i), set.Beta(i))
		}
		got, want := loaded.Profile(i), set.Profile(i)
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("profile %d differs at %d", i, j)
			}
		}
	}
	wantN := set.IndexProfile().N()
	for i, n := range loaded.IndexProfile().N() {
		if n != wantN[i] {
			t.Fatalf("index profile differs at %d", i)
		}
	}

	x, y, err := st.LoadGrid(runID)
	if err != nil {
		t.Fatalf("load grid failed: %v", err)
	}
	px, py := set.IndexProfile().X(), set.IndexProfile().Y()
	if x.At(0, 1) != px[1] || y.At(1, 0) != py[14] {
		t.Errorf("stored grid does not match: X %g/%g, Y %g/%g", x.At(0, 1), px[1], y.At(1, 0), py[14])
	}
	if y.At(1, 0) == x.At(1, 0) {
		t.Error("Y should not duplicate X")
	}
}

func TestStoreBentRun(t *testing.T) {
	st := New(t.TempDir())
	g, err := fiber.NewStepIndex(fiber.Params{Radius: 3, NA: 0.25, N1: 1.45, NPoints: 12, AreaSize: 12})
	if err != nil {
		t.Fatal(err)
	}
	s := modes.NewSolver(nil)
	s.SetIndexProfile(g)
	s.SetWavelength(1)
	radius := 150.0
	set, err := s.Solve(context.Background(), modes.SolveOptions{NModesMax: 1, Curvature: &radius})
	if err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save(RunMetadata{Fiber: FiberMetadata{Profile: "step"}}, set)
	if err != nil {
		t.Fatal(err)
	}
	loaded, meta, err := st.LoadModes(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Curvature == nil || *meta.Curvature != radius {
		t.Fatalf("curvature not stored: %v", meta.Curvature)
	}
	if _, err := loaded.EvolutionOperator(1, &radius); !errors.Is(err, modes.ErrCurvatureReapplied) {
		t.Errorf("restored bent set should refuse a second bend, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v %v", runs, err)
	}

	set := solved(t)
	first, err := st.Save(RunMetadata{Fiber: FiberMetadata{Profile: "step"}}, set)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(RunMetadata{Fiber: FiberMetadata{Profile: "grin"}}, set)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "not-a-run"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != first || runs[1].ID != second {
		t.Errorf("unexpected runs %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
}

func TestLoadModesMissingRun(t *testing.T) {
	if _, _, err := New(t.TempDir()).LoadModes("nope"); err == nil {
		t.Error("expected an error for a missing run")
	}
}

func TestSummarizeAndExport(t *testing.T) {
	set := solved(t)
	data := Summarize("run", set, 1e-6)
	if data.NumModes != set.Number() || len(data.Modes) != set.Number() {
		t.Fatalf("unexpected summary %+v", data)
	}
	for _, m := range data.Modes {
		if m.NEff <= 1.4 || m.NEff >= 1.45 {
			t.Errorf("mode %d: effective index %g outside the fiber's range", m.Index, m.NEff)
		}
	}

	path := filepath.Join(t.TempDir(), "modes.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		t.Errorf("expected a JSON object, got %q", raw)
	}
}
