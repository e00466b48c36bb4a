package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

var ErrCorruptRun = errors.New("storage: run data is inconsistent")

const (
	metadataFile = "metadata.json"
	modesFile    = "modes.npz"
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

type FiberMetadata struct {
	Profile  string  `json:"profile"`
	Radius   float64 `json:"radius"`
	NA       float64 `json:"na"`
	N1       float64 `json:"n1"`
	Alpha    float64 `json:"alpha,omitempty"`
	NPoints  int     `json:"npoints"`
	AreaSize float64 `json:"area_size"`
}

type RunMetadata struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Wavelength float64       `json:"wavelength"`
	Boundary   string        `json:"boundary"`
	Curvature  *float64      `json:"curvature,omitempty"`
	Poisson    float64       `json:"poisson"`
	Fiber      FiberMetadata `json:"fiber"`
	NumModes   int           `json:"num_modes"`
	Saturated  bool          `json:"saturated"`
	Elapsed    float64       `json:"elapsed_seconds"`
}

// Save writes metadata.json and modes.npz for a solved mode set. ID,
// timestamp, wavelength, curvature and mode counts are filled from set.
func (s *Store) Save(meta RunMetadata, set *modes.ModeSet) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Fiber.Profile, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Wavelength = set.Wavelength()
	meta.Curvature = set.Curvature()
	meta.NumModes = set.Number()
	meta.Saturated = set.Saturated()
	meta.Fiber.NPoints = set.IndexProfile().NPoints()
	if g, ok := set.IndexProfile().(interface{ AreaSize() float64 }); ok {
		meta.Fiber.AreaSize = g.AreaSize()
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeModes(filepath.Join(runDir, modesFile), set); err != nil {
		return "", fmt.Errorf("write %s: %w", modesFile, err)
	}
	return runID, nil
}

func writeModes(path string, set *modes.ModeSet) error {
	w, err := npz.Create(path)
	if err != nil {
		return err
	}

	p := set.IndexProfile()
	np := p.NPoints()
	profiles := make([]complex128, 0, set.Number()*np*np)
	for i := 0; i < set.Number(); i++ {
		profiles = append(profiles, set.Profile(i)...)
	}

	arrays := []struct {
		name  string
		value interface{}
	}{
		{"betas", set.Betas()},
		{"mode_profiles", profiles},
		{"index_profile", square(np, p.N())},
		{"X", square(np, p.X())},
		{"Y", square(np, p.Y())},
	}
	for _, a := range arrays {
		if err := w.Write(a.name, a.value); err != nil {
			w.Close()
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return w.Close()
}

func square(np int, v []float64) *mat.Dense {
	return mat.NewDense(np, np, append([]float64(nil), v...))
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadModes rebuilds the mode set of a stored run.
func (s *Store) LoadModes(runID string) (*modes.ModeSet, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	r, err := npz.Open(filepath.Join(s.baseDir, runID, modesFile))
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var (
		betas    []complex128
		profiles []complex128
		index    mat.Dense
	)
	if err := r.Read("betas", &betas); err != nil {
		return nil, nil, fmt.Errorf("betas: %w", err)
	}
	if err := r.Read("mode_profiles", &profiles); err != nil {
		return nil, nil, fmt.Errorf("mode_profiles: %w", err)
	}
	if err := r.Read("index_profile", &index); err != nil {
		return nil, nil, fmt.Errorf("index_profile: %w", err)
	}

	np := meta.Fiber.NPoints
	if rows, cols := index.Dims(); rows != np || cols != np {
		return nil, nil, fmt.Errorf("%w: index profile is %dx%d, metadata says %d", ErrCorruptRun, rows, cols, np)
	}
	if len(profiles) != len(betas)*np*np {
		return nil, nil, fmt.Errorf("%w: %d profile values for %d modes", ErrCorruptRun, len(profiles), len(betas))
	}

	grid, err := fiber.NewGridFromField(np, meta.Fiber.AreaSize, index.RawMatrix().Data)
	if err != nil {
		return nil, nil, err
	}
	split := make([][]complex128, len(betas))
	for i := range split {
		split[i] = profiles[i*np*np : (i+1)*np*np]
	}
	set, err := modes.Restore(meta.Wavelength, grid, meta.Curvature, betas, split, meta.Saturated)
	if err != nil {
		return nil, nil, err
	}
	return set, meta, nil
}

// LoadGrid reads the stored X and Y coordinate fields of a run.
func (s *Store) LoadGrid(runID string) (x, y *mat.Dense, err error) {
	r, err := npz.Open(filepath.Join(s.baseDir, runID, modesFile))
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	x, y = new(mat.Dense), new(mat.Dense)
	if err := r.Read("X", x); err != nil {
		return nil, nil, fmt.Errorf("X: %w", err)
	}
	if err := r.Read("Y", y); err != nil {
		return nil, nil, fmt.Errorf("Y: %w", err)
	}
	return x, y, nil
}
