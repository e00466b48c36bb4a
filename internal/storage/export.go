package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fibermodes/internal/modes"
)

type ModeSummary struct {
	Index int     `json:"index"`
	Beta  float64 `json:"beta"`
	NEff  float64 `json:"n_eff"`
}

type ExportData struct {
	ID         string        `json:"id,omitempty"`
	Wavelength float64       `json:"wavelength"`
	Curvature  *float64      `json:"curvature,omitempty"`
	NumModes   int           `json:"num_modes"`
	Saturated  bool          `json:"saturated"`
	Modes      []ModeSummary `json:"modes"`
	Groups     [][]int       `json:"groups"`
}

// Summarize lists propagation constants and effective indices of set, with
// near-degenerate groups at tolerance tol.
func Summarize(id string, set *modes.ModeSet, tol float64) ExportData {
	data := ExportData{
		ID:         id,
		Wavelength: set.Wavelength(),
		Curvature:  set.Curvature(),
		NumModes:   set.Number(),
		Saturated:  set.Saturated(),
		Modes:      make([]ModeSummary, set.Number()),
		Groups:     set.NearDegenerate(tol, false),
	}
	for i, b := range set.RealBetas() {
		data.Modes[i] = ModeSummary{Index: i, Beta: b, NEff: set.EffectiveIndex(i)}
	}
	return data
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
