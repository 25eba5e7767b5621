package storage

import (
	"github.com/san-kum/plcrt/internal/config"
)

// ExportData is a single-document view of a stored run.
type ExportData struct {
	ID       string               `json:"id"`
	Program  string               `json:"program"`
	PeriodMs int                  `json:"period_ms"`
	Stats    map[string]float64   `json:"stats"`
	Config   *config.Config       `json:"config,omitempty"`
	Columns  []string             `json:"columns"`
	Series   map[string][]float64 `json:"series"`
}

// ExportJSON writes a stored run as one JSON document to path.
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	cycles, err := s.LoadCycles(runID)
	if err != nil {
		return err
	}

	cols := append([]string{"interval_ms", "elapsed_ms"}, sampleColumns(cycles)...)
	data := ExportData{
		ID:       meta.ID,
		Program:  meta.Program,
		PeriodMs: meta.PeriodMs,
		Stats:    meta.Stats,
		Config:   meta.Config,
		Columns:  cols,
		Series:   make(map[string][]float64, len(cols)),
	}
	for _, col := range cols {
		data.Series[col] = Series(cycles, col)
	}
	return writeJSON(path, data)
}
