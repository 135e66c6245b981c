package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Magnetization []float64 `json:"magnetization"`
}

// ExportJSON writes the metadata and series of one run.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Magnetization: series})
}

// ExportCSV writes the series of one run as sweep,magnetization rows.
func (s *Store) ExportCSV(w io.Writer, id string) error {
	series, err := s.LoadSeries(id)
	if err != nil {
		return err
	}
	return encodeSeriesCSV(w, series)
}
