package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// jsonFloat encodes NaN and ±Inf as the strings "NaN", "+Inf" and "-Inf",
// which encoding/json rejects as numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

func toJSONFloats(xs []float64) []jsonFloat {
	out := make([]jsonFloat, len(xs))
	for i, x := range xs {
		out[i] = jsonFloat(x)
	}
	return out
}

func fromJSONFloats(xs []jsonFloat) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func toJSONMetrics(m map[string]float64) map[string]jsonFloat {
	out := make(map[string]jsonFloat, len(m))
	for k, v := range m {
		out[k] = jsonFloat(v)
	}
	return out
}

func fromJSONMetrics(m map[string]jsonFloat) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

// dbFloat stores non-finite values as TEXT. SQLite turns a bound NaN into
// NULL, which the NOT NULL columns reject.
type dbFloat float64

func (f dbFloat) Value() (driver.Value, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	return v, nil
}

func (f *dbFloat) Scan(src any) error {
	switch v := src.(type) {
	case float64:
		*f = dbFloat(v)
	case int64:
		*f = dbFloat(v)
	case string:
		return f.parse(v)
	case []byte:
		return f.parse(string(v))
	default:
		return fmt.Errorf("storage: cannot scan %T into float", src)
	}
	return nil
}

func (f *dbFloat) parse(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = dbFloat(v)
	return nil
}

// metadataJSON is the on-disk form of RunMetadata.
type metadataJSON struct {
	ID                 string               `json:"id"`
	Label              string               `json:"label"`
	Timestamp          time.Time            `json:"timestamp"`
	GridSize           int                  `json:"grid_size"`
	J                  jsonFloat            `json:"j"`
	Beta               jsonFloat            `json:"beta"`
	B                  jsonFloat            `json:"b"`
	Steps              int                  `json:"steps"`
	Density            jsonFloat            `json:"density"`
	Seed               int64                `json:"seed"`
	Backend            string               `json:"backend"`
	Sweeps             int                  `json:"sweeps"`
	ElapsedSeconds     jsonFloat            `json:"elapsed_seconds"`
	FinalMagnetization jsonFloat            `json:"final_magnetization"`
	AcceptanceRate     jsonFloat            `json:"acceptance_rate"`
	DegenerateTrials   int                  `json:"degenerate_trials"`
	Metrics            map[string]jsonFloat `json:"metrics"`
}

func (m RunMetadata) wire() metadataJSON {
	return metadataJSON{
		ID:                 m.ID,
		Label:              m.Label,
		Timestamp:          m.Timestamp,
		GridSize:           m.GridSize,
		J:                  jsonFloat(m.J),
		Beta:               jsonFloat(m.Beta),
		B:                  jsonFloat(m.B),
		Steps:              m.Steps,
		Density:            jsonFloat(m.Density),
		Seed:               m.Seed,
		Backend:            m.Backend,
		Sweeps:             m.Sweeps,
		ElapsedSeconds:     jsonFloat(m.ElapsedSeconds),
		FinalMagnetization: jsonFloat(m.FinalMagnetization),
		AcceptanceRate:     jsonFloat(m.AcceptanceRate),
		DegenerateTrials:   m.DegenerateTrials,
		Metrics:            toJSONMetrics(m.Metrics),
	}
}

func (w metadataJSON) metadata() RunMetadata {
	return RunMetadata{
		ID:                 w.ID,
		Label:              w.Label,
		Timestamp:          w.Timestamp,
		GridSize:           w.GridSize,
		J:                  float64(w.J),
		Beta:               float64(w.Beta),
		B:                  float64(w.B),
		Steps:              w.Steps,
		Density:            float64(w.Density),
		Seed:               w.Seed,
		Backend:            w.Backend,
		Sweeps:             w.Sweeps,
		ElapsedSeconds:     float64(w.ElapsedSeconds),
		FinalMagnetization: float64(w.FinalMagnetization),
		AcceptanceRate:     float64(w.AcceptanceRate),
		DegenerateTrials:   w.DegenerateTrials,
		Metrics:            fromJSONMetrics(w.Metrics),
	}
}

func (m RunMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wire())
}

func (m *RunMetadata) UnmarshalJSON(b []byte) error {
	var w metadataJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = w.metadata()
	return nil
}

type exportJSON struct {
	metadataJSON
	Magnetization []jsonFloat `json:"magnetization"`
}

// MarshalJSON overrides the promoted RunMetadata codec, which would drop
// the series.
func (d ExportData) MarshalJSON() ([]byte, error) {
	return json.Marshal(exportJSON{
		metadataJSON:  d.RunMetadata.wire(),
		Magnetization: toJSONFloats(d.Magnetization),
	})
}

func (d *ExportData) UnmarshalJSON(b []byte) error {
	var w exportJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	d.RunMetadata = w.metadataJSON.metadata()
	d.Magnetization = fromJSONFloats(w.Magnetization)
	return nil
}
