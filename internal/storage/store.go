// Package storage keeps completed runs on disk and indexes them in SQLite.
//
// Each run gets a directory <base>/<id> holding metadata.json and
// magnetization.csv. The catalog <base>/runs.db lists them.
package storage

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/ising"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrAmbiguousID = errors.New("storage: ambiguous run id")
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "magnetization.csv"
	catalogFile  = "runs.db"
)

type Store struct {
	baseDir string
	db      *sqlx.DB
}

type RunMetadata struct {
	ID                 string             `json:"id"`
	Label              string             `json:"label"`
	Timestamp          time.Time          `json:"timestamp"`
	GridSize           int                `json:"grid_size"`
	J                  float64            `json:"j"`
	Beta               float64            `json:"beta"`
	B                  float64            `json:"b"`
	Steps              int                `json:"steps"`
	Density            float64            `json:"density"`
	Seed               int64              `json:"seed"`
	Backend            string             `json:"backend"`
	Sweeps             int                `json:"sweeps"`
	ElapsedSeconds     float64            `json:"elapsed_seconds"`
	FinalMagnetization float64            `json:"final_magnetization"`
	AcceptanceRate     float64            `json:"acceptance_rate"`
	DegenerateTrials   int                `json:"degenerate_trials"`
	Metrics            map[string]float64 `json:"metrics"`
}

// runRow is the catalog representation of RunMetadata.
type runRow struct {
	ID                 string  `db:"id"`
	Label              string  `db:"label"`
	CreatedAt          int64   `db:"created_at"`
	GridSize           int     `db:"grid_size"`
	J                  dbFloat `db:"j"`
	Beta               dbFloat `db:"beta"`
	B                  dbFloat `db:"b"`
	Steps              int     `db:"steps"`
	Density            dbFloat `db:"density"`
	Seed               int64   `db:"seed"`
	Backend            string  `db:"backend"`
	Sweeps             int     `db:"sweeps"`
	ElapsedSeconds     dbFloat `db:"elapsed_seconds"`
	FinalMagnetization dbFloat `db:"final_magnetization"`
	AcceptanceRate     dbFloat `db:"acceptance_rate"`
	DegenerateTrials   int     `db:"degenerate_trials"`
	MetricsJSON        string  `db:"metrics_json"`
}

// Open creates baseDir if needed and opens the catalog.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	dsn := filepath.Join(baseDir, catalogFile) + "?_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	s := &Store{baseDir: baseDir, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) RunDir(id string) string { return filepath.Join(s.baseDir, id) }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		grid_size INTEGER NOT NULL,
		j REAL NOT NULL,
		beta REAL NOT NULL,
		b REAL NOT NULL,
		steps INTEGER NOT NULL,
		density REAL NOT NULL,
		seed INTEGER NOT NULL,
		backend TEXT NOT NULL,
		sweeps INTEGER NOT NULL,
		elapsed_seconds REAL NOT NULL,
		final_magnetization REAL NOT NULL,
		acceptance_rate REAL NOT NULL,
		degenerate_trials INTEGER NOT NULL,
		metrics_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_beta ON runs(beta);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save writes the run directory and catalogs it. It returns the new run id.
func (s *Store) Save(label string, cfg *config.Config, result *ising.Result) (string, error) {
	meta := RunMetadata{
		ID:             uuid.New().String(),
		Label:          label,
		Timestamp:      time.Now().UTC(),
		GridSize:       cfg.GridSize,
		J:              cfg.J,
		Beta:           cfg.Beta,
		B:              cfg.B,
		Steps:          cfg.Steps,
		Density:        cfg.Density,
		Seed:           cfg.Seed,
		Backend:        cfg.Backend,
		Sweeps:         result.Sweeps,
		ElapsedSeconds: result.Elapsed.Seconds(),
		AcceptanceRate: result.Stats.AcceptanceRate(),
		Metrics:        result.Metrics,
	}
	meta.DegenerateTrials = result.Stats.Degenerate
	if n := len(result.Magnetization); n > 0 {
		meta.FinalMagnetization = result.Magnetization[n-1]
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	row, err := toRow(meta)
	if err != nil {
		return "", err
	}

	runDir := s.RunDir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.writeRun(runDir, row, meta, result.Magnetization); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) writeRun(runDir string, row runRow, meta RunMetadata, series []float64) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeSeriesCSV(filepath.Join(runDir, seriesFile), series); err != nil {
		return err
	}
	_, err := s.db.NamedExec(`
		INSERT INTO runs (id, label, created_at, grid_size, j, beta, b, steps, density, seed, backend,
			sweeps, elapsed_seconds, final_magnetization, acceptance_rate, degenerate_trials, metrics_json)
		VALUES (:id, :label, :created_at, :grid_size, :j, :beta, :b, :steps, :density, :seed, :backend,
			:sweeps, :elapsed_seconds, :final_magnetization, :acceptance_rate, :degenerate_trials, :metrics_json)`,
		row)
	if err != nil {
		return fmt.Errorf("catalog run %s: %w", meta.ID, err)
	}
	return nil
}

// List returns all cataloged runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	var rows []runRow
	if err := s.db.Select(&rows, `SELECT * FROM runs ORDER BY created_at DESC, id`); err != nil {
		return nil, err
	}
	runs := make([]RunMetadata, 0, len(rows))
	for _, r := range rows {
		meta, err := r.metadata()
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Resolve expands a unique id prefix to the full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	var ids []string
	if err := s.db.Select(&ids, `SELECT id FROM runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, prefix, prefix); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
}

func (s *Store) Load(id string) (*RunMetadata, error) {
	var r runRow
	err := s.db.Get(&r, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	meta, err := r.metadata()
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSeries(id string) ([]float64, error) {
	f, err := os.Open(filepath.Join(s.RunDir(id), seriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	series := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, fmt.Errorf("%s row %d: expected 2 fields", seriesFile, i+2)
		}
		m, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", seriesFile, i+2, err)
		}
		series = append(series, m)
	}
	return series, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSeriesCSV(path string, series []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeSeriesCSV(f, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeSeriesCSV(out io.Writer, series []float64) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"sweep", "magnetization"}); err != nil {
		return err
	}
	for i, m := range series {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(m, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func toRow(m RunMetadata) (runRow, error) {
	metrics, err := json.Marshal(toJSONMetrics(m.Metrics))
	if err != nil {
		return runRow{}, err
	}
	return runRow{
		ID:                 m.ID,
		Label:              m.Label,
		CreatedAt:          m.Timestamp.UnixNano(),
		GridSize:           m.GridSize,
		J:                  dbFloat(m.J),
		Beta:               dbFloat(m.Beta),
		B:                  dbFloat(m.B),
		Steps:              m.Steps,
		Density:            dbFloat(m.Density),
		Seed:               m.Seed,
		Backend:            m.Backend,
		Sweeps:             m.Sweeps,
		ElapsedSeconds:     dbFloat(m.ElapsedSeconds),
		FinalMagnetization: dbFloat(m.FinalMagnetization),
		AcceptanceRate:     dbFloat(m.AcceptanceRate),
		DegenerateTrials:   m.DegenerateTrials,
		MetricsJSON:        string(metrics),
	}, nil
}

func (r runRow) metadata() (RunMetadata, error) {
	m := RunMetadata{
		ID:                 r.ID,
		Label:              r.Label,
		Timestamp:          time.Unix(0, r.CreatedAt).UTC(),
		GridSize:           r.GridSize,
		J:                  float64(r.J),
		Beta:               float64(r.Beta),
		B:                  float64(r.B),
		Steps:              r.Steps,
		Density:            float64(r.Density),
		Seed:               r.Seed,
		Backend:            r.Backend,
		Sweeps:             r.Sweeps,
		ElapsedSeconds:     float64(r.ElapsedSeconds),
		FinalMagnetization: float64(r.FinalMagnetization),
		AcceptanceRate:     float64(r.AcceptanceRate),
		DegenerateTrials:   r.DegenerateTrials,
	}
	var metrics map[string]jsonFloat
	if err := json.Unmarshal([]byte(r.MetricsJSON), &metrics); err != nil {
		return RunMetadata{}, fmt.Errorf("run %s metrics: %w", r.ID, err)
	}
	m.Metrics = fromJSONMetrics(metrics)
	return m, nil
}
