package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/ising"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult() *ising.Result {
	return &ising.Result{
		Magnetization: []float64{0.1, 0.4, 0.75},
		Stats:         ising.SweepStats{Proposed: 300, Accepted: 120, Degenerate: 2},
		Metrics:       map[string]float64{"energy_per_site": -1.5},
		Sweeps:        3,
		Elapsed:       1500 * time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := openStore(t)
	cfg := config.DefaultConfig()
	cfg.Seed = 42

	id, err := st.Save("ferro", cfg, sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.FileExists(t, filepath.Join(st.RunDir(id), "metadata.json"))
	assert.FileExists(t, filepath.Join(st.RunDir(id), "magnetization.csv"))

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "ferro", meta.Label)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, cfg.GridSize, meta.GridSize)
	assert.Equal(t, 3, meta.Sweeps)
	assert.Equal(t, 0.75, meta.FinalMagnetization)
	assert.InDelta(t, 0.4, meta.AcceptanceRate, 1e-12)
	assert.Equal(t, 2, meta.DegenerateTrials)
	assert.InDelta(t, 1.5, meta.ElapsedSeconds, 1e-9)
	assert.Equal(t, -1.5, meta.Metrics["energy_per_site"])

	series, err := st.LoadSeries(id)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.4, 0.75}, series)
}

func TestStoreMetadataFileMatchesCatalog(t *testing.T) {
	st := openStore(t)
	id, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(st.RunDir(id), "metadata.json"))
	require.NoError(t, err)

	var onDisk RunMetadata
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, id, onDisk.ID)
	assert.Equal(t, 0.9, onDisk.Beta)
}

func TestStoreList(t *testing.T) {
	st := openStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := st.Save("run", config.DefaultConfig(), sampleResult())
		require.NoError(t, err)
		ids[id] = true
	}

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.True(t, ids[r.ID], "unexpected id %s", r.ID)
	}
	for i := 1; i < len(runs); i++ {
		assert.False(t, runs[i].Timestamp.After(runs[i-1].Timestamp), "runs not newest first")
	}
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)
	id, err := st.Save("persist", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(dir)
	require.NoError(t, err)
	defer st.Close()

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "persist", meta.Label)
}

func TestStoreNotFound(t *testing.T) {
	st := openStore(t)

	_, err := st.Load("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.LoadSeries("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.Resolve("zzz")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreResolvePrefix(t *testing.T) {
	st := openStore(t)
	id, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	full, err := st.Resolve(id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, full)

	_, err = st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)
	_, err = st.Resolve("")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreResolveLiteralPrefix(t *testing.T) {
	st := openStore(t)
	id, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	for _, prefix := range []string{"_", "%", id[:4] + "%", "________"} {
		_, err := st.Resolve(prefix)
		assert.ErrorIs(t, err, ErrRunNotFound, "prefix %q", prefix)
	}

	full, err := st.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, id, full)
}

func TestStoreNonFiniteParameters(t *testing.T) {
	st := openStore(t)
	cfg := config.DefaultConfig()
	cfg.Beta = math.Inf(1)
	cfg.J = math.NaN()
	res := sampleResult()
	res.Metrics["energy_per_site"] = math.Inf(-1)

	id, err := st.Save("hot", cfg, res)
	require.NoError(t, err)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.True(t, math.IsInf(meta.Beta, 1))
	assert.True(t, math.IsNaN(meta.J))
	assert.True(t, math.IsInf(meta.Metrics["energy_per_site"], -1))

	data, err := os.ReadFile(filepath.Join(st.RunDir(id), "metadata.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"beta": "+Inf"`)
	var onDisk RunMetadata
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.True(t, math.IsInf(onDisk.Beta, 1))

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, id))
	var exported ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.True(t, math.IsNaN(exported.J))
	assert.Equal(t, []float64{0.1, 0.4, 0.75}, exported.Magnetization)
}

func TestStoreSaveFailureRemovesRunDir(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = st.Save("orphan", config.DefaultConfig(), sampleResult())
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "left run directory %s", e.Name())
	}
}

func TestStoreEmptySeries(t *testing.T) {
	st := openStore(t)
	cfg := config.DefaultConfig()
	cfg.Steps = 0

	id, err := st.Save("", cfg, &ising.Result{})
	require.NoError(t, err)

	series, err := st.LoadSeries(id)
	require.NoError(t, err)
	assert.Empty(t, series)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, meta.FinalMagnetization)
	assert.NotNil(t, meta.Metrics)
}

func TestExportJSON(t *testing.T) {
	st := openStore(t)
	id, err := st.Save("export", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, id))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, id, data.ID)
	assert.Equal(t, "export", data.Label)
	assert.Equal(t, []float64{0.1, 0.4, 0.75}, data.Magnetization)
}

func TestExportCSV(t *testing.T) {
	st := openStore(t)
	id, err := st.Save("", config.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportCSV(&buf, id))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "sweep,magnetization", lines[0])
	assert.Equal(t, "3,0.75", lines[3])
}
