package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/isingsim/internal/config"
)

func newModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.GridSize = 8
	cfg.Seed = 3
	cfg.Output.Dir = t.TempDir()
	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTickSweepsWhileRunning(t *testing.T) {
	m := newModel(t)
	m.Update(TickMsg{})
	m.Update(TickMsg{})
	if m.sweep != 2 {
		t.Fatalf("expected 2 sweeps, got %d", m.sweep)
	}
	if len(m.history) != 2 {
		t.Errorf("expected 2 history points, got %d", len(m.history))
	}

	m.Update(key(" "))
	m.Update(TickMsg{})
	if m.sweep != 2 {
		t.Errorf("paused model should not sweep, got %d", m.sweep)
	}

	m.Update(key("n"))
	if m.sweep != 3 {
		t.Errorf("n should single-step while paused, got %d", m.sweep)
	}
}

func TestBetaKeys(t *testing.T) {
	m := newModel(t)
	beta := m.params.Beta
	m.Update(key("+"))
	if m.params.Beta <= beta {
		t.Errorf("+ should raise beta, got %f", m.params.Beta)
	}
	m.Update(key("-"))
	m.Update(key("-"))
	if m.params.Beta >= beta {
		t.Errorf("- should lower beta, got %f", m.params.Beta)
	}
}

func TestResetRestoresInitialLattice(t *testing.T) {
	m := newModel(t)
	initial := m.lattice.Spins()
	for i := 0; i < 5; i++ {
		m.Update(TickMsg{})
	}
	m.Update(key("+"))
	m.Update(key("r"))

	if m.sweep != 0 || len(m.history) != 0 {
		t.Errorf("reset should clear progress, sweep=%d history=%d", m.sweep, len(m.history))
	}
	if m.params.Beta != m.cfg.Beta {
		t.Errorf("reset should restore beta, got %f", m.params.Beta)
	}
	got := m.lattice.Spins()
	for i := range initial {
		if got[i] != initial[i] {
			t.Fatalf("site %d differs after reset", i)
		}
	}
}

func TestResetReplaysCheckerboardTrajectory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GridSize = 8
	cfg.Seed = 11
	cfg.Backend = "checkerboard"
	cfg.Workers = 2
	cfg.Output.Dir = t.TempDir()
	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		m.Update(TickMsg{})
	}
	first := append([]float64(nil), m.history...)
	firstSpins := m.lattice.Spins()

	m.Update(key("r"))
	for i := 0; i < 4; i++ {
		m.Update(TickMsg{})
	}

	for i := range first {
		if m.history[i] != first[i] {
			t.Fatalf("sweep %d: magnetization %f after reset, want %f", i, m.history[i], first[i])
		}
	}
	got := m.lattice.Spins()
	for i := range firstSpins {
		if got[i] != firstSpins[i] {
			t.Fatalf("site %d differs after replay", i)
		}
	}
}

func TestHistoryIsBounded(t *testing.T) {
	m := newModel(t)
	for i := 0; i < historyCapacity+10; i++ {
		m.step()
	}
	if len(m.history) != historyCapacity {
		t.Errorf("expected %d history points, got %d", historyCapacity, len(m.history))
	}
}

func TestRecordGIF(t *testing.T) {
	m := newModel(t)
	m.gifPath = filepath.Join(t.TempDir(), "live.gif")

	m.Update(key("g"))
	m.Update(TickMsg{})
	m.Update(TickMsg{})
	if len(m.frames) != 2 {
		t.Fatalf("expected 2 recorded frames, got %d", len(m.frames))
	}
	m.Update(key("g"))

	if m.err != nil {
		t.Fatal(m.err)
	}
	if _, err := os.Stat(m.gifPath); err != nil {
		t.Errorf("gif not written: %v", err)
	}
	if m.recording || m.frames != nil {
		t.Error("recording should stop after save")
	}
}

func TestViewRendersLattice(t *testing.T) {
	m := newModel(t)
	m.step()
	m.step()
	v := m.View()
	if !strings.Contains(v, "▀") {
		t.Error("view should contain half blocks")
	}
	if !strings.Contains(v, "Sweep") || !strings.Contains(v, "RUNNING") {
		t.Error("view missing status or metrics")
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
