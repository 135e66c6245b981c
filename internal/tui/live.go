// Package tui is an interactive terminal view of a running lattice.
package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/isingsim/internal/compute"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

const (
	historyCapacity = 400
	graphWidth      = 60
	betaStep        = 1.05
)

type TickMsg time.Time

type Model struct {
	cfg      *config.Config
	backend  compute.Backend
	src      rng.Source
	lattice  *lattice.Lattice
	params   ising.Params
	sweep    int
	stats    ising.SweepStats
	history  []float64
	running  bool
	interval time.Duration

	// maxCols bounds the rendered width in terminal cells.
	maxCols int

	recording bool
	frames    []lattice.View
	gifPath   string
	status    string
	err       error
}

// New builds a running model from cfg. Steps is ignored: the live view
// keeps sweeping until the user quits.
func New(cfg *config.Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var backend compute.Backend
	if cfg.Backend == compute.Auto {
		backend = compute.AutoSelectBackend(cfg.GridSize, cfg.Workers)
	} else {
		b, err := compute.ByName(cfg.Backend, cfg.Workers)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	m := &Model{
		cfg:      cfg.Clone(),
		backend:  backend,
		params:   cfg.Params(),
		running:  true,
		interval: 100 * time.Millisecond,
		maxCols:  96,
		gifPath:  "live.gif",
	}
	if cfg.Output.Animation != "" {
		m.gifPath = filepath.Join(cfg.Output.Dir, cfg.Output.Animation)
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) reset() error {
	m.backend.Cleanup()
	m.src = rng.New(m.cfg.Seed)
	l, err := lattice.New(m.cfg.GridSize, m.cfg.Density, m.src)
	if err != nil {
		return err
	}
	m.lattice = l
	m.params.Beta = m.cfg.Beta
	m.sweep = 0
	m.stats = ising.SweepStats{}
	m.history = make([]float64, 0, historyCapacity)
	m.frames = nil
	m.recording = false
	return nil
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.backend.Cleanup()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = m.reset()
			m.status = "reset"
		case "+", "=":
			m.params.Beta *= betaStep
		case "-", "_":
			m.params.Beta /= betaStep
		case "n":
			if !m.running {
				m.step()
			}
		case "g":
			m.toggleRecording()
		}
	case tea.WindowSizeMsg:
		m.maxCols = max(msg.Width-4, 8)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	stats := m.backend.Sweep(m.lattice, m.params, m.src)
	m.stats = m.stats.Add(stats)
	m.sweep++

	if len(m.history) == historyCapacity {
		m.history = m.history[1:]
	}
	m.history = append(m.history, m.lattice.Magnetization())

	if m.recording {
		m.frames = append(m.frames, m.lattice.Clone())
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]lattice.View, 0)
		m.status = "recording"
		return
	}
	sink := export.NewGIFAnimationSink(m.gifPath, m.cfg.Output.FrameDelay, m.cfg.Output.FrameScale)
	if err := sink.OnFrames(m.frames); err != nil {
		m.err = err
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.recording = false
	m.frames = nil
}

func (m *Model) View() string {
	var s strings.Builder

	s.WriteString(Title.Render(fmt.Sprintf("ISING %d×%d", m.lattice.Size(), m.lattice.Size())) + "  ")
	switch {
	case m.recording:
		s.WriteString(StatusRecording.Render("● REC"))
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderLattice())
	s.WriteString("\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(graphWidth),
			asciigraph.LowerBound(-1),
			asciigraph.UpperBound(1),
			asciigraph.Caption("m(t)"),
		)
		s.WriteString(GraphStyle.Render(chart) + "\n\n")
	}

	mag := m.lattice.Magnetization()
	s.WriteString(MetricLabel.Render("Sweep") + MetricValue.Render(fmt.Sprintf("%d", m.sweep)) + "\n")
	s.WriteString(MetricLabel.Render("β") + MetricValue.Render(fmt.Sprintf("%.4f", m.params.Beta)) + "\n")
	s.WriteString(MetricLabel.Render("m") + MetricValue.Render(fmt.Sprintf("%+.4f", mag)) + "\n")
	s.WriteString(MetricLabel.Render("|m|") + ProgressBar(math.Abs(mag), 20) + "\n")
	s.WriteString(MetricLabel.Render("Acceptance") + MetricValue.Render(fmt.Sprintf("%.3f", m.stats.AcceptanceRate())) + "\n")
	s.WriteString(MetricLabel.Render("Backend") + MetricValue.Render(m.backend.Name()) + "\n")

	s.WriteString(Separator(graphWidth) + "\n")
	if m.err != nil {
		s.WriteString(StatusRecording.Render("error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString(Subtle.Render(m.status) + "\n")
	}
	s.WriteString(KeyHint.Render("space pause · n step · +/- β · r reset · g record gif · q quit"))
	return s.String()
}

// renderLattice draws two rows per line, sampling every stride-th site when
// the lattice is wider than maxCols.
func (m *Model) renderLattice() string {
	n := m.lattice.Size()
	stride := 1
	if n > m.maxCols {
		stride = (n + m.maxCols - 1) / m.maxCols
	}

	var rows []string
	for y := 0; y < n; y += 2 * stride {
		var line strings.Builder
		for x := 0; x < n; x += stride {
			top := spinIndex(m.lattice.Get(x, y))
			bottom := top
			if y+stride < n {
				bottom = spinIndex(m.lattice.Get(x, y+stride))
			}
			line.WriteString(halfBlocks[top][bottom])
		}
		rows = append(rows, line.String())
	}
	return Panel.Render(strings.Join(rows, "\n"))
}

func spinIndex(s lattice.Spin) int {
	if s == lattice.Up {
		return 1
	}
	return 0
}

func Run(cfg *config.Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
