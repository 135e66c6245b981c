package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TextSeriesSink writes the magnetization series one value per line.
type TextSeriesSink struct {
	Path string
}

func NewTextSeriesSink(path string) *TextSeriesSink {
	return &TextSeriesSink{Path: path}
}

func (s *TextSeriesSink) OnSeries(series []float64) error {
	if len(series) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	if err := WriteSeries(f, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func WriteSeries(w io.Writer, series []float64) error {
	bw := bufio.NewWriter(w)
	for _, m := range series {
		if _, err := fmt.Fprintf(bw, "%.18e\n", m); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSeries parses one float per line, skipping blank lines.
func ReadSeries(r io.Reader) ([]float64, error) {
	var series []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		series = append(series, v)
	}
	return series, sc.Err()
}
