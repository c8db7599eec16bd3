package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RenderPNG draws spec as a bar chart image at path.
func RenderPNG(spec Spec, path string) error {
	if len(spec.Series) == 0 || len(spec.Series[0].Data) == 0 {
		return fmt.Errorf("render %s: no data points", spec.Name)
	}
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XAxis
	p.Y.Label.Text = spec.YAxis

	n := len(spec.Series)
	groupWidth := vg.Points(24)
	barWidth := groupWidth / vg.Length(n)
	for i, s := range spec.Series {
		vals := make(plotter.Values, len(s.Data))
		for j, pt := range s.Data {
			vals[j] = pt.Value
		}
		bars, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return fmt.Errorf("render %s: %w", spec.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = parseHex(s.Color, i)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * barWidth
		p.Add(bars)
		if spec.ShowLegend {
			p.Legend.Add(s.Name, bars)
		}
	}
	p.Legend.Top = true
	p.NominalX(spec.Labels()...)

	width := vg.Length(len(spec.Series[0].Data)) * groupWidth * 1.5
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir chart dir: %w", err)
		}
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// RenderAll writes one PNG per spec into dir and returns the written paths.
// Specs without data are skipped.
func RenderAll(specs []Spec, dir string) ([]string, error) {
	var out []string
	var errs []error
	for _, s := range specs {
		if len(s.Series) == 0 || len(s.Series[0].Data) == 0 {
			continue
		}
		path := filepath.Join(dir, s.Name+".png")
		if err := RenderPNG(s, path); err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, path)
	}
	return out, errors.Join(errs...)
}

func parseHex(s string, i int) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return plotutil.Color(i)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return plotutil.Color(i)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
