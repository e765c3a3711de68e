package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveAgeGroupFigure writes a bar chart of the age-group distribution.
func SaveAgeGroupFigure(s *Summary, path string) error {
	return saveBarChart("Age group distribution", "Subjects", s.AgeGroups, path)
}

// SaveSexFigure writes a bar chart of the sex distribution.
func SaveSexFigure(s *Summary, path string) error {
	return saveBarChart("Sex distribution", "Subjects", s.Sex, path)
}

func saveBarChart(title, yLabel string, rows []CountRow, path string) error {
	if len(rows) == 0 {
		return fmt.Errorf("figure %q: no data", title)
	}

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		values[i] = float64(r.Count)
		labels[i] = r.Value
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return fmt.Errorf("figure %q: %w", title, err)
	}
	bars.Color = color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save figure %q: %w", title, err)
	}
	return nil
}
