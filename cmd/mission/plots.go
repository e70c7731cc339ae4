package main

import (
	"fmt"
	"path/filepath"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var histories = []struct {
	name, label, path string
	scale             float64
}{
	{"altitude", "altitude (m)", rcaide.PathAltitude, 1},
	{"speed", "true air speed (m/s)", rcaide.PathSpeed, 1},
	{"mass", "mass (kg)", rcaide.PathMass, 1},
	{"throttle", "throttle", rcaide.PathThrottle, 1},
	{"range", "range (km)", rcaide.PathRange, 1e-3},
}

// plotResults saves one PNG per time history of the merged mission results.
func plotResults(dir, tag string, merged *rcaide.State) error {
	t, ok := merged.Conditions.Lookup(rcaide.PathTime)
	if !ok {
		return fmt.Errorf("no time history to plot")
	}
	for _, h := range histories {
		y, ok := merged.Conditions.Lookup(h.path)
		if !ok {
			continue
		}
		pts := make(plotter.XYs, t.Len())
		for i := range pts {
			pts[i].X = t.At(i, 0)
			pts[i].Y = h.scale * y.At(i, 0)
		}
		p := plot.New()
		p.Title.Text = tag
		p.X.Label.Text = "time (s)"
		p.Y.Label.Text = h.label
		p.Add(plotter.NewGrid())
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		if err := p.Save(8*vg.Inch, 4*vg.Inch, filepath.Join(dir, fmt.Sprintf("mission-%s-%s.png", tag, h.name))); err != nil {
			return err
		}
	}
	return nil
}
