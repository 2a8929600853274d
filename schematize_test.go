/*
Copyright © 2026 the schematize authors.
This file is part of schematize.

schematize is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

schematize is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with schematize.  If not, see <http://www.gnu.org/licenses/>.
*/

package schematize

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/orientation"
	"gonum.org/v1/gonum/floats"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	log := logrus.New()
	log.Level = logrus.WarnLevel
	cfg.Log = log
	return cfg
}

// checkSchematized fails if m is broken or has a face that is not
// simple. It also fails if an edge does not follow c or if m does not
// cover area.
func checkSchematized(t *testing.T, m *dcel.Mesh, c *orientation.Set, area float64) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if f, ok := nonSimpleFace(m); ok {
		t.Errorf("face %d is not simple: %v", f, m.FaceRing(f))
	}
	for _, e := range m.SimpleEdges() {
		a, ok := m.Angle(e)
		if !ok || !c.IsAligned(a) {
			t.Errorf("edge %s is not aligned", m.EdgeString(e))
		}
	}
	if have := m.Area(); !floats.EqualWithinAbsOrRel(have, area, 1e-6, 1e-6) {
		t.Errorf("area have %g, want %g", have, area)
	}
}

func TestSchematizeSquareWithHole(t *testing.T) {
	hole := []geom.Point{{X: 3, Y: 3}, {X: 3, Y: 7}, {X: 7, Y: 7}, {X: 7, Y: 3}}
	m := mustMesh(t, geom.MultiPolygon{{square(0, 0, 10, 10), hole}})
	cfg := testConfig()
	out, err := Schematize(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	checkSchematized(t, out, cfg.C, 84)
	if n := len(out.Vertices()); n != 8 {
		t.Errorf("have %d vertices, want 8", n)
	}
	sub := out.ToSubdivision()
	if len(sub.MultiPolygons) != 1 || len(sub.MultiPolygons[0].Polygons) != 1 {
		t.Fatalf("have %d features", len(sub.MultiPolygons))
	}
	if n := len(sub.MultiPolygons[0].Polygons[0]); n != 2 {
		t.Errorf("have %d rings, want 2", n)
	}
}

func TestSchematizeBumpAndDent(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	cfg := testConfig()
	s, err := New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Mesh.Vertices()); n != 12 {
		t.Errorf("after preprocessing: have %d vertices, want 12", n)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Iteration == 0 {
		t.Error("no edge move was performed")
	}
	if !s.Done {
		t.Error("schematization is not done")
	}
	checkSchematized(t, s.Mesh, cfg.C, 40)
	if n := len(s.Mesh.Vertices()); n >= 12 {
		t.Errorf("have %d vertices, want fewer than 12", n)
	}
}

func TestSchematizeUnaligned(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 8, Y: 4}, {X: 2, Y: 4}}}})
	cfg := testConfig()
	out, err := Schematize(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	checkSchematized(t, out, cfg.C, 24)
}

// starPolygon returns a star with n tips at distance outer from the
// origin and n notches at distance inner, and its area.
func starPolygon(n int, outer, inner float64) ([]geom.Point, float64) {
	var ring []geom.Point
	step := math.Pi / float64(n)
	for i := 0; i < 2*n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i) * step
		ring = append(ring, geom.Point{X: r * math.Cos(a), Y: r * math.Sin(a)})
	}
	return ring, float64(n) * outer * inner * math.Sin(step)
}

func TestSchematizeStar(t *testing.T) {
	ring, area := starPolygon(12, 10, 7)
	m := mustMesh(t, geom.MultiPolygon{{ring}})
	cfg := testConfig()
	s, err := New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	checkSchematized(t, s.Mesh, cfg.C, area)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Iteration == 0 {
		t.Error("no edge move was performed")
	}
	checkSchematized(t, s.Mesh, cfg.C, area)
}

func TestReplaceStaircasesNotSimple(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{square(0, 0, 4, 4)}})
	e, ok := m.FindHalfEdge(geom.Point{X: 0, Y: 0}, geom.Point{X: 4, Y: 0})
	if !ok {
		t.Fatal("missing bottom edge")
	}
	cfg := testConfig()
	s := &Schematization{
		Mesh:   m,
		Config: cfg,
		Log:    cfg.logger(),
		// The spike crosses the top of the square.
		Stairs: []*Staircase{{Edge: e, Points: []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 5}, {X: 4, Y: 0}}}},
	}
	err := ReplaceStaircases()(s)
	if !errors.Is(err, dcel.ErrInvariant) {
		t.Errorf("have error %v, want %v", err, dcel.ErrInvariant)
	}
}

func TestSchematizeStaircasesOnly(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 8, Y: 4}, {X: 2, Y: 4}}}})
	cfg := testConfig()
	cfg.Epsilon = 100
	s, err := New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if len(s.Stairs) != 2 {
		t.Errorf("have %d staircases, want 2", len(s.Stairs))
	}
	// Four corners and four inner points per staircase.
	if n := len(s.Mesh.Vertices()); n != 12 {
		t.Errorf("have %d vertices, want 12", n)
	}
	checkSchematized(t, s.Mesh, cfg.C, 24)
}

func TestSteps(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	cfg := testConfig()
	cfg.Snapshots = true
	s, err := NewSteps(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	var steps int
	for !s.Done && steps < 100 {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
		steps++
	}
	if !s.Done {
		t.Fatal("not done after 100 steps")
	}
	if steps != s.Iteration+1 {
		t.Errorf("%d steps for %d edge moves", steps, s.Iteration)
	}
	if len(s.Snapshots) != s.Iteration+2 {
		t.Fatalf("have %d snapshots for %d edge moves", len(s.Snapshots), s.Iteration)
	}
	if s.Snapshots[0].Step != "preprocessed" || s.Snapshots[len(s.Snapshots)-1].Step != "done" {
		t.Errorf("snapshots run from %q to %q", s.Snapshots[0].Step, s.Snapshots[len(s.Snapshots)-1].Step)
	}
	if s.Snapshots[0].Hash == s.Snapshots[1].Hash {
		t.Error("edge move did not change the geometry")
	}
	n := len(s.Snapshots)
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if len(s.Snapshots) != n {
		t.Error("step after completion changed the schematization")
	}
}

func TestIterationLimit(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	cfg := testConfig()
	cfg.MaxIterations = 1
	s, err := New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Iteration != 1 {
		t.Errorf("have %d iterations, want 1", s.Iteration)
	}
}

func TestIterationLimitSnapshots(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	cfg := testConfig()
	cfg.MaxIterations = 1
	cfg.Snapshots = true
	s, err := New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	var steps []string
	for _, snap := range s.Snapshots {
		steps = append(steps, fmt.Sprintf("%d %s", snap.Iteration, snap.Step))
	}
	want := []string{"0 preprocessed", "1 edge move", "1 done"}
	if fmt.Sprint(steps) != fmt.Sprint(want) {
		t.Errorf("have snapshots %q, want %q", steps, want)
	}
}

func TestLog(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	var buf bytes.Buffer
	s := &Schematization{Mesh: m, Iteration: 3}
	if err := Log(&buf)(s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Iteration 3") || !strings.Contains(out, "vertices=12") {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Error(err)
	}
	for name, f := range map[string]func(*Config){
		"no orientations":     func(c *Config) { c.C = nil },
		"negative epsilon":    func(c *Config) { c.Epsilon = -1 },
		"no epsilon":          func(c *Config) { c.EpsilonFactor = 0 },
		"negative step area":  func(c *Config) { c.MaxStepArea = -1 },
		"negative iterations": func(c *Config) { c.MaxIterations = -1 },
	} {
		cfg := DefaultConfig()
		f(cfg)
		if cfg.Validate() == nil {
			t.Errorf("%s: config should be invalid", name)
		}
	}
	if _, err := New(dcel.NewMesh(), &Config{}); err == nil {
		t.Error("New accepted an invalid config")
	}
}
