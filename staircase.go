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
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/orientation"
	"github.com/spatialmodel/schematize/planar"
)

// Minimum number of steps per staircase class.
const (
	minBasicSteps     = 2
	minDeviatingSteps = 3
	minAlignedSteps   = 2
)

// Staircase is a C-oriented polyline that connects the endpoints of an
// edge, together with the region it may sweep.
type Staircase struct {
	Edge      dcel.EdgeID
	Class     EdgeClass
	Direction int

	// Points runs from the tail to the head of Edge.
	Points []geom.Point

	// Region is the closed ring bounding every staircase of the edge.
	// It is nil for aligned basic edges.
	Region []geom.Point

	// Steps is the number of steps of the staircase.
	Steps int

	width float64
}

// NewStaircase builds the staircase of e, which has class class and is
// assigned direction dir.
func NewStaircase(m *dcel.Mesh, cfg *Config, class EdgeClass, dir int, e dcel.EdgeID) (*Staircase, error) {
	tail, head, ok := m.Endpoints(e)
	if !ok {
		return nil, fmt.Errorf("schematize: staircase of missing edge %d: %w", e, dcel.ErrInvariant)
	}
	s := &Staircase{Edge: e, Class: class, Direction: dir}
	a, ok := m.Angle(e)
	if !ok {
		s.Points = []geom.Point{tail, head}
		return s, nil
	}
	c := cfg.C
	da := planar.FromAngle(c.DirectionAngle(dir))
	v := planar.VectorBetween(tail, head)

	switch class {
	case AlignedBasic:
		s.Points = []geom.Point{tail, head}
	case AlignedDeviating:
		sin := math.Abs(da.Cross(v.Unit()))
		s.Steps = stepCount(minAlignedSteps, v.Length()*v.Length()*sin/2, cfg.MaxStepArea)
		h := v.Length() / float64(2*s.Steps)
		up, along := da.Scale(h), v.Scale(1/float64(s.Steps))
		p := tail
		s.Points = []geom.Point{p}
		for i := 0; i < s.Steps; i++ {
			p = up.Translate(p)
			s.Points = append(s.Points, p)
			p = along.Translate(p)
			s.Points = append(s.Points, p)
			p = up.Scale(-1).Translate(p)
			s.Points = append(s.Points, p)
		}
		s.Points[len(s.Points)-1] = head
		s.Region = []geom.Point{tail, up.Translate(tail), up.Translate(head), head, tail}
	case UnalignedBasic, Evading, UnalignedDeviating:
		sec := c.AssociatedSectors(a)[0]
		s.width = sec.Width()
		d1a := sec.Lower
		if class == UnalignedDeviating {
			d1a = ClosestAssociatedAngle(m, c, e, dir)
		} else if dirAngle := c.DirectionAngle(dir); sameDirection(c, dirAngle, sec.Upper) {
			d1a = sec.Upper
		}
		d2a := sec.Other(d1a)
		d1, d2 := planar.FromAngle(d1a), planar.FromAngle(d2a)
		l1, l2 := decompose(v, d1, d2)
		area := l1 * l2 * math.Sin(s.width)
		if class == UnalignedDeviating {
			s.Steps = stepCount(minDeviatingSteps, area, cfg.MaxStepArea)
			s.deviatingPoints(tail, head, da, d1, d2, l1, l2)
		} else {
			s.Steps = stepCount(minBasicSteps, area, cfg.MaxStepArea)
			s.basicPoints(tail, head, d1, d2, l1, l2)
		}
		if class == UnalignedDeviating {
			// The hook leaves the parallelogram.
			s.Region = []geom.Point{
				tail, s.Points[1], s.Points[2],
				d1.Scale(l1).Translate(tail), head, d2.Scale(l2).Translate(tail),
				tail,
			}
		} else {
			s.Region = parallelogram(sec, tail, head, v)
		}
	default:
		return nil, fmt.Errorf("schematize: %s has class %v: %w", m.EdgeString(e), class, ErrUnclassifiedEdge)
	}
	return s, nil
}

func sameDirection(c *orientation.Set, a, b float64) bool {
	return planar.AngularDistance(a, b) <= c.Tolerance
}

// decompose returns l1 and l2 such that v = l1*d1 + l2*d2.
func decompose(v, d1, d2 planar.Vector) (l1, l2 float64) {
	det := d1.Cross(d2)
	return v.Cross(d2) / det, d1.Cross(v) / det
}

// stepCount returns the number of steps needed so that no step spans
// more than maxStepArea of a region of the given area.
func stepCount(min int, area, maxStepArea float64) int {
	if maxStepArea <= 0 {
		return min
	}
	n := int(math.Ceil(math.Sqrt(area / maxStepArea)))
	if n < min {
		return min
	}
	return n
}

// parallelogram returns the closed region spanned by the sector bounds
// of sec between tail and head.
func parallelogram(sec orientation.Sector, tail, head geom.Point, v planar.Vector) []geom.Point {
	lower, upper := planar.FromAngle(sec.Lower), planar.FromAngle(sec.Upper)
	ll, lu := decompose(v, lower, upper)
	return []geom.Point{
		tail,
		lower.Scale(ll).Translate(tail),
		head,
		upper.Scale(lu).Translate(tail),
		tail,
	}
}

// basicPoints builds a balanced zigzag: a half step along d1, n steps
// along d2 alternating with n-1 full steps along d1, and a final half
// step along d1.
func (s *Staircase) basicPoints(tail, head geom.Point, d1, d2 planar.Vector, l1, l2 float64) {
	n := float64(s.Steps)
	half, full1, full2 := d1.Scale(l1/(2*n)), d1.Scale(l1/n), d2.Scale(l2/n)
	p := half.Translate(tail)
	s.Points = []geom.Point{tail, p}
	for i := 0; i < s.Steps; i++ {
		p = full2.Translate(p)
		s.Points = append(s.Points, p)
		if i < s.Steps-1 {
			p = full1.Translate(p)
			s.Points = append(s.Points, p)
		}
	}
	s.Points = append(s.Points, head)
}

// deviatingPoints builds a hook that leaves the tail along the assigned
// direction da and comes back after one step along d1, followed by a
// zigzag of d2 and d1 steps ending at the head. The hook spans the same
// area as every other step.
func (s *Staircase) deviatingPoints(tail, head geom.Point, da, d1, d2 planar.Vector, l1, l2 float64) {
	n := float64(s.Steps)
	s1, s2 := l1/n, l2/n
	h := s2 / 2
	if sin := math.Abs(da.Cross(d1)); sin > 1e-12 {
		h = s.StepArea(s1, s2) / (s1 * sin)
	}
	p1 := da.Scale(h).Translate(tail)
	p2 := d1.Scale(s1).Translate(p1)
	p3 := d1.Scale(s1).Translate(tail)
	s.Points = []geom.Point{tail, p1, p2, p3}
	p := p3
	for i := 0; i < s.Steps; i++ {
		p = d2.Scale(s2).Translate(p)
		s.Points = append(s.Points, p)
		if i < s.Steps-1 {
			p = d1.Scale(s1).Translate(p)
			s.Points = append(s.Points, p)
		}
	}
	s.Points[len(s.Points)-1] = head
}

// StepArea returns the area of the triangle spanned by one step of
// length outer followed by one of length inner, turning by the width of
// the sector of the staircase.
func (s *Staircase) StepArea(outer, inner float64) float64 {
	return 0.5 * outer * inner * math.Sin(s.width)
}

// Segments returns the segments of the staircase polyline.
func (s *Staircase) Segments() []planar.Segment {
	out := make([]planar.Segment, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		out = append(out, planar.Segment{A: s.Points[i-1], B: s.Points[i]})
	}
	return out
}
