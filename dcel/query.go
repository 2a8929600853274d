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

package dcel

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/schematize/planar"
)

// Cycle returns the half-edges of the boundary cycle e belongs to,
// starting at e and following Next (or Prev if forwards is false).
// A broken cycle ends at the first missing link.
func (m *Mesh) Cycle(e EdgeID, forwards bool) []EdgeID {
	var out []EdgeID
	cur := e
	for i := 0; i <= len(m.edges); i++ {
		he := m.HalfEdge(cur)
		if he == nil {
			return out
		}
		out = append(out, cur)
		if forwards {
			cur = he.Next
		} else {
			cur = he.Prev
		}
		if cur == e {
			return out
		}
	}
	return out
}

// MinimalCycleDistance returns the smallest number of steps along the
// cycle of e, in either direction, needed to reach other. It returns -1
// if other is not part of the cycle.
func (m *Mesh) MinimalCycleDistance(e, other EdgeID) int {
	fwd := indexOf(m.Cycle(e, true), other)
	bwd := indexOf(m.Cycle(e, false), other)
	if fwd < 0 || bwd < 0 {
		return -1
	}
	if fwd < bwd {
		return fwd
	}
	return bwd
}

func indexOf(s []EdgeID, e EdgeID) int {
	for i, x := range s {
		if x == e {
			return i
		}
	}
	return -1
}

// Endpoints returns the positions of the tail and head of e.
func (m *Mesh) Endpoints(e EdgeID) (tail, head geom.Point, ok bool) {
	he := m.HalfEdge(e)
	h := m.Head(e)
	if he == nil || h == NoVertex {
		return geom.Point{}, geom.Point{}, false
	}
	return m.Point(he.Tail), m.Point(h), true
}

// Segment returns e as a line segment.
func (m *Mesh) Segment(e EdgeID) planar.Segment {
	t, h, _ := m.Endpoints(e)
	return planar.Segment{A: t, B: h}
}

// Vector returns the vector from the tail to the head of e.
func (m *Mesh) Vector(e EdgeID) planar.Vector {
	return m.Segment(e).Vector()
}

// Angle returns the direction of e in [0, 2π). ok is false for
// zero-length or unlinked half-edges.
func (m *Mesh) Angle(e EdgeID) (float64, bool) {
	if _, _, ok := m.Endpoints(e); !ok {
		return 0, false
	}
	return m.Vector(e).Angle()
}

// Length returns the length of e.
func (m *Mesh) Length(e EdgeID) float64 {
	return m.Segment(e).Length()
}

// Midpoint returns the point halfway along e.
func (m *Mesh) Midpoint(e EdgeID) geom.Point {
	return m.Segment(e).Midpoint()
}

// Line returns the infinite line through e.
func (m *Mesh) Line(e EdgeID) (planar.Line, bool) {
	return m.Segment(e).Line()
}

// IntersectLine returns the point where l crosses e.
func (m *Mesh) IntersectLine(e EdgeID, l planar.Line) (geom.Point, bool) {
	return m.Segment(e).IntersectLine(l)
}

// EdgeDistance returns the smallest distance between an endpoint of one
// edge and the other edge.
func (m *Mesh) EdgeDistance(e, o EdgeID) float64 {
	a, b := m.Segment(e), m.Segment(o)
	return math.Min(
		math.Min(b.DistanceToPoint(a.A), b.DistanceToPoint(a.B)),
		math.Min(a.DistanceToPoint(b.A), a.DistanceToPoint(b.B)),
	)
}

// SortEdges returns the half-edges leaving v ordered by angle, clockwise
// (descending angle) or counter-clockwise (ascending angle).
func (m *Mesh) SortEdges(v VertexID, clockwise bool) []EdgeID {
	vv := m.Vertex(v)
	if vv == nil {
		return nil
	}
	edges := append([]EdgeID(nil), vv.Edges...)
	angles := make(map[EdgeID]float64, len(edges))
	for _, e := range edges {
		a, _ := m.Angle(e)
		angles[e] = a
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if clockwise {
			return angles[edges[i]] > angles[edges[j]]
		}
		return angles[edges[i]] < angles[edges[j]]
	})
	return edges
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, v := range m.vertices {
		if !v.removed {
			b.Extend(geom.NewBoundsPoint(v.Point))
		}
	}
	return b
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() geom.Point {
	b := m.Bounds()
	return geom.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Diameter returns the length of the bounding box diagonal.
func (m *Mesh) Diameter() float64 {
	if len(m.Vertices()) == 0 {
		return 0
	}
	b := m.Bounds()
	return planar.Distance(b.Min, b.Max)
}

// FaceRing returns the vertex positions of the outer cycle of f.
func (m *Mesh) FaceRing(f FaceID) []geom.Point {
	ff := m.Face(f)
	if ff == nil || ff.IsUnbounded() {
		return nil
	}
	return m.ring(ff.Edge)
}

func (m *Mesh) ring(e EdgeID) []geom.Point {
	cycle := m.Cycle(e, true)
	out := make([]geom.Point, len(cycle))
	for i, c := range cycle {
		out[i] = m.Point(m.edges[c].Tail)
	}
	return out
}

// FaceArea returns the signed area enclosed by the outer cycle of f.
// It is positive for counter-clockwise cycles.
func (m *Mesh) FaceArea(f FaceID) float64 {
	return planar.SignedArea(m.FaceRing(f))
}

// Area returns the area covered by the input features. Faces that belong
// to no feature or to two features (the hole of one and the fill of
// another) are ignored; holes are subtracted.
func (m *Mesh) Area() float64 {
	var a float64
	for _, f := range m.faces {
		if f.removed || f.IsUnbounded() || len(f.Features) != 1 {
			continue
		}
		fa := m.FaceArea(f.ID)
		if f.IsHole() {
			fa = -fa
		}
		a += fa
	}
	return a
}
