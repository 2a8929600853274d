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

package planar

import (
	"math"

	"github.com/ctessum/geom"
)

// Line is an infinite line through Point in direction Angle.
type Line struct {
	Point geom.Point
	Angle float64
}

// LineThrough returns the line passing through a and b. ok is false
// if a and b coincide.
func LineThrough(a, b geom.Point) (Line, bool) {
	angle, ok := VectorBetween(a, b).Angle()
	if !ok {
		return Line{}, false
	}
	return Line{Point: a, Angle: angle}, true
}

// Direction returns the unit vector along l.
func (l Line) Direction() Vector { return FromAngle(l.Angle) }

// SignedDistance returns the distance of p from l, positive when p lies
// to the left of l's direction.
func (l Line) SignedDistance(p geom.Point) float64 {
	return l.Direction().Cross(VectorBetween(l.Point, p))
}

// Intersect returns the point where l and o cross. ok is false for
// parallel or coincident lines.
func (l Line) Intersect(o Line) (geom.Point, bool) {
	r, s := l.Direction(), o.Direction()
	rxs := r.Cross(s)
	if math.Abs(rxs) < 1e-12 {
		return geom.Point{}, false
	}
	t := VectorBetween(l.Point, o.Point).Cross(s) / rxs
	return r.Scale(t).Translate(l.Point), true
}

// Segment is the finite line segment between A and B.
type Segment struct {
	A, B geom.Point
}

// Vector returns B - A.
func (s Segment) Vector() Vector { return VectorBetween(s.A, s.B) }

// Length returns the length of s.
func (s Segment) Length() float64 { return Distance(s.A, s.B) }

// Midpoint returns the point halfway between A and B.
func (s Segment) Midpoint() geom.Point { return Lerp(s.A, s.B, 0.5) }

// Line returns the line through s. ok is false for zero-length segments.
func (s Segment) Line() (Line, bool) { return LineThrough(s.A, s.B) }

// Bounds returns the extent of s.
func (s Segment) Bounds() *geom.Bounds {
	b := geom.NewBoundsPoint(s.A)
	b.Extend(geom.NewBoundsPoint(s.B))
	return b
}

// DistanceToPoint returns the distance between p and the closest point on s.
func (s Segment) DistanceToPoint(p geom.Point) float64 {
	v := s.Vector()
	l2 := v.Dot(v)
	if l2 == 0 {
		return Distance(s.A, p)
	}
	t := VectorBetween(s.A, p).Dot(v) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(Lerp(s.A, s.B, t), p)
}

// Contains reports whether p lies on s within distance tol.
func (s Segment) Contains(p geom.Point, tol float64) bool {
	return s.DistanceToPoint(p) <= tol
}

// Intersect returns the point where s and o intersect.
// Parallel segments do not intersect. Collinear segments that overlap
// return a NaN point and ok=true when collinearOverlap is set; otherwise
// they are treated like parallel segments.
func (s Segment) Intersect(o Segment, collinearOverlap bool) (geom.Point, bool) {
	r, q := s.Vector(), o.Vector()
	ac := VectorBetween(s.A, o.A)
	rxq := r.Cross(q)
	acxr := ac.Cross(r)

	if rxq == 0 && acxr == 0 {
		if !collinearOverlap {
			return geom.Point{}, false
		}
		rr := r.Dot(r)
		if rr == 0 {
			return geom.Point{}, false
		}
		t0 := ac.Dot(r) / rr
		t1 := t0 + q.Dot(r)/rr
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t1 < 0 || t0 > 1 {
			return geom.Point{}, false
		}
		return geom.Point{X: math.NaN(), Y: math.NaN()}, true
	}
	if rxq == 0 {
		return geom.Point{}, false
	}
	t := ac.Cross(q) / rxq
	u := acxr / rxq
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geom.Point{}, false
	}
	return r.Scale(t).Translate(s.A), true
}

// IntersectLine returns the point where l crosses s.
func (s Segment) IntersectLine(l Line) (geom.Point, bool) {
	sl, ok := s.Line()
	if !ok {
		return geom.Point{}, false
	}
	p, ok := sl.Intersect(l)
	if !ok {
		return geom.Point{}, false
	}
	// Accept points within rounding distance of s.
	if !s.Contains(p, 1e-9*math.Max(1, s.Length())) {
		return geom.Point{}, false
	}
	return p, true
}

// ProperlyIntersects reports whether s and o cross at a single point
// that is interior to both of them.
func (s Segment) ProperlyIntersects(o Segment) bool {
	d1 := s.Vector().Cross(VectorBetween(s.A, o.A))
	d2 := s.Vector().Cross(VectorBetween(s.A, o.B))
	d3 := o.Vector().Cross(VectorBetween(o.A, s.A))
	d4 := o.Vector().Cross(VectorBetween(o.A, s.B))
	return d1*d2 < 0 && d3*d4 < 0
}

// OnSegments reports whether p lies on any of segs within distance tol.
func OnSegments(p geom.Point, segs []Segment, tol float64) bool {
	for _, s := range segs {
		if s.Contains(p, tol) {
			return true
		}
	}
	return false
}
