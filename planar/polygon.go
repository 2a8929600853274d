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

// SignedArea returns the area enclosed by ring, positive if ring is
// counter-clockwise. The ring may or may not repeat its first point.
func SignedArea(ring []geom.Point) float64 {
	var a float64
	n := len(ring)
	for i := 0; i < n; i++ {
		p, q := ring[i], ring[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Area returns the unsigned area enclosed by ring.
func Area(ring []geom.Point) float64 {
	return math.Abs(SignedArea(ring))
}

// Contains reports whether p lies inside poly. Points on the
// boundary of poly are considered inside.
func Contains(poly geom.Polygon, p geom.Point) bool {
	return p.Within(poly) != geom.Outside
}

// Close returns ring with its first point appended, unless it is
// already closed.
func Close(ring []geom.Point) []geom.Point {
	if len(ring) == 0 || ring[0].Equals(ring[len(ring)-1]) {
		return ring
	}
	out := make([]geom.Point, len(ring), len(ring)+1)
	copy(out, ring)
	return append(out, ring[0])
}

// Open returns ring without a closing point that repeats its first point.
func Open(ring []geom.Point) []geom.Point {
	if len(ring) > 1 && ring[0].Equals(ring[len(ring)-1]) {
		return ring[:len(ring)-1]
	}
	return ring
}

// Reverse returns a reversed copy of ring.
func Reverse(ring []geom.Point) []geom.Point {
	out := make([]geom.Point, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// SelfIntersects reports whether any two non-adjacent edges of the
// open ring ring intersect.
func SelfIntersects(ring []geom.Point) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a := Segment{A: ring[i], B: ring[(i+1)%n]}
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b := Segment{A: ring[j], B: ring[(j+1)%n]}
			if _, ok := a.Intersect(b, true); ok {
				return true
			}
		}
	}
	return false
}
