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

// Package planar holds the plane geometry the schematization is built on:
// vectors, lines, line segments and polygon helpers operating on
// github.com/ctessum/geom points.
package planar

import (
	"math"

	"github.com/ctessum/geom"
)

// Vector is a displacement in the plane.
type Vector struct {
	DX, DY float64
}

// VectorBetween returns the vector pointing from a to b.
func VectorBetween(a, b geom.Point) Vector {
	return Vector{DX: b.X - a.X, DY: b.Y - a.Y}
}

// FromAngle returns the unit vector pointing in direction angle,
// measured in radians counter-clockwise from the positive x axis.
func FromAngle(angle float64) Vector {
	return Vector{DX: math.Cos(angle), DY: math.Sin(angle)}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return Vector{DX: v.DX + o.DX, DY: v.DY + o.DY} }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Vector{DX: v.DX - o.DX, DY: v.DY - o.DY} }

// Scale returns v multiplied by f.
func (v Vector) Scale(f float64) Vector { return Vector{DX: v.DX * f, DY: v.DY * f} }

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 { return v.DX*o.DX + v.DY*o.DY }

// Cross returns the z component of the cross product of v and o.
func (v Vector) Cross(o Vector) float64 { return v.DX*o.DY - v.DY*o.DX }

// Length returns the euclidean length of v.
func (v Vector) Length() float64 { return math.Hypot(v.DX, v.DY) }

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vector) Unit() Vector {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Angle returns the direction of v in [0, 2π). ok is false for
// the zero vector, which has no direction.
func (v Vector) Angle() (angle float64, ok bool) {
	if v.DX == 0 && v.DY == 0 {
		return 0, false
	}
	return NormalizeAngle(math.Atan2(v.DY, v.DX)), true
}

// Translate returns p moved by v.
func (v Vector) Translate(p geom.Point) geom.Point {
	return geom.Point{X: p.X + v.DX, Y: p.Y + v.DY}
}

// NormalizeAngle maps angle into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// AngularDistance returns the smallest angle between directions a and b,
// in [0, π].
func AngularDistance(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Lerp returns the point at fraction t along the way from a to b.
func Lerp(a, b geom.Point, t float64) geom.Point {
	return geom.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
