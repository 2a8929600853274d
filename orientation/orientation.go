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

// Package orientation describes the set C of directions a schematized
// edge may take, and the angular sectors between consecutive directions.
package orientation

import (
	"fmt"
	"math"
	"sort"

	"github.com/spatialmodel/schematize/planar"
)

// DefaultTolerance is the angular tolerance, in radians, under which two
// angles are considered equal.
const DefaultTolerance = 1e-9

// Set is an ordered set of permitted directions. Consecutive directions
// bound the sectors of the set.
type Set struct {
	// Tolerance is the angular tolerance used by all comparisons.
	Tolerance float64

	k       int // number of orientations of a regular set, 0 otherwise.
	beta    float64
	angles  []float64
	sectors []Sector
}

// NewRegular returns a set of k orientations (2k directions) spaced π/k
// apart, starting at offset beta, which must lie in [0, π/k).
func NewRegular(k int, beta float64) (*Set, error) {
	if k < 2 {
		return nil, fmt.Errorf("orientation: a regular set needs at least 2 orientations, have %d", k)
	}
	if beta < 0 || beta >= math.Pi/float64(k) {
		return nil, fmt.Errorf("orientation: offset %g should be in [0, π/%d)", beta, k)
	}
	angles := make([]float64, 2*k)
	for i := range angles {
		angles[i] = beta + float64(i)*math.Pi/float64(k)
	}
	s := newSet(angles)
	s.k = k
	s.beta = beta
	return s, nil
}

// NewIrregular returns a set built from arbitrary directions. angles
// must be strictly ascending and lie in [0, 2π).
func NewIrregular(angles []float64) (*Set, error) {
	if len(angles) < 2 {
		return nil, fmt.Errorf("orientation: an irregular set needs at least 2 directions, have %d", len(angles))
	}
	if !sort.Float64sAreSorted(angles) {
		return nil, fmt.Errorf("orientation: directions %v are not in ascending order", angles)
	}
	for i, a := range angles {
		if a < 0 || a >= 2*math.Pi {
			return nil, fmt.Errorf("orientation: direction %g is outside of [0, 2π)", a)
		}
		if i > 0 && a == angles[i-1] {
			return nil, fmt.Errorf("orientation: direction %g is repeated", a)
		}
	}
	c := make([]float64, len(angles))
	copy(c, angles)
	return newSet(c), nil
}

// MustRegular is like NewRegular but panics on error.
func MustRegular(k int) *Set {
	s, err := NewRegular(k, 0)
	if err != nil {
		panic(err)
	}
	return s
}

func newSet(angles []float64) *Set {
	s := &Set{Tolerance: DefaultTolerance, angles: angles}
	s.sectors = make([]Sector, len(angles))
	for i, lower := range angles {
		upper := angles[0] + 2*math.Pi
		if i < len(angles)-1 {
			upper = angles[i+1]
		}
		s.sectors[i] = Sector{Index: i, Lower: lower, Upper: upper, set: s}
	}
	return s
}

// String returns a short description of s, such as "C(2)".
func (s *Set) String() string {
	if s.k > 0 {
		if s.beta != 0 {
			return fmt.Sprintf("C(%d, β=%g)", s.k, s.beta)
		}
		return fmt.Sprintf("C(%d)", s.k)
	}
	return fmt.Sprintf("C%v", s.angles)
}

// Regular returns the number of orientations of a regular set and its
// offset. k is 0 for irregular sets.
func (s *Set) Regular() (k int, beta float64) { return s.k, s.beta }

// Angles returns the directions of s in ascending order.
func (s *Set) Angles() []float64 { return s.angles }

// Len returns the number of directions in s.
func (s *Set) Len() int { return len(s.angles) }

// Sectors returns the sectors of s. Sector i spans direction i to
// direction i+1.
func (s *Set) Sectors() []Sector { return s.sectors }

// Sector returns sector i, wrapping around the set.
func (s *Set) Sector(i int) Sector {
	n := len(s.sectors)
	return s.sectors[((i%n)+n)%n]
}

// DirectionAngle returns the angle of direction i, wrapping around the set.
func (s *Set) DirectionAngle(i int) float64 {
	n := len(s.angles)
	return s.angles[((i%n)+n)%n]
}

// DirectionIndex returns the index of the direction equal to angle.
func (s *Set) DirectionIndex(angle float64) (int, bool) {
	for i, a := range s.angles {
		if s.equal(a, angle) {
			return i, true
		}
	}
	return -1, false
}

// equal compares two angles on the circle, so that 0 and 2π are equal.
func (s *Set) equal(a, b float64) bool {
	return planar.AngularDistance(a, b) <= s.Tolerance
}

// AssociatedAngles returns the directions an edge with the given angle may
// be bent to: the single direction it is aligned with, or the lower and
// upper bounds of the sector it lies in.
func (s *Set) AssociatedAngles(angle float64) []float64 {
	for _, sec := range s.sectors {
		if !sec.Encloses(angle) {
			continue
		}
		switch {
		case s.equal(angle, sec.Lower):
			return []float64{sec.Lower}
		case s.equal(angle, sec.Upper):
			return []float64{sec.Upper}
		default:
			return []float64{sec.Lower, sec.Upper}
		}
	}
	return nil
}

// AssociatedSectors returns the sectors enclosing angle. An aligned angle
// lies on the boundary of two sectors.
func (s *Set) AssociatedSectors(angle float64) []Sector {
	var out []Sector
	for _, sec := range s.sectors {
		if sec.Encloses(angle) {
			out = append(out, sec)
		}
	}
	return out
}

// IsAligned reports whether angle coincides with a direction of s.
func (s *Set) IsAligned(angle float64) bool {
	return len(s.AssociatedAngles(angle)) == 1
}

// Deviation returns the angular distance between angle and direction i.
func (s *Set) Deviation(angle float64, i int) float64 {
	return planar.AngularDistance(angle, s.DirectionAngle(i))
}

// ValidDirections returns all ascending selections of n distinct direction
// indices, in lexicographic order. It returns nil if n exceeds the number
// of directions.
func (s *Set) ValidDirections(n int) [][]int {
	m := len(s.angles)
	if n <= 0 || n > m {
		return nil
	}
	var out [][]int
	comb := make([]int, n)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == n {
			c := make([]int, n)
			copy(c, comb)
			out = append(out, c)
			return
		}
		for i := start; i <= m-(n-depth); i++ {
			comb[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}

// Sector is the closed angular interval between two consecutive
// directions of a Set.
type Sector struct {
	Index        int
	Lower, Upper float64

	set *Set
}

// Bounds returns the lower and upper angle of sec.
func (sec Sector) Bounds() (lower, upper float64) { return sec.Lower, sec.Upper }

// Width returns the angular width of sec.
func (sec Sector) Width() float64 { return sec.Upper - sec.Lower }

// Encloses reports whether angle lies within sec, bounds included.
// Angles are compared on the circle, so 0 and 2π are the same direction.
func (sec Sector) Encloses(angle float64) bool {
	tol := DefaultTolerance
	if sec.set != nil {
		tol = sec.set.Tolerance
	}
	a := planar.NormalizeAngle(angle)
	for _, v := range [...]float64{a, a + 2*math.Pi, a - 2*math.Pi} {
		if v >= sec.Lower-tol && v <= sec.Upper+tol {
			return true
		}
	}
	return false
}

// Neighbors returns the previous and next sector of sec, wrapping around
// the set.
func (sec Sector) Neighbors() [2]Sector {
	return [2]Sector{sec.set.Sector(sec.Index - 1), sec.set.Sector(sec.Index + 1)}
}

// Other returns the bound of sec that is not angle.
func (sec Sector) Other(angle float64) float64 {
	if planar.AngularDistance(angle, sec.Lower) <= sec.set.Tolerance {
		return sec.Upper
	}
	return sec.Lower
}
