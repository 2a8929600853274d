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
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/planar"
)

// Staircases builds the staircase of every edge of m that is not aligned
// basic, one per pair of half-edges. Each staircase runs along the
// half-edge that was classified, using the direction assigned at its
// tail.
func Staircases(m *dcel.Mesh, cfg *Config, cl *Classification) ([]*Staircase, error) {
	var out []*Staircase
	for _, e := range m.SimpleEdges() {
		class := cl.Classes[e]
		if class == AlignedBasic {
			continue
		}
		e = cl.ClassifiedEdge(e)
		s, err := NewStaircase(m, cfg, class, cl.Directions[e], e)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// regionItem is a staircase region stored in the interference index.
type regionItem struct {
	geom.Polygon
	s          *Staircase
	tail, head dcel.VertexID
}

// InterferenceIndex is a spatial index of staircase regions.
type InterferenceIndex struct {
	tree  *rtree.Rtree
	items []*regionItem
}

// NewInterferenceIndex indexes the regions of stairs, which must belong
// to edges of m.
func NewInterferenceIndex(m *dcel.Mesh, stairs []*Staircase) *InterferenceIndex {
	ix := &InterferenceIndex{tree: rtree.NewTree(25, 50)}
	for _, s := range stairs {
		if len(s.Region) == 0 {
			continue
		}
		it := &regionItem{
			Polygon: geom.Polygon{s.Region},
			s:       s,
			tail:    m.HalfEdge(s.Edge).Tail,
			head:    m.Head(s.Edge),
		}
		ix.tree.Insert(it)
		ix.items = append(ix.items, it)
	}
	return ix
}

// Interferences returns the pairs of staircases that interfere, ordered
// by edge id. Staircases of non-adjacent edges interfere if their regions
// overlap. Staircases of edges that share a vertex interfere if their
// polylines meet anywhere else.
func (ix *InterferenceIndex) Interferences() [][2]*Staircase {
	var out [][2]*Staircase
	for _, a := range ix.items {
		for _, g := range ix.tree.SearchIntersect(a.Bounds()) {
			b := g.(*regionItem)
			if b.s.Edge <= a.s.Edge {
				continue
			}
			var interfere bool
			if adjacent(a, b) {
				interfere = stairsTouch(a, b)
			} else {
				interfere = RegionsOverlap(a.s.Region, b.s.Region)
			}
			if interfere {
				out = append(out, [2]*Staircase{a.s, b.s})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0].Edge != out[j][0].Edge {
			return out[i][0].Edge < out[j][0].Edge
		}
		return out[i][1].Edge < out[j][1].Edge
	})
	return out
}

func adjacent(a, b *regionItem) bool {
	return a.tail == b.tail || a.tail == b.head || a.head == b.tail || a.head == b.head
}

// stairsTouch reports whether the staircases of two adjacent edges meet
// away from the vertices the edges share.
func stairsTouch(a, b *regionItem) bool {
	pa, pb := a.s.Points, b.s.Points
	var shared []geom.Point
	if a.tail == b.tail || a.tail == b.head {
		shared = append(shared, pa[0])
	}
	if a.head == b.tail || a.head == b.head {
		shared = append(shared, pa[len(pa)-1])
	}
	tol := 1e-9 * math.Max(1, planar.Distance(pa[0], pa[len(pa)-1])+planar.Distance(pb[0], pb[len(pb)-1]))
	sa, sb := a.s.Segments(), b.s.Segments()
	for _, x := range sa {
		for _, y := range sb {
			if x.ProperlyIntersects(y) {
				return true
			}
		}
	}
	return pointsOn(pa, sb, shared, tol) || pointsOn(pb, sa, shared, tol)
}

// pointsOn reports whether a point of ps other than the excluded ones
// lies on segs.
func pointsOn(ps []geom.Point, segs []planar.Segment, exclude []geom.Point, tol float64) bool {
next:
	for _, p := range ps {
		for _, x := range exclude {
			if planar.Distance(p, x) <= tol {
				continue next
			}
		}
		if planar.OnSegments(p, segs, tol) {
			return true
		}
	}
	return false
}

// RegionsOverlap reports whether the interiors of two closed rings
// overlap. Rings that only touch do not overlap.
func RegionsOverlap(a, b []geom.Point) bool {
	sa, sb := ringSegments(a), ringSegments(b)
	for _, x := range sa {
		for _, y := range sb {
			if x.ProperlyIntersects(y) {
				return true
			}
		}
	}
	return anyStrictlyInside(a, b, sb) || anyStrictlyInside(b, a, sa)
}

func ringSegments(r []geom.Point) []planar.Segment {
	r = planar.Close(r)
	out := make([]planar.Segment, 0, len(r)-1)
	for i := 1; i < len(r); i++ {
		if !r[i-1].Equals(r[i]) {
			out = append(out, planar.Segment{A: r[i-1], B: r[i]})
		}
	}
	return out
}

// anyStrictlyInside reports whether a point of r lies inside ring, off
// its boundary segments.
func anyStrictlyInside(r, ring []geom.Point, boundary []planar.Segment) bool {
	poly := geom.Polygon{planar.Close(ring)}
	for _, p := range r {
		if planar.Contains(poly, p) && !planar.OnSegments(p, boundary, 1e-12) {
			return true
		}
	}
	return false
}
