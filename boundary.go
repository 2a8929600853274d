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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/planar"
)

// FacePair is an unordered pair of faces, stored lower id first.
type FacePair [2]dcel.FaceID

// NewFacePair returns the pair of a and b.
func NewFacePair(a, b dcel.FaceID) FacePair {
	if b < a {
		a, b = b, a
	}
	return FacePair{a, b}
}

// Boundary is the shared boundary of two faces.
type Boundary struct {
	Faces FacePair

	// Edges are the half-edges with the lower face on their left, in
	// cycle order.
	Edges []dcel.EdgeID

	// Configurations holds the configuration of every edge that has one.
	Configurations []*Configuration
}

// FaceFaceBoundaryList holds the boundary of every pair of adjacent
// faces of a mesh.
type FaceFaceBoundaryList struct {
	Boundaries map[FacePair]*Boundary

	keys  []FacePair
	index *meshIndex
}

// NewFaceFaceBoundaryList builds the boundary list of m and the
// configurations of all boundary edges.
func NewFaceFaceBoundaryList(m *dcel.Mesh, significant map[dcel.VertexID]bool, cache *ConfigurationCache) *FaceFaceBoundaryList {
	l := &FaceFaceBoundaryList{
		Boundaries: make(map[FacePair]*Boundary),
		index:      newMeshIndex(m),
	}
	members := make(map[FacePair]map[dcel.EdgeID]bool)
	for _, e := range m.HalfEdges() {
		he := m.HalfEdge(e)
		f, g := he.Face, m.HalfEdge(he.Twin).Face
		if f >= g {
			continue
		}
		key := FacePair{f, g}
		if members[key] == nil {
			members[key] = make(map[dcel.EdgeID]bool)
			l.keys = append(l.keys, key)
		}
		members[key][e] = true
	}
	sort.Slice(l.keys, func(i, j int) bool {
		if l.keys[i][0] != l.keys[j][0] {
			return l.keys[i][0] < l.keys[j][0]
		}
		return l.keys[i][1] < l.keys[j][1]
	})
	for _, key := range l.keys {
		b := &Boundary{Faces: key, Edges: chains(m, members[key])}
		for _, e := range b.Edges {
			if c, ok := NewConfiguration(m, e, significant, cache); ok {
				b.Configurations = append(b.Configurations, c)
			}
		}
		l.Boundaries[key] = b
	}
	return l
}

// chains orders the edges of set along their cycles.
func chains(m *dcel.Mesh, set map[dcel.EdgeID]bool) []dcel.EdgeID {
	ids := make([]dcel.EdgeID, 0, len(set))
	for e := range set {
		ids = append(ids, e)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	visited := make(map[dcel.EdgeID]bool, len(set))
	out := make([]dcel.EdgeID, 0, len(set))
	for _, e := range ids {
		if visited[e] {
			continue
		}
		start := e
		for p := m.HalfEdge(start).Prev; set[p] && !visited[p] && p != e; p = m.HalfEdge(p).Prev {
			start = p
		}
		for x := start; set[x] && !visited[x]; x = m.HalfEdge(x).Next {
			visited[x] = true
			out = append(out, x)
		}
	}
	return out
}

// Keys returns the face pairs of l in ascending order.
func (l *FaceFaceBoundaryList) Keys() []FacePair { return l.keys }

// EdgeMove is a contraction paired with a compensating move on the same
// boundary that restores the areas of both faces.
type EdgeMove struct {
	Contraction  *Contraction
	Compensation *Contraction
}

// Do applies the move to m.
func (em *EdgeMove) Do(m *dcel.Mesh) error {
	if err := em.Contraction.Apply(m); err != nil {
		return fmt.Errorf("schematize: contraction of %d: %w", em.Contraction.Inner, err)
	}
	if err := em.Compensation.Apply(m); err != nil {
		return fmt.Errorf("schematize: compensation of %d: %w", em.Compensation.Inner, err)
	}
	return nil
}

// MinimalConfigurationPair returns the edge move whose contraction has
// the smallest area. It returns ErrNoValidMove if there is none.
func (l *FaceFaceBoundaryList) MinimalConfigurationPair(m *dcel.Mesh) (*EdgeMove, error) {
	moves := l.EdgeMoves(m)
	if len(moves) == 0 {
		return nil, ErrNoValidMove
	}
	return moves[0], nil
}

// EdgeMoves returns every valid edge move of l, ordered by the area of
// its contraction. Each contraction appears once, paired with the
// smallest sufficient compensation on its boundary.
func (l *FaceFaceBoundaryList) EdgeMoves(m *dcel.Mesh) []*EdgeMove {
	var out []*EdgeMove
	for _, key := range l.keys {
		var valid []*Contraction
		for _, c := range l.Boundaries[key].Configurations {
			for _, k := range c.Contractions() {
				if k == nil {
					continue
				}
				k.BlockingNumber = l.index.blocking(m, k)
				if k.Valid() {
					valid = append(valid, k)
				}
			}
		}
		sortContractions(valid)
		for _, k := range valid {
			if em, ok := l.compensate(m, k, valid); ok {
				out = append(out, em)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Contraction.Area) < math.Abs(out[j].Contraction.Area)
	})
	return out
}

func sortContractions(ks []*Contraction) {
	sort.SliceStable(ks, func(i, j int) bool {
		ai, aj := math.Abs(ks[i].Area), math.Abs(ks[j].Area)
		if ai != aj {
			return ai < aj
		}
		return ks[i].Inner < ks[j].Inner
	})
}

// compensate finds the smallest contraction of candidates that has the
// opposite sign of k, shares no edge with it and is at least as large,
// and shrinks it to the area of k.
func (l *FaceFaceBoundaryList) compensate(m *dcel.Mesh, k *Contraction, candidates []*Contraction) (*EdgeMove, bool) {
	for _, c := range candidates {
		if c.Side == k.Side || math.Abs(c.Area) < math.Abs(k.Area) || sharesEdge(k, c) {
			continue
		}
		p := c.Partial(k.Area)
		if p != c {
			if p.BlockingNumber = l.index.blocking(m, p); !p.Valid() {
				continue
			}
		}
		if segmentsCross(k.NewSegments(), p.NewSegments()) {
			continue
		}
		return &EdgeMove{Contraction: k, Compensation: p}, true
	}
	return nil, false
}

func sharesEdge(a, b *Contraction) bool {
	for _, x := range a.Edges() {
		for _, y := range b.Edges() {
			if x == y {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b []planar.Segment) bool {
	for _, x := range a {
		for _, y := range b {
			if x.ProperlyIntersects(y) {
				return true
			}
		}
	}
	return false
}

type vertexItem struct {
	geom.Point
	id dcel.VertexID
}

type edgeItem struct {
	geom.LineString
	id dcel.EdgeID
}

// meshIndex is a spatial index of the vertices and edges of a mesh.
type meshIndex struct {
	vertices, edges *rtree.Rtree
}

func newMeshIndex(m *dcel.Mesh) *meshIndex {
	ix := &meshIndex{vertices: rtree.NewTree(25, 50), edges: rtree.NewTree(25, 50)}
	for _, v := range m.Vertices() {
		ix.vertices.Insert(&vertexItem{Point: m.Point(v), id: v})
	}
	for _, e := range m.SimpleEdges() {
		s := m.Segment(e)
		ix.edges.Insert(&edgeItem{LineString: geom.LineString{s.A, s.B}, id: e})
	}
	return ix
}

// blocking counts the vertices of m inside or on the swept region of k
// and the edges of m that cross the moved edges of k.
func (ix *meshIndex) blocking(m *dcel.Mesh, k *Contraction) int {
	region := k.Region()
	b := geom.NewBounds()
	for _, p := range append(region, k.t, k.w) {
		b.Extend(geom.NewBoundsPoint(p))
	}
	boundary := ringSegments(region)
	newSegs := k.NewSegments()
	poly := geom.Polygon{region}
	var n int
	for _, g := range ix.vertices.SearchIntersect(b) {
		v := g.(*vertexItem)
		if v.id == k.T || v.id == k.U || v.id == k.V || v.id == k.W {
			continue
		}
		inside := planar.Contains(poly, v.Point) && !planar.OnSegments(v.Point, boundary, k.tol)
		if inside || planar.OnSegments(v.Point, newSegs, k.tol) {
			n++
		}
	}
	own := make(map[dcel.EdgeID]bool, 6)
	for _, e := range k.Edges() {
		own[e] = true
		own[m.HalfEdge(e).Twin] = true
	}
	for _, g := range ix.edges.SearchIntersect(b) {
		e := g.(*edgeItem)
		if own[e.id] {
			continue
		}
		s := planar.Segment{A: e.LineString[0], B: e.LineString[1]}
		if touchesInterior(s, k.NewU, k.tol) || touchesInterior(s, k.NewV, k.tol) {
			n++
			continue
		}
		for _, ns := range newSegs {
			if ns.Length() > 0 && (ns.ProperlyIntersects(s) || collinearOverlap(ns, s, k.tol)) {
				n++
				break
			}
		}
	}
	return n
}

// touchesInterior reports whether p lies on s away from its endpoints.
func touchesInterior(s planar.Segment, p geom.Point, tol float64) bool {
	if planar.Distance(p, s.A) <= tol || planar.Distance(p, s.B) <= tol {
		return false
	}
	return s.Contains(p, tol)
}

// collinearOverlap reports whether a and b lie on the same line and
// share a piece of positive length.
func collinearOverlap(a, b planar.Segment, tol float64) bool {
	r := a.Vector()
	l := r.Length()
	if l == 0 {
		return false
	}
	if math.Abs(r.Cross(planar.VectorBetween(a.A, b.A)))/l > tol ||
		math.Abs(r.Cross(planar.VectorBetween(a.A, b.B)))/l > tol {
		return false
	}
	t0 := r.Dot(planar.VectorBetween(a.A, b.A)) / l
	t1 := r.Dot(planar.VectorBetween(a.A, b.B)) / l
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return math.Min(l, t1)-math.Max(0, t0) > tol
}
