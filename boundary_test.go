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
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/schematize/dcel"
	"gonum.org/v1/gonum/floats"
)

func mustMesh(t *testing.T, features ...geom.MultiPolygon) *dcel.Mesh {
	t.Helper()
	s := &dcel.Subdivision{}
	for _, f := range features {
		s.MultiPolygons = append(s.MultiPolygons, dcel.MultiPolygon{Polygons: f})
	}
	m, err := dcel.FromSubdivision(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	return m
}

func square(x0, y0, x1, y1 float64) []geom.Point {
	return []geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// bumpAndDent is a 10 by 4 rectangle with a 2 by 1 bump and a 2 by 1
// dent in its top side. Its area is 40.
func bumpAndDent() []geom.Point {
	return []geom.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 4}, {X: 8, Y: 4}, {X: 8, Y: 5}, {X: 6, Y: 5},
		{X: 6, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 3}, {X: 2, Y: 3}, {X: 2, Y: 4}, {X: 0, Y: 4},
	}
}

func TestFaceFaceBoundaryList(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{square(0, 0, 1, 1)}}, geom.MultiPolygon{{square(1, 0, 2, 1)}})
	l := NewFaceFaceBoundaryList(m, nil, nil)
	if n := len(l.Keys()); n != 3 {
		t.Fatalf("have %d boundaries, want 3", n)
	}
	var n int
	for _, key := range l.Keys() {
		b := l.Boundaries[key]
		if b.Faces != key || key[0] >= key[1] {
			t.Errorf("boundary %v has faces %v", key, b.Faces)
		}
		for i, e := range b.Edges {
			he := m.HalfEdge(e)
			if he.Face != key[0] || m.HalfEdge(he.Twin).Face != key[1] {
				t.Errorf("edge %d of boundary %v lies between faces %d and %d", e, key, he.Face, m.HalfEdge(he.Twin).Face)
			}
			if i > 0 && m.HalfEdge(b.Edges[i-1]).Next != e {
				t.Errorf("boundary %v is not in cycle order", key)
			}
		}
		n += len(b.Edges)
	}
	if n != len(m.SimpleEdges()) {
		t.Errorf("boundaries hold %d edges, want %d", n, len(m.SimpleEdges()))
	}
}

func TestNewFacePair(t *testing.T) {
	if NewFacePair(3, 1) != NewFacePair(1, 3) || NewFacePair(3, 1) != (FacePair{1, 3}) {
		t.Errorf("face pairs are not ordered: %v", NewFacePair(3, 1))
	}
}

func TestEdgeMoves(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	l := NewFaceFaceBoundaryList(m, nil, NewConfigurationCache(100))
	moves := l.EdgeMoves(m)
	if len(moves) == 0 {
		t.Fatal("no edge moves")
	}
	for i, em := range moves {
		k, c := em.Contraction, em.Compensation
		if k.Side == c.Side {
			t.Errorf("move %d: contraction and compensation on the same side", i)
		}
		if !floats.EqualWithinAbsOrRel(k.Area, -c.Area, 1e-9, 1e-9) {
			t.Errorf("move %d: areas %g and %g do not cancel", i, k.Area, c.Area)
		}
		if !k.Valid() || !c.Valid() {
			t.Errorf("move %d is blocked", i)
		}
		if sharesEdge(k, c) {
			t.Errorf("move %d: compensation shares an edge with its contraction", i)
		}
		if i > 0 && math.Abs(k.Area) < math.Abs(moves[i-1].Contraction.Area) {
			t.Errorf("moves are not ordered by area")
		}
	}
	first, err := l.MinimalConfigurationPair(m)
	if err != nil {
		t.Fatal(err)
	}
	if first != moves[0] && first.Contraction.Inner != moves[0].Contraction.Inner {
		t.Errorf("minimal pair differs from the first edge move")
	}

	face := m.BoundedFaces()[0]
	mc := m.Clone()
	if err := first.Do(mc); err != nil {
		t.Fatal(err)
	}
	if err := mc.Validate(); err != nil {
		t.Fatal(err)
	}
	if have := mc.FaceArea(face); !floats.EqualWithinAbsOrRel(have, 40, 1e-9, 1e-9) {
		t.Errorf("area have %g, want 40", have)
	}
	if len(mc.Vertices()) >= len(m.Vertices()) {
		t.Errorf("edge move kept all %d vertices", len(m.Vertices()))
	}
}

func TestEdgeMovesNone(t *testing.T) {
	m := mustMesh(t, geom.MultiPolygon{{square(0, 0, 10, 10)}})
	l := NewFaceFaceBoundaryList(m, nil, nil)
	if _, err := l.MinimalConfigurationPair(m); err != ErrNoValidMove {
		t.Errorf("have %v, want ErrNoValidMove", err)
	}
}

func TestBlockingOverlap(t *testing.T) {
	// Moving the right part of the top side down would lay it on the
	// bottom side.
	m := mustMesh(t, geom.MultiPolygon{{bumpAndDent()}})
	e, ok := m.FindHalfEdge(geom.Point{X: 10, Y: 4}, geom.Point{X: 8, Y: 4})
	if !ok {
		t.Fatal("missing edge")
	}
	c, ok := NewConfiguration(m, e, nil, nil)
	if !ok {
		t.Fatal("no configuration")
	}
	k := c.Contractions()[Negative]
	if k == nil {
		t.Fatal("no negative contraction")
	}
	if n := newMeshIndex(m).blocking(m, k); n == 0 {
		t.Error("contraction onto the bottom side is not blocked")
	}
}
