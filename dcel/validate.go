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
	"fmt"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/schematize/planar"
)

// Validate checks the links of m and returns an error wrapping
// ErrInvariant describing the first problem found.
func (m *Mesh) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("dcel: %s: %w", fmt.Sprintf(format, args...), ErrInvariant)
	}
	for _, e := range m.edges {
		if e.removed {
			continue
		}
		t := m.HalfEdge(e.Twin)
		switch {
		case t == nil:
			return fail("half-edge %d has no twin", e.ID)
		case t.Twin != e.ID:
			return fail("twin of the twin of half-edge %d is %d", e.ID, t.Twin)
		case t.Tail == e.Tail:
			return fail("half-edge %d and its twin share tail %d", e.ID, e.Tail)
		}
		next, prev := m.HalfEdge(e.Next), m.HalfEdge(e.Prev)
		switch {
		case next == nil || prev == nil:
			return fail("half-edge %s is not part of a cycle", m.EdgeString(e.ID))
		case next.Prev != e.ID:
			return fail("prev of the next of half-edge %s is %d", m.EdgeString(e.ID), next.Prev)
		case prev.Next != e.ID:
			return fail("next of the prev of half-edge %s is %d", m.EdgeString(e.ID), prev.Next)
		case next.Tail != t.Tail:
			return fail("half-edge %s is followed by %s", m.EdgeString(e.ID), m.EdgeString(next.ID))
		}
		if m.Face(e.Face) == nil {
			return fail("half-edge %s has no face", m.EdgeString(e.ID))
		}
		if next.Face != e.Face {
			return fail("half-edges %s and %s of one cycle have faces %d and %d",
				m.EdgeString(e.ID), m.EdgeString(next.ID), e.Face, next.Face)
		}
		if e.key != [2]VertexID{e.Tail, t.Tail} || m.edgeIndex[e.key] != e.ID {
			return fail("half-edge %s is not indexed by its endpoints", m.EdgeString(e.ID))
		}
		if v := m.Vertex(e.Tail); v == nil || indexOf(v.Edges, e.ID) < 0 {
			return fail("half-edge %s is not incident to its tail", m.EdgeString(e.ID))
		}
	}
	for _, v := range m.vertices {
		if v.removed {
			continue
		}
		for _, e := range v.Edges {
			if he := m.HalfEdge(e); he == nil || he.Tail != v.ID {
				return fail("vertex %d lists half-edge %d which does not leave it", v.ID, e)
			}
		}
		if m.vertexIndex[v.Point] != v.ID {
			return fail("vertex %d is not indexed by its position", v.ID)
		}
	}
	for _, f := range m.faces {
		if f.removed {
			continue
		}
		if !f.IsUnbounded() {
			if e := m.HalfEdge(f.Edge); e == nil || e.Face != f.ID {
				return fail("outer edge %d of face %d does not bound it", f.Edge, f.ID)
			}
		}
		for _, ie := range f.InnerEdges {
			e := m.HalfEdge(ie)
			if e == nil {
				return fail("inner edge %d of face %d does not exist", ie, f.ID)
			}
			if f.IsUnbounded() {
				if e.Face != f.ID {
					return fail("component edge %s of the unbounded face belongs to face %d", m.EdgeString(ie), e.Face)
				}
				continue
			}
			if h := m.Face(e.Face); h == nil || h.OuterRing != f.ID {
				return fail("inner edge %s of face %d does not bound one of its holes", m.EdgeString(ie), f.ID)
			}
		}
	}
	return nil
}

// ValidatePolygons checks that every ring of polys is closed, has at least
// three distinct points and does not intersect itself.
func ValidatePolygons(polys geom.MultiPolygon) error {
	for pi, poly := range polys {
		if len(poly) == 0 {
			return fmt.Errorf("dcel: polygon %d has no rings: %w", pi, ErrInvalidInput)
		}
		for ri, r := range poly {
			if len(r) < 4 || !r[0].Equals(r[len(r)-1]) {
				return fmt.Errorf("dcel: polygon %d ring %d is not closed: %w", pi, ri, ErrInvalidInput)
			}
			open := dedupe(planar.Open(r))
			if len(open) < 3 {
				return fmt.Errorf("dcel: polygon %d ring %d has fewer than 3 distinct points: %w", pi, ri, ErrInvalidInput)
			}
			if planar.SelfIntersects(open) {
				return fmt.Errorf("dcel: polygon %d ring %d intersects itself: %w", pi, ri, ErrInvalidInput)
			}
		}
	}
	return nil
}
