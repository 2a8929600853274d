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
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/schematize/planar"
)

// Subdivision is the geometry-only form of a mesh: one multipolygon per
// input feature. Rings are not closed, so their last point differs from
// their first one. Outer rings run counter-clockwise and holes clockwise.
type Subdivision struct {
	MultiPolygons []MultiPolygon
}

// MultiPolygon is the geometry and properties of one input feature.
type MultiPolygon struct {
	Polygons   geom.MultiPolygon
	Properties map[string]interface{}
}

type ring struct {
	feature int
	points  []geom.Point
	ids     []VertexID
}

// FromSubdivision builds a mesh from s. The first ring of every polygon is
// its outer ring and the remaining rings are holes. Coordinates shared
// between rings are merged into a single vertex.
func FromSubdivision(s *Subdivision) (*Mesh, error) {
	m := NewMesh()
	m.Properties = make([]map[string]interface{}, len(s.MultiPolygons))

	var polygons [][]ring
	for fi, mp := range s.MultiPolygons {
		m.Properties[fi] = mp.Properties
		for _, poly := range mp.Polygons {
			var rings []ring
			for ri, r := range poly {
				pts := dedupe(planar.Open(r))
				if len(pts) < 3 {
					return nil, fmt.Errorf("dcel: feature %d ring %d has %d distinct points: %w", fi, ri, len(pts), ErrInvalidInput)
				}
				rr := ring{feature: fi, points: pts, ids: make([]VertexID, len(pts))}
				for i, p := range pts {
					rr.ids[i] = m.AddVertex(p)
				}
				for i := range rr.ids {
					m.AddEdgePair(rr.ids[i], rr.ids[(i+1)%len(rr.ids)])
				}
				rings = append(rings, rr)
			}
			polygons = append(polygons, rings)
		}
	}

	// Link each pair of half-edges that are adjacent in clockwise order
	// around their common tail.
	for _, v := range m.vertices {
		sorted := m.SortEdges(v.ID, true)
		for i, e1 := range sorted {
			e2 := sorted[(i+1)%len(sorted)]
			t := m.edges[e1].Twin
			m.edges[t].Next = e2
			m.edges[e2].Prev = t
		}
	}

	for _, rings := range polygons {
		outer := NoFace
		for ri, r := range rings {
			e := m.ccwEdge(r)
			f := m.edges[e].Face
			if f == NoFace {
				f = m.AddFace()
				m.faces[f].Edge = e
				m.labelCycle(e, f)
			}
			ff := m.faces[f]
			if !ff.HasFeature(r.feature) {
				ff.Features = append(ff.Features, r.feature)
			}
			if ri == 0 {
				outer = f
				continue
			}
			if outer == NoFace || outer == f {
				continue
			}
			if ff.OuterRing == NoFace {
				ff.OuterRing = outer
			}
			of := m.faces[outer]
			if indexOf(of.InnerEdges, e) < 0 {
				of.InnerEdges = append(of.InnerEdges, e)
			}
			m.labelCycle(m.edges[e].Twin, outer)
		}
	}

	unbounded := m.AddFace()
	for _, e := range m.edges {
		if e.Face == NoFace {
			m.labelCycle(e.ID, unbounded)
			m.faces[unbounded].InnerEdges = append(m.faces[unbounded].InnerEdges, e.ID)
		}
	}

	m.Log.WithFields(logrus.Fields{
		"features": len(s.MultiPolygons),
		"vertices": len(m.vertices),
		"edges":    len(m.edges),
		"faces":    len(m.faces),
	}).Debug("dcel: built mesh from subdivision")
	return m, nil
}

// ccwEdge returns the half-edge between the first two points of r that
// runs counter-clockwise around the ring.
func (m *Mesh) ccwEdge(r ring) EdgeID {
	e := m.edgeIndex[[2]VertexID{r.ids[0], r.ids[1]}]
	if planar.SignedArea(r.points) < 0 {
		return m.edges[e].Twin
	}
	return e
}

func (m *Mesh) labelCycle(e EdgeID, f FaceID) {
	for _, c := range m.Cycle(e, true) {
		m.edges[c].Face = f
	}
}

func dedupe(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Equals(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0].Equals(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// isHoleOf reports whether f is a hole of feature id, as opposed to
// being filled by it.
func (m *Mesh) isHoleOf(f *Face, id int) bool {
	if !f.IsHole() {
		return false
	}
	o := m.Face(f.OuterRing)
	return o != nil && o.HasFeature(id)
}

// ToSubdivision groups the faces of m by feature. Every face filled by a
// feature becomes a polygon of that feature, with one clockwise ring per
// hole. Features whose faces have all vanished yield empty multipolygons.
func (m *Mesh) ToSubdivision() *Subdivision {
	s := &Subdivision{MultiPolygons: make([]MultiPolygon, len(m.Properties))}
	for i, p := range m.Properties {
		s.MultiPolygons[i].Properties = p
	}
	for _, f := range m.faces {
		if f.removed || f.IsUnbounded() {
			continue
		}
		for _, id := range f.Features {
			if id < 0 || id >= len(s.MultiPolygons) || m.isHoleOf(f, id) {
				continue
			}
			poly := geom.Polygon{m.ring(f.Edge)}
			for _, ie := range f.InnerEdges {
				poly = append(poly, planar.Reverse(m.ring(ie)))
			}
			s.MultiPolygons[id].Polygons = append(s.MultiPolygons[id].Polygons, poly)
		}
	}
	return s
}
