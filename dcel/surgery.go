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
)

// edge returns the live half-edge id or an ErrInvariant error.
func (m *Mesh) edge(id EdgeID) (*HalfEdge, error) {
	e := m.HalfEdge(id)
	if e == nil {
		return nil, fmt.Errorf("dcel: half-edge %d does not exist: %w", id, ErrInvariant)
	}
	return e, nil
}

// linked returns e together with its twin and the neighbours of both,
// failing if any of these links is broken.
func (m *Mesh) linked(id EdgeID) (e, t, next, prev, tnext, tprev *HalfEdge, err error) {
	if e, err = m.edge(id); err != nil {
		return
	}
	if t, err = m.edge(e.Twin); err != nil {
		return
	}
	if next, err = m.edge(e.Next); err != nil {
		return
	}
	if prev, err = m.edge(e.Prev); err != nil {
		return
	}
	if tnext, err = m.edge(t.Next); err != nil {
		return
	}
	tprev, err = m.edge(t.Prev)
	return
}

func (m *Mesh) link(a, b EdgeID) {
	m.edges[a].Next = b
	m.edges[b].Prev = a
}

// Subdivide splits e and its twin at p, which becomes a new vertex. It
// returns the new half-edge running from the tail of e to p.
func (m *Mesh) Subdivide(id EdgeID, p geom.Point) (EdgeID, error) {
	e, t, a, b, c, d, err := m.linked(id)
	if err != nil {
		return NoEdge, err
	}
	if _, exists := m.FindVertex(p); exists {
		return NoEdge, fmt.Errorf("dcel: cannot subdivide %s at existing vertex %v", m.EdgeString(id), p)
	}
	u, w := e.Tail, t.Tail
	f1, f2 := e.Face, t.Face
	n := m.AddVertex(p)

	e1 := m.AddEdgePair(u, n)
	e2 := m.AddEdgePair(n, w)
	t1, t2 := m.edges[e1].Twin, m.edges[e2].Twin

	m.link(e1, e2)
	m.link(t2, t1)
	if b.ID == t.ID {
		m.link(t1, e1)
	} else {
		m.link(b.ID, e1)
	}
	if a.ID == t.ID {
		m.link(e2, t2)
	} else {
		m.link(e2, a.ID)
	}
	if d.ID != e.ID {
		m.link(d.ID, t2)
	}
	if c.ID != e.ID {
		m.link(t1, c.ID)
	}
	m.edges[e1].Face, m.edges[e2].Face = f1, f1
	m.edges[t1].Face, m.edges[t2].Face = f2, f2

	m.replaceEdge(e.ID, e1)
	m.replaceEdge(t.ID, t1)
	m.RemoveHalfEdge(e.ID)
	m.RemoveHalfEdge(t.ID)
	return e1, nil
}

// Bisect subdivides e at its midpoint.
func (m *Mesh) Bisect(e EdgeID) (EdgeID, error) {
	if _, err := m.edge(e); err != nil {
		return NoEdge, err
	}
	return m.Subdivide(e, m.Midpoint(e))
}

// SubdivideToThreshold bisects the edges of the cycle of e until every
// edge of the cycle is shorter than threshold.
func (m *Mesh) SubdivideToThreshold(e EdgeID, threshold float64) error {
	if threshold <= 0 {
		return fmt.Errorf("dcel: subdivision threshold must be positive, have %g", threshold)
	}
	if _, err := m.edge(e); err != nil {
		return err
	}
	var split func(EdgeID) error
	split = func(x EdgeID) error {
		if m.Length(x) < threshold {
			return nil
		}
		x1, err := m.Bisect(x)
		if err != nil {
			return err
		}
		x2 := m.edges[x1].Next
		if err := split(x1); err != nil {
			return err
		}
		return split(x2)
	}
	for _, x := range m.Cycle(e, true) {
		if err := split(x); err != nil {
			return err
		}
	}
	return nil
}

// RemoveHalfEdge detaches e from its tail and from any hole list that
// refers to it, then deletes it. Its neighbours are not relinked.
func (m *Mesh) RemoveHalfEdge(id EdgeID) {
	e := m.HalfEdge(id)
	if e == nil {
		return
	}
	if v := m.Vertex(e.Tail); v != nil {
		v.Edges = removeEdgeID(v.Edges, id)
	}
	for _, f := range m.faces {
		if !f.removed {
			m.RemoveInnerEdge(f.ID, id)
		}
	}
	if m.edgeIndex[e.key] == id {
		delete(m.edgeIndex, e.key)
	}
	e.removed = true
}

func removeEdgeID(s []EdgeID, id EdgeID) []EdgeID {
	for i, x := range s {
		if x == id {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// RemoveInnerEdge removes e from the hole list of f.
func (m *Mesh) RemoveInnerEdge(f FaceID, e EdgeID) {
	if ff := m.Face(f); ff != nil {
		ff.InnerEdges = removeEdgeID(ff.InnerEdges, e)
	}
}

// ReplaceInnerEdge replaces old with e in the hole list of f. It reports
// whether old was found.
func (m *Mesh) ReplaceInnerEdge(f FaceID, old, e EdgeID) bool {
	ff := m.Face(f)
	if ff == nil {
		return false
	}
	i := indexOf(ff.InnerEdges, old)
	if i < 0 {
		return false
	}
	ff.InnerEdges[i] = e
	return true
}

// ReplaceOuterRingEdge points the face enclosing the hole f at e, if it
// currently points at old.
func (m *Mesh) ReplaceOuterRingEdge(f FaceID, old, e EdgeID) bool {
	ff := m.Face(f)
	if ff == nil || !ff.IsHole() {
		return false
	}
	o := m.Face(ff.OuterRing)
	if o == nil || o.Edge != old {
		return false
	}
	o.Edge = e
	return true
}

// replaceEdge re-points every face reference to old at e.
func (m *Mesh) replaceEdge(old, e EdgeID) {
	for _, f := range m.faces {
		if f.removed {
			continue
		}
		if f.Edge == old {
			f.Edge = e
		}
		m.ReplaceInnerEdge(f.ID, old, e)
	}
}

// MoveVertex moves v to p.
func (m *Mesh) MoveVertex(v VertexID, p geom.Point) error {
	vv := m.Vertex(v)
	if vv == nil {
		return fmt.Errorf("dcel: vertex %d does not exist: %w", v, ErrInvariant)
	}
	if vv.Point.Equals(p) {
		return nil
	}
	if other, ok := m.vertexIndex[p]; ok && other != v {
		return fmt.Errorf("dcel: cannot move vertex %d onto vertex %d at %v", v, other, p)
	}
	delete(m.vertexIndex, vv.Point)
	vv.Point = p
	m.vertexIndex[p] = v
	return nil
}

// ContractEdge removes e and its twin by merging the head of e into its
// tail. The tail keeps its position. It returns the surviving vertex.
func (m *Mesh) ContractEdge(id EdgeID) (VertexID, error) {
	e, t, a, b, c, d, err := m.linked(id)
	if err != nil {
		return NoVertex, err
	}
	u, w := e.Tail, t.Tail
	if u == w {
		return NoVertex, fmt.Errorf("dcel: %s is a loop: %w", m.EdgeString(id), ErrInvariant)
	}
	if a.ID == t.ID || b.ID == t.ID {
		return NoVertex, fmt.Errorf("dcel: cannot contract dangling edge %s", m.EdgeString(id))
	}
	wv := m.vertices[w]
	for _, g := range wv.Edges {
		if g == t.ID {
			continue
		}
		if _, exists := m.edgeIndex[[2]VertexID{u, m.Head(g)}]; exists {
			return NoVertex, fmt.Errorf("dcel: contracting %s would merge parallel edges", m.EdgeString(id))
		}
	}

	m.link(b.ID, a.ID)
	m.link(d.ID, c.ID)
	m.replaceEdge(e.ID, b.ID)
	m.replaceEdge(t.ID, c.ID)

	for _, g := range append([]EdgeID(nil), wv.Edges...) {
		if g == t.ID {
			continue
		}
		m.rekey(g, [2]VertexID{u, m.Head(g)})
		m.edges[g].Tail = u
		tw := m.edges[g].Twin
		m.rekey(tw, [2]VertexID{m.edges[tw].Tail, u})
		m.vertices[u].Edges = append(m.vertices[u].Edges, g)
	}
	wv.Edges = []EdgeID{t.ID}
	m.RemoveHalfEdge(e.ID)
	m.RemoveHalfEdge(t.ID)
	m.removeVertex(w)
	return u, nil
}

// DissolveVertex removes v, which must have exactly two edges, and joins
// its two edges into one. It returns the new half-edge that replaces the
// incoming and outgoing half-edges on the same side.
func (m *Mesh) DissolveVertex(v VertexID) (EdgeID, error) {
	vv := m.Vertex(v)
	if vv == nil {
		return NoEdge, fmt.Errorf("dcel: vertex %d does not exist: %w", v, ErrInvariant)
	}
	if len(vv.Edges) != 2 {
		return NoEdge, fmt.Errorf("dcel: vertex %d has degree %d, want 2", v, len(vv.Edges))
	}
	out, back := vv.Edges[0], vv.Edges[1]
	in := m.edges[back].Twin
	outTwin := m.edges[out].Twin
	if m.edges[in].Next != out || m.edges[outTwin].Next != back {
		return NoEdge, fmt.Errorf("dcel: edges around vertex %d are not linked: %w", v, ErrInvariant)
	}
	x, y := m.Head(out), m.Head(back)
	if x == y {
		return NoEdge, fmt.Errorf("dcel: dissolving vertex %d would create a loop", v)
	}
	if _, exists := m.edgeIndex[[2]VertexID{y, x}]; exists {
		return NoEdge, fmt.Errorf("dcel: dissolving vertex %d would duplicate an edge", v)
	}
	inPrev, outNext := m.edges[in].Prev, m.edges[out].Next
	twPrev, backNext := m.edges[outTwin].Prev, m.edges[back].Next
	f1, f2 := m.edges[in].Face, m.edges[back].Face

	n := m.AddEdgePair(y, x)
	nt := m.edges[n].Twin
	m.link(inPrev, n)
	m.link(n, outNext)
	m.link(twPrev, nt)
	m.link(nt, backNext)
	m.edges[n].Face, m.edges[nt].Face = f1, f2

	m.replaceEdge(in, n)
	m.replaceEdge(out, n)
	m.replaceEdge(outTwin, nt)
	m.replaceEdge(back, nt)
	for _, g := range []EdgeID{in, out, outTwin, back} {
		m.RemoveHalfEdge(g)
	}
	m.removeVertex(v)
	return n, nil
}

func (m *Mesh) rekey(id EdgeID, key [2]VertexID) {
	e := m.edges[id]
	if m.edgeIndex[e.key] == id {
		delete(m.edgeIndex, e.key)
	}
	e.key = key
	m.edgeIndex[key] = id
}

func (m *Mesh) removeVertex(id VertexID) {
	v := m.vertices[id]
	if m.vertexIndex[v.Point] == id {
		delete(m.vertexIndex, v.Point)
	}
	v.Edges = nil
	v.removed = true
}
