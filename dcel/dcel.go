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

// Package dcel implements a doubly-connected edge list: a half-edge mesh
// of vertices, half-edges and faces describing a planar subdivision.
//
// Entities live in arenas owned by a Mesh and refer to each other by
// stable integer ids. Removing an entity leaves a tombstone so that ids
// held elsewhere never point at a different entity.
package dcel

import (
	"errors"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidInput is returned for malformed or non-polygonal input.
	ErrInvalidInput = errors.New("dcel: invalid input")

	// ErrInvariant is returned when the links of a mesh are inconsistent.
	ErrInvariant = errors.New("dcel: broken mesh invariant")
)

// VertexID identifies a Vertex within a Mesh.
type VertexID int

// EdgeID identifies a HalfEdge within a Mesh.
type EdgeID int

// FaceID identifies a Face within a Mesh.
type FaceID int

// Sentinels for absent links.
const (
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
	NoFace   FaceID   = -1
)

// Vertex is a point of the subdivision.
type Vertex struct {
	ID    VertexID
	Point geom.Point

	// Edges holds the half-edges whose tail is this vertex.
	Edges []EdgeID

	removed bool
}

// HalfEdge is one directed side of an edge. Its head is the tail of its twin.
type HalfEdge struct {
	ID   EdgeID
	Tail VertexID
	Twin EdgeID
	Next EdgeID
	Prev EdgeID

	// Face is the face on the left of the half-edge.
	Face FaceID

	key     [2]VertexID
	removed bool
}

// Face is a region of the subdivision.
type Face struct {
	ID FaceID

	// Edge is a half-edge of the outer boundary cycle. It is NoEdge for
	// the unbounded face.
	Edge EdgeID

	// InnerEdges holds one half-edge for every hole of the face. For the
	// unbounded face it holds one half-edge of every boundary component.
	InnerEdges []EdgeID

	// OuterRing is the enclosing face if this face is a hole.
	OuterRing FaceID

	// Features are the ids of the input features the face belongs to.
	Features []int

	removed bool
}

// IsHole reports whether f is a hole of an enclosing face.
func (f *Face) IsHole() bool { return f.OuterRing != NoFace }

// IsUnbounded reports whether f is the unbounded face.
func (f *Face) IsUnbounded() bool { return f.Edge == NoEdge }

// HasFeature reports whether f belongs to feature id.
func (f *Face) HasFeature(id int) bool {
	for _, i := range f.Features {
		if i == id {
			return true
		}
	}
	return false
}

// Mesh owns all vertices, half-edges and faces of a subdivision.
type Mesh struct {
	vertices []*Vertex
	edges    []*HalfEdge
	faces    []*Face

	vertexIndex map[geom.Point]VertexID
	edgeIndex   map[[2]VertexID]EdgeID

	// Properties holds the properties of each input feature.
	Properties []map[string]interface{}

	// Log receives diagnostic messages. It defaults to the standard logger.
	Log logrus.FieldLogger
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{
		vertexIndex: make(map[geom.Point]VertexID),
		edgeIndex:   make(map[[2]VertexID]EdgeID),
		Log:         logrus.StandardLogger(),
	}
}

// AddVertex returns the vertex at p, creating it if it does not exist yet.
func (m *Mesh) AddVertex(p geom.Point) VertexID {
	if id, ok := m.vertexIndex[p]; ok {
		return id
	}
	v := &Vertex{ID: VertexID(len(m.vertices)), Point: p}
	m.vertices = append(m.vertices, v)
	m.vertexIndex[p] = v.ID
	return v.ID
}

// AddHalfEdge returns the half-edge from tail to head, creating it if it
// does not exist yet. New half-edges are unlinked.
func (m *Mesh) AddHalfEdge(tail, head VertexID) EdgeID {
	key := [2]VertexID{tail, head}
	if id, ok := m.edgeIndex[key]; ok {
		return id
	}
	e := &HalfEdge{
		ID:   EdgeID(len(m.edges)),
		Tail: tail,
		Twin: NoEdge, Next: NoEdge, Prev: NoEdge,
		Face: NoFace,
		key:  key,
	}
	m.edges = append(m.edges, e)
	m.edgeIndex[key] = e.ID
	if v := m.Vertex(tail); v != nil {
		v.Edges = append(v.Edges, e.ID)
	}
	return e.ID
}

// AddEdgePair creates the half-edges between a and b and makes them twins.
// It returns the half-edge from a to b.
func (m *Mesh) AddEdgePair(a, b VertexID) EdgeID {
	e := m.AddHalfEdge(a, b)
	t := m.AddHalfEdge(b, a)
	m.edges[e].Twin = t
	m.edges[t].Twin = e
	return e
}

// AddFace creates a new face without any edges.
func (m *Mesh) AddFace() FaceID {
	f := &Face{ID: FaceID(len(m.faces)), Edge: NoEdge, OuterRing: NoFace}
	m.faces = append(m.faces, f)
	return f.ID
}

// Vertex returns the vertex with the given id, or nil if it does not exist.
func (m *Mesh) Vertex(id VertexID) *Vertex {
	if id < 0 || int(id) >= len(m.vertices) || m.vertices[id].removed {
		return nil
	}
	return m.vertices[id]
}

// HalfEdge returns the half-edge with the given id, or nil if it does not
// exist.
func (m *Mesh) HalfEdge(id EdgeID) *HalfEdge {
	if id < 0 || int(id) >= len(m.edges) || m.edges[id].removed {
		return nil
	}
	return m.edges[id]
}

// Face returns the face with the given id, or nil if it does not exist.
func (m *Mesh) Face(id FaceID) *Face {
	if id < 0 || int(id) >= len(m.faces) || m.faces[id].removed {
		return nil
	}
	return m.faces[id]
}

// FindVertex returns the vertex at p.
func (m *Mesh) FindVertex(p geom.Point) (VertexID, bool) {
	id, ok := m.vertexIndex[p]
	return id, ok
}

// FindHalfEdge returns the half-edge from tail to head.
func (m *Mesh) FindHalfEdge(tail, head geom.Point) (EdgeID, bool) {
	t, ok := m.vertexIndex[tail]
	if !ok {
		return NoEdge, false
	}
	h, ok := m.vertexIndex[head]
	if !ok {
		return NoEdge, false
	}
	id, ok := m.edgeIndex[[2]VertexID{t, h}]
	return id, ok
}

// Vertices returns the ids of all vertices.
func (m *Mesh) Vertices() []VertexID {
	out := make([]VertexID, 0, len(m.vertices))
	for _, v := range m.vertices {
		if !v.removed {
			out = append(out, v.ID)
		}
	}
	return out
}

// HalfEdges returns the ids of all half-edges, in creation order.
func (m *Mesh) HalfEdges() []EdgeID {
	out := make([]EdgeID, 0, len(m.edges))
	for _, e := range m.edges {
		if !e.removed {
			out = append(out, e.ID)
		}
	}
	return out
}

// SimpleEdges returns one half-edge of every twin pair.
func (m *Mesh) SimpleEdges() []EdgeID {
	out := make([]EdgeID, 0, len(m.edges)/2)
	for _, e := range m.edges {
		if !e.removed && (e.Twin == NoEdge || e.ID < e.Twin) {
			out = append(out, e.ID)
		}
	}
	return out
}

// Faces returns the ids of all faces.
func (m *Mesh) Faces() []FaceID {
	out := make([]FaceID, 0, len(m.faces))
	for _, f := range m.faces {
		if !f.removed {
			out = append(out, f.ID)
		}
	}
	return out
}

// BoundedFaces returns the ids of all faces except the unbounded one.
func (m *Mesh) BoundedFaces() []FaceID {
	out := make([]FaceID, 0, len(m.faces))
	for _, f := range m.faces {
		if !f.removed && !f.IsUnbounded() {
			out = append(out, f.ID)
		}
	}
	return out
}

// UnboundedFace returns the unbounded face, or NoFace if it has not been
// created.
func (m *Mesh) UnboundedFace() FaceID {
	for _, f := range m.faces {
		if !f.removed && f.IsUnbounded() {
			return f.ID
		}
	}
	return NoFace
}

// Point returns the position of v.
func (m *Mesh) Point(v VertexID) geom.Point {
	return m.vertices[v].Point
}

// Head returns the head vertex of e, or NoVertex if e has no twin.
func (m *Mesh) Head(e EdgeID) VertexID {
	he := m.HalfEdge(e)
	if he == nil {
		return NoVertex
	}
	t := m.HalfEdge(he.Twin)
	if t == nil {
		return NoVertex
	}
	return t.Tail
}

// Degree returns the number of half-edges leaving v.
func (m *Mesh) Degree(v VertexID) int {
	if vv := m.Vertex(v); vv != nil {
		return len(vv.Edges)
	}
	return 0
}

// EdgeString describes e by its endpoints, for debugging.
func (m *Mesh) EdgeString(e EdgeID) string {
	he := m.HalfEdge(e)
	if he == nil {
		return fmt.Sprintf("<edge %d removed>", e)
	}
	tail := m.Point(he.Tail)
	if h := m.Head(e); h != NoVertex {
		head := m.Point(h)
		return fmt.Sprintf("%v/%v->%v/%v", tail.X, tail.Y, head.X, head.Y)
	}
	return fmt.Sprintf("%v/%v->?", tail.X, tail.Y)
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := NewMesh()
	c.Log = m.Log
	c.vertices = make([]*Vertex, len(m.vertices))
	for i, v := range m.vertices {
		vv := *v
		vv.Edges = append([]EdgeID(nil), v.Edges...)
		c.vertices[i] = &vv
	}
	c.edges = make([]*HalfEdge, len(m.edges))
	for i, e := range m.edges {
		ee := *e
		c.edges[i] = &ee
	}
	c.faces = make([]*Face, len(m.faces))
	for i, f := range m.faces {
		ff := *f
		ff.InnerEdges = append([]EdgeID(nil), f.InnerEdges...)
		ff.Features = append([]int(nil), f.Features...)
		c.faces[i] = &ff
	}
	for k, v := range m.vertexIndex {
		c.vertexIndex[k] = v
	}
	for k, v := range m.edgeIndex {
		c.edgeIndex[k] = v
	}
	c.Properties = make([]map[string]interface{}, len(m.Properties))
	for i, p := range m.Properties {
		if p == nil {
			continue
		}
		c.Properties[i] = make(map[string]interface{}, len(p))
		for k, v := range p {
			c.Properties[i][k] = v
		}
	}
	return c
}
