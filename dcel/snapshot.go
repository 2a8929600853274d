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
	"github.com/ctessum/geom"
	"github.com/spatialmodel/schematize/internal/hash"
	"github.com/spatialmodel/schematize/planar"
	"gonum.org/v1/gonum/stat"
)

// Snapshot is an immutable copy of the geometry of a mesh at one step of
// a pipeline, for visualization and stepping.
type Snapshot struct {
	Iteration int
	Step      string

	Vertices []geom.Point
	Edges    []planar.Segment
	Faces    []SnapshotFace

	// EdgeLengthMean and EdgeLengthStdDev summarize the lengths of Edges.
	EdgeLengthMean, EdgeLengthStdDev float64

	// Hash identifies the geometry of the snapshot.
	Hash string
}

// SnapshotFace is the geometry of one bounded face.
type SnapshotFace struct {
	Features []int
	Rings    [][]geom.Point
}

// Snapshot records the current geometry of m.
func (m *Mesh) Snapshot(iteration int, step string) *Snapshot {
	s := &Snapshot{Iteration: iteration, Step: step}
	for _, v := range m.Vertices() {
		s.Vertices = append(s.Vertices, m.Point(v))
	}
	lengths := make([]float64, 0, len(m.edges)/2)
	for _, e := range m.SimpleEdges() {
		seg := m.Segment(e)
		s.Edges = append(s.Edges, seg)
		lengths = append(lengths, seg.Length())
	}
	switch len(lengths) {
	case 0:
	case 1:
		s.EdgeLengthMean = lengths[0]
	default:
		s.EdgeLengthMean, s.EdgeLengthStdDev = stat.MeanStdDev(lengths, nil)
	}
	for _, f := range m.BoundedFaces() {
		ff := m.faces[f]
		sf := SnapshotFace{Features: append([]int(nil), ff.Features...)}
		sf.Rings = append(sf.Rings, m.ring(ff.Edge))
		for _, ie := range ff.InnerEdges {
			sf.Rings = append(sf.Rings, m.ring(ie))
		}
		s.Faces = append(s.Faces, sf)
	}
	s.Hash = hash.Hash(struct {
		V []geom.Point
		E []planar.Segment
		F []SnapshotFace
	}{s.Vertices, s.Edges, s.Faces})
	return s
}
