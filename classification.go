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
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/orientation"
	"github.com/spatialmodel/schematize/planar"
)

var (
	// ErrUnclassifiedEdge is returned when an edge is left without a
	// direction or class.
	ErrUnclassifiedEdge = errors.New("schematize: unclassified edge")

	// ErrNoValidMove signals that the contraction loop has no valid edge
	// move left. It marks normal termination.
	ErrNoValidMove = errors.New("schematize: no valid edge move")
)

// EdgeClass describes how an edge relates to the orientation set and to
// the direction assigned to it.
type EdgeClass int

// Edge classes, in the order they are decided.
const (
	Unclassified EdgeClass = iota
	AlignedBasic
	AlignedDeviating
	UnalignedDeviating
	Evading
	UnalignedBasic
)

func (c EdgeClass) String() string {
	switch c {
	case AlignedBasic:
		return "AB"
	case AlignedDeviating:
		return "AD"
	case UnalignedDeviating:
		return "UD"
	case Evading:
		return "E"
	case UnalignedBasic:
		return "UB"
	default:
		return "unclassified"
	}
}

// Classification holds the direction and the class of each half-edge.
type Classification struct {
	Directions map[dcel.EdgeID]int
	Classes    map[dcel.EdgeID]EdgeClass

	// Classified maps each half-edge to the half-edge of its pair whose
	// direction decided the class of both.
	Classified map[dcel.EdgeID]dcel.EdgeID
}

// Classify assigns directions to the edges around every vertex and a
// class to every half-edge. A half-edge and its twin always share a
// class; a class once set is never changed.
func Classify(m *dcel.Mesh, cfg *Config, significant map[dcel.VertexID]bool) (*Classification, error) {
	cl := &Classification{
		Directions: make(map[dcel.EdgeID]int),
		Classes:    make(map[dcel.EdgeID]EdgeClass),
		Classified: make(map[dcel.EdgeID]dcel.EdgeID),
	}
	for _, v := range m.Vertices() {
		edges, dirs, err := AssignDirections(m, cfg.C, v)
		if err != nil {
			return nil, err
		}
		for i, e := range edges {
			cl.Directions[e] = dirs[i]
		}
	}

	classify := func(e dcel.EdgeID) {
		if _, ok := cl.Classes[e]; ok {
			return
		}
		c := cl.class(m, cfg.C, e)
		twin := m.HalfEdge(e).Twin
		cl.Classes[e], cl.Classes[twin] = c, c
		cl.Classified[e], cl.Classified[twin] = e, e
	}
	// Edges pointing at a significant vertex are classified from the
	// other side; edges between two significant vertices are left for
	// the second pass.
	for _, e := range m.HalfEdges() {
		if !significant[m.Head(e)] {
			classify(e)
		}
	}
	for _, e := range m.HalfEdges() {
		classify(e)
	}
	cfg.logger().WithField("edges", len(cl.Classes)).Debug("classified half-edges")
	return cl, cl.Check(m)
}

func (cl *Classification) class(m *dcel.Mesh, c *orientation.Set, e dcel.EdgeID) EdgeClass {
	a, _ := m.Angle(e)
	dir := cl.Directions[e]
	aligned := c.IsAligned(a)
	deviating := IsDeviating(m, c, e, dir)
	switch {
	case aligned && !deviating:
		return AlignedBasic
	case aligned:
		return AlignedDeviating
	case deviating:
		return UnalignedDeviating
	}

	sec := c.AssociatedSectors(a)[0]
	var inSector int
	for _, g := range m.Vertex(m.HalfEdge(e).Tail).Edges {
		ga, ok := m.Angle(g)
		if !ok || !sec.Encloses(ga) || c.IsAligned(ga) {
			continue
		}
		if gd, ok := cl.Directions[g]; ok && !IsDeviating(m, c, g, gd) {
			inSector++
		}
	}
	if inSector == 2 {
		return Evading
	}
	return UnalignedBasic
}

// Check returns an ErrUnclassifiedEdge error naming the first half-edge
// of m without a direction or a class.
func (cl *Classification) Check(m *dcel.Mesh) error {
	for _, e := range m.HalfEdges() {
		if _, ok := cl.Directions[e]; !ok {
			return fmt.Errorf("schematize: %s has no direction: %w", m.EdgeString(e), ErrUnclassifiedEdge)
		}
		if c := cl.Classes[e]; c == Unclassified {
			return fmt.Errorf("schematize: %s has no class: %w", m.EdgeString(e), ErrUnclassifiedEdge)
		}
	}
	return nil
}

// ClassifiedEdge returns the half-edge of e's pair whose direction
// decided its class, or e itself if it was not classified.
func (cl *Classification) ClassifiedEdge(e dcel.EdgeID) dcel.EdgeID {
	if c, ok := cl.Classified[e]; ok {
		return c
	}
	return e
}

// Count returns the number of half-edges in each class.
func (cl *Classification) Count() map[EdgeClass]int {
	out := make(map[EdgeClass]int)
	for _, c := range cl.Classes {
		out[c]++
	}
	return out
}

// IsDeviating reports whether direction dir lies outside the directions
// e may be bent to: for an aligned edge, its own direction; otherwise
// the bounds of its sector.
func IsDeviating(m *dcel.Mesh, c *orientation.Set, e dcel.EdgeID, dir int) bool {
	a, ok := m.Angle(e)
	if !ok {
		return false
	}
	d := c.DirectionAngle(dir)
	if assoc := c.AssociatedAngles(a); len(assoc) == 1 {
		return planar.AngularDistance(assoc[0], d) > c.Tolerance
	}
	return !c.AssociatedSectors(a)[0].Encloses(d)
}

// ClosestAssociatedAngle returns the bound of the sector of e that is
// closest to direction dir, preferring the lower bound on a tie. The
// result lies in [0, 2π).
func ClosestAssociatedAngle(m *dcel.Mesh, c *orientation.Set, e dcel.EdgeID, dir int) float64 {
	a, _ := m.Angle(e)
	assoc := c.AssociatedAngles(a)
	if len(assoc) == 1 {
		return planar.NormalizeAngle(assoc[0])
	}
	d := c.DirectionAngle(dir)
	lower, upper := assoc[0], assoc[1]
	if planar.AngularDistance(upper, d) < planar.AngularDistance(lower, d)-c.Tolerance {
		return normalize(upper)
	}
	return normalize(lower)
}

// normalize maps angle to [0, 2π), treating values within rounding of
// 2π as 0.
func normalize(angle float64) float64 {
	a := planar.NormalizeAngle(angle)
	if 2*math.Pi-a < 1e-12 {
		return 0
	}
	return a
}
