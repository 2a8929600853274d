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

	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/orientation"
)

// AssignDirections chooses a direction of c for every edge leaving v.
// The edges are returned in counter-clockwise order together with the
// index of the direction assigned to each.
//
// Every ascending selection of directions is tried in each of its cyclic
// rotations; the selection with the smallest total angular deviation
// wins, and the first one found wins a tie.
func AssignDirections(m *dcel.Mesh, c *orientation.Set, v dcel.VertexID) ([]dcel.EdgeID, []int, error) {
	edges := m.SortEdges(v, false)
	n := len(edges)
	if n > c.Len() {
		return nil, nil, fmt.Errorf("schematize: vertex %d at %v has %d edges but %v has only %d directions: %w",
			v, m.Point(v), n, c, c.Len(), ErrUnclassifiedEdge)
	}
	angles := make([]float64, n)
	for i, e := range edges {
		angles[i], _ = m.Angle(e)
	}

	best := math.Inf(1)
	var solution []int
	for _, comb := range c.ValidDirections(n) {
		rot := append([]int(nil), comb...)
		for r := 0; r < n; r++ {
			var cost float64
			for i, d := range rot {
				cost += c.Deviation(angles[i], d)
			}
			if cost < best {
				best = cost
				solution = append(solution[:0], rot...)
			}
			rot = append([]int{rot[n-1]}, rot[:n-1]...)
		}
	}
	return edges, solution, nil
}
