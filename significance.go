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
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/orientation"
)

// Significance determines which vertices of m must keep their position.
// Vertices missing from the returned map are not significant.
func Significance(m *dcel.Mesh, cfg *Config) map[dcel.VertexID]bool {
	out := make(map[dcel.VertexID]bool)
	for _, v := range m.Vertices() {
		if IsSignificant(m, cfg.C, v) {
			out[v] = true
		}
	}
	return out
}

// IsSignificant reports whether v cannot be resolved by rotating its
// edges into neighbouring sectors.
//
// A vertex whose edges are all aligned is not significant. A vertex with
// two edges in the same sector is. Otherwise it is significant if every
// occupied sector has an occupied neighbour.
func IsSignificant(m *dcel.Mesh, c *orientation.Set, v dcel.VertexID) bool {
	var angles []float64
	for _, e := range m.SortEdges(v, false) {
		if a, ok := m.Angle(e); ok {
			angles = append(angles, a)
		}
	}
	aligned := true
	for _, a := range angles {
		if !c.IsAligned(a) {
			aligned = false
			break
		}
	}
	if aligned {
		return false
	}

	occupied := make(map[int]bool)
	for _, a := range angles {
		for _, sec := range c.AssociatedSectors(a) {
			if occupied[sec.Index] {
				return true
			}
			occupied[sec.Index] = true
		}
	}

	nonEmpty := func(sec orientation.Sector) bool {
		for _, a := range angles {
			if sec.Encloses(a) {
				return true
			}
		}
		return false
	}
	for i := range occupied {
		nb := c.Sector(i).Neighbors()
		if !nonEmpty(nb[0]) && !nonEmpty(nb[1]) {
			return false
		}
	}
	return true
}
