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
	"encoding/json"
	"fmt"
	"io"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/spatialmodel/schematize/planar"
)

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// DecodeFeatureCollection parses a GeoJSON feature collection and
// returns the polygons of each feature with closed rings.
func DecodeFeatureCollection(b []byte) (*FeatureCollection, []geom.MultiPolygon, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, nil, fmt.Errorf("dcel: decoding GeoJSON: %v: %w", err, ErrInvalidInput)
	}
	if fc.Type != "FeatureCollection" {
		return nil, nil, fmt.Errorf("dcel: GeoJSON type is %q, want FeatureCollection: %w", fc.Type, ErrInvalidInput)
	}
	polys := make([]geom.MultiPolygon, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			return nil, nil, fmt.Errorf("dcel: feature %d has no geometry: %w", i, ErrInvalidInput)
		}
		p, err := decodePolygons(f.Geometry)
		if err != nil {
			return nil, nil, fmt.Errorf("dcel: feature %d: %v: %w", i, err, ErrInvalidInput)
		}
		polys[i] = p
	}
	return &fc, polys, nil
}

// decodePolygons decodes a Polygon or MultiPolygon geometry. Multipolygons
// are decoded one member polygon at a time.
func decodePolygons(g *geojson.Geometry) (geom.MultiPolygon, error) {
	if g.Type == "MultiPolygon" {
		members, ok := g.Coordinates.([]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid MultiPolygon coordinates")
		}
		var out geom.MultiPolygon
		for _, c := range members {
			p, err := decodePolygons(&geojson.Geometry{Type: "Polygon", Coordinates: c})
			if err != nil {
				return nil, err
			}
			out = append(out, p...)
		}
		return out, nil
	}
	gg, err := geojson.FromGeoJSON(g)
	if err != nil {
		return nil, err
	}
	switch p := gg.(type) {
	case geom.Polygon:
		return geom.MultiPolygon{p}, nil
	case geom.MultiPolygon:
		return p, nil
	default:
		return nil, fmt.Errorf("geometry type %T, want Polygon or MultiPolygon", gg)
	}
}

// ValidateFeatureCollection checks that b is a feature collection of
// valid polygons and multipolygons.
func ValidateFeatureCollection(b []byte) error {
	_, polys, err := DecodeFeatureCollection(b)
	if err != nil {
		return err
	}
	for i, p := range polys {
		if err := ValidatePolygons(p); err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return nil
}

// FromGeoJSON builds a mesh from a GeoJSON feature collection of polygons
// and multipolygons. Invalid input is rejected with ErrInvalidInput before
// any mesh is built.
func FromGeoJSON(b []byte) (*Mesh, error) {
	fc, polys, err := DecodeFeatureCollection(b)
	if err != nil {
		return nil, err
	}
	s := &Subdivision{MultiPolygons: make([]MultiPolygon, len(polys))}
	for i, p := range polys {
		if err := ValidatePolygons(p); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		open := make(geom.MultiPolygon, len(p))
		for j, poly := range p {
			open[j] = make(geom.Polygon, len(poly))
			for k, r := range poly {
				open[j][k] = planar.Open(r)
			}
		}
		s.MultiPolygons[i] = MultiPolygon{Polygons: open, Properties: fc.Features[i].Properties}
	}
	return FromSubdivision(s)
}

// ToGeoJSON converts m into a feature collection with one multipolygon
// feature per input feature. Rings are closed by repeating their first
// point.
func (m *Mesh) ToGeoJSON() *FeatureCollection {
	s := m.ToSubdivision()
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]*Feature, len(s.MultiPolygons))}
	for i, mp := range s.MultiPolygons {
		coords := make([][][][]float64, len(mp.Polygons))
		for j, poly := range mp.Polygons {
			coords[j] = make([][][]float64, len(poly))
			for k, r := range poly {
				closed := planar.Close(r)
				coords[j][k] = make([][]float64, len(closed))
				for l, p := range closed {
					coords[j][k][l] = []float64{p.X, p.Y}
				}
			}
		}
		g := &geojson.Geometry{Type: "MultiPolygon", Coordinates: coords}
		fc.Features[i] = &Feature{Type: "Feature", Geometry: g, Properties: mp.Properties}
	}
	return fc
}

// Encode writes m to w as a GeoJSON feature collection.
func (m *Mesh) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(m.ToGeoJSON())
}
