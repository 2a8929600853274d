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
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kr/pretty"
)

const squareWithHoleJSON = `{"type": "FeatureCollection", "features": [
{"type": "Feature", "properties": {"name": "a"}, "geometry": {"type": "Polygon", "coordinates": [
	[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]],
	[[3, 3], [3, 7], [7, 7], [7, 3], [3, 3]]
]}},
{"type": "Feature", "properties": {"name": "b"}, "geometry": {"type": "MultiPolygon", "coordinates": [
	[[[20, 0], [30, 0], [30, 10], [20, 10], [20, 0]]],
	[[[40, 0], [50, 0], [50, 10], [40, 10], [40, 0]]]
]}}
]}`

func TestFromGeoJSON(t *testing.T) {
	m, err := FromGeoJSON([]byte(squareWithHoleJSON))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if a := m.Area(); a != 284 {
		t.Errorf("area: have %g, want 284", a)
	}
	want := []map[string]interface{}{{"name": "a"}, {"name": "b"}}
	if diff := pretty.Diff(m.Properties, want); len(diff) > 0 {
		t.Errorf("properties: %v", diff)
	}

	fc := m.ToGeoJSON()
	if len(fc.Features) != 2 {
		t.Fatalf("features: have %d, want 2", len(fc.Features))
	}
	c := fc.Features[0].Geometry.Coordinates.([][][][]float64)
	if len(c) != 1 || len(c[0]) != 2 || len(c[0][0]) != 5 || len(c[0][1]) != 5 {
		t.Errorf("first feature coordinates: %v", c)
	}
	if len(fc.Features[1].Geometry.Coordinates.([][][][]float64)) != 2 {
		t.Error("second feature should keep both polygons")
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	m2, err := FromGeoJSON(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(m2.BoundedFaces()) != len(m.BoundedFaces()) {
		t.Errorf("round trip: have %d bounded faces, want %d", len(m2.BoundedFaces()), len(m.BoundedFaces()))
	}
	if a := m2.Area(); a != 284 {
		t.Errorf("round trip area: have %g, want 284", a)
	}
}

func TestFromGeoJSONInvalid(t *testing.T) {
	tests := []struct {
		name, json string
	}{
		{name: "not json", json: `{"type":`},
		{name: "not a collection", json: `{"type": "Feature"}`},
		{name: "line", json: `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry":
			{"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}]}`},
		{name: "missing geometry", json: `{"type": "FeatureCollection", "features": [{"type": "Feature"}]}`},
		{name: "open ring", json: `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry":
			{"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1]]]}}]}`},
		{name: "two points", json: `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry":
			{"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [0, 0], [1, 0], [0, 0]]]}}]}`},
		{name: "bowtie", json: `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry":
			{"type": "Polygon", "coordinates": [[[0, 0], [1, 1], [1, 0], [0, 1], [0, 0]]]}}]}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromGeoJSON([]byte(test.json))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("have %v, want ErrInvalidInput", err)
			}
			if err2 := ValidateFeatureCollection([]byte(test.json)); !errors.Is(err2, ErrInvalidInput) {
				t.Errorf("validate: have %v, want ErrInvalidInput", err2)
			}
		})
	}
}

func TestEncodeProperties(t *testing.T) {
	m, err := FromGeoJSON([]byte(squareWithHoleJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	var fc struct {
		Features []struct {
			Properties map[string]string
		}
	}
	if err := json.Unmarshal(buf.Bytes(), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Features[1].Properties["name"] != "b" {
		t.Errorf("properties: %# v", pretty.Formatter(fc))
	}
}
