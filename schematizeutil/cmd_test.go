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

package schematizeutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/schematize"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/orientation"
	"gonum.org/v1/gonum/floats"
)

// bumpAndDent is a 10 by 4 rectangle with a 2 by 1 bump and a 2 by 1
// dent in its top side. Its area is 40.
const bumpAndDent = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "block"}, "geometry": {"type": "Polygon", "coordinates": [[
		[0, 0], [10, 0], [10, 4], [8, 4], [8, 5], [6, 5], [6, 4], [4, 4], [4, 3], [2, 3], [2, 4], [0, 4], [0, 0]
	]]}}
]}`

// testFiles writes the input file into a new directory and returns the
// directory and the input path.
func testFiles(t *testing.T) (dir, input string) {
	t.Helper()
	dir, err := ioutil.TempDir("", "schematize")
	if err != nil {
		t.Fatal(err)
	}
	input = filepath.Join(dir, "input.geojson")
	if err := ioutil.WriteFile(input, []byte(bumpAndDent), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, input
}

func readOutput(t *testing.T, filename string) *dcel.Mesh {
	t.Helper()
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	m, err := dcel.FromGeoJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestVersion(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "schematize v" + schematize.Version; !strings.Contains(b.String(), want) {
		t.Errorf("have %q, want %q", b.String(), want)
	}
}

func TestRun(t *testing.T) {
	dir, input := testFiles(t)
	defer os.RemoveAll(dir)
	output := filepath.Join(dir, "output.geojson")
	snapshots := filepath.Join(dir, "snapshots")

	Cfg.Set("Input", input)
	Cfg.Set("Output", output)
	Cfg.Set("SnapshotDir", snapshots)
	Cfg.Set("LogLevel", "warning")
	defer Cfg.Set("SnapshotDir", "")

	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "Iteration") {
		t.Errorf("no iterations were logged: %q", b.String())
	}

	m := readOutput(t, output)
	if area := m.Area(); !floats.EqualWithinAbsOrRel(area, 40, 1e-6, 1e-6) {
		t.Errorf("area: have %g, want 40", area)
	}
	c := orientation.MustRegular(2)
	for _, e := range m.SimpleEdges() {
		if a, ok := m.Angle(e); !ok || !c.IsAligned(a) {
			t.Errorf("edge %s is not aligned", m.EdgeString(e))
		}
	}
	if n := len(m.Vertices()); n >= 12 {
		t.Errorf("have %d vertices, want fewer than 12", n)
	}
	fc := m.ToGeoJSON()
	if len(fc.Features) != 1 || fc.Features[0].Properties["name"] != "block" {
		t.Errorf("feature properties were not kept: %v", fc.Features)
	}

	files, err := filepath.Glob(filepath.Join(snapshots, "*.geojson"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) < 3 {
		t.Errorf("have %d snapshots, want at least 3: %v", len(files), files)
	}
	for _, f := range []string{"0000_preprocessed.geojson", "0001_edge_move.geojson"} {
		readOutput(t, filepath.Join(snapshots, f))
	}
}

func TestStep(t *testing.T) {
	dir, input := testFiles(t)
	defer os.RemoveAll(dir)
	snapshots := filepath.Join(dir, "snapshots")

	Cfg.Set("Input", input)
	Cfg.Set("Output", "")
	Cfg.Set("SnapshotDir", snapshots)
	Cfg.Set("Steps", 1)
	Cfg.Set("LogLevel", "warning")
	defer Cfg.Set("SnapshotDir", "")

	Root.SetArgs([]string{"step"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	files, err := filepath.Glob(filepath.Join(snapshots, "*.geojson"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(snapshots, "0000_preprocessed.geojson"),
		filepath.Join(snapshots, "0001_edge_move.geojson"),
	}
	if fmt.Sprint(files) != fmt.Sprint(want) {
		t.Errorf("have snapshots %v, want %v", files, want)
	}
	m := readOutput(t, want[1])
	if area := m.Area(); !floats.EqualWithinAbsOrRel(area, 40, 1e-6, 1e-6) {
		t.Errorf("area: have %g, want 40", area)
	}
}

func TestStepNoSnapshotDir(t *testing.T) {
	dir, input := testFiles(t)
	defer os.RemoveAll(dir)
	cfg := schematize.DefaultConfig()
	if err := Step(input, "", "", 1, nil, cfg); err == nil {
		t.Error("expected an error without a snapshot directory")
	}
}

func TestRunIterationLimit(t *testing.T) {
	dir, input := testFiles(t)
	defer os.RemoveAll(dir)
	cfg := schematize.DefaultConfig()
	cfg.MaxIterations = 1
	var log bytes.Buffer
	if err := Run(input, filepath.Join(dir, "output.geojson"), dir, &log, cfg); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(log.String(), "Iteration 1 ") {
		t.Errorf("the last edge move was not logged: %q", log.String())
	}
	files, err := filepath.Glob(filepath.Join(dir, "0*.geojson"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "0000_preprocessed.geojson"),
		filepath.Join(dir, "0001_done.geojson"),
		filepath.Join(dir, "0001_edge_move.geojson"),
	}
	if fmt.Sprint(files) != fmt.Sprint(want) {
		t.Errorf("have snapshots %v, want %v", files, want)
	}
}

func TestRunInvalidInput(t *testing.T) {
	dir, err := ioutil.TempDir("", "schematize")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	input := filepath.Join(dir, "input.geojson")
	const point = `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
	]}`
	if err := ioutil.WriteFile(input, []byte(point), 0644); err != nil {
		t.Fatal(err)
	}
	err = Run(input, filepath.Join(dir, "output.geojson"), "", nil, schematize.DefaultConfig())
	if err == nil {
		t.Fatal("expected an error for a point feature")
	}
	if !strings.Contains(err.Error(), input) {
		t.Errorf("error %q does not name the input file", err)
	}
}

func TestConfigCmd(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"config"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"Orientations", "EpsilonFactor", "Staircases"} {
		if !strings.Contains(b.String(), key+" = ") {
			t.Errorf("configuration is missing %s:\n%s", key, b.String())
		}
	}
	if strings.Contains(b.String(), "config = ") {
		t.Errorf("configuration should not refer to itself:\n%s", b.String())
	}
}

func TestSetConfigHandler(t *testing.T) {
	dir, err := ioutil.TempDir("", "schematize")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(file, []byte("LogLevel = \"error\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer func() {
		Root.PersistentFlags().Set("config", "")
		Cfg.Set("LogLevel", "warning")
	}()

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		setConfigHandler(w, httptest.NewRequest("GET", "/setConfig", nil))
		if w.Code != http.StatusNoContent {
			t.Errorf("have status %d, want %d", w.Code, http.StatusNoContent)
		}
	})
	t.Run("file", func(t *testing.T) {
		w := httptest.NewRecorder()
		setConfigHandler(w, httptest.NewRequest("GET", "/setConfig?config="+url.QueryEscape(file), nil))
		if w.Code != http.StatusOK {
			t.Fatalf("have status %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}
		config := make(map[string]interface{})
		if err := json.NewDecoder(w.Body).Decode(&config); err != nil {
			t.Fatal(err)
		}
		if config["LogLevel"] != "error" {
			t.Errorf("LogLevel: have %v, want error", config["LogLevel"])
		}
		if _, ok := config["Orientations"]; !ok {
			t.Errorf("missing option Orientations in %v", config)
		}
	})
}
