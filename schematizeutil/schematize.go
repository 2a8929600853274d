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
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/schematize"
	"github.com/spatialmodel/schematize/dcel"
)

// Run schematizes the subdivision in the GeoJSON file input and writes
// the result to the GeoJSON file output. If snapshotDir is not empty,
// the mesh is also written there after preprocessing and after every
// edge move. Iteration status is written to logW.
func Run(input, output, snapshotDir string, logW io.Writer, cfg *schematize.Config) error {
	s, err := newSchematization(input, snapshotDir, logW, cfg)
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	if err := s.Run(); err != nil {
		return err
	}
	return writeMesh(output, s.Mesh)
}

// Step prepares the subdivision in the GeoJSON file input and performs
// at most steps edge moves, writing the mesh to snapshotDir after
// each one. If output is not empty, the last mesh is written there.
func Step(input, output, snapshotDir string, steps int, logW io.Writer, cfg *schematize.Config) error {
	if snapshotDir == "" {
		return fmt.Errorf("schematize: SnapshotDir needs to be set for stepping")
	}
	s, err := newSchematization(input, snapshotDir, logW, cfg)
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	for i := 0; i < steps && !s.Done; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{
		"iterations": s.Iteration,
		"done":       s.Done,
	}).Info("stepping finished")
	if output == "" {
		return nil
	}
	return writeMesh(output, s.Mesh)
}

func newSchematization(input, snapshotDir string, logW io.Writer, cfg *schematize.Config) (*schematize.Schematization, error) {
	m, err := readMesh(input)
	if err != nil {
		return nil, err
	}
	s, err := schematize.New(m, cfg)
	if err != nil {
		return nil, err
	}
	// The iteration limit stays last so the final edge move is still
	// logged and saved.
	n := len(s.RunFuncs) - 1
	run, limit := s.RunFuncs[:n:n], s.RunFuncs[n]
	if logW != nil {
		run = append(run, schematize.Log(logW))
	}
	if snapshotDir != "" {
		s.InitFuncs = append(s.InitFuncs, SaveMesh(snapshotDir, "preprocessed"))
		run = append(run, SaveMesh(snapshotDir, "edge move"))
		s.CleanupFuncs = append(s.CleanupFuncs, SaveMesh(snapshotDir, "done"))
	}
	s.RunFuncs = append(run, limit)
	return s, nil
}

// SaveMesh returns a function that writes the mesh of a schematization
// to a GeoJSON file in dir whose name holds the iteration and the
// step label.
func SaveMesh(dir, step string) schematize.Manipulator {
	step = strings.Replace(step, " ", "_", -1)
	return func(s *schematize.Schematization) error {
		name := filepath.Join(dir, fmt.Sprintf("%04d_%s.geojson", s.Iteration, step))
		return writeMesh(name, s.Mesh)
	}
}

func readMesh(filename string) (*dcel.Mesh, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("schematize: reading input: %v", err)
	}
	m, err := dcel.FromGeoJSON(b)
	if err != nil {
		return nil, fmt.Errorf("schematize: loading %s: %w", filename, err)
	}
	return m, nil
}

func writeMesh(filename string, m *dcel.Mesh) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("schematize: creating output: %v", err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("schematize: writing %s: %v", filename, err)
	}
	return f.Close()
}
