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
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/planar"
)

// Manipulator is a function that operates on a schematization in
// progress.
type Manipulator func(s *Schematization) error

// Schematization holds the state of a mesh being schematized.
type Schematization struct {
	Mesh   *dcel.Mesh
	Config *Config

	// Epsilon is the subdivision threshold in use, set by Preprocess.
	Epsilon float64

	// Significant holds the vertices that must not be moved.
	Significant map[dcel.VertexID]bool

	// Classification describes the edges of the mesh before staircases
	// were inserted.
	Classification *Classification

	// Stairs holds the staircases computed by the last classification.
	Stairs []*Staircase

	Boundaries *FaceFaceBoundaryList
	Cache      *ConfigurationCache

	// Iteration is the number of edge moves performed.
	Iteration int

	// Done is set when no further edge move is possible or the
	// iteration limit is reached.
	Done bool

	Snapshots []*dcel.Snapshot

	Log logrus.FieldLogger

	// InitFuncs are run once by Init, RunFuncs are run repeatedly by
	// Run until Done is set, and CleanupFuncs are run once afterwards.
	InitFuncs, RunFuncs, CleanupFuncs []Manipulator

	cleanedUp bool
}

// configurationCacheSize is the number of configuration geometries
// retained between iterations.
const configurationCacheSize = 4096

// New returns a schematization of m with the default stages for cfg.
// m is modified in place.
func New(m *dcel.Mesh, cfg *Config) (*Schematization, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Schematization{
		Mesh:   m,
		Config: cfg,
		Cache:  NewConfigurationCache(configurationCacheSize),
		Log:    cfg.logger(),
		InitFuncs: []Manipulator{
			Preprocess(),
			ClassifyVertices(),
			ClassifyEdges(),
			ResolveInterference(),
			ReplaceStaircases(),
			RemoveCollinear(),
			BuildBoundaries(),
			ValidateMesh(),
		},
		RunFuncs: []Manipulator{MoveEdges()},
		CleanupFuncs: []Manipulator{
			RemoveCollinear(),
			ValidateMesh(),
		},
	}
	if cfg.Snapshots {
		s.InitFuncs = append(s.InitFuncs, TakeSnapshot("preprocessed"))
		s.RunFuncs = append(s.RunFuncs, TakeSnapshot("edge move"))
		s.CleanupFuncs = append(s.CleanupFuncs, TakeSnapshot("done"))
	}
	// The limit comes last so the final edge move is still recorded.
	s.RunFuncs = append(s.RunFuncs, IterationLimit(cfg.MaxIterations))
	return s, nil
}

// Schematize runs the complete pipeline on m using cfg, or
// DefaultConfig if cfg is nil, and returns the schematized mesh.
func Schematize(m *dcel.Mesh, cfg *Config) (*dcel.Mesh, error) {
	s, err := New(m, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return nil, err
	}
	return s.Mesh, nil
}

// NewSteps returns an initialized schematization of m whose edge moves
// can be performed one at a time with Step.
func NewSteps(m *dcel.Mesh, cfg *Config) (*Schematization, error) {
	s, err := New(m, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init runs the InitFuncs.
func (s *Schematization) Init() error {
	for i, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("schematize: init stage %d: %w", i, err)
		}
	}
	return nil
}

// Run runs the RunFuncs until Done is set and then runs the
// CleanupFuncs.
func (s *Schematization) Run() error {
	for !s.Done {
		if err := s.runOnce(); err != nil {
			return err
		}
	}
	return s.cleanup()
}

// Step runs the RunFuncs once. When that completes the schematization,
// the CleanupFuncs are run as well. Step does nothing once s is Done.
func (s *Schematization) Step() error {
	if s.Done {
		return s.cleanup()
	}
	if err := s.runOnce(); err != nil {
		return err
	}
	if s.Done {
		return s.cleanup()
	}
	return nil
}

func (s *Schematization) runOnce() error {
	for _, f := range s.RunFuncs {
		if err := f(s); err != nil {
			return err
		}
		if s.Done {
			break
		}
	}
	return nil
}

func (s *Schematization) cleanup() error {
	if s.cleanedUp {
		return nil
	}
	s.cleanedUp = true
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Preprocess subdivides every edge longer than the threshold epsilon.
// epsilon is Config.Epsilon, or Config.EpsilonFactor times the
// diameter of the mesh.
func Preprocess() Manipulator {
	return func(s *Schematization) error {
		s.Epsilon = s.Config.Epsilon
		if s.Epsilon == 0 {
			s.Epsilon = s.Config.EpsilonFactor * s.Mesh.Diameter()
		}
		if s.Epsilon <= 0 {
			return fmt.Errorf("schematize: mesh has no extent")
		}
		before := len(s.Mesh.Vertices())
		for _, f := range s.Mesh.BoundedFaces() {
			if err := s.Mesh.SubdivideToThreshold(s.Mesh.Face(f).Edge, s.Epsilon); err != nil {
				return err
			}
		}
		s.Log.WithFields(logrus.Fields{
			"epsilon":  s.Epsilon,
			"vertices": len(s.Mesh.Vertices()),
			"added":    len(s.Mesh.Vertices()) - before,
		}).Info("schematize: preprocessed")
		return nil
	}
}

// ClassifyVertices determines the significant vertices of the mesh.
func ClassifyVertices() Manipulator {
	return func(s *Schematization) error {
		s.Significant = Significance(s.Mesh, s.Config)
		return nil
	}
}

// ClassifyEdges assigns a direction and class to every edge and builds
// the staircases of the unaligned edges.
func ClassifyEdges() Manipulator {
	return func(s *Schematization) error {
		cl, err := Classify(s.Mesh, s.Config, s.Significant)
		if err != nil {
			return err
		}
		s.Classification = cl
		s.Stairs, err = Staircases(s.Mesh, s.Config, cl)
		return err
	}
}

// ResolveInterference bisects the longer edge of every pair of
// interfering staircases and classifies the mesh again,
// until no interference remains or the round limit is reached.
func ResolveInterference() Manipulator {
	return func(s *Schematization) error {
		if !s.Config.Interference {
			return nil
		}
		for round := 0; round < s.Config.MaxInterferenceRounds; round++ {
			pairs := NewInterferenceIndex(s.Mesh, s.Stairs).Interferences()
			if len(pairs) == 0 {
				return nil
			}
			split := make(map[dcel.EdgeID]bool)
			for _, p := range pairs {
				e := p[0].Edge
				if s.Mesh.Length(p[1].Edge) > s.Mesh.Length(e) {
					e = p[1].Edge
				}
				if split[e] || s.Mesh.HalfEdge(e) == nil {
					continue
				}
				split[e] = true
				if _, err := s.Mesh.Bisect(e); err != nil {
					return err
				}
			}
			s.Log.WithFields(logrus.Fields{
				"round":         round,
				"interferences": len(pairs),
				"bisected":      len(split),
			}).Debug("schematize: resolving interference")
			s.Significant = Significance(s.Mesh, s.Config)
			if err := ClassifyEdges()(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// ReplaceStaircases replaces every unaligned or deviating edge by the
// points of its staircase. It fails with dcel.ErrInvariant if a face is
// no longer simple afterwards.
func ReplaceStaircases() Manipulator {
	return func(s *Schematization) error {
		if !s.Config.Staircases {
			return nil
		}
		var added int
		for _, st := range s.Stairs {
			cur := st.Edge
			for _, p := range st.Points[1 : len(st.Points)-1] {
				e, err := s.Mesh.Subdivide(cur, p)
				if err != nil {
					return fmt.Errorf("schematize: staircase of %s: %w", st.Class, err)
				}
				cur = s.Mesh.HalfEdge(e).Next
				added++
			}
		}
		s.Log.WithFields(logrus.Fields{
			"staircases": len(s.Stairs),
			"vertices":   added,
		}).Info("schematize: replaced staircases")
		if f, ok := nonSimpleFace(s.Mesh); ok {
			return fmt.Errorf("schematize: face %d is not simple after replacing staircases: %w", f, dcel.ErrInvariant)
		}
		return nil
	}
}

// nonSimpleFace returns a bounded face of m whose outer ring intersects
// itself.
func nonSimpleFace(m *dcel.Mesh) (dcel.FaceID, bool) {
	for _, f := range m.BoundedFaces() {
		if planar.SelfIntersects(m.FaceRing(f)) {
			return f, true
		}
	}
	return dcel.NoFace, false
}

// RemoveCollinear dissolves every insignificant vertex of degree two
// whose edges lie on one line.
func RemoveCollinear() Manipulator {
	return func(s *Schematization) error {
		var removed int
		for changed := true; changed; {
			changed = false
			for _, v := range s.Mesh.Vertices() {
				if s.Significant[v] || !collinear(s.Mesh, v) {
					continue
				}
				if _, err := s.Mesh.DissolveVertex(v); err != nil {
					if errors.Is(err, dcel.ErrInvariant) {
						return err
					}
					continue
				}
				removed++
				changed = true
			}
		}
		if removed > 0 {
			s.Log.WithField("vertices", removed).Debug("schematize: removed collinear vertices")
		}
		return nil
	}
}

func collinear(m *dcel.Mesh, v dcel.VertexID) bool {
	vx := m.Vertex(v)
	if vx == nil || len(vx.Edges) != 2 {
		return false
	}
	a, okA := m.Angle(vx.Edges[0])
	b, okB := m.Angle(vx.Edges[1])
	if !okA || !okB {
		return false
	}
	return math.Abs(planar.AngularDistance(a, b)-math.Pi) < 1e-9
}

// BuildBoundaries builds the face-face boundary list of the mesh.
func BuildBoundaries() Manipulator {
	return func(s *Schematization) error {
		s.Boundaries = NewFaceFaceBoundaryList(s.Mesh, s.Significant, s.Cache)
		return nil
	}
}

// MoveEdges performs the smallest edge move that can be applied to the
// mesh without breaking it, and sets Done if there is none.
func MoveEdges() Manipulator {
	return func(s *Schematization) error {
		if s.Boundaries == nil {
			s.Boundaries = NewFaceFaceBoundaryList(s.Mesh, s.Significant, s.Cache)
		}
		for _, em := range s.Boundaries.EdgeMoves(s.Mesh) {
			m := s.Mesh.Clone()
			if err := em.Do(m); err != nil {
				if errors.Is(err, dcel.ErrInvariant) {
					s.Log.WithError(err).Warn("schematize: discarding edge move")
				}
				continue
			}
			if m.Validate() != nil || !facesSimple(m, em.Contraction) {
				continue
			}
			s.Mesh = m
			s.Iteration++
			s.Boundaries = NewFaceFaceBoundaryList(s.Mesh, s.Significant, s.Cache)
			s.Log.WithFields(logrus.Fields{
				"iteration":    s.Iteration,
				"edge":         em.Contraction.Inner,
				"area":         em.Contraction.Area,
				"compensation": em.Compensation.Inner,
			}).Debug("schematize: edge move")
			return nil
		}
		s.Log.WithField("iteration", s.Iteration).Info("schematize: no valid edge move")
		s.Done = true
		return nil
	}
}

// facesSimple reports whether the rings of the faces on both sides of
// the inner edge of k are still simple.
func facesSimple(m *dcel.Mesh, k *Contraction) bool {
	for _, e := range k.Edges() {
		he := m.HalfEdge(e)
		if he == nil {
			continue
		}
		for _, f := range []dcel.FaceID{he.Face, m.HalfEdge(he.Twin).Face} {
			if m.Face(f).IsUnbounded() {
				continue
			}
			if planar.SelfIntersects(m.FaceRing(f)) {
				return false
			}
		}
	}
	return true
}

// IterationLimit sets Done after n edge moves. n <= 0 means no limit.
func IterationLimit(n int) Manipulator {
	return func(s *Schematization) error {
		if n > 0 && s.Iteration >= n {
			s.Done = true
		}
		return nil
	}
}

// Log writes the progress of the schematization to w.
func Log(w io.Writer) Manipulator {
	startTime := time.Now()
	stepTime := time.Now()
	return func(s *Schematization) error {
		fmt.Fprintf(w, "Iteration %-4d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
			"vertices=%d  edges=%d\n",
			s.Iteration, time.Since(startTime).Hours(),
			time.Since(stepTime).Seconds(), len(s.Mesh.Vertices()),
			len(s.Mesh.SimpleEdges()))
		stepTime = time.Now()
		return nil
	}
}

// TakeSnapshot records the geometry of the mesh, labelled with step.
func TakeSnapshot(step string) Manipulator {
	return func(s *Schematization) error {
		s.Snapshots = append(s.Snapshots, s.Mesh.Snapshot(s.Iteration, step))
		return nil
	}
}

// ValidateMesh checks the links of the mesh.
func ValidateMesh() Manipulator {
	return func(s *Schematization) error {
		return s.Mesh.Validate()
	}
}
