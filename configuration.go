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
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/groupcache/lru"
	"github.com/spatialmodel/schematize/dcel"
	"github.com/spatialmodel/schematize/planar"
)

// OuterEdge selects one of the two edges next to the inner edge of a
// configuration.
type OuterEdge int

// The outer edges of a configuration.
const (
	Prev OuterEdge = iota
	Next
)

func (o OuterEdge) String() string {
	if o == Prev {
		return "prev"
	}
	return "next"
}

// Side is the direction in which an inner edge is moved, relative to the
// face on its left.
type Side int

// Sides of a configuration. A negative contraction moves the inner edge
// into the face on its left, a positive one away from it.
const (
	Negative Side = iota
	Positive
)

func (s Side) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// Configuration is an inner edge u->v together with the edges t->u and
// v->w around it. Moving the inner edge parallel to itself, with u on
// the line of t->u and v on the line of v->w, keeps the orientation of
// all three edges.
type Configuration struct {
	Inner, Prev, Next dcel.EdgeID
	T, U, V, W        dcel.VertexID

	*configGeometry
}

// configGeometry holds the positions and move offsets of a
// configuration. It only depends on the four points and is cached.
type configGeometry struct {
	t, u, v, w geom.Point

	// normal is the left unit normal of the inner edge.
	normal planar.Vector

	// dPrev and dNext are the unit directions of the outer edges.
	dPrev, dNext planar.Vector

	// Offsets along normal at which the prev edge, the next edge and the
	// inner edge shrink to zero length.
	sT, sW, sX float64
	x          geom.Point
	hasX       bool

	tol float64
}

type configKey [4]geom.Point

// ConfigurationCache caches configuration geometry between iterations.
type ConfigurationCache struct {
	c *lru.Cache
}

// NewConfigurationCache returns a cache holding up to maxEntries
// configurations.
func NewConfigurationCache(maxEntries int) *ConfigurationCache {
	return &ConfigurationCache{c: lru.New(maxEntries)}
}

func (cc *ConfigurationCache) geometry(t, u, v, w geom.Point) *configGeometry {
	key := configKey{t, u, v, w}
	if cc != nil {
		if g, ok := cc.c.Get(key); ok {
			return g.(*configGeometry)
		}
	}
	g := newConfigGeometry(t, u, v, w)
	if cc != nil {
		cc.c.Add(key, g)
	}
	return g
}

// Len returns the number of cached configurations.
func (cc *ConfigurationCache) Len() int { return cc.c.Len() }

// NewConfiguration returns the configuration of inner edge e. ok is
// false if e has no configuration: its endpoints must be non-significant
// vertices of degree two, and neither outer edge may be parallel to e.
func NewConfiguration(m *dcel.Mesh, e dcel.EdgeID, significant map[dcel.VertexID]bool, cache *ConfigurationCache) (*Configuration, bool) {
	he := m.HalfEdge(e)
	if he == nil {
		return nil, false
	}
	c := &Configuration{Inner: e, Prev: he.Prev, Next: he.Next}
	prev, next := m.HalfEdge(he.Prev), m.HalfEdge(he.Next)
	if prev == nil || next == nil || c.Prev == e || c.Next == e || c.Prev == c.Next {
		return nil, false
	}
	c.T, c.U, c.V, c.W = prev.Tail, he.Tail, next.Tail, m.Head(c.Next)
	if c.T == c.W || c.T == c.V || c.U == c.W {
		return nil, false
	}
	for _, x := range []dcel.VertexID{c.U, c.V} {
		if significant[x] || m.Degree(x) != 2 {
			return nil, false
		}
	}
	for _, x := range []dcel.EdgeID{c.Prev, e, c.Next} {
		if _, ok := m.Angle(x); !ok {
			return nil, false
		}
	}
	c.configGeometry = cache.geometry(m.Point(c.T), m.Point(c.U), m.Point(c.V), m.Point(c.W))
	if c.configGeometry == nil {
		return nil, false
	}
	return c, true
}

func newConfigGeometry(t, u, v, w geom.Point) *configGeometry {
	inner := planar.VectorBetween(u, v)
	g := &configGeometry{
		t: t, u: u, v: v, w: w,
		dPrev: planar.VectorBetween(t, u).Unit(),
		dNext: planar.VectorBetween(v, w).Unit(),
		tol:   1e-9 * math.Max(1, inner.Length()),
	}
	dir := inner.Unit()
	g.normal = planar.Vector{DX: -dir.DY, DY: dir.DX}
	if math.Abs(dir.Cross(g.dPrev)) < 1e-9 || math.Abs(dir.Cross(g.dNext)) < 1e-9 {
		return nil
	}
	g.sT = g.normal.Dot(planar.VectorBetween(u, t))
	g.sW = g.normal.Dot(planar.VectorBetween(v, w))
	prevTrack, _ := planar.LineThrough(t, u)
	nextTrack, _ := planar.LineThrough(v, w)
	if x, ok := prevTrack.Intersect(nextTrack); ok {
		g.x, g.hasX = x, true
		g.sX = g.normal.Dot(planar.VectorBetween(u, x))
	}
	return g
}

// Track returns the line along which the endpoint of the inner edge next
// to outer moves.
func (c *Configuration) Track(outer OuterEdge) planar.Line {
	if outer == Prev {
		l, _ := planar.LineThrough(c.t, c.u)
		l.Point = c.u
		return l
	}
	l, _ := planar.LineThrough(c.v, c.w)
	return l
}

// at returns the positions of u and v after moving the inner edge by
// offset s along its normal.
func (g *configGeometry) at(s float64) (u, v geom.Point) {
	u = g.dPrev.Scale(s / g.normal.Dot(g.dPrev)).Translate(g.u)
	v = g.dNext.Scale(s / g.normal.Dot(g.dNext)).Translate(g.v)
	return u, v
}

func sameSign(a, b float64) bool { return a*b > 0 }

// stop returns the offset at which a move toward the far endpoint of
// the other outer edge ends: where that edge collapses, or earlier where
// the tracks meet. ok is false if the outer edge itself would collapse
// before.
func (g *configGeometry) stop(outer OuterEdge) (float64, bool) {
	s, other := g.sW, g.sT
	if outer == Next {
		s, other = g.sT, g.sW
	}
	if math.Abs(s) <= g.tol {
		return 0, false
	}
	if g.hasX && sameSign(g.sX, s) && math.Abs(g.sX) <= math.Abs(s)+g.tol {
		return g.sX, true
	}
	if sameSign(other, s) && math.Abs(other) < math.Abs(s)-g.tol {
		return 0, false
	}
	return s, true
}

// ContractionPoint returns where the endpoint of the inner edge on the
// track of outer ends up when the inner edge is moved until the other
// outer edge collapses. If the tracks meet first, the meeting point is
// returned. ok is false if no such move exists.
func (c *Configuration) ContractionPoint(outer OuterEdge) (geom.Point, bool) {
	s, ok := c.stop(outer)
	if !ok {
		return geom.Point{}, false
	}
	u, v, _ := c.positions(s)
	if outer == Prev {
		return u, true
	}
	return v, true
}

// positions returns the new positions of u and v at offset s, snapped to
// the vertices or track crossing they reach.
func (g *configGeometry) positions(s float64) (u, v geom.Point, collapsed [3]bool) {
	u, v = g.at(s)
	if math.Abs(s-g.sT) <= g.tol {
		u, collapsed[0] = g.t, true
	}
	if math.Abs(s-g.sW) <= g.tol {
		v, collapsed[2] = g.w, true
	}
	if g.hasX && math.Abs(s-g.sX) <= g.tol {
		u, v, collapsed[1] = g.x, g.x, true
	}
	return u, v, collapsed
}

// Contraction is a move of the inner edge of a configuration that
// shrinks one of its three edges to zero length.
type Contraction struct {
	*Configuration
	Side Side

	// Offset is the signed distance the inner edge moves along its
	// left normal.
	Offset float64

	// Area is the area the face on the left of the inner edge gains.
	Area float64

	// NewU and NewV are the positions of u and v after the move.
	NewU, NewV geom.Point

	// CollapsePrev, CollapseInner and CollapseNext tell which edges
	// shrink to zero length.
	CollapsePrev, CollapseInner, CollapseNext bool

	// BlockingNumber counts the vertices and edges that would be hit by
	// the move. Only contractions with a blocking number of 0 are valid.
	BlockingNumber int
}

// Contractions returns the contractions of c, indexed by Side. A side
// without a contraction is nil.
func (c *Configuration) Contractions() [2]*Contraction {
	var out [2]*Contraction
	for _, outer := range []OuterEdge{Prev, Next} {
		s, ok := c.stop(outer)
		if !ok {
			continue
		}
		side := Positive
		if s > 0 {
			side = Negative
		}
		if cur := out[side]; cur != nil && math.Abs(cur.Offset) <= math.Abs(s) {
			continue
		}
		out[side] = c.contraction(s)
	}
	return out
}

// contraction returns the move of the inner edge by offset s.
func (c *Configuration) contraction(s float64) *Contraction {
	u, v, collapsed := c.positions(s)
	k := &Contraction{
		Configuration: c,
		Side:          Positive,
		Offset:        s,
		NewU:          u,
		NewV:          v,
		CollapsePrev:  collapsed[0],
		CollapseInner: collapsed[1],
		CollapseNext:  collapsed[2],
	}
	a := planar.Area([]geom.Point{c.u, c.v, v, u})
	k.Area = a
	if s > 0 {
		k.Side = Negative
		k.Area = -a
	}
	return k
}

// Partial returns the move of the inner edge in the direction of k that
// changes the area of the face on its left by -area. area must have the
// opposite sign of k.Area and must not exceed it in magnitude.
func (k *Contraction) Partial(area float64) *Contraction {
	target := math.Abs(area)
	if math.Abs(k.Area)-target <= 1e-12*math.Max(1, target) {
		return k
	}
	lo, hi := 0.0, k.Offset
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		u, v := k.at(mid)
		if planar.Area([]geom.Point{k.u, k.v, v, u}) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	s := (lo + hi) / 2
	u, v := k.at(s)
	p := &Contraction{Configuration: k.Configuration, Side: k.Side, Offset: s, NewU: u, NewV: v}
	p.Area = planar.Area([]geom.Point{k.u, k.v, v, u})
	if k.Side == Negative {
		p.Area = -p.Area
	}
	return p
}

// Valid reports whether k moves nothing into other parts of the mesh.
func (k *Contraction) Valid() bool { return k.BlockingNumber == 0 }

// Region returns the quadrilateral swept by the inner edge.
func (k *Contraction) Region() []geom.Point {
	return []geom.Point{k.u, k.v, k.NewV, k.NewU, k.u}
}

// NewSegments returns the three edges of the configuration after the
// move. Collapsed edges have zero length.
func (k *Contraction) NewSegments() []planar.Segment {
	return []planar.Segment{
		{A: k.t, B: k.NewU},
		{A: k.NewU, B: k.NewV},
		{A: k.NewV, B: k.w},
	}
}

// Edges returns the half-edges of the configuration of k.
func (k *Contraction) Edges() []dcel.EdgeID {
	return []dcel.EdgeID{k.Prev, k.Inner, k.Next}
}

func twin(m *dcel.Mesh, e dcel.EdgeID) dcel.EdgeID {
	if he := m.HalfEdge(e); he != nil {
		return he.Twin
	}
	return dcel.NoEdge
}

// Apply performs k on m. Collapsed edges are contracted so that the
// vertices they end in keep their positions.
func (k *Contraction) Apply(m *dcel.Mesh) error {
	switch {
	case k.CollapseInner:
		if err := m.MoveVertex(k.U, k.NewU); err != nil {
			return err
		}
		_, err := m.ContractEdge(k.Inner)
		return err
	case k.CollapsePrev && k.CollapseNext:
		if _, err := m.ContractEdge(k.Prev); err != nil {
			return err
		}
		_, err := m.ContractEdge(twin(m, k.Next))
		return err
	case k.CollapsePrev:
		if err := m.MoveVertex(k.V, k.NewV); err != nil {
			return err
		}
		_, err := m.ContractEdge(k.Prev)
		return err
	case k.CollapseNext:
		if err := m.MoveVertex(k.U, k.NewU); err != nil {
			return err
		}
		_, err := m.ContractEdge(twin(m, k.Next))
		return err
	default:
		if err := m.MoveVertex(k.U, k.NewU); err != nil {
			return err
		}
		return m.MoveVertex(k.V, k.NewV)
	}
}
