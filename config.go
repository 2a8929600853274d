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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/schematize/orientation"
)

// Config holds the parameters of a schematization. It is passed
// explicitly to every stage.
type Config struct {
	// C is the set of permitted edge orientations.
	C *orientation.Set

	// EpsilonFactor is the fraction of the mesh diameter used as the
	// subdivision threshold when Epsilon is not set.
	EpsilonFactor float64

	// Epsilon is the maximum edge length after preprocessing. If zero,
	// it is calculated from EpsilonFactor.
	Epsilon float64

	// MaxStepArea is the largest area a single staircase step may span.
	// Zero means every staircase uses the minimum number of steps.
	MaxStepArea float64

	// MaxIterations limits the number of edge moves. Zero means moves
	// are performed until none is valid.
	MaxIterations int

	// Interference enables bisection of edges whose staircase regions
	// overlap, for at most MaxInterferenceRounds rounds.
	Interference          bool
	MaxInterferenceRounds int

	// Staircases enables replacing every edge by its staircase before
	// the edge moves.
	Staircases bool

	// Snapshots enables recording the mesh geometry after each stage.
	Snapshots bool

	// Log receives progress messages. It defaults to the standard logger.
	Log logrus.FieldLogger
}

// DefaultConfig returns the configuration used by Schematize when none
// is given: two orientations, axis-parallel.
func DefaultConfig() *Config {
	return &Config{
		C:                     orientation.MustRegular(2),
		EpsilonFactor:         0.05,
		Interference:          true,
		MaxInterferenceRounds: 5,
		Staircases:            true,
		Log:                   logrus.StandardLogger(),
	}
}

func (cfg *Config) logger() logrus.FieldLogger {
	if cfg.Log == nil {
		return logrus.StandardLogger()
	}
	return cfg.Log
}

// Validate checks that cfg can be used for a schematization.
func (cfg *Config) Validate() error {
	if cfg.C == nil {
		return fmt.Errorf("schematize: missing orientation set")
	}
	if cfg.EpsilonFactor < 0 || cfg.Epsilon < 0 {
		return fmt.Errorf("schematize: epsilon must not be negative")
	}
	if cfg.Epsilon == 0 && cfg.EpsilonFactor == 0 {
		return fmt.Errorf("schematize: one of Epsilon and EpsilonFactor must be set")
	}
	if cfg.MaxStepArea < 0 {
		return fmt.Errorf("schematize: MaxStepArea must not be negative, have %g", cfg.MaxStepArea)
	}
	if cfg.MaxIterations < 0 || cfg.MaxInterferenceRounds < 0 {
		return fmt.Errorf("schematize: iteration limits must not be negative")
	}
	return nil
}
