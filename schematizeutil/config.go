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
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/schematize"
	"github.com/spatialmodel/schematize/orientation"
	"github.com/spf13/cast"
)

// SchematizeConfig creates a schematization configuration from the
// variables in cfg.
func SchematizeConfig(cfg *viper.Viper) (*schematize.Config, error) {
	c, err := orientations(cfg)
	if err != nil {
		return nil, err
	}
	sc := &schematize.Config{
		C:                     c,
		EpsilonFactor:         cfg.GetFloat64("EpsilonFactor"),
		Epsilon:               cfg.GetFloat64("Epsilon"),
		MaxStepArea:           cfg.GetFloat64("MaxStepArea"),
		MaxIterations:         cfg.GetInt("MaxIterations"),
		Interference:          cfg.GetBool("Interference"),
		MaxInterferenceRounds: cfg.GetInt("MaxInterferenceRounds"),
		Staircases:            cfg.GetBool("Staircases"),
		Log:                   logrus.StandardLogger(),
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// orientations returns the irregular orientation set given by the
// Angles variable or, if it is empty, the regular set given by the
// Orientations and Beta variables. Angles are in degrees.
func orientations(cfg *viper.Viper) (*orientation.Set, error) {
	angles, err := toFloat64SliceE(cfg.Get("Angles"))
	if err != nil {
		return nil, fmt.Errorf("schematize: reading 'Angles': %v", err)
	}
	if len(angles) > 0 {
		for i, a := range angles {
			angles[i] = a * math.Pi / 180
		}
		return orientation.NewIrregular(angles)
	}
	return orientation.NewRegular(cfg.GetInt("Orientations"), cfg.GetFloat64("Beta")*math.Pi/180)
}

// toFloat64SliceE converts a list of numbers that was set from a
// configuration file, a command line argument or an environment
// variable.
func toFloat64SliceE(v interface{}) ([]float64, error) {
	var vals []interface{}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return append([]float64(nil), t...), nil
	case string:
		t = strings.Trim(strings.TrimSpace(t), "[]")
		if t == "" {
			return nil, nil
		}
		for _, s := range strings.Split(t, ",") {
			vals = append(vals, strings.TrimSpace(s))
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				vals = append(vals, s)
			}
		}
	default:
		var err error
		vals, err = cast.ToSliceE(v)
		if err != nil {
			return nil, err
		}
	}
	o := make([]float64, len(vals))
	for i, val := range vals {
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return nil, err
		}
		o[i] = f
	}
	return o, nil
}

// setLogLevel configures the standard logger.
func setLogLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("schematize: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(l)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	return nil
}

// checkInputFile makes sure that the input file is specified and exists,
// and expands any environment variables.
func checkInputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an input file configuration variable (for example: Input="regions.geojson")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("schematize: the Input file doesn't exist: %v", err)
	}
	return f, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: Output="schematized.geojson")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("schematize: the Output directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkSnapshotDir creates the snapshot directory if it is specified.
func checkSnapshotDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	dir = os.ExpandEnv(dir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return dir, fmt.Errorf("schematize: creating SnapshotDir: %v", err)
	}
	return dir, nil
}

// WriteConfig writes the current value of every option in cfg to w in
// TOML format, so that it can be used as a configuration file.
func WriteConfig(w io.Writer, cfg *viper.Viper) error {
	o := make(map[string]interface{})
	for _, option := range options {
		if option.name == "config" {
			continue
		}
		if v := cfg.Get(option.name); v != nil {
			o[option.name] = v
		}
	}
	return toml.NewEncoder(w).Encode(o)
}
