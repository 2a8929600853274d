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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"gonum.org/v1/gonum/floats"
)

func TestToFloat64SliceE(t *testing.T) {
	for _, test := range []struct {
		name string
		in   interface{}
		want []float64
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty string", in: "[]", want: nil},
		{name: "string", in: "[0, 45.5,90]", want: []float64{0, 45.5, 90}},
		{name: "strings", in: []string{"0", " 90", ""}, want: []float64{0, 90}},
		{name: "interfaces", in: []interface{}{int64(0), 60.0, "120"}, want: []float64{0, 60, 120}},
		{name: "floats", in: []float64{10, 20}, want: []float64{10, 20}},
	} {
		t.Run(test.name, func(t *testing.T) {
			have, err := toFloat64SliceE(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
	if _, err := toFloat64SliceE("0, north"); err == nil {
		t.Error("expected an error for a non-numeric angle")
	}
}

func TestSchematizeConfig(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Orientations", 4)
		cfg.Set("Beta", 10.0)
		cfg.Set("EpsilonFactor", 0.1)
		cfg.Set("MaxIterations", 7)
		cfg.Set("Staircases", true)
		sc, err := SchematizeConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if k, beta := sc.C.Regular(); k != 4 || !floats.EqualWithinAbsOrRel(beta, math.Pi/18, 1e-12, 1e-12) {
			t.Errorf("orientations: have k=%d, beta=%g", k, beta)
		}
		if sc.C.Len() != 8 {
			t.Errorf("have %d directions, want 8", sc.C.Len())
		}
		if sc.EpsilonFactor != 0.1 || sc.MaxIterations != 7 || !sc.Staircases || sc.Interference {
			t.Errorf("wrong configuration: %# v", pretty.Formatter(sc))
		}
	})
	t.Run("irregular", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Angles", "0, 90, 135, 270")
		cfg.Set("EpsilonFactor", 0.05)
		sc, err := SchematizeConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		want := []float64{0, math.Pi / 2, 3 * math.Pi / 4, 3 * math.Pi / 2}
		if !floats.EqualApprox(sc.C.Angles(), want, 1e-12) {
			t.Errorf("have angles %v, want %v", sc.C.Angles(), want)
		}
		if k, _ := sc.C.Regular(); k != 0 {
			t.Errorf("irregular set reports k=%d", k)
		}
	})
	t.Run("invalid beta", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Orientations", 2)
		cfg.Set("Beta", 90.0)
		cfg.Set("EpsilonFactor", 0.05)
		if _, err := SchematizeConfig(cfg); err == nil {
			t.Error("expected an error for an offset of 90 degrees")
		}
	})
	t.Run("no epsilon", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Orientations", 2)
		if _, err := SchematizeConfig(cfg); err == nil {
			t.Error("expected an error without Epsilon or EpsilonFactor")
		}
	})
}

func TestWriteConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "schematize")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	var b bytes.Buffer
	if err := WriteConfig(&b, Cfg); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(file, b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := viper.New()
	cfg.SetConfigFile(file)
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatalf("reading written configuration: %v\n%s", err, b.String())
	}
	have, err := SchematizeConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, err := SchematizeConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if have.C.String() != want.C.String() || have.EpsilonFactor != want.EpsilonFactor ||
		have.Staircases != want.Staircases || have.Interference != want.Interference ||
		have.MaxInterferenceRounds != want.MaxInterferenceRounds {
		t.Errorf("configuration changed after writing:\n%v", pretty.Diff(have, want))
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("expected an error for a missing output file")
	}
	if _, err := checkOutputFile(filepath.Join("does", "not", "exist", "out.geojson")); err == nil {
		t.Error("expected an error for a missing output directory")
	}
	os.Setenv("SCHEMATIZE_TEST_DIR", os.TempDir())
	defer os.Unsetenv("SCHEMATIZE_TEST_DIR")
	f, err := checkOutputFile("$SCHEMATIZE_TEST_DIR/out.geojson")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(os.TempDir(), "out.geojson"); f != want {
		t.Errorf("have %s, want %s", f, want)
	}
}
