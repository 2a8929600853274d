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

// Package schematizeutil contains the command line interface of the
// schematization.
package schematizeutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/schematize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// options are the configuration options available to the commands.
var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	setFlags := []*pflag.FlagSet{runCmd.Flags(), stepCmd.Flags(), configCmd.Flags()}

	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Input",
			usage: `
              Input is the path to a GeoJSON file holding a feature collection
              of Polygon and MultiPolygon features that form a planar subdivision.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), stepCmd.Flags(), configCmd.Flags()},
		},
		{
			name: "Output",
			usage: `
              Output is the path where the schematized subdivision should be written
              as a GeoJSON feature collection. Features keep their order and properties.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), stepCmd.Flags(), configCmd.Flags()},
		},
		{
			name: "Orientations",
			usage: `
              Orientations is the number k of orientations of a regular orientation set.
              Edges of the output follow the 2k directions spaced 180/k degrees apart.`,
			shorthand:  "k",
			defaultVal: 2,
			flagsets:   setFlags,
		},
		{
			name: "Beta",
			usage: `
              Beta is the offset in degrees of the first direction of a regular
              orientation set. It must be smaller than 180/Orientations.`,
			defaultVal: 0.0,
			flagsets:   setFlags,
		},
		{
			name: "Angles",
			usage: `
              Angles lists the directions in degrees of an irregular orientation set, in
              ascending order within [0, 360). If it is set, Orientations and Beta are ignored.`,
			defaultVal: []string{},
			flagsets:   setFlags,
		},
		{
			name: "EpsilonFactor",
			usage: `
              EpsilonFactor is the fraction of the diameter of the input used as the
              maximum edge length after preprocessing, when Epsilon is zero.`,
			defaultVal: 0.05,
			flagsets:   setFlags,
		},
		{
			name: "Epsilon",
			usage: `
              Epsilon is the maximum edge length after preprocessing, in the units of
              the input coordinates. Zero means it is calculated from EpsilonFactor.`,
			defaultVal: 0.0,
			flagsets:   setFlags,
		},
		{
			name: "MaxStepArea",
			usage: `
              MaxStepArea is the largest area a single staircase step may enclose.
              Zero means every staircase uses the smallest possible number of steps.`,
			defaultVal: 0.0,
			flagsets:   setFlags,
		},
		{
			name: "MaxIterations",
			usage: `
              MaxIterations is the maximum number of edge moves. Zero means moves are
              performed until none is valid.`,
			defaultVal: 0,
			flagsets:   setFlags,
		},
		{
			name: "Interference",
			usage: `
              Interference specifies whether edges whose staircase regions overlap
              should be bisected before the staircases are built.`,
			defaultVal: true,
			flagsets:   setFlags,
		},
		{
			name: "MaxInterferenceRounds",
			usage: `
              MaxInterferenceRounds is the maximum number of times overlapping
              staircase regions are resolved.`,
			defaultVal: 5,
			flagsets:   setFlags,
		},
		{
			name: "Staircases",
			usage: `
              Staircases specifies whether unaligned edges should be replaced by
              their staircases before the edge moves.`,
			defaultVal: true,
			flagsets:   setFlags,
		},
		{
			name: "SnapshotDir",
			usage: `
              SnapshotDir is a directory where the mesh is written as GeoJSON after
              preprocessing and after every edge move. Empty means no snapshots.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), stepCmd.Flags(), configCmd.Flags()},
		},
		{
			name: "Steps",
			usage: `
              Steps is the number of edge moves performed by the step command.`,
			shorthand:  "n",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{stepCmd.Flags(), configCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of the log messages that are printed:
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SCHEMATIZE")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(stepCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("schematize: problem reading configuration file: %v", err)
		}
	}
	return setLogLevel(Cfg.GetString("LogLevel"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "schematize",
	Short: "A schematization tool for polygonal subdivisions.",
	Long: `schematize turns a planar subdivision of polygons into a schematic version whose
edges all follow a fixed set of orientations, keeping the topology of the
subdivision and the areas of its regions.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SCHEMATIZE_var' where 'var' is the
name of the variable to be set. Input, Output and SnapshotDir are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of schematize.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("schematize v%s\n", schematize.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Schematize a subdivision.",
	Long: `run reads the subdivision in the Input file, moves its edges until they follow
the configured orientations and no further move is possible (or MaxIterations is
reached), and writes the result to the Output file.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output, snapshotDir, err := files(true)
		if err != nil {
			return err
		}
		cfg, err := SchematizeConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(input, output, snapshotDir, cmd.OutOrStdout(), cfg)
	},
}

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Perform a number of edge moves, saving a snapshot after each.",
	Long: `step reads the subdivision in the Input file, preprocesses it, and performs
at most Steps edge moves, writing the mesh to SnapshotDir after each of them.
If Output is set, the last mesh is written there as well.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output, snapshotDir, err := files(false)
		if err != nil {
			return err
		}
		cfg, err := SchematizeConfig(Cfg)
		if err != nil {
			return err
		}
		return Step(input, output, snapshotDir, Cfg.GetInt("Steps"), cmd.OutOrStdout(), cfg)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration.",
	Long: `config prints the effective value of every configuration variable in TOML
format. The output can be used as a configuration file.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := SchematizeConfig(Cfg); err != nil {
			return err
		}
		return WriteConfig(cmd.OutOrStdout(), Cfg)
	},
}

// files returns the checked input, output and snapshot paths.
// The output path is only required if requireOutput is true.
func files(requireOutput bool) (input, output, snapshotDir string, err error) {
	input, err = checkInputFile(Cfg.GetString("Input"))
	if err != nil {
		return
	}
	if output = Cfg.GetString("Output"); requireOutput || output != "" {
		output, err = checkOutputFile(output)
		if err != nil {
			return
		}
	}
	snapshotDir, err = checkSnapshotDir(Cfg.GetString("SnapshotDir"))
	return
}

