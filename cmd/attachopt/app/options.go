/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package app

import (
	"github.com/spf13/pflag"
	"k8s.io/utils/ptr"

	"github.com/cellsim/attachopt/pkg/api"
)

// Options holds the command line state shared by every subcommand.
type Options struct {
	ConfigFile string

	// flags receives flag values; only flags set on the command line are
	// copied into the loaded configuration.
	flags         api.ExperimentConfig
	crossoverRate float64
	mutationRate  float64
}

func NewOptions() *Options {
	return &Options{}
}

// AddFlags registers the experiment flags on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	f := &o.flags
	fs.StringVarP(&o.ConfigFile, "config", "c", "", "Experiment configuration file (.yaml, .json or .toml).")

	fs.StringVar(&f.TraceFile, "trace-file", "", "Bus trace holding UE positions in columns 4 and 5.")
	fs.StringVar(&f.Delimiter, "delimiter", "", "Bus trace column delimiter (default \",\").")
	fs.IntVar(&f.MaxRecords, "max-records", 0, "Number of UEs read from the trace (default 120).")
	fs.IntSliceVar(&f.UECounts, "ue-counts", nil, "UE counts visited by the sweep command.")
	fs.IntVar(&f.NumEnbs, "enbs", 0, "Number of eNodeBs placed by k-means (default 4).")
	fs.IntVar(&f.KMeansRestarts, "kmeans-restarts", 0, "Independent k-means runs; the lowest inertia wins (default 10).")
	fs.StringVar(&f.DistanceMetric, "distance-metric", "", "Distance used by the nearest-site heuristic: euclidean or haversine.")
	fs.Uint64Var(&f.Seed, "seed", 0, "Random seed; 0 seeds from the clock.")

	fs.StringSliceVar(&f.Simulator.Command, "simulator-command", nil, "Simulator argv prefix, comma separated.")
	fs.StringVar(&f.Simulator.WorkDir, "simulator-dir", "", "Directory the simulator runs in and exchanges files through.")
	fs.StringVar(&f.Simulator.ResultsFile, "results-file", "", "Results file name, overriding simulation_results_<strategy>.txt.")
	fs.DurationVar(&f.Simulator.Timeout.Duration, "simulator-timeout", 0, "Upper bound for one simulator run; 0 means none.")
	fs.IntVar(&f.Simulator.Retries, "simulator-retries", 0, "Extra attempts after a failed simulator run.")

	fs.IntVar(&f.Genetic.PopulationSize, "population-size", 0, "Genetic algorithm population size (default 2).")
	fs.IntVar(&f.Genetic.Generations, "generations", 0, "Genetic algorithm generations (default 2).")
	fs.Float64Var(&o.crossoverRate, "crossover-rate", 0, "Crossover probability (default 0.8).")
	fs.Float64Var(&o.mutationRate, "mutation-rate", 0, "Per-gene mutation probability (default 0.05).")
	fs.StringVar(&f.Genetic.Crossover, "crossover", "", "Crossover operator: one-point, two-point or uniform.")
	fs.BoolVar(&f.Genetic.DiversifySeeds, "diversify-seeds", false, "Mutate the initial nearest-site seeds.")

	fs.StringVar(&f.PlotOutput, "plot-output", "", "HTML chart written by plot and sweep.")
	fs.StringVar(&f.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit.")
	fs.BoolVar(&f.ShowProgress, "progress", false, "Show a progress bar during the genetic search.")

	fs.StringVar(&f.Tracing.CollectorEndpoint, "otel-collector-endpoint", "", "OTLP gRPC endpoint for traces; empty disables tracing.")
	fs.StringVar(&f.Tracing.CACert, "otel-ca-cert", "", "CA certificate used to verify the collector.")
	fs.Float64Var(&f.Tracing.SampleRate, "otel-sample-rate", 0, "Fraction of traces recorded (default 1).")
}

// Config loads the configuration file and environment, fills defaults, then
// applies every flag that was set on fs so that an explicit flag value, zero
// included, always wins. The result is not validated.
func (o *Options) Config(fs *pflag.FlagSet) (*api.ExperimentConfig, error) {
	cfg := &api.ExperimentConfig{}
	if o.ConfigFile != "" {
		if err := api.LoadFile(o.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := api.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	api.SetDefaults_ExperimentConfig(cfg)
	o.applyFlags(fs, cfg)
	return cfg, nil
}

func (o *Options) applyFlags(fs *pflag.FlagSet, cfg *api.ExperimentConfig) {
	f := &o.flags
	fs.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "trace-file":
			cfg.TraceFile = f.TraceFile
		case "delimiter":
			cfg.Delimiter = f.Delimiter
		case "max-records":
			cfg.MaxRecords = f.MaxRecords
		case "ue-counts":
			cfg.UECounts = f.UECounts
		case "enbs":
			cfg.NumEnbs = f.NumEnbs
		case "kmeans-restarts":
			cfg.KMeansRestarts = f.KMeansRestarts
		case "distance-metric":
			cfg.DistanceMetric = f.DistanceMetric
		case "seed":
			cfg.Seed = f.Seed
		case "simulator-command":
			cfg.Simulator.Command = f.Simulator.Command
		case "simulator-dir":
			cfg.Simulator.WorkDir = f.Simulator.WorkDir
		case "results-file":
			cfg.Simulator.ResultsFile = f.Simulator.ResultsFile
		case "simulator-timeout":
			cfg.Simulator.Timeout = f.Simulator.Timeout
		case "simulator-retries":
			cfg.Simulator.Retries = f.Simulator.Retries
		case "population-size":
			cfg.Genetic.PopulationSize = f.Genetic.PopulationSize
		case "generations":
			cfg.Genetic.Generations = f.Genetic.Generations
		case "crossover-rate":
			cfg.Genetic.CrossoverRate = ptr.To(o.crossoverRate)
		case "mutation-rate":
			cfg.Genetic.MutationRate = ptr.To(o.mutationRate)
		case "crossover":
			cfg.Genetic.Crossover = f.Genetic.Crossover
		case "diversify-seeds":
			cfg.Genetic.DiversifySeeds = f.Genetic.DiversifySeeds
		case "plot-output":
			cfg.PlotOutput = f.PlotOutput
		case "metrics-file":
			cfg.MetricsFile = f.MetricsFile
		case "progress":
			cfg.ShowProgress = f.ShowProgress
		case "otel-collector-endpoint":
			cfg.Tracing.CollectorEndpoint = f.Tracing.CollectorEndpoint
		case "otel-ca-cert":
			cfg.Tracing.CACert = f.Tracing.CACert
		case "otel-sample-rate":
			cfg.Tracing.SampleRate = f.Tracing.SampleRate
		}
	})
}
