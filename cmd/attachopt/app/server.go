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

// Package app implements the attachopt command line.
package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/api"
	"github.com/cellsim/attachopt/pkg/experiment"
	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/metrics"
	"github.com/cellsim/attachopt/pkg/plot"
	"github.com/cellsim/attachopt/pkg/simulation"
	"github.com/cellsim/attachopt/pkg/tracing"
)

// NewAttachoptCommand creates the root command with every subcommand.
func NewAttachoptCommand(out io.Writer) *cobra.Command {
	o := NewOptions()
	cmd := &cobra.Command{
		Use:   "attachopt",
		Short: "attachopt places eNodeBs and attaches UEs using a network simulator",
		Long: `attachopt reads UE positions from a bus trace, places eNodeBs with k-means and
attaches every UE to an eNodeB with a nearest-site heuristic, a random draw or a
genetic algorithm scored by the network simulator.`,
		SilenceUsage: true,
	}
	cmd.SetOut(out)

	fs := cmd.PersistentFlags()
	o.AddFlags(fs)
	addKlogFlags(fs)

	for _, strategy := range framework.Strategies {
		cmd.AddCommand(newStrategyCommand(o, strategy))
	}
	cmd.AddCommand(
		newSweepCommand(o),
		newPlotCommand(o),
		newResultsCommand(out),
	)
	return cmd
}

func addKlogFlags(fs *pflag.FlagSet) {
	goflags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(goflags)
	fs.AddGoFlagSet(goflags)
}

func newStrategyCommand(o *Options, strategy framework.Strategy) *cobra.Command {
	var numUEs int
	cmd := &cobra.Command{
		Use:   strategyCommandName(strategy),
		Short: fmt.Sprintf("Attach UEs with the %s strategy and simulate the result", strategy.Label()),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidated(o, cmd.Flags())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ues") {
				numUEs = cfg.MaxRecords
			}
			return run(cfg, func(ctx context.Context, exp *experiment.Experiment) error {
				scenario, err := exp.Prepare(ctx, numUEs)
				if err != nil {
					return err
				}
				result, err := exp.Run(ctx, strategy, scenario)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (fitness %v)\n", strategy.Label(), result.Entry, result.Fitness)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&numUEs, "ues", 0, "Number of UEs to attach (default max-records).")
	return cmd
}

func strategyCommandName(strategy framework.Strategy) string {
	if strategy == framework.StrategyGenetic {
		return "genetic"
	}
	return string(strategy)
}

func newSweepCommand(o *Options) *cobra.Command {
	var strategies []string
	var render bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run strategies over increasing UE counts and plot the throughput curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidated(o, cmd.Flags())
			if err != nil {
				return err
			}
			counts := cfg.UECounts
			if len(counts) == 0 {
				counts = []int{cfg.MaxRecords}
			}
			return run(cfg, func(ctx context.Context, exp *experiment.Experiment) error {
				suite := experiment.NewSuite(exp, counts)
				if len(strategies) == 0 {
					suite.AddStandardStrategies()
				}
				for _, s := range strategies {
					suite.AddStrategy(framework.Strategy(s))
				}
				plotOutput := ""
				if render {
					plotOutput = cfg.PlotOutput
				}
				results, err := suite.Run(ctx, plotOutput)
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%v\n", r.Strategy, r.Entry, r.Fitness)
				}
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "Strategies to run: heuristic, ga, random (default all).")
	cmd.Flags().BoolVar(&render, "plot", true, "Render the throughput chart after the sweep.")
	return cmd
}

func newPlotCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Plot throughput against the number of users for every strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.Config(cmd.Flags())
			if err != nil {
				return err
			}
			series, err := plot.LoadSeries(cfg.Simulator.WorkDir)
			if err != nil {
				return err
			}
			if err := plot.RenderThroughput(series, cfg.PlotOutput); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", cfg.PlotOutput)
			return nil
		},
	}
}

func newResultsCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect and edit simulator results files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "merge FILE ENBS UES THROUGHPUT DELAY JITTER",
		Short: "Insert or replace the row for (ENBS, UES) and keep the file sorted",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := parseEntryArgs(args[1:])
			if err != nil {
				return err
			}
			if err := simulation.MergeResult(args[0], entry); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", entry)
			return nil
		},
	})
	return cmd
}

func parseEntryArgs(args []string) (simulation.Entry, error) {
	var entry simulation.Entry
	var err error
	if entry.Enbs, err = strconv.Atoi(args[0]); err != nil {
		return entry, fmt.Errorf("invalid eNodeB count %q", args[0])
	}
	if entry.Ues, err = strconv.Atoi(args[1]); err != nil {
		return entry, fmt.Errorf("invalid UE count %q", args[1])
	}
	floats := []*float64{&entry.Throughput, &entry.Delay, &entry.Jitter}
	for i, p := range floats {
		if *p, err = strconv.ParseFloat(args[2+i], 64); err != nil {
			return entry, fmt.Errorf("invalid value %q", args[2+i])
		}
	}
	return entry, nil
}

func loadValidated(o *Options, fs *pflag.FlagSet) (*api.ExperimentConfig, error) {
	cfg, err := o.Config(fs)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateExperimentConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run sets up tracing and metrics around fn and cancels its context on
// SIGINT or SIGTERM.
func run(cfg *api.ExperimentConfig, fn func(context.Context, *experiment.Experiment) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tracing.NewTracerProvider(ctx, tracing.Config{
		CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
		CACert:            cfg.Tracing.CACert,
		ServiceName:       cfg.Tracing.ServiceName,
		SampleRate:        cfg.Tracing.SampleRate,
	}); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tracing.Shutdown(shutdownCtx)
	}()

	metrics.Register()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := metrics.WriteToTextfile(cfg.MetricsFile); err != nil {
				klog.ErrorS(err, "Failed to write metrics", "path", cfg.MetricsFile)
			}
		}()
	}

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}
	return fn(klog.NewContext(ctx, klog.Background()), exp)
}
