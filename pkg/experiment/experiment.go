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

// Package experiment wires the attachment strategies to the position source,
// the centroid generator and the simulator.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
	utilexec "k8s.io/utils/exec"
	"k8s.io/utils/ptr"

	"github.com/cellsim/attachopt/pkg/api"
	"github.com/cellsim/attachopt/pkg/attachment"
	"github.com/cellsim/attachopt/pkg/centroids"
	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/genetic"
	"github.com/cellsim/attachopt/pkg/geometry"
	"github.com/cellsim/attachopt/pkg/metrics"
	"github.com/cellsim/attachopt/pkg/positions"
	"github.com/cellsim/attachopt/pkg/simulation"
	"github.com/cellsim/attachopt/pkg/tracing"
)

// Scenario is the deployment a strategy is evaluated on.
type Scenario struct {
	UEs   []framework.Position
	Sites []framework.Position
}

// Result is the outcome of one strategy run.
type Result struct {
	Strategy   framework.Strategy
	Assignment framework.Assignment
	// Entry is the simulator row matching the assignment; valid when Found.
	Entry   simulation.Entry
	Found   bool
	Fitness float64
}

// Experiment runs strategies against the simulator using one configuration.
type Experiment struct {
	cfg    *api.ExperimentConfig
	exec   utilexec.Interface
	metric geometry.Metric
	rng    *rand.Rand
}

// New prepares an experiment from a defaulted and validated configuration. A
// nil executor runs real processes.
func New(cfg *api.ExperimentConfig, executor utilexec.Interface) (*Experiment, error) {
	metric, err := geometry.MetricByName(cfg.DistanceMetric)
	if err != nil {
		return nil, err
	}
	if executor == nil {
		executor = utilexec.New()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Experiment{
		cfg:    cfg,
		exec:   executor,
		metric: metric,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Prepare reads up to numUEs UE positions from the trace, derives the eNodeB
// sites and writes both position files into the simulator directory. The
// scenario may hold fewer UEs than requested when the trace is short.
func (e *Experiment) Prepare(ctx context.Context, numUEs int) (*Scenario, error) {
	logger := klog.FromContext(ctx)

	delimiter, _ := utf8.DecodeRuneInString(e.cfg.Delimiter)
	ues, err := positions.ReadBusTrace(e.cfg.TraceFile, positions.TraceOptions{
		Delimiter:  delimiter,
		MaxRecords: numUEs,
	})
	if err != nil {
		return nil, err
	}
	if len(ues) == 0 {
		return nil, fmt.Errorf("no UE positions in %s", e.cfg.TraceFile)
	}
	if len(ues) < numUEs {
		logger.Info("Trace holds fewer positions than requested", "requested", numUEs, "available", len(ues))
	}

	sites, err := centroids.Generate(ues, centroids.Config{
		Clusters: e.cfg.NumEnbs,
		Restarts: e.cfg.KMeansRestarts,
		Rand:     e.rng,
	})
	if err != nil {
		return nil, err
	}

	if err := positions.WritePositions(e.path(positions.UEPositionsFile), ues); err != nil {
		return nil, err
	}
	if err := positions.WritePositions(e.path(positions.ENBPositionsFile), sites); err != nil {
		return nil, err
	}
	logger.V(2).Info("Prepared scenario", "ues", len(ues), "enbs", len(sites))
	return &Scenario{UEs: ues, Sites: sites}, nil
}

// Run evaluates strategy on scenario. The simulator appends its measurement to
// the strategy's results file.
func (e *Experiment) Run(ctx context.Context, strategy framework.Strategy, scenario *Scenario) (*Result, error) {
	ctx, span := tracing.Tracer().Start(ctx, "experiment.Run")
	defer span.End()
	span.SetAttributes(attribute.String("strategy", string(strategy)), attribute.Int("ues", len(scenario.UEs)))

	logger := klog.FromContext(ctx).WithValues("strategy", strategy, "ues", len(scenario.UEs))
	ctx = klog.NewContext(ctx, logger)

	runner, err := e.newRunner(strategy)
	if err != nil {
		return nil, err
	}

	var assignment framework.Assignment
	switch strategy {
	case framework.StrategyHeuristic:
		assignment, err = attachment.NearestSite(scenario.UEs, scenario.Sites, e.metric)
	case framework.StrategyRandom:
		assignment, err = attachment.Random(len(scenario.UEs), len(scenario.Sites), e.rng)
	case framework.StrategyGenetic:
		assignment, err = e.optimize(ctx, runner, scenario)
	default:
		err = fmt.Errorf("unknown strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}

	// For the genetic strategy this is the final run on the best solution.
	if err := runner.Run(ctx, assignment, len(scenario.UEs), len(scenario.Sites)); err != nil {
		return nil, err
	}

	entries, err := simulation.ReadResults(runner.ResultsPath())
	if err != nil {
		return nil, fmt.Errorf("simulator produced no readable results: %w", err)
	}
	for _, entry := range entries {
		logger.V(2).Info("Simulation result", "entry", entry.String())
	}

	result := &Result{Strategy: strategy, Assignment: assignment}
	result.Entry, result.Found = simulation.Lookup(entries, assignment.EnbCount(), len(assignment))
	result.Fitness = simulation.LookupFitness(entries, assignment)
	metrics.BestFitness.WithLabelValues(string(strategy)).Set(result.Fitness)

	logger.Info("Strategy finished", "throughput", result.Entry.Throughput, "delay", result.Entry.Delay,
		"jitter", result.Entry.Jitter, "fitness", result.Fitness, "found", result.Found)
	return result, nil
}

func (e *Experiment) optimize(ctx context.Context, runner *simulation.Runner, scenario *Scenario) (framework.Assignment, error) {
	ga := e.cfg.Genetic
	optimizer, err := genetic.New(ctx, genetic.Config{
		PopulationSize: ga.PopulationSize,
		CrossoverRate:  ptr.Deref(ga.CrossoverRate, 0),
		MutationRate:   ptr.Deref(ga.MutationRate, 0),
		Crossover:      ga.Crossover,
		DiversifySeeds: ga.DiversifySeeds,
		Metric:         e.metric,
		ShowProgress:   e.cfg.ShowProgress,
	}, scenario.UEs, scenario.Sites, simulation.NewEvaluator(runner, len(scenario.UEs), len(scenario.Sites)), e.rng)
	if err != nil {
		return nil, err
	}

	best, err := optimizer.Run(ctx, ga.Generations)
	if err != nil {
		return nil, err
	}
	if best.Chromosome == nil {
		return nil, errors.New("genetic search returned no solution")
	}
	return best.Chromosome, nil
}

func (e *Experiment) newRunner(strategy framework.Strategy) (*simulation.Runner, error) {
	sim := e.cfg.Simulator
	resultsFile := sim.ResultsFile
	if resultsFile == "" {
		resultsFile = strategy.ResultsFile()
	}
	return simulation.NewRunner(simulation.RunnerConfig{
		Command:        sim.Command,
		WorkDir:        sim.WorkDir,
		AttachmentFile: sim.AttachmentFile,
		ResultsFile:    resultsFile,
		Timeout:        sim.Timeout.Duration,
		Retries:        sim.Retries,
		RetryDelay:     sim.RetryDelay.Duration,
	}, e.exec)
}

func (e *Experiment) path(name string) string {
	return filepath.Join(e.cfg.Simulator.WorkDir, name)
}
