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

// Package genetic searches for UE attachment assignments with a generational
// genetic algorithm whose fitness comes from the network simulator.
package genetic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/geometry"
	"github.com/cellsim/attachopt/pkg/metrics"
	"github.com/cellsim/attachopt/pkg/tracing"
	"github.com/cellsim/attachopt/pkg/warmstart"
)

const (
	Name = "GA"
)

// Evaluator runs the simulator for a chromosome and scores it afterwards.
// Fitness must not start a simulation.
type Evaluator interface {
	Simulate(ctx context.Context, chromosome framework.Assignment) error
	Fitness(chromosome framework.Assignment) (float64, error)
}

// Config holds the parameters of the genetic optimizer.
type Config struct {
	PopulationSize int
	CrossoverRate  float64
	MutationRate   float64
	// Crossover names the recombination operator; see CrossoverByName.
	Crossover string
	// DiversifySeeds mutates every initial seed but the first once.
	DiversifySeeds bool
	// Metric is used for nearest-site seeding. Nil means Euclidean.
	Metric geometry.Metric
	// ShowProgress renders a progress bar over candidate evaluations in Run.
	ShowProgress bool
}

// Scored pairs an individual of the population with its fitness.
type Scored struct {
	// Index is the position of the individual in the evaluated population.
	Index      int
	Chromosome framework.Assignment
	Fitness    float64
}

// Optimizer holds the state of one genetic algorithm run. It is not safe for
// concurrent use.
type Optimizer struct {
	config    Config
	numUEs    int
	numEnbs   int
	crossover CrossoverFunc
	evaluator Evaluator
	rng       framework.Rand

	population []framework.Assignment
}

// New validates config and seeds the initial population from the
// nearest-site assignment of ues to sites. A nil rng is replaced by a
// time-seeded source.
func New(ctx context.Context, config Config, ues, sites []framework.Position, evaluator Evaluator, rng framework.Rand) (*Optimizer, error) {
	if config.PopulationSize < 2 {
		return nil, fmt.Errorf("population size must be at least 2, got %d", config.PopulationSize)
	}
	if config.CrossoverRate < 0 || config.CrossoverRate > 1 {
		return nil, fmt.Errorf("crossover rate must be in [0, 1], got %v", config.CrossoverRate)
	}
	if config.MutationRate < 0 || config.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1], got %v", config.MutationRate)
	}
	if len(sites) == 0 {
		return nil, errors.New("at least one eNodeB position is required")
	}
	if evaluator == nil {
		return nil, errors.New("an evaluator is required")
	}
	crossover, err := CrossoverByName(config.Crossover)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	o := &Optimizer{
		config:    config,
		numUEs:    len(ues),
		numEnbs:   len(sites),
		crossover: crossover,
		evaluator: evaluator,
		rng:       rng,
	}

	seeder := warmstart.NewSeeder(warmstart.Config{
		UEs:       ues,
		Sites:     sites,
		Metric:    config.Metric,
		Diversify: config.DiversifySeeds,
		Mutate:    o.Mutate,
	})
	o.population, err = seeder.GenerateInitialPopulation(ctx, config.PopulationSize)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Population returns the current population. The slice is owned by the
// optimizer and is replaced by NextGeneration.
func (o *Optimizer) Population() []framework.Assignment {
	return o.population
}

// SelectParents draws two distinct individuals uniformly at random.
func (o *Optimizer) SelectParents() (framework.Assignment, framework.Assignment, error) {
	n := len(o.population)
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 individuals to select parents, have %d", n)
	}
	i := o.rng.Intn(n)
	j := o.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return o.population[i], o.population[j], nil
}

// Crossover recombines p1 and p2 with probability CrossoverRate. The children
// are always fresh copies; without recombination they equal the parents.
func (o *Optimizer) Crossover(p1, p2 framework.Assignment) (framework.Assignment, framework.Assignment) {
	if len(p1) < 2 || o.rng.Float64() >= o.config.CrossoverRate {
		return p1.Clone(), p2.Clone()
	}
	return o.crossover(o.rng, p1, p2)
}

// Mutate replaces each gene with probability MutationRate by a uniformly
// drawn eNodeB index. The chromosome is modified in place and returned.
func (o *Optimizer) Mutate(c framework.Assignment) framework.Assignment {
	for i := range c {
		if o.rng.Float64() < o.config.MutationRate {
			c[i] = o.rng.Intn(o.numEnbs)
		}
	}
	return c
}

// NextGeneration breeds a new population of exactly PopulationSize
// individuals. For odd sizes the second child of the last pair is dropped.
func (o *Optimizer) NextGeneration() error {
	next := make([]framework.Assignment, 0, o.config.PopulationSize)
	for len(next) < o.config.PopulationSize {
		p1, p2, err := o.SelectParents()
		if err != nil {
			return err
		}
		c1, c2 := o.Crossover(p1, p2)
		c1 = o.Mutate(c1)
		c2 = o.Mutate(c2)

		next = append(next, c1)
		if len(next) < o.config.PopulationSize {
			next = append(next, c2)
		}
	}
	o.population = next
	return nil
}

// RunSimulationAndEvaluate simulates every individual in order, scores it and
// stably re-sorts the population by descending fitness. It returns the best
// individual. Only context cancellation is reported as an error; a failed
// simulation scores 0.
func (o *Optimizer) RunSimulationAndEvaluate(ctx context.Context) (Scored, error) {
	scores, err := o.evaluatePopulation(ctx, nil)
	if err != nil {
		return Scored{}, err
	}
	return scores[0], nil
}

func (o *Optimizer) evaluatePopulation(ctx context.Context, bar *progressbar.ProgressBar) ([]Scored, error) {
	logger := klog.FromContext(ctx)

	scores := make([]Scored, len(o.population))
	for i, chromosome := range o.population {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fitness := 0.0
		if err := o.evaluator.Simulate(ctx, chromosome); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Error(err, "Simulation failed, scoring candidate as 0", "candidate", i)
		} else {
			fitness = o.FitnessFunction(chromosome)
		}
		logger.V(2).Info("Evaluated candidate", "candidate", i, "fitness", fitness)

		scores[i] = Scored{Index: i, Chromosome: chromosome, Fitness: fitness}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Fitness > scores[b].Fitness
	})
	for i := range scores {
		o.population[i] = scores[i].Chromosome
	}
	return scores, nil
}

// FitnessFunction scores c against the latest simulator results. An
// unreadable results file scores 0.
func (o *Optimizer) FitnessFunction(c framework.Assignment) float64 {
	fitness, err := o.evaluator.Fitness(c)
	if err != nil {
		klog.V(2).InfoS("Could not read simulation results, scoring as 0", "err", err)
		return 0
	}
	return fitness
}

// GetBestSolution rescores the whole population and returns the fittest
// individual. Ties go to the earliest one.
func (o *Optimizer) GetBestSolution() Scored {
	best := Scored{Index: -1}
	for i, c := range o.population {
		fitness := o.FitnessFunction(c)
		if best.Index < 0 || fitness > best.Fitness {
			best = Scored{Index: i, Chromosome: c, Fitness: fitness}
		}
	}
	return best
}

// Run evaluates and breeds the population for the given number of
// generations, then returns GetBestSolution.
func (o *Optimizer) Run(ctx context.Context, generations int) (Scored, error) {
	ctx, span := tracing.Tracer().Start(ctx, "genetic.Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("populationSize", o.config.PopulationSize),
		attribute.Int("generations", generations),
	)

	logger := klog.FromContext(ctx).WithValues("algorithm", Name)
	logger.Info("Starting evolution",
		"populationSize", o.config.PopulationSize,
		"generations", generations,
		"crossoverRate", o.config.CrossoverRate,
		"mutationRate", o.config.MutationRate,
		"ues", o.numUEs,
		"enbs", o.numEnbs,
	)
	ctx = klog.NewContext(ctx, logger)
	startTime := time.Now()

	var bar *progressbar.ProgressBar
	if o.config.ShowProgress {
		bar = progressbar.Default(int64(generations*o.config.PopulationSize), "Evaluating candidates")
		defer bar.Finish()
	}

	for gen := 0; gen < generations; gen++ {
		if err := o.runGeneration(ctx, gen, bar); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "evolution aborted")
			return Scored{}, err
		}
	}

	best := o.GetBestSolution()
	metrics.BestFitness.WithLabelValues(string(framework.StrategyGenetic)).Set(best.Fitness)
	span.SetAttributes(attribute.Float64("bestFitness", best.Fitness))
	logger.Info("Evolution complete", "bestFitness", best.Fitness, "duration", time.Since(startTime))
	return best, nil
}

func (o *Optimizer) runGeneration(ctx context.Context, gen int, bar *progressbar.ProgressBar) error {
	ctx, span := tracing.Tracer().Start(ctx, "genetic.Generation")
	defer span.End()
	span.SetAttributes(attribute.Int("generation", gen))

	scores, err := o.evaluatePopulation(ctx, bar)
	if err != nil {
		return err
	}

	fitness := make([]float64, len(scores))
	for i, s := range scores {
		fitness[i] = s.Fitness
	}
	mean, stddev := stat.MeanStdDev(fitness, nil)
	klog.FromContext(ctx).Info("Generation evaluated",
		"generation", gen+1,
		"best", scores[0].Fitness,
		"mean", mean,
		"stddev", stddev,
		"unique", warmstart.UniqueCount(o.population),
	)
	metrics.GenerationsCompleted.Inc()
	metrics.BestFitness.WithLabelValues(string(framework.StrategyGenetic)).Set(scores[0].Fitness)

	return o.NextGeneration()
}
