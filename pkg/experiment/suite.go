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

package experiment

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/plot"
)

// Suite runs a set of strategies over increasing UE counts so that every
// strategy's results file ends up holding a throughput curve.
type Suite struct {
	experiment *Experiment
	strategies []framework.Strategy
	ueCounts   []int
}

// NewSuite creates a sweep over ueCounts.
func NewSuite(experiment *Experiment, ueCounts []int) *Suite {
	return &Suite{
		experiment: experiment,
		ueCounts:   ueCounts,
	}
}

// AddStrategy adds a strategy to the suite
func (s *Suite) AddStrategy(strategy framework.Strategy) {
	s.strategies = append(s.strategies, strategy)
}

// AddStandardStrategies adds every known strategy.
func (s *Suite) AddStandardStrategies() {
	for _, strategy := range framework.Strategies {
		s.AddStrategy(strategy)
	}
}

// Run executes every strategy at every UE count. All strategies of one count
// share the same scenario. When plotOutput is set the curves are rendered
// there afterwards.
func (s *Suite) Run(ctx context.Context, plotOutput string) ([]*Result, error) {
	logger := klog.FromContext(ctx)
	if len(s.strategies) == 0 {
		return nil, fmt.Errorf("no strategies to run")
	}

	var results []*Result
	for _, count := range s.ueCounts {
		logger.Info("Running sweep step", "ues", count, "strategies", s.strategies)

		scenario, err := s.experiment.Prepare(ctx, count)
		if err != nil {
			return results, fmt.Errorf("preparing %d UEs: %w", count, err)
		}
		for _, strategy := range s.strategies {
			result, err := s.experiment.Run(ctx, strategy, scenario)
			if err != nil {
				return results, fmt.Errorf("running %s with %d UEs: %w", strategy, count, err)
			}
			results = append(results, result)
		}
	}

	if plotOutput != "" {
		series, err := plot.LoadSeries(s.experiment.cfg.Simulator.WorkDir)
		if err != nil {
			return results, err
		}
		if err := plot.RenderThroughput(series, plotOutput); err != nil {
			logger.Error(err, "Failed to plot sweep results", "output", plotOutput)
		}
	}
	return results, nil
}
