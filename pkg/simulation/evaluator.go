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

package simulation

import (
	"context"

	"github.com/cellsim/attachopt/pkg/framework"
)

// Evaluator scores chromosomes by simulating them with a fixed UE and eNodeB
// count.
type Evaluator struct {
	runner  *Runner
	numUEs  int
	numEnbs int
}

func NewEvaluator(runner *Runner, numUEs, numEnbs int) *Evaluator {
	return &Evaluator{runner: runner, numUEs: numUEs, numEnbs: numEnbs}
}

// Simulate runs the simulator on chromosome.
func (e *Evaluator) Simulate(ctx context.Context, chromosome framework.Assignment) error {
	return e.runner.Run(ctx, chromosome, e.numUEs, e.numEnbs)
}

// Fitness scores chromosome against the current results file without running
// the simulator.
func (e *Evaluator) Fitness(chromosome framework.Assignment) (float64, error) {
	return FitnessFromFile(e.runner.ResultsPath(), chromosome)
}
