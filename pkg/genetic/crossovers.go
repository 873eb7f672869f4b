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

package genetic

import (
	"fmt"

	"github.com/cellsim/attachopt/pkg/framework"
)

// CrossoverFunc recombines two parents of equal length (at least 2) into two
// new children. Parents are never modified.
type CrossoverFunc func(rng framework.Rand, p1, p2 framework.Assignment) (framework.Assignment, framework.Assignment)

// Crossover operator names accepted in Config.Crossover.
const (
	CrossoverOnePoint = "one-point"
	CrossoverTwoPoint = "two-point"
	CrossoverUniform  = "uniform"
)

// CrossoverByName resolves a configured operator name. The empty string
// selects one-point crossover.
func CrossoverByName(name string) (CrossoverFunc, error) {
	switch name {
	case "", CrossoverOnePoint:
		return OnePointCrossover, nil
	case CrossoverTwoPoint:
		return TwoPointCrossover, nil
	case CrossoverUniform:
		return UniformCrossover, nil
	}
	return nil, fmt.Errorf("unknown crossover operator %q", name)
}

// OnePointCrossover picks a cut in [1, n-1] and swaps the tails.
func OnePointCrossover(rng framework.Rand, p1, p2 framework.Assignment) (framework.Assignment, framework.Assignment) {
	point := 1 + rng.Intn(len(p1)-1)
	return swapSegment(p1, p2, point, len(p1))
}

// TwoPointCrossover picks two cuts in [1, n-1] and swaps the genes between
// them. Equal cuts leave the children equal to the parents.
func TwoPointCrossover(rng framework.Rand, p1, p2 framework.Assignment) (framework.Assignment, framework.Assignment) {
	point1 := 1 + rng.Intn(len(p1)-1)
	point2 := 1 + rng.Intn(len(p1)-1)
	if point1 > point2 {
		point1, point2 = point2, point1
	}
	return swapSegment(p1, p2, point1, point2)
}

// UniformCrossover swaps each gene independently with probability 0.5.
func UniformCrossover(rng framework.Rand, p1, p2 framework.Assignment) (framework.Assignment, framework.Assignment) {
	child1 := p1.Clone()
	child2 := p2.Clone()
	for i := range child1 {
		if rng.Float64() < 0.5 {
			child1[i], child2[i] = child2[i], child1[i]
		}
	}
	return child1, child2
}

// swapSegment copies the parents and exchanges genes in [from, to).
func swapSegment(p1, p2 framework.Assignment, from, to int) (framework.Assignment, framework.Assignment) {
	child1 := p1.Clone()
	child2 := p2.Clone()
	for i := from; i < to; i++ {
		child1[i], child2[i] = p2[i], p1[i]
	}
	return child1, child2
}
