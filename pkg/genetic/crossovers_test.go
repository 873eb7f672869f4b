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

package genetic_test

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/genetic"
)

func TestCrossoverByName(t *testing.T) {
	for _, name := range []string{"", genetic.CrossoverOnePoint, genetic.CrossoverTwoPoint, genetic.CrossoverUniform} {
		if _, err := genetic.CrossoverByName(name); err != nil {
			t.Errorf("CrossoverByName(%q) failed: %v", name, err)
		}
	}
	if _, err := genetic.CrossoverByName("k-point"); err == nil {
		t.Error("expected an error for an unknown operator")
	}
}

// Every operator must produce children that, gene by gene, hold the two
// parent values, and must leave the parents untouched.
func TestCrossoverOperatorsPreserveGenes(t *testing.T) {
	operators := map[string]genetic.CrossoverFunc{
		"one-point": genetic.OnePointCrossover,
		"two-point": genetic.TwoPointCrossover,
		"uniform":   genetic.UniformCrossover,
	}
	rng := rand.New(rand.NewSource(7))

	for name, op := range operators {
		t.Run(name, func(t *testing.T) {
			for trial := 0; trial < 200; trial++ {
				p1 := framework.Assignment{0, 0, 0, 0, 0, 0}
				p2 := framework.Assignment{1, 2, 3, 1, 2, 3}
				c1, c2 := op(rng, p1, p2)

				if !p1.Equal(framework.Assignment{0, 0, 0, 0, 0, 0}) || !p2.Equal(framework.Assignment{1, 2, 3, 1, 2, 3}) {
					t.Fatalf("parents modified: %v %v", p1, p2)
				}
				for i := range p1 {
					fromFirst := c1[i] == p1[i] && c2[i] == p2[i]
					swapped := c1[i] == p2[i] && c2[i] == p1[i]
					if !fromFirst && !swapped {
						t.Fatalf("gene %d of children %v %v does not come from the parents", i, c1, c2)
					}
				}
			}
		})
	}
}

func TestOnePointCrossoverCutRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	p1 := framework.Assignment{0, 0, 0, 0, 0}
	p2 := framework.Assignment{1, 1, 1, 1, 1}

	seen := map[int]bool{}
	for trial := 0; trial < 500; trial++ {
		c1, _ := genetic.OnePointCrossover(rng, p1, p2)
		cut := 0
		for cut < len(c1) && c1[cut] == 0 {
			cut++
		}
		for i := cut; i < len(c1); i++ {
			if c1[i] != 1 {
				t.Fatalf("child %v is not a single tail swap", c1)
			}
		}
		if cut < 1 || cut > len(p1)-1 {
			t.Fatalf("cut %d outside [1, %d]", cut, len(p1)-1)
		}
		seen[cut] = true
	}
	if len(seen) != len(p1)-1 {
		t.Errorf("expected every cut in [1, %d] to occur, saw %v", len(p1)-1, seen)
	}
}
