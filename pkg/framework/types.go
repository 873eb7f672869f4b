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

package framework

import "fmt"

// Position is a geographic coordinate pair. Positions are never modified once
// read from a trace or computed by clustering.
type Position struct {
	Lat float64
	Lon float64
}

func (p Position) String() string {
	return fmt.Sprintf("%v %v", p.Lat, p.Lon)
}

// Assignment maps every UE (by slice index) to an eNodeB index. It doubles as the
// chromosome of the genetic optimizer.
type Assignment []int

// Clone returns a copy that shares no memory with a.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// Equal reports whether a and b map every UE to the same eNodeB.
func (a Assignment) Equal(b Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EnbCount returns the number of eNodeBs implied by the highest index in use,
// i.e. 1 + max(a). An empty assignment implies zero eNodeBs.
func (a Assignment) EnbCount() int {
	if len(a) == 0 {
		return 0
	}
	highest := a[0]
	for _, enb := range a[1:] {
		if enb > highest {
			highest = enb
		}
	}
	return highest + 1
}

// Strategy names a UE attachment strategy.
type Strategy string

const (
	StrategyHeuristic Strategy = "heuristic"
	StrategyRandom    Strategy = "random"
	StrategyGenetic   Strategy = "ga"
)

// Strategies lists every known strategy in plotting order.
var Strategies = []Strategy{StrategyHeuristic, StrategyGenetic, StrategyRandom}

// Label is the human-readable name used in charts and logs.
func (s Strategy) Label() string {
	switch s {
	case StrategyHeuristic:
		return "Heuristic"
	case StrategyRandom:
		return "Random"
	case StrategyGenetic:
		return "Genetic Algorithm"
	default:
		return string(s)
	}
}

// ResultsFile is the simulator results file name used for runs of s.
func (s Strategy) ResultsFile() string {
	return "simulation_results_" + string(s) + ".txt"
}

// Rand is the subset of golang.org/x/exp/rand.Rand used by the strategies.
type Rand interface {
	Intn(n int) int
	Float64() float64
}
