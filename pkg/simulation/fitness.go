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
	"fmt"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/metrics"
)

const (
	// DelayThreshold is the mean delay, in seconds, above which fitness is penalized.
	DelayThreshold = 0.1
	// JitterThreshold is the mean jitter, in seconds, above which fitness is penalized.
	JitterThreshold = 0.01

	delayPenalty  = 10.0
	jitterPenalty = 100.0
)

// Fitness scores a simulator result:
//
//	throughput - 10*max(0, delay-0.1) - 100*max(0, jitter-0.01)
func Fitness(e Entry) float64 {
	fitness := e.Throughput
	if e.Delay > DelayThreshold {
		fitness -= delayPenalty * (e.Delay - DelayThreshold)
	}
	if e.Jitter > JitterThreshold {
		fitness -= jitterPenalty * (e.Jitter - JitterThreshold)
	}
	return fitness
}

// LookupFitness keys the results by the shape of chromosome (1 + highest
// eNodeB index, number of UEs), not by its content. No matching row scores 0.
func LookupFitness(entries []Entry, chromosome framework.Assignment) float64 {
	entry, found := Lookup(entries, chromosome.EnbCount(), len(chromosome))
	metrics.FitnessLookups.WithLabelValues(fmt.Sprint(found)).Inc()
	if !found {
		return 0
	}
	return Fitness(entry)
}

// FitnessFromFile reads the results file at path and applies LookupFitness.
// The returned error is non-nil only when the file cannot be read; the
// fitness is 0 in that case.
func FitnessFromFile(path string, chromosome framework.Assignment) (float64, error) {
	entries, err := ReadResults(path)
	if err != nil {
		return 0, err
	}
	return LookupFitness(entries, chromosome), nil
}
