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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "attachopt"

var (
	// SimulationRuns counts simulator invocations by result ("success" or "error").
	SimulationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_total",
			Help:      "Number of network simulator invocations, by result.",
		}, []string{"result"})

	SimulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall time of a single network simulator invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		})

	// FitnessLookups counts result file lookups by whether a matching row existed.
	FitnessLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fitness_lookups_total",
			Help:      "Number of fitness lookups in the simulator results file, by outcome.",
		}, []string{"found"})

	GenerationsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_completed_total",
			Help:      "Number of genetic algorithm generations evaluated.",
		})

	BestFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Best fitness observed in the latest evaluation, by strategy.",
		}, []string{"strategy"})
)

// Registry holds every collector of this package once Register has run.
var Registry = prometheus.NewRegistry()

var registerOnce sync.Once

// Register adds the collectors to Registry. It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			SimulationRuns,
			SimulationDuration,
			FitnessLookups,
			GenerationsCompleted,
			BestFitness,
		)
	})
}

// WriteToTextfile dumps Registry in the Prometheus text format, suitable for
// the node exporter textfile collector.
func WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
