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

package api

import (
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/cellsim/attachopt/pkg/attachment"
	"github.com/cellsim/attachopt/pkg/genetic"
	"github.com/cellsim/attachopt/pkg/geometry"
	"github.com/cellsim/attachopt/pkg/plot"
	"github.com/cellsim/attachopt/pkg/simulation"
)

// SetDefaults_ExperimentConfig fills every unset field. Zero values count as
// unset, except for the genetic rates where only nil does.
func SetDefaults_ExperimentConfig(cfg *ExperimentConfig) {
	klog.V(5).InfoS("Setting experiment defaults")

	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if cfg.MaxRecords == 0 {
		cfg.MaxRecords = 120
	}
	if cfg.NumEnbs == 0 {
		cfg.NumEnbs = 4
	}
	if cfg.KMeansRestarts == 0 {
		cfg.KMeansRestarts = 10
	}
	if cfg.DistanceMetric == "" {
		cfg.DistanceMetric = geometry.MetricEuclidean
	}
	if cfg.PlotOutput == "" {
		cfg.PlotOutput = plot.DefaultOutput
	}
	SetDefaults_SimulatorConfig(&cfg.Simulator)
	SetDefaults_GeneticConfig(&cfg.Genetic)
	SetDefaults_TracingConfig(&cfg.Tracing)
}

func SetDefaults_SimulatorConfig(cfg *SimulatorConfig) {
	if len(cfg.Command) == 0 {
		cfg.Command = append([]string{}, simulation.DefaultCommand...)
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.AttachmentFile == "" {
		cfg.AttachmentFile = attachment.DefaultFile
	}
}

func SetDefaults_GeneticConfig(cfg *GeneticConfig) {
	if cfg.PopulationSize == 0 {
		cfg.PopulationSize = 2
	}
	if cfg.Generations == 0 {
		cfg.Generations = 2
	}
	if cfg.CrossoverRate == nil {
		cfg.CrossoverRate = ptr.To(0.8)
	}
	if cfg.MutationRate == nil {
		cfg.MutationRate = ptr.To(0.05)
	}
	if cfg.Crossover == "" {
		cfg.Crossover = genetic.CrossoverOnePoint
	}
}

func SetDefaults_TracingConfig(cfg *TracingConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "attachopt"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1
	}
}
