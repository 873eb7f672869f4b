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
	"unicode/utf8"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/cellsim/attachopt/pkg/genetic"
	"github.com/cellsim/attachopt/pkg/geometry"
)

// ValidateExperimentConfig checks a defaulted configuration and reports every
// problem at once.
func ValidateExperimentConfig(cfg *ExperimentConfig) error {
	var errs field.ErrorList

	if cfg.TraceFile == "" {
		errs = append(errs, field.Required(field.NewPath("traceFile"), "a bus trace is needed for UE positions"))
	}
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		errs = append(errs, field.Invalid(field.NewPath("delimiter"), cfg.Delimiter, "must be a single character"))
	}
	if cfg.MaxRecords < 1 {
		errs = append(errs, field.Invalid(field.NewPath("maxRecords"), cfg.MaxRecords, "must be positive"))
	}
	for i, n := range cfg.UECounts {
		if n < 1 {
			errs = append(errs, field.Invalid(field.NewPath("ueCounts").Index(i), n, "must be positive"))
		}
	}
	if cfg.NumEnbs < 1 {
		errs = append(errs, field.Invalid(field.NewPath("numEnbs"), cfg.NumEnbs, "must be positive"))
	}
	if cfg.KMeansRestarts < 1 {
		errs = append(errs, field.Invalid(field.NewPath("kmeansRestarts"), cfg.KMeansRestarts, "must be positive"))
	}
	if _, err := geometry.MetricByName(cfg.DistanceMetric); err != nil {
		errs = append(errs, field.NotSupported(field.NewPath("distanceMetric"), cfg.DistanceMetric,
			[]string{geometry.MetricEuclidean, geometry.MetricHaversine}))
	}

	errs = append(errs, validateSimulator(&cfg.Simulator, field.NewPath("simulator"))...)
	errs = append(errs, validateGenetic(&cfg.Genetic, field.NewPath("genetic"))...)

	if rate := cfg.Tracing.SampleRate; rate < 0 || rate > 1 {
		errs = append(errs, field.Invalid(field.NewPath("tracing", "sampleRate"), rate, "must be between 0 and 1"))
	}

	return errs.ToAggregate()
}

func validateSimulator(cfg *SimulatorConfig, path *field.Path) field.ErrorList {
	var errs field.ErrorList
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		errs = append(errs, field.Required(path.Child("command"), "the simulator executable must be set"))
	}
	if cfg.AttachmentFile == "" {
		errs = append(errs, field.Required(path.Child("attachmentFile"), ""))
	}
	if cfg.Timeout.Duration < 0 {
		errs = append(errs, field.Invalid(path.Child("timeout"), cfg.Timeout.String(), "must not be negative"))
	}
	if cfg.Retries < 0 {
		errs = append(errs, field.Invalid(path.Child("retries"), cfg.Retries, "must not be negative"))
	}
	if cfg.RetryDelay.Duration < 0 {
		errs = append(errs, field.Invalid(path.Child("retryDelay"), cfg.RetryDelay.String(), "must not be negative"))
	}
	return errs
}

func validateGenetic(cfg *GeneticConfig, path *field.Path) field.ErrorList {
	var errs field.ErrorList
	if cfg.PopulationSize < 2 {
		errs = append(errs, field.Invalid(path.Child("populationSize"), cfg.PopulationSize, "must be at least 2"))
	}
	if cfg.Generations < 1 {
		errs = append(errs, field.Invalid(path.Child("generations"), cfg.Generations, "must be positive"))
	}
	errs = append(errs, validateRate(cfg.CrossoverRate, path.Child("crossoverRate"))...)
	errs = append(errs, validateRate(cfg.MutationRate, path.Child("mutationRate"))...)
	if _, err := genetic.CrossoverByName(cfg.Crossover); err != nil {
		errs = append(errs, field.NotSupported(path.Child("crossover"), cfg.Crossover,
			[]string{genetic.CrossoverOnePoint, genetic.CrossoverTwoPoint, genetic.CrossoverUniform}))
	}
	return errs
}

func validateRate(rate *float64, path *field.Path) field.ErrorList {
	if rate == nil {
		return field.ErrorList{field.Required(path, "")}
	}
	if *rate < 0 || *rate > 1 {
		return field.ErrorList{field.Invalid(path, *rate, "must be between 0 and 1")}
	}
	return nil
}
