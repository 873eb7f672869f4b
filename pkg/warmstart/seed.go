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

// Package warmstart builds the initial population of the genetic optimizer
// from the nearest-site heuristic, so evolution starts from a sound
// assignment instead of from noise.
package warmstart

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/attachment"
	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/geometry"
)

// MutateFunc perturbs a chromosome in place and returns it.
type MutateFunc func(framework.Assignment) framework.Assignment

// Config describes the UEs and sites to seed from.
type Config struct {
	UEs    []framework.Position
	Sites  []framework.Position
	Metric geometry.Metric

	// Diversify applies Mutate once to every seed except the first. When
	// false all seeds are the same nearest-site assignment.
	Diversify bool
	Mutate    MutateFunc
}

// Seeder generates initial populations.
type Seeder struct {
	config Config
}

// NewSeeder creates a new Seeder instance
func NewSeeder(config Config) *Seeder {
	return &Seeder{config: config}
}

// GenerateInitialPopulation returns popSize chromosomes. Every chromosome is a
// separate copy, so later in-place mutation of one never affects another.
func (s *Seeder) GenerateInitialPopulation(ctx context.Context, popSize int) ([]framework.Assignment, error) {
	logger := klog.FromContext(ctx)
	if popSize <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", popSize)
	}
	if s.config.Diversify && s.config.Mutate == nil {
		return nil, fmt.Errorf("diversified seeding needs a mutation function")
	}

	base, err := attachment.NearestSite(s.config.UEs, s.config.Sites, s.config.Metric)
	if err != nil {
		return nil, fmt.Errorf("failed to build nearest-site seed: %w", err)
	}

	population := make([]framework.Assignment, popSize)
	for i := range population {
		population[i] = base.Clone()
		if s.config.Diversify && i > 0 {
			population[i] = s.config.Mutate(population[i])
		}
	}

	logger.V(2).Info("Generated initial population", "size", popSize, "unique", UniqueCount(population), "diversified", s.config.Diversify)
	return population, nil
}

// UniqueCount returns the number of distinct chromosomes in population.
func UniqueCount(population []framework.Assignment) int {
	seen := make(map[string]bool, len(population))
	for _, c := range population {
		seen[fmt.Sprint([]int(c))] = true
	}
	return len(seen)
}
