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

package framework_test

import (
	"testing"

	"github.com/cellsim/attachopt/pkg/framework"
)

func TestAssignmentEnbCount(t *testing.T) {
	tests := []struct {
		name       string
		assignment framework.Assignment
		want       int
	}{
		{name: "empty", assignment: nil, want: 0},
		{name: "single", assignment: framework.Assignment{0}, want: 1},
		{name: "highest index in the middle", assignment: framework.Assignment{0, 3, 1}, want: 4},
		{name: "unused low indices", assignment: framework.Assignment{2, 2}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.assignment.EnbCount(); got != tt.want {
				t.Errorf("EnbCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAssignmentCloneIsIndependent(t *testing.T) {
	original := framework.Assignment{1, 2, 3}
	clone := original.Clone()
	clone[0] = 9

	if original[0] != 1 {
		t.Errorf("modifying the clone changed the original: %v", original)
	}
	if !original.Equal(framework.Assignment{1, 2, 3}) {
		t.Errorf("Equal() = false for identical assignments")
	}
	if original.Equal(clone) {
		t.Errorf("Equal() = true for different assignments")
	}
}

func TestStrategyResultsFile(t *testing.T) {
	if got := framework.StrategyGenetic.ResultsFile(); got != "simulation_results_ga.txt" {
		t.Errorf("ResultsFile() = %q", got)
	}
	if got := framework.StrategyHeuristic.Label(); got != "Heuristic" {
		t.Errorf("Label() = %q", got)
	}
}
