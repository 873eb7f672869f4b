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

// Package attachment builds UE to eNodeB assignments and persists them in the
// attachment file read by the simulator.
package attachment

import (
	"errors"
	"fmt"
	"math"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/geometry"
)

// DefaultFile is the attachment file name the simulator reads.
const DefaultFile = "attachment_decisions.txt"

var errNoSites = errors.New("no eNodeB positions to attach to")

// NearestSite attaches every UE to its closest eNodeB under metric. Ties go to
// the lowest eNodeB index. A nil metric means geometry.Euclidean.
func NearestSite(ues, enbs []framework.Position, metric geometry.Metric) (framework.Assignment, error) {
	if len(enbs) == 0 {
		return nil, errNoSites
	}
	if metric == nil {
		metric = geometry.Euclidean
	}

	assignment := make(framework.Assignment, len(ues))
	for ue, uePos := range ues {
		best := -1
		bestDist := math.Inf(1)
		for enb, enbPos := range enbs {
			if d := metric(uePos, enbPos); d < bestDist {
				bestDist = d
				best = enb
			}
		}
		if best < 0 {
			// Only possible when every distance is NaN or +Inf.
			return nil, fmt.Errorf("no finite distance from UE %d at %v", ue, uePos)
		}
		assignment[ue] = best
	}
	return assignment, nil
}

// Random attaches every UE to a uniformly chosen eNodeB in [0, numEnbs).
func Random(numUEs, numEnbs int, rng framework.Rand) (framework.Assignment, error) {
	if numEnbs <= 0 {
		return nil, errNoSites
	}
	assignment := make(framework.Assignment, numUEs)
	for i := range assignment {
		assignment[i] = rng.Intn(numEnbs)
	}
	return assignment, nil
}

// Validate checks that assignment covers exactly numUEs UEs and that every
// eNodeB index is in [0, numEnbs).
func Validate(assignment framework.Assignment, numUEs, numEnbs int) error {
	if len(assignment) != numUEs {
		return fmt.Errorf("assignment covers %d UEs, want %d", len(assignment), numUEs)
	}
	for ue, enb := range assignment {
		if enb < 0 || enb >= numEnbs {
			return fmt.Errorf("UE %d attached to eNodeB %d, want [0, %d)", ue, enb, numEnbs)
		}
	}
	return nil
}
