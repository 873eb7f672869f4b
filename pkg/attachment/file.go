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

package attachment

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cellsim/attachopt/pkg/framework"
)

// Write stores assignment as one "ue enb" line per UE, truncating path.
func Write(path string, assignment framework.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create attachment file: %w", err)
	}

	w := bufio.NewWriter(f)
	for ue, enb := range assignment {
		fmt.Fprintf(w, "%d %d\n", ue, enb)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Read loads an attachment file. UE indices must form the range [0, n) but may
// appear in any order.
func Read(path string) (framework.Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment file: %w", err)
	}
	defer f.Close()

	byUE := map[int]int{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected 2 fields, got %d", path, line, len(fields))
		}
		ue, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid UE index: %w", path, line, err)
		}
		enb, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid eNodeB index: %w", path, line, err)
		}
		if _, dup := byUE[ue]; dup {
			return nil, fmt.Errorf("%s:%d: duplicate UE %d", path, line, ue)
		}
		byUE[ue] = enb
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	assignment := make(framework.Assignment, len(byUE))
	for ue, enb := range byUE {
		if ue < 0 || ue >= len(assignment) {
			return nil, fmt.Errorf("%s: UE index %d outside [0, %d)", path, ue, len(assignment))
		}
		assignment[ue] = enb
	}
	return assignment, nil
}
