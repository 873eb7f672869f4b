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

package positions

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cellsim/attachopt/pkg/framework"
)

const (
	UEPositionsFile  = "ue_positions.txt"
	ENBPositionsFile = "enb_positions.txt"
)

// WritePositions writes one "lat lon" line per position, truncating path.
func WritePositions(path string, positions []framework.Position) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create position file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, p := range positions {
		fmt.Fprintf(w, "%s %s\n", formatFloat(p.Lat), formatFloat(p.Lon))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// ReadPositions reads a file written by WritePositions. Blank lines are ignored.
func ReadPositions(path string) ([]framework.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open position file: %w", err)
	}
	defer f.Close()

	var positions []framework.Position
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
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid latitude: %w", path, line, err)
		}
		lon, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid longitude: %w", path, line, err)
		}
		positions = append(positions, framework.Position{Lat: lat, Lon: lon})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return positions, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
