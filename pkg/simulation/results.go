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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// Entry is one line of the simulator results file:
// "enb_count ue_count throughput delay jitter".
type Entry struct {
	Enbs       int
	Ues        int
	Throughput float64
	Delay      float64
	Jitter     float64
}

func (e Entry) String() string {
	return fmt.Sprintf("%d %d %s %s %s", e.Enbs, e.Ues,
		formatFloat(e.Throughput), formatFloat(e.Delay), formatFloat(e.Jitter))
}

// ParseResults reads every well-formed line of r. Lines that do not hold
// exactly five numeric fields are skipped.
func ParseResults(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		entry, err := parseEntry(text)
		if err != nil {
			klog.V(2).InfoS("Skipping malformed results line", "line", line, "err", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseEntry(text string) (Entry, error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return Entry{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	var (
		e   Entry
		err error
	)
	if e.Enbs, err = strconv.Atoi(fields[0]); err != nil {
		return Entry{}, fmt.Errorf("invalid eNodeB count: %w", err)
	}
	if e.Ues, err = strconv.Atoi(fields[1]); err != nil {
		return Entry{}, fmt.Errorf("invalid UE count: %w", err)
	}
	if e.Throughput, err = parseMeasure(fields[2]); err != nil {
		return Entry{}, fmt.Errorf("invalid throughput: %w", err)
	}
	if e.Delay, err = parseMeasure(fields[3]); err != nil {
		return Entry{}, fmt.Errorf("invalid delay: %w", err)
	}
	if e.Jitter, err = parseMeasure(fields[4]); err != nil {
		return Entry{}, fmt.Errorf("invalid jitter: %w", err)
	}
	return e, nil
}

// parseMeasure also accepts a signed NaN ("-nan"), which the simulator prints
// for a flow that received no packets.
func parseMeasure(s string) (float64, error) {
	if strings.EqualFold(strings.TrimLeft(s, "+-"), "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ReadResults parses the results file at path.
func ReadResults(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ParseResults(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return entries, nil
}

// Lookup returns the first entry recorded for (enbs, ues).
func Lookup(entries []Entry, enbs, ues int) (Entry, bool) {
	for _, e := range entries {
		if e.Enbs == enbs && e.Ues == ues {
			return e, true
		}
	}
	return Entry{}, false
}

// WriteResults replaces path with entries, one per line.
func WriteResults(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintln(w, e.String())
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// MergeResult records entry in the results file at path, replacing any row
// with the same (enbs, ues) key, and rewrites the file sorted by eNodeB count
// then UE count. A missing file is treated as empty.
func MergeResult(path string, entry Entry) error {
	entries, err := ReadResults(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	merged := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Enbs == entry.Enbs && e.Ues == entry.Ues {
			continue
		}
		merged = append(merged, e)
	}
	merged = append(merged, entry)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Enbs != merged[j].Enbs {
			return merged[i].Enbs < merged[j].Enbs
		}
		return merged[i].Ues < merged[j].Ues
	})

	return WriteResults(path, merged)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
