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

package plot_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/plot"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	writeFile(t, path, "4 80 21.5 0.05 0.001\n\nshort line\n4 40 30 0.02 0.001\n")

	got, err := plot.ReadPoints(path)
	if err != nil {
		t.Fatalf("ReadPoints() failed: %v", err)
	}
	want := []plot.Point{{Users: 40, Throughput: 30}, {Users: 80, Throughput: 21.5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadPoints() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPointsInvalidField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	writeFile(t, path, "4 forty 30\n")

	if _, err := plot.ReadPoints(path); err == nil {
		t.Error("expected an error for a non-numeric user count")
	}
}

func TestLoadSeriesAndRender(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, framework.StrategyHeuristic.ResultsFile()), "4 40 12 0.05 0.001\n4 80 10 0.05 0.001\n")
	writeFile(t, filepath.Join(dir, framework.StrategyGenetic.ResultsFile()), "4 40 14 0.05 0.001\n")

	series, err := plot.LoadSeries(dir)
	if err != nil {
		t.Fatalf("LoadSeries() failed: %v", err)
	}
	if len(series) != 2 || series[0].Strategy != framework.StrategyHeuristic || series[1].Strategy != framework.StrategyGenetic {
		t.Fatalf("unexpected series: %+v", series)
	}

	out := filepath.Join(dir, "chart.html")
	if err := plot.RenderThroughput(series, out); err != nil {
		t.Fatalf("RenderThroughput() failed: %v", err)
	}
	html, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, label := range []string{"Heuristic", "Genetic Algorithm"} {
		if !strings.Contains(string(html), label) {
			t.Errorf("chart does not mention %q", label)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderErrors(t *testing.T) {
	series := []plot.Series{{Strategy: framework.StrategyRandom, Points: []plot.Point{{Users: 40, Throughput: 9}}}}

	if err := plot.WriteThroughput(series, failingWriter{}); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("WriteThroughput() error = %v, want the writer failure", err)
	}

	missing := filepath.Join(t.TempDir(), "missing", "chart.html")
	if err := plot.RenderThroughput(series, missing); err == nil {
		t.Error("expected an error for an output path in a missing directory")
	}

	empty := filepath.Join(t.TempDir(), "chart.html")
	if err := plot.RenderThroughput(nil, empty); err == nil {
		t.Error("expected an error when there is nothing to plot")
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Errorf("no chart file should be created without series, stat error: %v", err)
	}
}

func TestLoadSeriesEmptyDir(t *testing.T) {
	if _, err := plot.LoadSeries(t.TempDir()); err == nil {
		t.Error("expected an error when no results files exist")
	}
}
