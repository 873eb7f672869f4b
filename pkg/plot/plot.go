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

// Package plot renders the throughput curves of the attachment strategies.
package plot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/framework"
)

// DefaultOutput is the chart file written when no output path is given.
const DefaultOutput = "throughput_comparison.html"

// Point is the average throughput measured for a number of users.
type Point struct {
	Users      int
	Throughput float64
}

// Series is the throughput curve of one strategy.
type Series struct {
	Strategy framework.Strategy
	Points   []Point
}

// ReadPoints loads a results file. Lines with fewer than three fields are
// ignored; the second field is the user count and the third the throughput.
// Points are returned in ascending user order.
func ReadPoints(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []Point
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		users, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid user count %q", path, line, fields[1])
		}
		throughput, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid throughput %q", path, line, fields[2])
		}
		points = append(points, Point{Users: users, Throughput: throughput})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Users < points[j].Users })
	return points, nil
}

// LoadSeries reads the results file of every strategy from dir. Strategies
// without a results file are skipped; at least one must be present.
func LoadSeries(dir string) ([]Series, error) {
	var series []Series
	for _, s := range framework.Strategies {
		path := filepath.Join(dir, s.ResultsFile())
		points, err := ReadPoints(path)
		if errors.Is(err, os.ErrNotExist) {
			klog.InfoS("No results for strategy, skipping", "strategy", s, "path", path)
			continue
		}
		if err != nil {
			return nil, err
		}
		series = append(series, Series{Strategy: s, Points: points})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no results files found in %s", dir)
	}
	return series, nil
}

// RenderThroughput writes an HTML line chart of throughput against the number
// of users, one line per series, to outputPath.
func RenderThroughput(series []Series, outputPath string) error {
	if len(series) == 0 {
		return errors.New("nothing to plot")
	}
	if outputPath == "" {
		outputPath = DefaultOutput
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := WriteThroughput(series, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

// WriteThroughput renders the chart RenderThroughput produces to w.
func WriteThroughput(series []Series, w io.Writer) error {
	if len(series) == 0 {
		return errors.New("nothing to plot")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Throughput vs Number of Users",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Number of Users",
			Type: "value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Average Throughput (Kbps)",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	for _, s := range series {
		data := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.LineData{
				Value:      []interface{}{p.Users, p.Throughput},
				Symbol:     "circle",
				SymbolSize: 6,
			}
		}
		line.AddSeries(s.Strategy.Label(), data)
	}
	line.SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)

	return line.Render(w)
}
