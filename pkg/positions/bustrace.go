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

// Package positions reads UE positions from bus traces and reads/writes the
// plain "lat lon" position files consumed by the simulator.
package positions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/framework"
)

const (
	// latColumn and lonColumn are the zero-based columns holding the GPS fix.
	latColumn = 4
	lonColumn = 5
)

// traceRecord is the part of a bus trace row we care about.
type traceRecord struct {
	Lat float64 `csv:"lat"`
	Lon float64 `csv:"lon"`
}

// TraceOptions controls how a bus trace is read.
type TraceOptions struct {
	// Delimiter separates columns. Zero means ','.
	Delimiter rune
	// MaxRecords bounds the number of data rows read. Zero or less means no bound.
	MaxRecords int
}

// ReadBusTrace opens path and parses it with ParseBusTrace.
func ReadBusTrace(path string, opts TraceOptions) ([]framework.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bus trace: %w", err)
	}
	defer f.Close()

	positions, err := ParseBusTrace(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return positions, nil
}

// ParseBusTrace skips the header line and returns the (lat, lon) pair found in
// columns 4 and 5 of every following row, in file order.
func ParseBusTrace(r io.Reader, opts TraceOptions) ([]framework.Position, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	// Rows may carry trailing columns the header does not name.
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// The file header names are not stable across trace dumps, so address the
	// columns by position instead.
	columns := make([]string, lonColumn+1)
	for i := range columns {
		columns[i] = "col" + strconv.Itoa(i)
	}
	columns[latColumn] = "lat"
	columns[lonColumn] = "lon"

	dec, err := csvutil.NewDecoder(&traceRows{reader: reader}, columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	var positions []framework.Position
	for row := 1; opts.MaxRecords <= 0 || len(positions) < opts.MaxRecords; row++ {
		var rec traceRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		klog.V(5).InfoS("Read UE position", "row", row, "lat", rec.Lat, "lon", rec.Lon)
		positions = append(positions, framework.Position{Lat: rec.Lat, Lon: rec.Lon})
	}

	return positions, nil
}

// traceRows trims every row to the columns up to and including lonColumn so
// that rows of differing widths decode against one fixed header.
type traceRows struct {
	reader *csv.Reader
}

func (t *traceRows) Read() ([]string, error) {
	record, err := t.reader.Read()
	if err != nil {
		return nil, err
	}
	if len(record) <= lonColumn {
		return nil, fmt.Errorf("has %d columns, need at least %d", len(record), lonColumn+1)
	}
	return record[:lonColumn+1], nil
}
