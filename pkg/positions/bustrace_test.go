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

package positions_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/positions"
)

const sampleTrace = `id,line,bus,time,lat,lon,speed
1,300,A1,08:00:00,39.9042,116.4074,12.5
2,300,A1,08:00:10,39.9050,116.4080,11.0

3,300,A2,08:00:20,39.9100,116.4100,0
4,300,A2,08:00:30,39.9200,116.4200,3
`

func TestParseBusTrace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    positions.TraceOptions
		want    []framework.Position
		wantErr bool
	}{
		{
			name:  "all records",
			input: sampleTrace,
			want: []framework.Position{
				{Lat: 39.9042, Lon: 116.4074},
				{Lat: 39.9050, Lon: 116.4080},
				{Lat: 39.9100, Lon: 116.4100},
				{Lat: 39.9200, Lon: 116.4200},
			},
		},
		{
			name:  "bounded by max records",
			input: sampleTrace,
			opts:  positions.TraceOptions{MaxRecords: 2},
			want: []framework.Position{
				{Lat: 39.9042, Lon: 116.4074},
				{Lat: 39.9050, Lon: 116.4080},
			},
		},
		{
			name:  "custom delimiter",
			input: "a;b;c;d;lat;lon\n1;2;3;4;10.5;20.25\n",
			opts:  positions.TraceOptions{Delimiter: ';'},
			want:  []framework.Position{{Lat: 10.5, Lon: 20.25}},
		},
		{
			name:  "header only",
			input: "a,b,c,d,lat,lon\n",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:    "too few columns",
			input:   "a,b,c\n1,2,3\n",
			wantErr: true,
		},
		{
			name:    "short row after valid rows",
			input:   "a,b,c,d,lat,lon\n1,2,3,4,10.5,20.25\n1,2,3\n",
			wantErr: true,
		},
		{
			name:  "row with extra trailing column",
			input: "a,b,c,d,lat,lon\n1,2,3,4,10.5,20.25\n1,2,3,4,11.5,21.25,extra\n",
			want: []framework.Position{
				{Lat: 10.5, Lon: 20.25},
				{Lat: 11.5, Lon: 21.25},
			},
		},
		{
			name:  "narrow header above full rows",
			input: "trace\n1,300,A1,08:00:00,39.9042,116.4074,12.5\n",
			want:  []framework.Position{{Lat: 39.9042, Lon: 116.4074}},
		},
		{
			name:    "malformed latitude",
			input:   "a,b,c,d,lat,lon\n1,2,3,4,north,116.4\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := positions.ParseBusTrace(strings.NewReader(tt.input), tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got positions %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseBusTrace() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), positions.UEPositionsFile)
	want := []framework.Position{
		{Lat: 39.9042, Lon: 116.4074},
		{Lat: -33.5, Lon: 151},
	}

	if err := positions.WritePositions(path, want); err != nil {
		t.Fatalf("WritePositions() failed: %v", err)
	}
	got, err := positions.ReadPositions(path)
	if err != nil {
		t.Fatalf("ReadPositions() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("position file mismatch (-want +got):\n%s", diff)
	}
}
