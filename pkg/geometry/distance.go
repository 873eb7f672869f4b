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

package geometry

import (
	"fmt"
	"math"

	"github.com/umahmood/haversine"

	"github.com/cellsim/attachopt/pkg/framework"
)

// Metric measures the distance between two positions.
type Metric func(a, b framework.Position) float64

const (
	MetricEuclidean = "euclidean"
	MetricHaversine = "haversine"
)

// Euclidean treats latitude and longitude as plane coordinates.
func Euclidean(a, b framework.Position) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(a, b framework.Position) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km
}

// MetricByName resolves a configured metric name. The empty string selects
// the euclidean metric.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "", MetricEuclidean:
		return Euclidean, nil
	case MetricHaversine:
		return Haversine, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}
