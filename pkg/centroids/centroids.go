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

// Package centroids derives candidate eNodeB sites by clustering UE positions.
package centroids

import (
	"fmt"
	"math"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"k8s.io/klog/v2"

	"github.com/cellsim/attachopt/pkg/framework"
)

// Config controls the k-means run.
type Config struct {
	// Clusters is the number of sites to produce.
	Clusters int
	// Restarts is how many independent k-means runs to perform; the partition
	// with the lowest inertia wins. Values below 1 mean a single run.
	Restarts int
	// DeltaThreshold stops an iteration once fewer than this fraction of points
	// changed cluster. Zero uses the library default.
	DeltaThreshold float64
	// Rand, when set, picks the initial centers among the positions and makes
	// the result a function of its seed. Without it the partition draws from
	// the process-wide math/rand source and differs between runs.
	Rand framework.Rand
}

const (
	defaultDeltaThreshold = 0.01
	maxIterations         = 96
)

// Generate clusters positions into cfg.Clusters groups and returns the group
// centers as eNodeB positions.
func Generate(positions []framework.Position, cfg Config) ([]framework.Position, error) {
	if cfg.Clusters <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", cfg.Clusters)
	}
	if len(positions) < cfg.Clusters {
		return nil, fmt.Errorf("need at least %d positions to form %d clusters, got %d", cfg.Clusters, cfg.Clusters, len(positions))
	}

	km := kmeans.New()
	if cfg.DeltaThreshold > 0 {
		var err error
		km, err = kmeans.NewWithOptions(cfg.DeltaThreshold, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid k-means options: %w", err)
		}
	}

	dataset := make(clusters.Observations, len(positions))
	for i, p := range positions {
		dataset[i] = clusters.Coordinates{p.Lat, p.Lon}
	}

	restarts := max(cfg.Restarts, 1)
	var best clusters.Clusters
	bestInertia := math.Inf(1)
	for run := 0; run < restarts; run++ {
		var partition clusters.Clusters
		var err error
		if cfg.Rand != nil {
			partition = seededPartition(dataset, cfg.Clusters, cfg.DeltaThreshold, cfg.Rand)
		} else {
			partition, err = km.Partition(dataset, cfg.Clusters)
		}
		if err != nil {
			return nil, fmt.Errorf("k-means partition failed: %w", err)
		}
		inertia := Inertia(partition)
		klog.V(4).InfoS("K-means run finished", "run", run, "inertia", inertia)
		if inertia < bestInertia {
			bestInertia = inertia
			best = partition
		}
	}

	centers := make([]framework.Position, len(best))
	for i, c := range best {
		centers[i] = framework.Position{Lat: c.Center[0], Lon: c.Center[1]}
	}
	klog.V(2).InfoS("Generated eNodeB positions", "count", len(centers), "inertia", bestInertia)
	return centers, nil
}

// seededPartition runs Lloyd iterations from k distinct observations chosen
// with rng. A cluster left empty keeps its previous center.
func seededPartition(dataset clusters.Observations, k int, delta float64, rng framework.Rand) clusters.Clusters {
	if delta <= 0 {
		delta = defaultDeltaThreshold
	}

	// Partial Fisher-Yates over the observation indices.
	indices := make([]int, len(dataset))
	for i := range indices {
		indices[i] = i
	}
	cc := make(clusters.Clusters, k)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
		cc[i].Center = append(clusters.Coordinates{}, dataset[indices[i]].Coordinates()...)
	}

	assigned := make([]int, len(dataset))
	for i := range assigned {
		assigned[i] = -1
	}
	for iter := 0; iter < maxIterations; iter++ {
		cc.Reset()
		changes := 0
		for p, point := range dataset {
			ci := cc.Nearest(point)
			cc[ci].Append(point)
			if assigned[p] != ci {
				assigned[p] = ci
				changes++
			}
		}
		cc.Recenter()
		if changes <= int(float64(len(dataset))*delta) {
			break
		}
	}
	return cc
}

// Inertia is the sum of squared distances from every observation to the
// center of its cluster.
func Inertia(partition clusters.Clusters) float64 {
	total := 0.0
	for _, c := range partition {
		for _, o := range c.Observations {
			total += sqDist(o.Coordinates(), c.Center)
		}
	}
	return total
}

func sqDist(a, b clusters.Coordinates) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
