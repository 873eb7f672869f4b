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

// Package api defines the experiment configuration and how it is defaulted,
// loaded and validated.
package api

import (
	"time"
)

// ExperimentConfig describes one attachment experiment: where UE positions come
// from, how eNodeB sites are derived, how the simulator is run and how the
// genetic optimizer is tuned.
type ExperimentConfig struct {
	// TraceFile is the bus trace with UE positions in columns 4 and 5.
	TraceFile string `json:"traceFile,omitempty" toml:"traceFile" env:"TRACE_FILE"`
	// Delimiter separates bus trace columns. It must be a single character.
	Delimiter string `json:"delimiter,omitempty" toml:"delimiter" env:"DELIMITER"`
	// MaxRecords bounds the number of UEs read from the trace.
	MaxRecords int `json:"maxRecords,omitempty" toml:"maxRecords" env:"MAX_RECORDS"`
	// UECounts lists the UE counts visited by a sweep. Empty means MaxRecords only.
	UECounts []int `json:"ueCounts,omitempty" toml:"ueCounts" env:"UE_COUNTS" envSeparator:","`

	NumEnbs        int    `json:"numEnbs,omitempty" toml:"numEnbs" env:"NUM_ENBS"`
	KMeansRestarts int    `json:"kmeansRestarts,omitempty" toml:"kmeansRestarts" env:"KMEANS_RESTARTS"`
	DistanceMetric string `json:"distanceMetric,omitempty" toml:"distanceMetric" env:"DISTANCE_METRIC"`
	// Seed feeds the k-means center selection, the random strategy and the
	// genetic optimizer. Zero seeds from the clock.
	Seed uint64 `json:"seed,omitempty" toml:"seed" env:"SEED"`

	Simulator SimulatorConfig `json:"simulator" toml:"simulator" envPrefix:"SIMULATOR_"`
	Genetic   GeneticConfig   `json:"genetic" toml:"genetic" envPrefix:"GA_"`
	Tracing   TracingConfig   `json:"tracing" toml:"tracing" envPrefix:"TRACING_"`

	// PlotOutput is the HTML chart written by the plot command.
	PlotOutput string `json:"plotOutput,omitempty" toml:"plotOutput" env:"PLOT_OUTPUT"`
	// MetricsFile, when set, receives the Prometheus metrics in text format on exit.
	MetricsFile string `json:"metricsFile,omitempty" toml:"metricsFile" env:"METRICS_FILE"`
	// ShowProgress renders a progress bar during the genetic search.
	ShowProgress bool `json:"showProgress,omitempty" toml:"showProgress" env:"SHOW_PROGRESS"`
}

// SimulatorConfig controls how the network simulator is invoked.
type SimulatorConfig struct {
	// Command is the argv prefix; count and results flags are appended.
	Command []string `json:"command,omitempty" toml:"command" env:"COMMAND" envSeparator:" "`
	// WorkDir is where the simulator runs and where every exchanged file lives.
	WorkDir        string `json:"workDir,omitempty" toml:"workDir" env:"WORK_DIR"`
	AttachmentFile string `json:"attachmentFile,omitempty" toml:"attachmentFile" env:"ATTACHMENT_FILE"`
	// ResultsFile overrides the per-strategy results file name.
	ResultsFile string   `json:"resultsFile,omitempty" toml:"resultsFile" env:"RESULTS_FILE"`
	Timeout     Duration `json:"timeout,omitempty" toml:"timeout" env:"TIMEOUT"`
	Retries     int      `json:"retries,omitempty" toml:"retries" env:"RETRIES"`
	RetryDelay  Duration `json:"retryDelay,omitempty" toml:"retryDelay" env:"RETRY_DELAY"`
}

// GeneticConfig tunes the genetic optimizer.
type GeneticConfig struct {
	PopulationSize int `json:"populationSize,omitempty" toml:"populationSize" env:"POPULATION_SIZE"`
	Generations    int `json:"generations,omitempty" toml:"generations" env:"GENERATIONS"`
	// CrossoverRate and MutationRate are pointers so that an explicit 0
	// survives defaulting.
	CrossoverRate  *float64 `json:"crossoverRate,omitempty" toml:"crossoverRate" env:"CROSSOVER_RATE"`
	MutationRate   *float64 `json:"mutationRate,omitempty" toml:"mutationRate" env:"MUTATION_RATE"`
	Crossover      string   `json:"crossover,omitempty" toml:"crossover" env:"CROSSOVER"`
	DiversifySeeds bool     `json:"diversifySeeds,omitempty" toml:"diversifySeeds" env:"DIVERSIFY_SEEDS"`
}

// TracingConfig configures OTLP trace export. Tracing is off without a
// collector endpoint.
type TracingConfig struct {
	CollectorEndpoint string  `json:"collectorEndpoint,omitempty" toml:"collectorEndpoint" env:"COLLECTOR_ENDPOINT"`
	CACert            string  `json:"caCert,omitempty" toml:"caCert" env:"CA_CERT"`
	ServiceName       string  `json:"serviceName,omitempty" toml:"serviceName" env:"SERVICE_NAME"`
	SampleRate        float64 `json:"sampleRate,omitempty" toml:"sampleRate" env:"SAMPLE_RATE"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
