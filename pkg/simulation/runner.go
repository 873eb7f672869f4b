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

// Package simulation drives the external network simulator: it writes the
// attachment file, runs the simulator binary and scores its results file.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
	utilexec "k8s.io/utils/exec"

	"github.com/cellsim/attachopt/pkg/attachment"
	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/metrics"
	"github.com/cellsim/attachopt/pkg/tracing"
)

// DefaultCommand runs the ns-3 scratch simulator through the ns3 wrapper script.
var DefaultCommand = []string{"./ns3", "run", "scratch-simulator", "--"}

// RunnerConfig holds the per-invocation paths and limits of a Runner.
type RunnerConfig struct {
	// Command is the simulator argv prefix; the count and results flags are appended.
	Command []string
	// WorkDir is where the simulator runs and where relative paths resolve.
	WorkDir string
	// AttachmentFile is written before every run.
	AttachmentFile string
	// ResultsFile is passed to the simulator as --resultsFile.
	ResultsFile string
	// Timeout bounds a single attempt. Zero means no bound.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed run.
	Retries int
	// RetryDelay is the initial backoff between attempts; it doubles each time.
	RetryDelay time.Duration
}

// Runner invokes the simulator. Runs are strictly sequential: Run returns only
// after the simulator process has exited.
type Runner struct {
	cfg  RunnerConfig
	exec utilexec.Interface
}

// NewRunner validates cfg and returns a Runner using executor to start processes.
func NewRunner(cfg RunnerConfig, executor utilexec.Interface) (*Runner, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("simulator command must not be empty")
	}
	if cfg.AttachmentFile == "" {
		cfg.AttachmentFile = attachment.DefaultFile
	}
	if cfg.ResultsFile == "" {
		return nil, errors.New("results file must be set")
	}
	if executor == nil {
		executor = utilexec.New()
	}
	return &Runner{cfg: cfg, exec: executor}, nil
}

// ResultsPath is the results file location as seen from this process.
func (r *Runner) ResultsPath() string {
	return r.resolve(r.cfg.ResultsFile)
}

// AttachmentPath is the attachment file location as seen from this process.
func (r *Runner) AttachmentPath() string {
	return r.resolve(r.cfg.AttachmentFile)
}

func (r *Runner) resolve(path string) string {
	if filepath.IsAbs(path) || r.cfg.WorkDir == "" {
		return path
	}
	return filepath.Join(r.cfg.WorkDir, path)
}

// Args returns the full simulator argv for the given counts.
func (r *Runner) Args(numUEs, numEnbs int) []string {
	args := append([]string{}, r.cfg.Command...)
	return append(args,
		fmt.Sprintf("--numberOfUes=%d", numUEs),
		fmt.Sprintf("--numberOfEnbs=%d", numEnbs),
		fmt.Sprintf("--resultsFile=%s", r.cfg.ResultsFile),
	)
}

// Run writes assignment to the attachment file and runs the simulator for
// numUEs UEs and numEnbs eNodeBs, blocking until it exits.
func (r *Runner) Run(ctx context.Context, assignment framework.Assignment, numUEs, numEnbs int) error {
	ctx, span := tracing.Tracer().Start(ctx, "simulation.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("ues", numUEs), attribute.Int("enbs", numEnbs))

	if err := attachment.Write(r.AttachmentPath(), assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "writing attachments")
		return err
	}

	err := r.runWithRetries(ctx, numUEs, numEnbs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "simulator failed")
	}
	return err
}

func (r *Runner) runWithRetries(ctx context.Context, numUEs, numEnbs int) error {
	if r.cfg.Retries <= 0 {
		return r.runOnce(ctx, numUEs, numEnbs)
	}

	logger := klog.FromContext(ctx)
	backoff := wait.Backoff{
		Duration: r.cfg.RetryDelay,
		Factor:   2.0,
		Jitter:   0.1,
		Steps:    r.cfg.Retries + 1,
	}
	var lastErr error
	attempt := 0
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		attempt++
		lastErr = r.runOnce(ctx, numUEs, numEnbs)
		if lastErr != nil {
			logger.Error(lastErr, "Simulator run failed", "attempt", attempt, "maxAttempts", backoff.Steps)
			return false, nil
		}
		return true, nil
	})
	if err != nil && lastErr != nil {
		return lastErr
	}
	return err
}

func (r *Runner) runOnce(ctx context.Context, numUEs, numEnbs int) error {
	logger := klog.FromContext(ctx)
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	argv := r.Args(numUEs, numEnbs)
	cmd := r.exec.CommandContext(ctx, argv[0], argv[1:]...)
	if r.cfg.WorkDir != "" {
		cmd.SetDir(r.cfg.WorkDir)
	}

	logger.V(2).Info("Running simulator", "command", strings.Join(argv, " "))
	start := time.Now()
	out, err := cmd.CombinedOutput()
	elapsed := time.Since(start)
	metrics.SimulationDuration.Observe(elapsed.Seconds())
	logger.V(4).Info("Simulator output", "output", string(out))

	if err != nil {
		metrics.SimulationRuns.WithLabelValues("error").Inc()
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("simulator exited with status %d: %w", exitErr.ExitStatus(), err)
		}
		return fmt.Errorf("failed to run simulator: %w", err)
	}
	metrics.SimulationRuns.WithLabelValues("success").Inc()
	logger.V(2).Info("Simulator finished", "duration", elapsed)
	return nil
}
