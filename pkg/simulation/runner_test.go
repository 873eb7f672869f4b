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

package simulation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"github.com/cellsim/attachopt/pkg/framework"
	"github.com/cellsim/attachopt/pkg/simulation"
)

func newFakeExec(cmd *testingexec.FakeCmd, times int) *testingexec.FakeExec {
	fexec := &testingexec.FakeExec{}
	for i := 0; i < times; i++ {
		fexec.CommandScript = append(fexec.CommandScript, func(name string, args ...string) utilexec.Cmd {
			return testingexec.InitFakeCmd(cmd, name, args...)
		})
	}
	return fexec
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()
	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) {
				err := simulation.MergeResult(filepath.Join(dir, "results.txt"),
					simulation.Entry{Enbs: 2, Ues: 3, Throughput: 4.5, Delay: 0.05, Jitter: 0.001})
				return []byte("Overall Average Throughput: 4.5 Kbps"), nil, err
			},
		},
	}
	fexec := newFakeExec(fcmd, 1)

	runner, err := simulation.NewRunner(simulation.RunnerConfig{
		Command:     []string{"./ns3", "run", "scratch-simulator", "--"},
		WorkDir:     dir,
		ResultsFile: "results.txt",
	}, fexec)
	if err != nil {
		t.Fatalf("NewRunner() failed: %v", err)
	}

	chromosome := framework.Assignment{0, 1, 1}
	if err := runner.Run(context.Background(), chromosome, 3, 2); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	wantArgv := []string{"./ns3", "run", "scratch-simulator", "--",
		"--numberOfUes=3", "--numberOfEnbs=2", "--resultsFile=results.txt"}
	if diff := cmp.Diff(wantArgv, fcmd.CombinedOutputLog[0]); diff != "" {
		t.Errorf("simulator argv mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{dir}, fcmd.Dirs); diff != "" {
		t.Errorf("simulator working directory mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(dir, "attachment_decisions.txt"))
	if err != nil {
		t.Fatalf("attachment file not written: %v", err)
	}
	if string(data) != "0 0\n1 1\n2 1\n" {
		t.Errorf("unexpected attachment file:\n%s", data)
	}

	fitness, err := simulation.NewEvaluator(runner, 3, 2).Fitness(chromosome)
	if err != nil {
		t.Fatalf("Fitness() failed: %v", err)
	}
	if fitness != 4.5 {
		t.Errorf("Fitness() = %v, want 4.5", fitness)
	}
}

func TestRunnerReportsExitStatus(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return nil, nil, &testingexec.FakeExitError{Status: 3} },
		},
	}
	runner, err := simulation.NewRunner(simulation.RunnerConfig{
		Command:     []string{"sim"},
		WorkDir:     t.TempDir(),
		ResultsFile: "results.txt",
	}, newFakeExec(fcmd, 1))
	if err != nil {
		t.Fatal(err)
	}

	err = runner.Run(context.Background(), framework.Assignment{0}, 1, 1)
	var exitErr utilexec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitStatus() != 3 {
		t.Errorf("Run() error = %v, want exit status 3", err)
	}
}

func TestRunnerRetries(t *testing.T) {
	fcmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return nil, nil, &testingexec.FakeExitError{Status: 1} },
			func() ([]byte, []byte, error) { return nil, nil, &testingexec.FakeExitError{Status: 1} },
			func() ([]byte, []byte, error) { return []byte("done"), nil, nil },
		},
	}
	runner, err := simulation.NewRunner(simulation.RunnerConfig{
		Command:     []string{"sim"},
		WorkDir:     t.TempDir(),
		ResultsFile: "results.txt",
		Retries:     2,
	}, newFakeExec(fcmd, 3))
	if err != nil {
		t.Fatal(err)
	}

	if err := runner.Run(context.Background(), framework.Assignment{0}, 1, 1); err != nil {
		t.Errorf("Run() failed after retries: %v", err)
	}
	if fcmd.CombinedOutputCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", fcmd.CombinedOutputCalls)
	}
}

func TestNewRunnerValidation(t *testing.T) {
	if _, err := simulation.NewRunner(simulation.RunnerConfig{ResultsFile: "r.txt"}, nil); err == nil {
		t.Error("expected an error for an empty command")
	}
	if _, err := simulation.NewRunner(simulation.RunnerConfig{Command: []string{"sim"}}, nil); err == nil {
		t.Error("expected an error for a missing results file")
	}
}
