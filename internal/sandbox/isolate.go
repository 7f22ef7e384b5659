package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// isolateRunner executes box tasks under the `isolate` sandbox binary.
// Each task gets a freshly initialized box: cgroup-enforced memory cap,
// wall-clock hard kill, no network, and a filesystem view restricted to
// the box directory.
type isolateRunner struct {
	mu       sync.Mutex
	idsInUse map[int]bool
}

func newIsolateRunner() *isolateRunner {
	return &isolateRunner{idsInUse: make(map[int]bool)}
}

func (r *isolateRunner) Run(ctx context.Context, task boxTask) (*boxResult, error) {
	boxID, boxPath, err := r.acquireBox()
	if err != nil {
		return nil, fmt.Errorf("acquire box: %w", err)
	}
	defer r.releaseBox(boxID)

	for name, content := range task.Files {
		dst := filepath.Join(boxPath, "box", name)
		if err := os.WriteFile(dst, content, 0644); err != nil {
			return nil, fmt.Errorf("write %s into box: %w", name, err)
		}
	}

	metaFile, err := os.CreateTemp("", "isolate-meta-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create meta file: %w", err)
	}
	metaPath := metaFile.Name()
	metaFile.Close()
	defer os.Remove(metaPath)

	wallSeconds := task.TimeLimit.Seconds()
	args := []string{
		"--cg",
		fmt.Sprintf("--box-id=%d", boxID),
		"--meta=" + metaPath,
		"--env=HOME=/box",
		fmt.Sprintf("--time=%.2f", wallSeconds),
		fmt.Sprintf("--wall-time=%.2f", wallSeconds+1),
		fmt.Sprintf("--cg-mem=%d", task.MemoryLimitKB),
		"--processes=32",
		"--open-files=64",
		"--run", "/bin/sh", "-c", task.Command,
	}

	cmd := exec.CommandContext(ctx, "isolate", args...)
	cmd.Stdin = strings.NewReader(task.Stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// isolate exits non-zero whenever the boxed program fails; the meta
	// file distinguishes why.
	runErr := cmd.Run()

	metrics, err := parseMetaFile(metaPath)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("isolate run failed: %w", runErr)
		}
		return nil, err
	}

	result := &boxResult{
		ExitCode:   metrics.exitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		TimeMillis: int64(metrics.timeSec * 1000),
		MemoryKB:   metrics.cgMemKB,
		Status:     metrics.status(),
	}

	if result.Status == boxOK && len(task.Collect) > 0 {
		result.Artifacts = make(map[string][]byte, len(task.Collect))
		for _, name := range task.Collect {
			content, err := os.ReadFile(filepath.Join(boxPath, "box", name))
			if err != nil {
				return nil, fmt.Errorf("collect artifact %s: %w", name, err)
			}
			result.Artifacts[name] = content
		}
	}

	return result, nil
}

func (r *isolateRunner) acquireBox() (int, string, error) {
	r.mu.Lock()
	id := 0
	for r.idsInUse[id] {
		id++
	}
	r.idsInUse[id] = true
	r.mu.Unlock()

	// Always clean up first; a previous crash may have left the box dirty.
	cleanup := exec.Command("isolate", "--cg", "--cleanup", fmt.Sprintf("--box-id=%d", id))
	_ = cleanup.Run()

	init := exec.Command("isolate", "--cg", "--init", fmt.Sprintf("--box-id=%d", id))
	out, err := init.CombinedOutput()
	if err != nil {
		r.mu.Lock()
		delete(r.idsInUse, id)
		r.mu.Unlock()
		return 0, "", fmt.Errorf("isolate init: %w: %s", err, out)
	}

	return id, strings.TrimSuffix(string(out), "\n"), nil
}

func (r *isolateRunner) releaseBox(id int) {
	cleanup := exec.Command("isolate", "--cg", "--cleanup", fmt.Sprintf("--box-id=%d", id))
	_ = cleanup.Run()

	r.mu.Lock()
	delete(r.idsInUse, id)
	r.mu.Unlock()
}

// isolateMetrics is the parsed meta file written by isolate after a run.
type isolateMetrics struct {
	timeSec     float64
	wallSec     float64
	cgMemKB     int64
	exitCode    int
	rawStatus   string
	cgOOMKilled bool
}

func (m *isolateMetrics) status() boxStatus {
	switch m.rawStatus {
	case "":
		return boxOK
	case "TO":
		return boxTimeout
	case "SG":
		if m.cgOOMKilled {
			return boxMemoryKilled
		}
		return boxRuntimeError
	case "RE":
		return boxRuntimeError
	default: // "XX" and anything unrecognized
		return boxInternal
	}
}

func parseMetaFile(path string) (*isolateMetrics, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meta file: %w", err)
	}

	m := &isolateMetrics{}
	for _, line := range strings.Split(string(raw), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		switch key {
		case "time":
			m.timeSec, _ = strconv.ParseFloat(value, 64)
		case "time-wall":
			m.wallSec, _ = strconv.ParseFloat(value, 64)
		case "cg-mem":
			m.cgMemKB, _ = strconv.ParseInt(value, 10, 64)
		case "exitcode":
			m.exitCode, _ = strconv.Atoi(value)
		case "status":
			m.rawStatus = value
		case "cg-oom-killed":
			m.cgOOMKilled = value == "1"
		}
	}
	return m, nil
}
