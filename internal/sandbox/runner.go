package sandbox

import (
	"context"
	"time"
)

// boxTask is one command execution in a freshly created isolation box.
type boxTask struct {
	// Files are written into the box before the command runs.
	Files map[string][]byte
	// Command is executed inside the box with no network and a read-only
	// view of everything except the box directory.
	Command string
	Stdin   string
	// Collect names files to read back out of the box after the command
	// finishes (compilation artifacts).
	Collect       []string
	TimeLimit     time.Duration
	MemoryLimitKB int64
}

// boxStatus classifies how the boxed process ended.
type boxStatus string

const (
	boxOK           boxStatus = "ok"
	boxTimeout      boxStatus = "timeout"
	boxMemoryKilled boxStatus = "memory_killed"
	boxRuntimeError boxStatus = "runtime_error"
	boxInternal     boxStatus = "internal_error"
)

// boxResult is the outcome of one boxTask.
type boxResult struct {
	Status     boxStatus
	ExitCode   int
	Stdout     string
	Stderr     string
	TimeMillis int64
	MemoryKB   int64
	Artifacts  map[string][]byte
}

// boxRunner executes one task in a fresh box. Implementations must enforce
// the limits themselves (hard kill on time, refuse memory above the cap)
// rather than relying on caller cooperation.
type boxRunner interface {
	Run(ctx context.Context, task boxTask) (*boxResult, error)
}
