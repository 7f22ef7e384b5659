package sandbox

import "time"

// Language is the execution profile for one supported language. Profiles
// are configuration data: adding a language means adding an entry, not
// touching control flow.
type Language struct {
	Name       string
	SourceFile string
	// CompileCmd is empty for interpreted languages. It runs once per
	// submission; Artifacts lists the files it produces that must be
	// installed into every test box.
	CompileCmd string
	Artifacts  []string
	RunCmd     string
	// Defaults, overridable per submission. Compiled languages get more
	// headroom because they pay a compilation cost.
	TimeLimit     time.Duration
	MemoryLimitKB int64
}

// Compiled reports whether the language needs a compile step.
func (l Language) Compiled() bool {
	return l.CompileCmd != ""
}

// DefaultLanguages returns the built-in language profiles.
func DefaultLanguages() map[string]Language {
	const (
		interpretedTime = 30 * time.Second
		interpretedMem  = 128 * 1024 // KB
		compiledTime    = 60 * time.Second
		compiledMem     = 256 * 1024
	)

	return map[string]Language{
		"python": {
			Name:          "python",
			SourceFile:    "main.py",
			RunCmd:        "/usr/bin/python3 main.py",
			TimeLimit:     interpretedTime,
			MemoryLimitKB: interpretedMem,
		},
		"javascript": {
			Name:          "javascript",
			SourceFile:    "main.js",
			RunCmd:        "/usr/bin/node main.js",
			TimeLimit:     interpretedTime,
			MemoryLimitKB: interpretedMem,
		},
		"cpp": {
			Name:          "cpp",
			SourceFile:    "main.cpp",
			CompileCmd:    "/usr/bin/g++ -O2 -std=c++17 -o main main.cpp",
			Artifacts:     []string{"main"},
			RunCmd:        "./main",
			TimeLimit:     compiledTime,
			MemoryLimitKB: compiledMem,
		},
		"java": {
			Name:          "java",
			SourceFile:    "Main.java",
			CompileCmd:    "/usr/bin/javac Main.java",
			Artifacts:     []string{"Main.class"},
			RunCmd:        "/usr/bin/java -Xmx256m Main",
			TimeLimit:     compiledTime,
			MemoryLimitKB: compiledMem,
		},
		"go": {
			Name:          "go",
			SourceFile:    "main.go",
			CompileCmd:    "/usr/local/go/bin/go build -o main main.go",
			Artifacts:     []string{"main"},
			RunCmd:        "./main",
			TimeLimit:     compiledTime,
			MemoryLimitKB: compiledMem,
		},
	}
}
