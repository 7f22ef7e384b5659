package sandbox

import (
	"fmt"
	"regexp"
)

// SecurityPattern flags a known high-risk construct in submitted source.
// A match is recorded for audit but never blocks execution by itself: the
// isolation boundary is the real control, this is defense in depth.
type SecurityPattern struct {
	// Language restricts the pattern to one language profile; empty
	// applies to every language.
	Language    string
	Pattern     *regexp.Regexp
	Description string
	Severity    string
}

// DefaultSecurityPatterns returns the built-in pattern table. Deployments
// can extend or replace it through configuration.
func DefaultSecurityPatterns() []SecurityPattern {
	return []SecurityPattern{
		{Language: "python", Pattern: regexp.MustCompile(`\bimport\s+(os|subprocess|socket|shutil)\b`), Description: "process/file/network module import", Severity: "high"},
		{Language: "python", Pattern: regexp.MustCompile(`\b(eval|exec|__import__)\s*\(`), Description: "dynamic code execution", Severity: "high"},
		{Language: "python", Pattern: regexp.MustCompile(`\bopen\s*\(`), Description: "file access", Severity: "medium"},
		{Language: "javascript", Pattern: regexp.MustCompile(`\brequire\s*\(\s*['"](child_process|fs|net|http|dgram)['"]`), Description: "process/file/network module import", Severity: "high"},
		{Language: "javascript", Pattern: regexp.MustCompile(`\beval\s*\(`), Description: "dynamic code execution", Severity: "high"},
		{Language: "java", Pattern: regexp.MustCompile(`\bRuntime\s*\.\s*getRuntime\s*\(`), Description: "process spawn", Severity: "high"},
		{Language: "java", Pattern: regexp.MustCompile(`\bjava\.net\.|java\.io\.File\b`), Description: "network/file API", Severity: "medium"},
		{Language: "cpp", Pattern: regexp.MustCompile(`\b(system|popen|fork|execve?)\s*\(`), Description: "process spawn / system call", Severity: "high"},
		{Language: "go", Pattern: regexp.MustCompile(`"os/exec"|"net"|"net/http"|"syscall"`), Description: "process/network/syscall package import", Severity: "high"},
		{Pattern: regexp.MustCompile(`/etc/passwd|/etc/shadow`), Description: "sensitive path reference", Severity: "high"},
	}
}

// ScanSource applies the pattern table to a submission and returns the
// audit flags for every match.
func ScanSource(source, language string, patterns []SecurityPattern) []string {
	var flags []string
	for _, p := range patterns {
		if p.Language != "" && p.Language != language {
			continue
		}
		if p.Pattern.MatchString(source) {
			flags = append(flags, fmt.Sprintf("%s: %s", p.Severity, p.Description))
		}
	}
	return flags
}
