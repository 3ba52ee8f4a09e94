// Package sandbox runs student submissions inside isolated Docker containers
// and captures their output under strict resource and time limits.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AllowedBinaryPaths are the directories the container runtime binary is
// expected to live in.
var AllowedBinaryPaths = []string{
	"/usr/bin",
	"/usr/local/bin",
	"/usr/sbin",
	"/usr/local/sbin",
	"/bin",
}

// SecurityChecker verifies the container runtime binary and sanitizes the
// environment handed to it.
type SecurityChecker struct {
	allowedPaths []string
}

// NewSecurityChecker creates a SecurityChecker with default allowed paths.
func NewSecurityChecker() *SecurityChecker {
	return &SecurityChecker{allowedPaths: AllowedBinaryPaths}
}

// ResolveBinary finds the named binary (normally "docker") in an allowed
// directory.
func (sc *SecurityChecker) ResolveBinary(name string) (string, error) {
	for _, dir := range sc.allowedPaths {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("binary %q not found in allowed paths: %v", name, sc.allowedPaths)
}

// VerifyBinary checks that a resolved binary meets security requirements:
//   - Must be in an allowed directory
//   - Must not be world-writable
func (sc *SecurityChecker) VerifyBinary(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(absPath)
	allowed := false
	for _, allowedDir := range sc.allowedPaths {
		if dir == allowedDir {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("binary %q is not in an allowed directory", absPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat %q: %w", absPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory", absPath)
	}

	perm := info.Mode().Perm()
	if perm&0002 != 0 {
		return fmt.Errorf("binary %q is world-writable (mode=%s)", absPath, info.Mode())
	}

	return nil
}

// SanitizeEnv builds a minimal subprocess environment for invoking the
// container runtime. Only PATH, HOME, and DOCKER_HOST are carried through —
// student code never sees the host environment, since it runs inside the
// container with the environment its image provides.
func (sc *SecurityChecker) SanitizeEnv() []string {
	safeVars := map[string]bool{
		"PATH":        true,
		"HOME":        true,
		"DOCKER_HOST": true,
	}

	var env []string
	for _, e := range os.Environ() {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 && safeVars[parts[0]] {
			env = append(env, e)
		}
	}

	hasPath := false
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			hasPath = true
			break
		}
	}
	if !hasPath {
		env = append(env, "PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin")
	}

	return env
}

// dockerUID is the uid the container process is forced to run as, regardless
// of the image's own default user, so a container escape cannot land as root.
const dockerUID = "65534:65534"
