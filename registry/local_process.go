package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/petal-labs/iris/core"
)

// ErrUnsafeExecutable is returned when a local-process fetcher's resolved
// executable fails the validation rules in §4.8.
var ErrUnsafeExecutable = errors.New("local process executable failed safety validation")

// LocalProcessSpec describes a fixed, whitelisted local-process invocation
// for listing models from a local provider (e.g. `ollama list`). Args are
// fixed at construction time; no caller input is ever appended to them.
type LocalProcessSpec struct {
	Command string
	Args    []string
	Parse   func(stdout []byte) ([]core.ModelInfo, error)
}

// NewLocalProcessFetcher builds a Fetcher that validates spec.Command per
// §4.8 before every invocation, then runs it with no shell interpretation.
// On validation failure or a non-zero exit, it returns an error so the
// caller (Registry.List) falls through to cached snapshot data — it never
// panics and never partially executes.
func NewLocalProcessFetcher(spec LocalProcessSpec, fallback Fetcher) Fetcher {
	return func(ctx context.Context) ([]core.ModelInfo, error) {
		resolved, err := ValidateLocalExecutable(spec.Command)
		if err != nil {
			if fallback != nil {
				return fallback(ctx)
			}
			return nil, err
		}

		cmd := exec.CommandContext(ctx, resolved, spec.Args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if fallback != nil {
				return fallback(ctx)
			}
			return nil, fmt.Errorf("local process %q exited: %w", spec.Command, err)
		}

		models, err := spec.Parse(stdout.Bytes())
		if err != nil {
			if fallback != nil {
				return fallback(ctx)
			}
			return nil, err
		}
		return models, nil
	}
}

// ValidateLocalExecutable resolves command via a PATH lookup and enforces
// the §4.8 rules: the resolved path must be absolute, must name a regular
// file, must have the owner-executable bit set, and must not be writable by
// group or other. Returns the resolved absolute path on success.
func ValidateLocalExecutable(command string) (string, error) {
	resolved, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsafeExecutable, err)
	}
	if !filepath.IsAbs(resolved) {
		return "", fmt.Errorf("%w: resolved path %q is not absolute", ErrUnsafeExecutable, resolved)
	}

	if err := checkExecutablePermissions(resolved); err != nil {
		return "", err
	}
	return resolved, nil
}

// checkExecutablePermissions is split out since it relies on os.FileMode
// bits that are only meaningful on POSIX platforms; Windows builds treat
// any successfully PATH-resolved file as valid.
func checkExecutablePermissions(resolved string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return checkPosixPermissions(resolved)
}
