package registry

import (
	"fmt"
	"os"
)

const (
	modeOwnerExec  = 0o100
	modeGroupWrite = 0o020
	modeOtherWrite = 0o002
)

// checkPosixPermissions enforces the regular-file, executable-bit, and
// no-group/other-write rules from §4.8.
func checkPosixPermissions(resolved string) error {
	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeExecutable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q is not a regular file", ErrUnsafeExecutable, resolved)
	}
	perm := info.Mode().Perm()
	if perm&modeOwnerExec == 0 {
		return fmt.Errorf("%w: %q is not executable", ErrUnsafeExecutable, resolved)
	}
	if perm&modeGroupWrite != 0 || perm&modeOtherWrite != 0 {
		return fmt.Errorf("%w: %q is group- or other-writable", ErrUnsafeExecutable, resolved)
	}
	return nil
}
