package toolexec

import "errors"

// toolNotFoundError signals that the compiler binary could not be located.
// The linter stops scheduling runs until it is reconfigured.
type toolNotFoundError struct {
	exe string
	err error
}

func (e *toolNotFoundError) Error() string {
	if e.exe == "" {
		return "compiler executable not configured"
	}
	return "compiler executable not found: " + e.exe
}

func (e *toolNotFoundError) Unwrap() error { return e.err }

// ErrToolNotFound constructs a tool-not-found error for exe.
func ErrToolNotFound(exe string, cause error) error {
	return &toolNotFoundError{exe: exe, err: cause}
}

// IsToolNotFound reports whether err indicates a missing compiler binary.
func IsToolNotFound(err error) bool {
	var e *toolNotFoundError
	return errors.As(err, &e)
}

// spawnError is any other failure to start or wait for the compiler.
type spawnError struct {
	exe string
	err error
}

func (e *spawnError) Error() string { return "spawn " + e.exe + ": " + e.err.Error() }

func (e *spawnError) Unwrap() error { return e.err }

// ErrSpawn constructs a spawn error.
func ErrSpawn(exe string, cause error) error { return &spawnError{exe: exe, err: cause} }

// IsSpawnError reports whether err is a non-fatal spawn failure.
func IsSpawnError(err error) bool {
	var e *spawnError
	return errors.As(err, &e)
}
