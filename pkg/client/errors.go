package client

import "errors"

var (
	// ErrDaemonNotRunning means the daemon socket does not exist on this
	// device.
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied means the caller is not allowed to open the
	// daemon socket. Run the daemon with non-root access enabled, or use
	// sudo.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is a 404 from the daemon, typically an unknown device
	// name.
	ErrNotFound = errors.New("404 not found")
)
