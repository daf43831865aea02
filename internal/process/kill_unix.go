//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// Chrome's renderer and GPU helpers down with the browser. Non-positive
// pids are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort: the rod launcher's Kill runs afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
