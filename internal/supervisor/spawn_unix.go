//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// launchCommand spawns the rendered script through the shell in its own
// process group so the client survives independently of this process.
// Non-Windows support is best-effort only.
func launchCommand(scriptPath string) *exec.Cmd {
	// #nosec G204
	cmd := exec.Command("/bin/sh", scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}
