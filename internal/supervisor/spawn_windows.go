//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// Windows creation flags
const (
	CREATE_NEW_PROCESS_GROUP = 0x00000200
	DETACHED_PROCESS         = 0x00000008
)

// launchCommand runs the rendered .bat through cmd. DETACHED_PROCESS keeps
// the client off the parent's console so it survives the supervisor.
func launchCommand(scriptPath string) *exec.Cmd {
	// #nosec G204
	cmd := exec.Command("cmd", "/c", scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: CREATE_NEW_PROCESS_GROUP | DETACHED_PROCESS,
	}
	return cmd
}
