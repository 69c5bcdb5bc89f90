package smaps

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/process"
)

var snapshotRun int

// Snapshot copies /proc/<pid>/smaps into dir and returns the path of the
// copy. Parsing a copy instead of the live file keeps the mapping table
// from shifting underneath the parser, and the copy stays around for
// post-mortem analysis. Each call gets a fresh file name so repeated
// snapshots of the same process do not clobber each other.
func Snapshot(dir string, pid int32) (string, error) {
	ok, err := process.PidExists(pid)
	if err != nil {
		return "", fmt.Errorf("checking pid %d: %w", pid, err)
	}
	if !ok {
		return "", fmt.Errorf("process %d is not running", pid)
	}

	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/smaps", pid))
	if err != nil {
		return "", fmt.Errorf("reading smaps for pid %d: %w", pid, err)
	}

	dst := filepath.Join(dir, fmt.Sprintf("smaps-copy-%d-%d.txt", pid, snapshotRun))
	snapshotRun++

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("writing smaps copy: %w", err)
	}

	return dst, nil
}
