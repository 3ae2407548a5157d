package fs

import (
	"bytes"
	"os/exec"
	"strings"

	"photosort/internal/photosort"
)

// UnknownDriveUUID is reported when the device behind a path has no UUID,
// e.g. network shares, or the lookup tools are missing.
const UnknownDriveUUID = "unknown"

// DriveUUID resolves the mount source of root with findmnt and asks lsblk
// for its filesystem UUID.
func (m *OSFilesystemManager) DriveUUID(root *photosort.Path) string {
	device, err := runTool("findmnt", "-n", "-o", "SOURCE", "-T", root.String())
	if err != nil || device == "" {
		return UnknownDriveUUID
	}
	uuid, err := runTool("lsblk", "-n", "-o", "UUID", device)
	if err != nil || uuid == "" {
		return UnknownDriveUUID
	}
	return uuid
}

func runTool(name string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}
