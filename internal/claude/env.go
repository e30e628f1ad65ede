package claude

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// cleanTmpDir is a dedicated TMPDIR for Claude CLI runs. Editor socket files
// in the shared temp directory crash the CLI when --settings is passed.
var cleanTmpDir = filepath.Join(os.TempDir(), "secrev-claude")

// SetCleanEnv gives cmd the current environment with TMPDIR pointed at a
// clean directory
func SetCleanEnv(cmd *exec.Cmd) {
	os.MkdirAll(cleanTmpDir, 0o755)

	cmd.Env = os.Environ()
	for i, env := range cmd.Env {
		if strings.HasPrefix(env, "TMPDIR=") {
			cmd.Env[i] = "TMPDIR=" + cleanTmpDir
			return
		}
	}
	cmd.Env = append(cmd.Env, "TMPDIR="+cleanTmpDir)
}

// GetCleanTmpDir returns the clean temp directory path for Claude CLI
func GetCleanTmpDir() string {
	return cleanTmpDir
}
