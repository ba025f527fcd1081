package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryCreatable verifies that a directory either exists with
// write access or can be created under its nearest existing ancestor.
func CheckDirectoryCreatable(name, path string) Result {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
		}
		if accessErr := unix.Access(path, unix.W_OK|unix.X_OK); accessErr != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, accessErr)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
	}
	if !os.IsNotExist(err) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	ancestor := nearestExistingDir(filepath.Dir(path))
	if ancestor == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
	}
	if accessErr := unix.Access(ancestor, unix.W_OK|unix.X_OK); accessErr != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, accessErr)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckFileReadable verifies that a regular file exists with read access.
func CheckFileReadable(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the binaries every run shells out to. Both the
// run command and the CLI status command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.PipelineRequirements(
		cfg.FFmpegBinary(),
		cfg.FFprobeBinary(),
		cfg.Generator.PythonBinary,
	))
}

// CheckGeneratorInstall reports whether the talking-head generator install
// directory is usable.
func CheckGeneratorInstall(cfg *config.Config) Result {
	status := deps.CheckGenerator(cfg.Generator.Dir, cfg.Generator.PythonBinary)
	detail := status.Command
	if !status.Available {
		detail = status.Detail
	}
	return Result{Name: status.Name, Passed: status.Available, Detail: detail}
}

func nearestExistingDir(path string) string {
	for path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return ""
		}
		path = parent
	}
	return ""
}
