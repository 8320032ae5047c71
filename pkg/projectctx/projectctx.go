// Package projectctx gathers the system and project facts that are injected
// into the system prompt so the model knows where its commands will run.
package projectctx

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// Project kinds reported by DetectProject, in detection priority order.
const (
	KindNode    = "Node.js project detected"
	KindPython  = "Python project detected"
	KindRust    = "Rust project detected"
	KindGo      = "Go project detected"
	KindGit     = "Git repository detected"
	KindGeneral = "General directory"
)

const unknown = "unknown"

// Info describes the environment commands run in.
type Info struct {
	Dir   string
	OS    string
	Shell string
	User  string
}

// Context holds the assembled prompt context.
type Context struct {
	Info    Info
	Project string // One of the Kind* constants.
	Details string // Structural facts about the project, may be empty.
}

// Gather collects Info for the current process. Lookups that fail fall back
// to "unknown".
func Gather() Info {
	info := Info{
		Dir:   unknown,
		OS:    osName(),
		Shell: os.Getenv("SHELL"),
		User:  os.Getenv("USER"),
	}

	if wd, err := os.Getwd(); err == nil {
		info.Dir = wd
	}
	if info.Shell == "" {
		info.Shell = unknown
	}
	if info.User == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			info.User = u.Username
		} else {
			info.User = unknown
		}
	}

	return info
}

// Load gathers Info and inspects its directory.
func Load() Context {
	info := Gather()

	return Context{
		Info:    info,
		Project: DetectProject(info.Dir),
		Details: generateIndex(info.Dir),
	}
}

// DetectProject classifies dir by its marker files. A missing or unreadable
// directory is a general directory.
func DetectProject(dir string) string {
	has := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}

	switch {
	case has("package.json"):
		return KindNode
	case has("requirements.txt") || has("pyproject.toml"):
		return KindPython
	case has("Cargo.toml"):
		return KindRust
	case has("go.mod"):
		return KindGo
	case has(".git"):
		return KindGit
	default:
		return KindGeneral
	}
}

func osName() string {
	switch runtime.GOOS {
	case "darwin":
		return "Darwin"
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	default:
		return strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
	}
}
