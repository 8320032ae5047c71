package projectctx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	maxTreeDepth = 3
	maxListed    = 12
)

// generateIndex produces a short structural overview of the project in dir.
// Every source is best-effort; an unrecognised directory yields "".
func generateIndex(dir string) string {
	var b strings.Builder

	if branch := readGitBranch(dir); branch != "" {
		fmt.Fprintf(&b, "Git branch: %s\n", branch)
	}

	if mod := readModule(dir); mod != "" {
		fmt.Fprintf(&b, "Go module: %s\n", mod)
		writeList(&b, "Entry points", findEntryPoints(dir))
		writeList(&b, "Packages", findPackages(dir))
	}

	if name, scripts := readPackageJSON(dir); name != "" || len(scripts) > 0 {
		if name != "" {
			fmt.Fprintf(&b, "npm package: %s\n", name)
		}
		writeList(&b, "npm scripts", scripts)
	}

	if name := readManifest(filepath.Join(dir, "pyproject.toml")).Project.Name; name != "" {
		fmt.Fprintf(&b, "Python project: %s\n", name)
	}

	if name := readManifest(filepath.Join(dir, "Cargo.toml")).Package.Name; name != "" {
		fmt.Fprintf(&b, "Rust crate: %s\n", name)
	}

	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}

	more := 0
	if len(items) > maxListed {
		more = len(items) - maxListed
		items = items[:maxListed]
	}

	fmt.Fprintf(b, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	if more > 0 {
		fmt.Fprintf(b, "- ... and %d more\n", more)
	}
}

// readModule extracts the module path from go.mod.
func readModule(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod")) //nolint:gosec // root is the working directory
	if err != nil {
		return ""
	}

	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if mod, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(mod)
		}
	}

	return ""
}

// readGitBranch returns the checked-out branch from .git/HEAD, or "" for a
// detached head or a non-repository.
func readGitBranch(root string) string {
	data, err := os.ReadFile(filepath.Join(root, ".git", "HEAD")) //nolint:gosec // root is the working directory
	if err != nil {
		return ""
	}

	ref, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "ref: refs/heads/")
	if !ok {
		return ""
	}

	return ref
}

// readPackageJSON returns the package name and sorted script names.
func readPackageJSON(root string) (string, []string) {
	data, err := os.ReadFile(filepath.Join(root, "package.json")) //nolint:gosec // root is the working directory
	if err != nil {
		return "", nil
	}

	var pkg struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", nil
	}

	scripts := make([]string, 0, len(pkg.Scripts))
	for s := range pkg.Scripts {
		scripts = append(scripts, s)
	}
	sort.Strings(scripts)

	return pkg.Name, scripts
}

// manifest holds the name fields of pyproject.toml ([project]) and
// Cargo.toml ([package]).
type manifest struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// readManifest decodes the TOML manifest at path; a missing or malformed
// file yields the zero manifest.
func readManifest(path string) manifest {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return manifest{}
	}

	return m
}

// findEntryPoints looks for cmd/*/main.go files.
func findEntryPoints(root string) []string {
	matches, err := filepath.Glob(filepath.Join(root, "cmd", "*", "main.go"))
	if err != nil {
		return nil
	}

	var entries []string
	for _, m := range matches {
		rel, err := filepath.Rel(root, m)
		if err != nil {
			continue
		}

		entries = append(entries, filepath.ToSlash(rel))
	}

	sort.Strings(entries)

	return entries
}

// findPackages lists pkg/ and internal/ subdirectories that contain .go files.
func findPackages(root string) []string {
	var pkgs []string

	for _, top := range []string{"pkg", "internal"} {
		base := filepath.Join(root, top)

		info, err := os.Stat(base)
		if err != nil || !info.IsDir() {
			continue
		}

		_ = filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // skip inaccessible paths
			}
			if !d.IsDir() {
				return nil
			}

			rel, relErr := filepath.Rel(base, path)
			if relErr != nil || rel == "." {
				return nil
			}

			if strings.Count(rel, string(filepath.Separator))+1 > maxTreeDepth {
				return filepath.SkipDir
			}

			if goFiles, _ := filepath.Glob(filepath.Join(path, "*.go")); len(goFiles) > 0 {
				pkgs = append(pkgs, top+"/"+filepath.ToSlash(rel))
			}

			return nil
		})
	}

	sort.Strings(pkgs)

	return pkgs
}
