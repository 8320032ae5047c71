package setupwizard

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/config"
)

// Diff returns a unified diff of the redacted YAML of before and after. When
// hadBefore is false the diff is against an empty file. It is empty when
// nothing changed.
func Diff(path string, before, after config.Config, hadBefore bool) (string, error) {
	var a string
	if hadBefore {
		data, err := config.Marshal(before.Redacted())
		if err != nil {
			return "", err
		}
		a = string(data)
	}

	b, err := config.Marshal(after.Redacted())
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(string(b)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}

	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("setup: diff: %w", err)
	}

	return out, nil
}

func colorDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			lines[i] = styles.DiffHdrStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = styles.DiffAddStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = styles.DiffDelStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
