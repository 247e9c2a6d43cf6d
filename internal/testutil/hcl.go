package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/specialistvlad/yangreactor/internal/registry"
)

// RunHCLModuleTest resolves a single module written in HCL. body is the
// content of the module block after its namespace and prefix, which are
// derived from name.
func RunHCLModuleTest(t *testing.T, name, body string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	src := fmt.Sprintf("module %q {\n  namespace = \"urn:%s\"\n  prefix    = %q\n\n%s\n}\n", name, name, name, Unindent(body))
	return RunIntegrationTest(t, map[string]string{name + ".hcl": src}, modules...)
}

// Unindent removes common leading whitespace from a multi-line string,
// allowing for readable, indented source snippets in Go tests.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")

	// Remove leading/trailing empty lines that are common with multi-line literals
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.Join(lines, "\n")
	}

	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
