package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/yangreactor/internal/app"
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/registry"
	"github.com/stretchr/testify/require"
)

// logsEnv, when "true", echoes the captured log output of every harness run.
const logsEnv = "YANGREACTOR_TEST_LOGS"

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Model     *effective.SchemaContext
	Err       error
	App       *app.App
}

// Options adjusts the application configuration of a harness run. Paths,
// LogLevel and LogFormat are set by the harness.
type Options = app.Config

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context and default options.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, Options{}, modules...)
}

// RunIntegrationTestWithContext writes files (relative paths mapped to their
// contents) into a temporary directory and resolves them with the app. The
// core support bundles are used when no modules are given.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options, modules ...registry.Module) *HarnessResult {
	t.Helper()

	// 1. Write all source files into a temporary directory. Relative paths
	//    such as "models/a.hcl" create their subdirectories.
	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	// 2. Configure the app to read the whole directory and log everything.
	opts.Paths = []string{tmpDir}
	opts.LogLevel = "debug"
	opts.LogFormat = "text"
	cfg, err := app.NewConfig(opts)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv(logsEnv) == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(ctx, io.Discard, logBuffer, cfg, modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	model, runErr := testApp.Resolve(ctx)

	if os.Getenv(logsEnv) == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Model:     model,
		Err:       runErr,
		App:       testApp,
	}
}
