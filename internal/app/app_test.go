package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleA = `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  container "top" {
    leaf "name" {
      type = "string"
    }
  }
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
	t.Helper()
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return NewApp(context.Background(), out, io.Discard, c), out
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{Paths: []string{"."}}},
		{name: "no paths", cfg: Config{}, wantErr: "at least one source path"},
		{name: "bad format", cfg: Config{Paths: []string{"."}, Format: "xml"}, wantErr: "invalid format"},
		{name: "bad log format", cfg: Config{Paths: []string{"."}, LogFormat: "xml"}, wantErr: "invalid log-format"},
		{name: "bad log level", cfg: Config{Paths: []string{"."}, LogLevel: "loud"}, wantErr: "invalid log-level"},
		{name: "bad feature", cfg: Config{Paths: []string{"."}, Features: []string{"fancy"}}, wantErr: "expected module:feature"},
		{name: "bad port", cfg: Config{Paths: []string{"."}, HealthcheckPort: 70000}, wantErr: "invalid healthcheck-port"},
		{name: "upper case", cfg: Config{Paths: []string{"."}, Format: "JSON", LogLevel: "DEBUG"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, []string{FormatText, FormatJSON}, got.Format)
			assert.Contains(t, []string{"debug", "info"}, got.LogLevel)
			assert.Equal(t, "text", got.LogFormat)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.yaml": `
paths: [models, extra.hcl]
features: ["a:fancy", "b:"]
semantic_versioning: true
format: json
healthcheck_port: 8080
`,
		"unknown.yaml": "colour: blue\n",
	})

	cfg, err := LoadConfigFile(filepath.Join(dir, "good.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Paths:                    []string{"models", "extra.hcl"},
		Features:                 []string{"a:fancy", "b:"},
		EnableSemanticVersioning: true,
		Format:                   "json",
		HealthcheckPort:          8080,
	}, cfg)

	_, err = LoadConfigFile(filepath.Join(dir, "unknown.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	_, err = LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestNewApp_InvalidFeaturesPanics(t *testing.T) {
	cfg := &Config{Paths: []string{"."}, Features: []string{"nomodule"}}
	assert.Panics(t, func() { NewApp(context.Background(), io.Discard, io.Discard, cfg) })
}

func TestRun_Text(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.hcl": moduleA})
	a, out := newTestApp(t, Config{Paths: []string{dir}})

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), `module "a"`)
	assert.Contains(t, out.String(), `leaf "name"`)
	assert.True(t, a.Ready())
	assert.Len(t, a.Files(), 1)
}

func TestRun_JSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.hcl": moduleA})
	a, out := newTestApp(t, Config{Paths: []string{dir}, Format: FormatJSON})

	require.NoError(t, a.Run(context.Background()))
	var mods []struct {
		Keyword  string `json:"keyword"`
		Argument string `json:"argument"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &mods))
	require.Len(t, mods, 1)
	assert.Equal(t, "module", mods[0].Keyword)
	assert.Equal(t, "a", mods[0].Argument)
}

func TestRun_ResolutionErrorsRenderWithSnippets(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.hcl": `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  grouping "dup" {}
  grouping "dup" {}
}
`})
	a, out := newTestApp(t, Config{Paths: []string{dir}})

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.False(t, a.Ready())

	var diag bytes.Buffer
	require.NoError(t, a.WriteDiagnostics(&diag, err, 0, false))
	assert.Contains(t, diag.String(), "duplicate definition")
	assert.Contains(t, diag.String(), `grouping "dup" {}`)
	assert.Contains(t, diag.String(), "a.hcl:6")
}

func TestRun_LoadErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.hcl": "module \"a\" {\n"})
	a, _ := newTestApp(t, Config{Paths: []string{dir}})

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load sources")

	var diag bytes.Buffer
	require.NoError(t, a.WriteDiagnostics(&diag, err, 0, false))
	assert.Contains(t, diag.String(), "Error: ")

	diag.Reset()
	require.NoError(t, a.WriteDiagnostics(&diag, context.Canceled, 0, false))
	assert.Equal(t, "context canceled\n", diag.String())
}

func TestHealthMux(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.hcl": moduleA})
	a, _ := newTestApp(t, Config{Paths: []string{dir}})
	srv := httptest.NewServer(a.healthMux())
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, _ := get("/health")
	assert.Equal(t, http.StatusOK, code)
	code, _ = get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	require.NoError(t, a.Run(context.Background()))
	code, _ = get("/ready")
	assert.Equal(t, http.StatusOK, code)

	code, body := get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `yangreactor_runs_total{result="success"} 1`)
}

func TestWatch_ResolvesAgainOnChange(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.hcl": moduleA})
	a, _ := newTestApp(t, Config{Paths: []string{dir}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan WatchResult, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, 20*time.Millisecond, func(r WatchResult) { results <- r })
	}()

	first := <-results
	require.NoError(t, first.Err)
	assert.Empty(t, first.Changed)
	_, err := first.Model.FindNodeByString("/a:top/name")
	require.NoError(t, err)

	updated := strings.Replace(moduleA, `leaf "name"`, `leaf "renamed"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(updated), 0644))

	// A write can arrive as several events; wait for the settled result.
	var second WatchResult
	timeout := time.After(5 * time.Second)
	for second.Model == nil {
		select {
		case second = <-results:
			if second.Err != nil {
				second.Model = nil
			} else if _, err := second.Model.FindNodeByString("/a:top/renamed"); err != nil {
				second.Model = nil
			}
		case <-timeout:
			t.Fatal("no resolution after the source changed")
		}
	}
	assert.Contains(t, second.Changed, filepath.Join(dir, "a.hcl"))
	assert.NotEqual(t, first.Model.Fingerprint(), second.Model.Fingerprint())

	cancel()
	require.NoError(t, <-done)
}
