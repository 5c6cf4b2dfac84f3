package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreTopFunction("os/signal.loop"),
	)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"xexecctl"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	return records
}

func TestCheck_ListsJobs(t *testing.T) {
	path := writeConfig(t, `
jobs:
  - name: heartbeat
    command: "true"
    mode: fixed_rate
    interval: 30s
  - name: nightly
    command: "echo cleanup"
    mode: cron
    cron: "0 30 3 * * *"
    timeout: 10m
`)
	code, out, errOut := runCLI(t, "check", "--config", path)
	require.Equal(t, exitOK, code, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SCHEDULE")
	assert.Contains(t, lines[1], "heartbeat")
	assert.Contains(t, lines[1], "every 30s")
	assert.Contains(t, lines[2], "0 30 3 * * *")
	assert.Contains(t, lines[2], "10m0s")
}

func TestCheck_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		wantMsg string
	}{
		{"missing config flag", func(*testing.T) []string { return []string{"check"} }, "--config is required"},
		{"missing file", func(t *testing.T) []string {
			return []string{"check", "--config", filepath.Join(t.TempDir(), "none.yaml")}
		}, "failed to load config"},
		{"unsupported format", func(*testing.T) []string { return []string{"check", "-c", "jobs.toml"} }, "unsupported"},
		{"no jobs", func(t *testing.T) []string {
			return []string{"check", "-c", writeConfig(t, "log:\n  level: info\n")}
		}, "no jobs"},
		{"bad mode", func(t *testing.T) []string {
			return []string{"check", "-c", writeConfig(t, "jobs:\n  - name: a\n    command: x\n    mode: hourly\n")}
		}, `unknown mode "hourly"`},
		{"bad level", func(t *testing.T) []string {
			return []string{"check", "-c", writeConfig(t,
				"log:\n  level: loud\njobs:\n  - {name: a, command: x, mode: fixed_rate, interval: 1s}\n")}
		}, "unknown level"},
		{"unknown flag", func(*testing.T) []string { return []string{"check", "--nope"} }, "nope"},
		{"negative duration", func(*testing.T) []string { return []string{"run", "-c", "x.yaml", "--duration", "-1s"} },
			"must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args(t)...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, errOut, tt.wantMsg)
		})
	}
}

func TestRun_FailingJobKeepsRunning(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "xexecctl.log")
	path := writeConfig(t, `
log:
  level: debug
  format: json
  file: `+logFile+`
pool:
  core_size: 2
jobs:
  - name: flaky
    command: "echo failing >&2; exit 3"
    mode: fixed_rate
    interval: 20ms
  - name: steady
    command: "true"
    mode: fixed_delay
    interval: 20ms
`)
	code, _, errOut := runCLI(t, "run", "--config", path, "--duration", "300ms")
	require.Equal(t, exitOK, code, errOut)

	records := readRecords(t, logFile)
	runIDs := map[any]struct{}{}
	failures := 0
	var stopped map[string]any
	for _, rec := range records {
		runIDs[rec["run_id"]] = struct{}{}
		msg, _ := rec["msg"].(string)
		if rec["level"] == "ERROR" {
			assert.True(t, strings.HasSuffix(msg, "ended abnormally with an exception"), msg)
			assert.Contains(t, rec["error"], "job flaky")
			assert.Contains(t, rec["error"], "failing")
			failures++
		}
		if msg == "xexecctl stopped" {
			stopped = rec
		}
	}
	assert.GreaterOrEqual(t, failures, 2)
	assert.Len(t, runIDs, 1)
	require.NotNil(t, stopped)
	assert.Contains(t, stopped["reason"], "run duration elapsed")
}

func TestRun_InvalidCronIsRuntimeError(t *testing.T) {
	path := writeConfig(t, `
log:
  file: `+filepath.Join(t.TempDir(), "x.log")+`
jobs:
  - name: broken
    command: "true"
    mode: cron
    cron: "every day"
`)
	code, _, errOut := runCLI(t, "run", "-c", path, "-d", "50ms")
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, errOut, "schedule job broken")
}

func writeRaw(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}
