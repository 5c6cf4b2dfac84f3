package main

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xexec/pkg/config/xconf"
	"github.com/omeyang/xexec/pkg/executor/xexec"
)

func TestJobConfig_Validate(t *testing.T) {
	valid := jobConfig{Name: "a", Command: "true", Mode: modeFixedRate, Interval: time.Second}
	tests := []struct {
		name    string
		mutate  func(j *jobConfig)
		wantErr string
	}{
		{"valid", func(*jobConfig) {}, ""},
		{"fixed delay", func(j *jobConfig) { j.Mode = modeFixedDelay }, ""},
		{"cron", func(j *jobConfig) { j.Mode, j.Interval, j.Cron = modeCron, 0, "@hourly" }, ""},
		{"no name", func(j *jobConfig) { j.Name = "" }, "name is empty"},
		{"no command", func(j *jobConfig) { j.Command = "" }, "command is empty"},
		{"no interval", func(j *jobConfig) { j.Interval = 0 }, "positive interval"},
		{"cron without spec", func(j *jobConfig) { j.Mode = modeCron }, "needs a cron spec"},
		{"negative timeout", func(j *jobConfig) { j.Timeout = -time.Second }, "must not be negative"},
		{"unknown mode", func(j *jobConfig) { j.Mode = "" }, "unknown mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := valid
			tt.mutate(&j)
			err := j.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFileConfig_Defaults(t *testing.T) {
	cfg := fileConfig{Jobs: []jobConfig{{Name: "a"}, {Name: "b"}}}
	cfg.applyDefaults()

	assert.Equal(t, min(2, runtime.NumCPU()), cfg.Pool.CoreSize)
	assert.Equal(t, "job", cfg.Pool.Name)
	assert.Equal(t, 1, cfg.Scheduler.Threads)
	assert.Equal(t, "tick", cfg.Scheduler.Name)
	assert.Equal(t, defaultShutdownGrace, cfg.ShutdownGrace)

	explicit := fileConfig{Pool: xexec.PoolConfig{MaxSize: 8}}
	explicit.applyDefaults()
	assert.Zero(t, explicit.Pool.CoreSize)
}

func TestFileConfig_DuplicateJobs(t *testing.T) {
	job := jobConfig{Name: "a", Command: "true", Mode: modeFixedRate, Interval: time.Second}
	cfg := fileConfig{Jobs: []jobConfig{job, job}}
	cfg.applyDefaults()
	assert.ErrorContains(t, cfg.Validate(), `duplicate job name "a"`)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "")
	jsonPath := path[:len(path)-len(".yaml")] + ".json"
	writeRaw(t, jsonPath, `{
  "pool": {"core_size": 1, "queue": "bounded", "queue_capacity": 4, "rejection": "discard"},
  "scheduler": {"threads": 2, "location": "UTC"},
  "shutdown_grace": "2s",
  "jobs": [{"name": "a", "command": "true", "mode": "fixed_delay", "interval": "1m", "initial_delay": "5s"}]
}`)

	src, cfg, err := loadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, xconf.FormatJSON, src.Format())
	assert.Equal(t, 2*time.Second, cfg.ShutdownGrace)
	assert.Equal(t, xexec.RejectDiscard, cfg.Pool.Rejection)
	require.Len(t, cfg.Jobs, 1)
	assert.Equal(t, jobConfig{Name: "a", Command: "true", Mode: modeFixedDelay,
		Interval: time.Minute, InitialDelay: 5 * time.Second}, cfg.Jobs[0])
}

func TestLoadConfig_InvalidIsWrapped(t *testing.T) {
	_, _, err := loadConfig(writeConfig(t, "scheduler:\n  threads: -1\njobs:\n  - {name: a, command: x, mode: cron, cron: '@daily'}\n"))
	assert.ErrorIs(t, err, xconf.ErrInvalid)
	assert.ErrorIs(t, err, xexec.ErrInvalidConfig)
}
