package main

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/omeyang/xexec/pkg/config/xconf"
	"github.com/omeyang/xexec/pkg/executor/xexec"
	"github.com/omeyang/xexec/pkg/observability/xlog"
)

// 任务调度方式
const (
	modeFixedRate  = "fixed_rate"
	modeFixedDelay = "fixed_delay"
	modeCron       = "cron"
)

const defaultShutdownGrace = 10 * time.Second

var errNoJobs = errors.New("xexecctl: no jobs configured")

// fileConfig 是 --config 指向的配置文件。
//
//	log:
//	  level: info
//	  format: json
//	  file: /var/log/xexecctl.log
//	pool:
//	  core_size: 2
//	scheduler:
//	  threads: 1
//	  location: UTC
//	jobs:
//	  - name: heartbeat
//	    command: "curl -fsS http://localhost:8080/healthz"
//	    mode: fixed_rate
//	    interval: 30s
//	  - name: cleanup
//	    command: "find /tmp/app -mtime +1 -delete"
//	    mode: cron
//	    cron: "0 30 3 * * *"
//	    timeout: 10m
type fileConfig struct {
	Log           logConfig             `koanf:"log"`
	Pool          xexec.PoolConfig      `koanf:"pool"`
	Scheduler     xexec.SchedulerConfig `koanf:"scheduler"`
	ShutdownGrace time.Duration         `koanf:"shutdown_grace"`
	Jobs          []jobConfig           `koanf:"jobs"`
}

type logConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

type jobConfig struct {
	Name         string        `koanf:"name"`
	Command      string        `koanf:"command"`
	Mode         string        `koanf:"mode"`
	Interval     time.Duration `koanf:"interval"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	Cron         string        `koanf:"cron"`
	Timeout      time.Duration `koanf:"timeout"`
}

func (j jobConfig) Validate() error {
	if j.Name == "" {
		return errors.New("job name is empty")
	}
	if j.Command == "" {
		return fmt.Errorf("job %q: command is empty", j.Name)
	}
	if j.InitialDelay < 0 || j.Timeout < 0 {
		return fmt.Errorf("job %q: initial_delay and timeout must not be negative", j.Name)
	}
	switch j.Mode {
	case modeFixedRate, modeFixedDelay:
		if j.Interval <= 0 {
			return fmt.Errorf("job %q: %s needs a positive interval", j.Name, j.Mode)
		}
	case modeCron:
		if j.Cron == "" {
			return fmt.Errorf("job %q: cron mode needs a cron spec", j.Name)
		}
	default:
		return fmt.Errorf("job %q: unknown mode %q", j.Name, j.Mode)
	}
	return nil
}

// schedule 返回用于展示的调度描述。
func (j jobConfig) schedule() string {
	if j.Mode == modeCron {
		return j.Cron
	}
	return "every " + j.Interval.String()
}

func (c *fileConfig) applyDefaults() {
	if c.Pool.CoreSize == 0 && c.Pool.MaxSize == 0 {
		c.Pool.CoreSize = min(max(len(c.Jobs), 1), runtime.NumCPU())
	}
	if c.Pool.Name == "" {
		c.Pool.Name = "job"
	}
	if c.Scheduler.Threads == 0 {
		c.Scheduler.Threads = 1
	}
	if c.Scheduler.Name == "" {
		c.Scheduler.Name = "tick"
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = defaultShutdownGrace
	}
}

func (c fileConfig) Validate() error {
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if err := (xexec.Config{Pool: c.Pool, Scheduler: c.Scheduler}).Validate(); err != nil {
		return err
	}
	if len(c.Jobs) == 0 {
		return errNoJobs
	}
	seen := make(map[string]struct{}, len(c.Jobs))
	for _, j := range c.Jobs {
		if err := j.Validate(); err != nil {
			return err
		}
		if _, dup := seen[j.Name]; dup {
			return fmt.Errorf("duplicate job name %q", j.Name)
		}
		seen[j.Name] = struct{}{}
	}
	return nil
}

// loadConfig 读取、补全并校验配置。
func loadConfig(path string) (xconf.Config, fileConfig, error) {
	src, err := xconf.New(path)
	if err != nil {
		return nil, fileConfig{}, err
	}
	var cfg fileConfig
	if err := src.Unmarshal("", &cfg); err != nil {
		return nil, fileConfig{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fileConfig{}, fmt.Errorf("%w: %w", xconf.ErrInvalid, err)
	}
	return src, cfg, nil
}
