package xconf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloads struct {
	mu   sync.Mutex
	errs []error
}

func (r *reloads) record(_ Config, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reloads) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "app.yaml", "log:\n  level: info\n")
	cfg, err := New(path)
	require.NoError(t, err)

	var got reloads
	w, err := Watch(cfg, got.record, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	require.Eventually(t, func() bool { return cfg.String("log.level") == "error" }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return got.count() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatch_AtomicRename(t *testing.T) {
	path := writeFile(t, "app.yaml", "log:\n  level: info\n")
	cfg, err := New(path)
	require.NoError(t, err)

	w, err := Watch(cfg, nil, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Stop()) }()

	tmp := filepath.Join(filepath.Dir(path), "app.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("log:\n  level: debug\n"), 0o600))
	require.NoError(t, os.Rename(tmp, path))
	require.Eventually(t, func() bool { return cfg.String("log.level") == "debug" }, 5*time.Second, 10*time.Millisecond)
}

func TestWatch_StopIsFinal(t *testing.T) {
	path := writeFile(t, "app.yaml", "a: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)

	var got reloads
	w, err := Watch(cfg, got.record, WithDebounce(time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o600))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, got.count())
}

func TestWatch_RequiresFile(t *testing.T) {
	cfg, err := NewFromBytes([]byte("a: 1"), FormatYAML)
	require.NoError(t, err)
	_, err = Watch(cfg, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
	_, err = Watch(nil, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}
