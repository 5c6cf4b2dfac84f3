package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 已加载的配置。
type Config interface {
	// Unmarshal 把 path 下的配置解码到 target，path 为空时解码整个配置。
	Unmarshal(path string, target any) error

	// String 返回 path 下的字符串值，不存在时为空。
	String(path string) string

	// Reload 重新读取配置文件。失败时保留当前配置。
	Reload() error

	// Path 返回配置文件路径，从字节加载时为空。
	Path() string

	// Format 返回配置格式。
	Format() Format
}

// Validator 由需要在加载后检查自身的配置类型实现。
type Validator interface {
	Validate() error
}

type fileConfig struct {
	k      atomic.Pointer[koanf.Koanf]
	path   string
	format Format
	opts   options

	// reloadMu 串行化 Reload，避免并发重载时旧内容覆盖新内容。
	reloadMu sync.Mutex
}

// New 从文件加载配置，格式由扩展名决定。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	c := &fileConfig{path: path, format: format, opts: newOptions(opts)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从内存数据加载配置。空数据得到空配置。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	c := &fileConfig{format: format, opts: newOptions(opts)}
	k, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

// FormatOf 根据扩展名判断格式。
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

func (c *fileConfig) parse(data []byte) (*koanf.Koanf, error) {
	var parser koanf.Parser
	switch c.format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.format)
	}

	k := koanf.New(c.opts.delim)
	if len(data) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}

func (c *fileConfig) Unmarshal(path string, target any) error {
	err := c.k.Load().UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.tag})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnmarshalFailed, path, err)
	}
	return nil
}

func (c *fileConfig) String(path string) string {
	return c.k.Load().String(path)
}

func (c *fileConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := c.parse(data)
	if err != nil {
		return err
	}
	c.k.Store(k)
	return nil
}

func (c *fileConfig) Path() string { return c.path }

func (c *fileConfig) Format() Format { return c.format }

// Load 把 path 下的配置解码为 T；T 实现 [Validator] 时随后校验。
func Load[T any](c Config, path string) (T, error) {
	var v T
	if err := c.Unmarshal(path, &v); err != nil {
		return v, err
	}
	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return v, fmt.Errorf("%w: %q: %w", ErrInvalid, path, err)
		}
	}
	return v, nil
}
