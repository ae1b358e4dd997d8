package deviceinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config 配置文件结构
type Config struct {
	PreferencesDir string   `json:"preferences_dir" yaml:"preferences_dir"`
	Namespace      string   `json:"namespace" yaml:"namespace"`
	Key            string   `json:"key" yaml:"key"`
	RulesFile      string   `json:"rules_file" yaml:"rules_file"`
	CPUInfoCommand []string `json:"cpuinfo_command" yaml:"cpuinfo_command"`
	CPUInfoTimeout string   `json:"cpuinfo_timeout" yaml:"cpuinfo_timeout"`
	WireFormat     string   `json:"wire_format" yaml:"wire_format"`
	LogLevel       string   `json:"log_level" yaml:"log_level"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		PreferencesDir: DefaultPreferencesDir(),
		Namespace:      DefaultNamespace,
		Key:            DefaultKey,
		CPUInfoCommand: append([]string(nil), DefaultCPUInfoCommand...),
		CPUInfoTimeout: DefaultCPUInfoTimeout.String(),
		WireFormat:     string(WireLegacy),
		LogLevel:       logrus.InfoLevel.String(),
	}
}

// DefaultPreferencesDir 返回用户配置目录下的 deviceinfo 子目录
func DefaultPreferencesDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "deviceinfo")
	}
	return ".deviceinfo"
}

// Validate 校验配置是否自洽，不做文件系统检查
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if c.PreferencesDir == "" {
		return fmt.Errorf("%w: preferences_dir is required", ErrInvalidConfig)
	}
	if err := validNamespace(c.Namespace); err != nil {
		return err
	}
	if c.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidConfig)
	}
	if _, err := c.cpuInfoTimeout(); err != nil {
		return err
	}
	if _, err := ParseWireFormat(c.WireFormat); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// cpuInfoTimeout 解析超时；"0" 与空串使用默认值，"off" 关闭超时
func (c *Config) cpuInfoTimeout() (time.Duration, error) {
	switch strings.TrimSpace(c.CPUInfoTimeout) {
	case "", "0":
		return DefaultCPUInfoTimeout, nil
	case "off", "none":
		return -1, nil
	}
	d, err := time.ParseDuration(c.CPUInfoTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: cpuinfo_timeout: %v", ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: cpuinfo_timeout must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// Options 把配置转换为 Provider 选项，会加载规则文件
func (c *Config) Options(log logrus.FieldLogger) (*Options, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	timeout, _ := c.cpuInfoTimeout()
	opts := &Options{
		Namespace:      c.Namespace,
		Key:            c.Key,
		CPUInfoCommand: c.CPUInfoCommand,
		CPUInfoTimeout: timeout,
		Logger:         log,
	}
	if c.RulesFile != "" {
		rs, err := LoadRuleset(c.RulesFile)
		if err != nil {
			return nil, err
		}
		opts.Rules = rs
	}
	return opts, nil
}

// Logger 按 LogLevel 创建 logrus 日志器
func (c *Config) Logger() *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// ConfigLoader 配置加载器
type ConfigLoader struct {
	searchPaths []string
	filename    string
}

// NewConfigLoader 创建配置加载器
func NewConfigLoader() *ConfigLoader {
	paths := []string{".", "./config"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "deviceinfo"))
	}
	paths = append(paths, "/etc/deviceinfo")
	return &ConfigLoader{
		searchPaths: paths,
		filename:    "deviceinfo",
	}
}

// WithSearchPaths 设置搜索路径
func (cl *ConfigLoader) WithSearchPaths(paths ...string) *ConfigLoader {
	cl.searchPaths = paths
	return cl
}

// WithFilename 设置配置文件名（不含扩展名）
func (cl *ConfigLoader) WithFilename(filename string) *ConfigLoader {
	cl.filename = filename
	return cl
}

// LoadConfig 在搜索路径中查找 .json/.yaml/.yml 配置文件；都不存在时返回默认配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	for _, path := range cl.searchPaths {
		for _, ext := range []string{".json", ".yaml", ".yml"} {
			full := filepath.Join(path, cl.filename+ext)
			cfg, err := LoadConfigFile(full)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cfg, err
		}
	}
	return DefaultConfig(), nil
}

// LoadConfigFile 加载单个配置文件，缺省字段取默认值
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deviceinfo: read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("deviceinfo: parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("deviceinfo: parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("deviceinfo: config %s: %w", path, err)
	}
	return cfg, nil
}
