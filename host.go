package deviceinfo

import (
	"context"
	"io"
)

// PropertySource 读取宿主暴露的构建属性（Android 上即 system properties）。
// 属性不存在时返回空字符串，不返回错误。
type PropertySource interface {
	Property(key string) string
}

// PropertySourceFunc 适配普通函数为 PropertySource
type PropertySourceFunc func(key string) string

// Property 实现 PropertySource
func (f PropertySourceFunc) Property(key string) string { return f(key) }

// Preferences 是某个命名空间下的键值存储
type Preferences interface {
	// GetString 返回键对应的值；键不存在时返回 ErrKeyNotFound
	GetString(key string) (string, error)
	// PutString 写入并持久化
	PutString(key, value string) error
}

// PreferenceStore 按命名空间打开 Preferences
type PreferenceStore interface {
	Open(namespace string) (Preferences, error)
}

// CommandRunner 启动子进程并把标准输出写入 stdout
type CommandRunner interface {
	Run(ctx context.Context, stdout io.Writer, name string, args ...string) error
}

// CommandRunnerFunc 适配普通函数为 CommandRunner
type CommandRunnerFunc func(ctx context.Context, stdout io.Writer, name string, args ...string) error

// Run 实现 CommandRunner
func (f CommandRunnerFunc) Run(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	return f(ctx, stdout, name, args...)
}

// Host 聚合 Provider 依赖的全部宿主能力。
//
// 默认实现见 SystemHost；测试中可以用任意假实现替换单个字段。
type Host struct {
	Properties  PropertySource
	Preferences PreferenceStore
	Commands    CommandRunner
}

// resetNotifier 由支持“外部清除”通知的存储实现（例如 FileStore）
type resetNotifier interface {
	WatchReset(ctx context.Context, namespace string, fn func()) error
}

// SystemHost 返回当前操作系统上的默认宿主：
// 构建属性来自平台相关的信息源，偏好存储落在 prefsDir，子进程用 os/exec 执行。
func SystemHost(prefsDir string) Host {
	return Host{
		Properties:  systemProperties(),
		Preferences: NewFileStore(prefsDir),
		Commands:    ExecRunner{},
	}
}
