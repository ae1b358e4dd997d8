package deviceinfo

import "errors"

var (
	// ErrNotHandled 表示没有任何插件认领该 action，宿主应转交给其他处理者
	ErrNotHandled = errors.New("deviceinfo: action not handled")

	// ErrKeyNotFound 偏好存储中不存在该键
	ErrKeyNotFound = errors.New("deviceinfo: key not found")

	// ErrInvalidConfig 配置自相矛盾或缺少必填项
	ErrInvalidConfig = errors.New("deviceinfo: invalid config")

	// ErrUnknownField 规则引用了不存在的属性字段
	ErrUnknownField = errors.New("deviceinfo: unknown property field")
)
