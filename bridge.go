package deviceinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type namedHandler struct {
	service string
	handler Handler
}

// Bridge 是宿主侧的插件路由：按服务名找到插件，插件不认识 action 时继续尝试后注册的同名插件
type Bridge struct {
	mu       sync.RWMutex
	handlers []namedHandler
}

// NewBridge 创建空路由
func NewBridge() *Bridge {
	return &Bridge{}
}

// Register 注册插件。同一服务名可注册多个插件，按注册顺序尝试。
func (b *Bridge) Register(service string, h Handler) {
	if service == "" || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, namedHandler{service: service, handler: h})
}

func (b *Bridge) list(service string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Handler
	for _, h := range b.handlers {
		if h.service == service {
			out = append(out, h.handler)
		}
	}
	return out
}

// Dispatch 把请求交给第一个认领 action 的插件；无人认领时返回 ErrNotHandled
func (b *Bridge) Dispatch(ctx context.Context, service, action string, args json.RawMessage, cb Callback) error {
	for _, h := range b.list(service) {
		handled, err := h.Execute(ctx, action, args, cb)
		if err != nil {
			return fmt.Errorf("deviceinfo: %s.%s: %w", service, action, err)
		}
		if handled {
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", ErrNotHandled, service, action)
}

// CallbackFuncs 用两个函数实现 Callback
type CallbackFuncs struct {
	OnSuccess func(payload json.RawMessage)
	OnError   func(message string)
}

// Success 实现 Callback
func (c CallbackFuncs) Success(payload json.RawMessage) {
	if c.OnSuccess != nil {
		c.OnSuccess(payload)
	}
}

// Error 实现 Callback
func (c CallbackFuncs) Error(message string) {
	if c.OnError != nil {
		c.OnError(message)
	}
}
