package deviceinfo

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// GetOrCreateUUID 返回持久化的安装标识，不存在时生成并写入。
// 存储出错时返回一个不落盘的临时 UUID，因此存储故障下不保证稳定。
func (p *Provider) GetOrCreateUUID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.uuid != "" {
		return p.uuid
	}
	id, err := p.loadOrCreateUUID()
	if err != nil {
		p.log.WithError(err).Warn("preferences unavailable, using ephemeral uuid")
		return uuid.NewString()
	}
	p.uuid = id
	return id
}

func (p *Provider) loadOrCreateUUID() (string, error) {
	if p.host.Preferences == nil {
		return "", errors.New("deviceinfo: no preference store")
	}
	prefs, err := p.host.Preferences.Open(p.namespace)
	if err != nil {
		return "", err
	}
	id, err := prefs.GetString(p.key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := prefs.PutString(p.key, id); err != nil {
		return "", err
	}
	p.log.WithField("namespace", p.namespace).Debug("generated new uuid")
	return id, nil
}

// forgetUUID 丢弃缓存，下次请求重新读取存储
func (p *Provider) forgetUUID() {
	p.mu.Lock()
	p.uuid = ""
	p.mu.Unlock()
}

// WatchStore 在存储支持时监听外部清除，清除后丢弃缓存的 UUID 并调用 onReset（可为 nil）。
// 存储不支持监听时直接返回 nil。
func (p *Provider) WatchStore(ctx context.Context, onReset func()) error {
	n, ok := p.host.Preferences.(resetNotifier)
	if !ok {
		return nil
	}
	return n.WatchReset(ctx, p.namespace, func() {
		p.forgetUUID()
		if onReset != nil {
			onReset()
		}
	})
}
