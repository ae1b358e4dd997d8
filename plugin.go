package deviceinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ActionGetDeviceInfo 是插件唯一支持的 action
const ActionGetDeviceInfo = "getDeviceInfo"

// WireFormat 决定响应对象的键名
type WireFormat string

const (
	// WireLegacy 与既有 JS 端完全一致：fingerprint/brand/device 三个键带尾随空格，序列号键为 serial
	WireLegacy WireFormat = "legacy"
	// WireClean 去掉尾随空格，序列号键为 serialNumber，并附带 sdkVersion 与 timeZone
	WireClean WireFormat = "clean"
)

// ParseWireFormat 解析配置中的格式名，空串视为 WireLegacy
func ParseWireFormat(s string) (WireFormat, error) {
	switch WireFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", WireLegacy:
		return WireLegacy, nil
	case WireClean:
		return WireClean, nil
	default:
		return "", fmt.Errorf("%w: unknown wire format %q", ErrInvalidConfig, s)
	}
}

type legacyPayload struct {
	UUID         string `json:"uuid"`
	Version      string `json:"version"`
	Platform     string `json:"platform"`
	Fingerprint  string `json:"fingerprint "`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Brand        string `json:"brand "`
	Device       string `json:"device "`
	IsVirtual    bool   `json:"isVirtual"`
	Serial       string `json:"serial"`
}

// Encode 按指定格式序列化
func (d *DeviceInfo) Encode(format WireFormat) ([]byte, error) {
	switch format {
	case WireClean:
		return json.Marshal(d)
	case WireLegacy, "":
		return json.Marshal(legacyPayload{
			UUID:         d.UUID,
			Version:      d.Version,
			Platform:     d.Platform,
			Fingerprint:  d.Fingerprint,
			Model:        d.Model,
			Manufacturer: d.Manufacturer,
			Brand:        d.Brand,
			Device:       d.Device,
			IsVirtual:    d.IsVirtual,
			Serial:       d.SerialNumber,
		})
	default:
		return nil, fmt.Errorf("%w: unknown wire format %q", ErrInvalidConfig, format)
	}
}

// Callback 把结果交还给宿主桥
type Callback interface {
	Success(payload json.RawMessage)
	Error(message string)
}

// Handler 是宿主桥可以路由到的插件
type Handler interface {
	// Execute 返回 false 表示不认识该 action，宿主应尝试其他插件
	Execute(ctx context.Context, action string, args json.RawMessage, cb Callback) (bool, error)
}

// Plugin 把 Provider 暴露给宿主桥
type Plugin struct {
	provider *Provider
	format   WireFormat
}

// NewPlugin 创建插件，format 为空时使用 WireLegacy
func NewPlugin(provider *Provider, format WireFormat) *Plugin {
	if format == "" {
		format = WireLegacy
	}
	return &Plugin{provider: provider, format: format}
}

// Execute 处理一次请求。参数列表不被使用。
func (pl *Plugin) Execute(ctx context.Context, action string, _ json.RawMessage, cb Callback) (bool, error) {
	if action != ActionGetDeviceInfo {
		return false, nil
	}

	info := pl.provider.Get(ctx)
	payload, err := info.Encode(pl.format)
	if err != nil {
		cb.Error(err.Error())
		return true, err
	}
	cb.Success(payload)
	pl.provider.log.WithField("payload", string(payload)).Debug("device info")
	return true, nil
}
