// Package deviceinfo provides the device identity facts a hybrid application
// runtime asks its native side for: platform name, OS version, model,
// manufacturer, serial, build fingerprint/brand/device, a per-install UUID and
// a best-effort emulator detection.
//
// https://github.com/darkit/deviceinfo
//
// All host access goes through the collaborators in Host (build properties,
// a namespaced key-value store, a subprocess runner), so a Provider can run
// against the real device (see SystemHost) or against fakes in tests.
//
// The per-install UUID is random, generated on the first request and stored
// in the preference store. Clearing the application data (removing the
// store) yields a new UUID. If the store is unavailable an ephemeral UUID is
// returned for that call only.
//
// Emulator detection is a denylist of string rules (see Ruleset) OR a match on
// the CPU description text; false negatives are expected.
package deviceinfo // import "github.com/darkit/deviceinfo"

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultNamespace 偏好存储命名空间
	DefaultNamespace = "PREF_UNIQUE_ID"
	// DefaultKey 保存 UUID 的键
	DefaultKey = "PREF_UNIQUE_ID"
	// DefaultCPUInfoTimeout 读取 cpuinfo 的超时时间
	DefaultCPUInfoTimeout = 3 * time.Second
)

// DeviceInfo 是一次请求的结果，构造后不再修改
type DeviceInfo struct {
	UUID         string `json:"uuid"`
	Platform     string `json:"platform"`
	Version      string `json:"version"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	SerialNumber string `json:"serialNumber"`
	Fingerprint  string `json:"fingerprint"`
	Brand        string `json:"brand"`
	Device       string `json:"device"`
	IsVirtual    bool   `json:"isVirtual"`
	SDKVersion   string `json:"sdkVersion"`
	TimeZone     string `json:"timeZone"`
}

// Options 调整 Provider 的行为，零值字段使用默认值
type Options struct {
	Namespace      string
	Key            string
	Rules          *Ruleset
	CPUInfoCommand []string
	// CPUInfoTimeout 小于 0 表示不设超时
	CPUInfoTimeout time.Duration
	Logger         logrus.FieldLogger
}

// Provider 组合属性读取、标识存储与两种虚拟化判断。
//
// Provider 持有跨请求的缓存（平台名与已持久化的 UUID），可并发使用。
type Provider struct {
	host       Host
	namespace  string
	key        string
	rules      *Ruleset
	cpuCommand []string
	cpuTimeout time.Duration
	log        logrus.FieldLogger

	mu       sync.Mutex
	platform string
	uuid     string
}

// New 创建 Provider；opts 可以为 nil
func New(host Host, opts *Options) *Provider {
	if opts == nil {
		opts = &Options{}
	}
	p := &Provider{
		host:       host,
		namespace:  opts.Namespace,
		key:        opts.Key,
		rules:      opts.Rules,
		cpuCommand: opts.CPUInfoCommand,
		cpuTimeout: opts.CPUInfoTimeout,
		log:        opts.Logger,
	}
	if p.namespace == "" {
		p.namespace = DefaultNamespace
	}
	if p.key == "" {
		p.key = DefaultKey
	}
	if p.rules == nil {
		p.rules = DefaultRuleset()
	}
	if len(p.cpuCommand) == 0 {
		p.cpuCommand = append([]string(nil), DefaultCPUInfoCommand...)
	}
	if p.cpuTimeout == 0 {
		p.cpuTimeout = DefaultCPUInfoTimeout
	}
	if p.log == nil {
		p.log = packageLogger()
	}
	return p
}

// Get 读取全部信息并组装 DeviceInfo，不会失败
func (p *Provider) Get(ctx context.Context) *DeviceInfo {
	props := ReadProperties(p.host.Properties)

	virtual := false
	if rule, ok := p.rules.Match(props); ok {
		p.log.WithField("rule", rule).Debug("build properties match emulator rule")
		virtual = true
	}
	if p.HasVirtualCPUSignature(ctx) {
		virtual = true
	}

	return &DeviceInfo{
		UUID:         p.GetOrCreateUUID(),
		Platform:     p.platformFor(props.Manufacturer),
		Version:      props.Version,
		Model:        props.Model,
		Manufacturer: props.Manufacturer,
		SerialNumber: props.Serial,
		Fingerprint:  props.Fingerprint,
		Brand:        props.Brand,
		Device:       props.Device,
		IsVirtual:    virtual,
		SDKVersion:   props.SDKVersion,
		TimeZone:     props.TimeZone,
	}
}

// Platform 返回平台名。首次调用时按厂商属性计算，之后一直返回缓存值
func (p *Provider) Platform() string {
	return p.platformFor(ReadProperties(p.host.Properties).Manufacturer)
}

func (p *Provider) platformFor(manufacturer string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.platform == "" {
		p.platform = ResolvePlatform(manufacturer)
	}
	return p.platform
}

// IsLikelyVirtual 用 Provider 的规则判断属性是否像模拟器
func (p *Provider) IsLikelyVirtual(props Properties) bool {
	return p.rules.IsLikelyVirtual(props)
}
