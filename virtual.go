package deviceinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Condition 对单个属性字段做前缀或子串匹配，Prefix 与 Contains 二选一
type Condition struct {
	Field    string `json:"field" yaml:"field"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty"`
}

func (c Condition) match(p Properties) bool {
	v, ok := p.field(c.Field)
	if !ok {
		return false
	}
	if c.Prefix != "" {
		return strings.HasPrefix(v, c.Prefix)
	}
	return strings.Contains(v, c.Contains)
}

func (c Condition) validate() error {
	if _, ok := (Properties{}).field(c.Field); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, c.Field)
	}
	if (c.Prefix == "") == (c.Contains == "") {
		return fmt.Errorf("%w: condition on %q needs exactly one of prefix or contains", ErrInvalidConfig, c.Field)
	}
	return nil
}

// Rule 是一条模拟器特征：All 中的条件全部满足才命中
type Rule struct {
	Name string      `json:"name" yaml:"name"`
	All  []Condition `json:"all" yaml:"all"`
}

// Match 判断规则是否命中
func (r Rule) Match(p Properties) bool {
	if len(r.All) == 0 {
		return false
	}
	for _, c := range r.All {
		if !c.match(p) {
			return false
		}
	}
	return true
}

// CPUSignature 描述 /proc/cpuinfo 中的模拟器特征。
// 行内同时包含 HardwareMarker 与 HardwareValue，或同时包含 RevisionMarker 与 RevisionValue，即视为命中。
type CPUSignature struct {
	HardwareMarker string `json:"hardware_marker" yaml:"hardware_marker"`
	HardwareValue  string `json:"hardware_value" yaml:"hardware_value"`
	RevisionMarker string `json:"revision_marker" yaml:"revision_marker"`
	RevisionValue  string `json:"revision_value" yaml:"revision_value"`
}

// DefaultCPUSignature 返回内置的 cpuinfo 特征
func DefaultCPUSignature() CPUSignature {
	return CPUSignature{
		HardwareMarker: "Hardware",
		HardwareValue:  "placeholder",
		RevisionMarker: "Revision",
		RevisionValue:  "000b",
	}
}

func (s CPUSignature) validate() error {
	if s.HardwareMarker == "" || s.HardwareValue == "" || s.RevisionMarker == "" || s.RevisionValue == "" {
		return fmt.Errorf("%w: cpuinfo signature has empty marker", ErrInvalidConfig)
	}
	return nil
}

// Ruleset 是可外部编辑的模拟器特征黑名单。
// 任意一条 Rule 命中即判定为虚拟设备；列表允许漏报，不作为安全边界。
type Ruleset struct {
	// IncludeDefaults 为 true 时在文件规则之前加上内置规则
	IncludeDefaults bool         `json:"include_defaults,omitempty" yaml:"include_defaults,omitempty"`
	Rules           []Rule       `json:"rules" yaml:"rules"`
	CPUInfo         CPUSignature `json:"cpuinfo" yaml:"cpuinfo"`
}

// DefaultRuleset 返回内置规则的副本
func DefaultRuleset() *Ruleset {
	contains := func(name, field, value string) Rule {
		return Rule{Name: name, All: []Condition{{Field: field, Contains: value}}}
	}
	prefix := func(name, field, value string) Rule {
		return Rule{Name: name, All: []Condition{{Field: field, Prefix: value}}}
	}
	return &Ruleset{
		Rules: []Rule{
			{Name: "generic-brand-device", All: []Condition{
				{Field: "brand", Prefix: "generic"},
				{Field: "device", Prefix: "generic"},
			}},
			prefix("generic-fingerprint", "fingerprint", "generic"),
			prefix("unknown-fingerprint", "fingerprint", "unknown"),
			contains("goldfish", "hardware", "goldfish"),
			contains("ranchu", "hardware", "ranchu"),
			contains("google-sdk-model", "model", "google_sdk"),
			contains("emulator-model", "model", "Emulator"),
			contains("sdk-x86-model", "model", "Android SDK built for x86"),
			contains("genymotion", "manufacturer", "Genymotion"),
			contains("sdk-google-product", "product", "sdk_google"),
			contains("sdk-product", "product", "sdk"),
			contains("sdk-x86-product", "product", "sdk_x86"),
			contains("sdk-gphone64-product", "product", "sdk_gphone64_arm64"),
			contains("vbox86p-product", "product", "vbox86p"),
			contains("vbox-product", "product", "vbox"),
			contains("emulator-product", "product", "emulator"),
			contains("simulator-product", "product", "simulator"),
		},
		CPUInfo: DefaultCPUSignature(),
	}
}

// Match 返回第一条命中的规则名
func (rs *Ruleset) Match(p Properties) (string, bool) {
	if rs == nil {
		return "", false
	}
	for _, r := range rs.Rules {
		if r.Match(p) {
			return r.Name, true
		}
	}
	return "", false
}

// IsLikelyVirtual 是 Match 的布尔形式
func (rs *Ruleset) IsLikelyVirtual(p Properties) bool {
	_, ok := rs.Match(p)
	return ok
}

// Validate 检查所有规则与 cpuinfo 特征
func (rs *Ruleset) Validate() error {
	if rs == nil {
		return fmt.Errorf("%w: ruleset is nil", ErrInvalidConfig)
	}
	for i, r := range rs.Rules {
		if len(r.All) == 0 {
			return fmt.Errorf("%w: rule %d (%s) has no conditions", ErrInvalidConfig, i, r.Name)
		}
		for _, c := range r.All {
			if err := c.validate(); err != nil {
				return fmt.Errorf("deviceinfo: rule %d (%s): %w", i, r.Name, err)
			}
		}
	}
	return rs.CPUInfo.validate()
}

// IsLikelyVirtual 使用内置规则判断
func IsLikelyVirtual(p Properties) bool {
	return DefaultRuleset().IsLikelyVirtual(p)
}

// ParseRuleset 解析 YAML（JSON 是其子集）格式的规则。
// 未给出 cpuinfo 段时沿用内置特征。
func ParseRuleset(data []byte) (*Ruleset, error) {
	rs := &Ruleset{CPUInfo: DefaultCPUSignature()}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("deviceinfo: parse rules: %w", err)
	}
	return finishRuleset(rs)
}

// LoadRuleset 按扩展名加载规则文件（.json 或 .yaml/.yml）
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deviceinfo: read rules: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		rs := &Ruleset{CPUInfo: DefaultCPUSignature()}
		if err := json.Unmarshal(data, rs); err != nil {
			return nil, fmt.Errorf("deviceinfo: parse rules %s: %w", path, err)
		}
		return finishRuleset(rs)
	}
	return ParseRuleset(data)
}

func finishRuleset(rs *Ruleset) (*Ruleset, error) {
	if rs.IncludeDefaults {
		rs.Rules = append(DefaultRuleset().Rules, rs.Rules...)
		rs.IncludeDefaults = false
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}
