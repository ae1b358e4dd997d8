package deviceinfo

import "strings"

// 构建属性键，与 Android system properties 同名；非 Android 宿主把本地信息源映射到相同的键上
const (
	PropVersion      = "ro.build.version.release"
	PropSDKVersion   = "ro.build.version.sdk"
	PropModel        = "ro.product.model"
	PropManufacturer = "ro.product.manufacturer"
	PropSerial       = "ro.serialno"
	PropProduct      = "ro.product.name"
	PropFingerprint  = "ro.build.fingerprint"
	PropBrand        = "ro.product.brand"
	PropDevice       = "ro.product.device"
	PropHardware     = "ro.hardware"
	PropTimeZone     = "persist.sys.timezone"
)

// UnknownSerial 是宿主禁止读取序列号时的占位值（等同 Build.UNKNOWN）
const UnknownSerial = "unknown"

// Properties 是一次请求里读取到的静态构建信息
type Properties struct {
	Version      string `json:"version"`
	SDKVersion   string `json:"sdk_version"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Serial       string `json:"serial"`
	Product      string `json:"product"`
	Fingerprint  string `json:"fingerprint"`
	Brand        string `json:"brand"`
	Device       string `json:"device"`
	Hardware     string `json:"hardware"`
	TimeZone     string `json:"time_zone"`
}

// ReadProperties 原样读取各构建属性，不做任何转换。
// 只有序列号在为空时会替换为 UnknownSerial。
func ReadProperties(src PropertySource) Properties {
	if src == nil {
		return Properties{Serial: UnknownSerial}
	}
	p := Properties{
		Version:      src.Property(PropVersion),
		SDKVersion:   src.Property(PropSDKVersion),
		Model:        src.Property(PropModel),
		Manufacturer: src.Property(PropManufacturer),
		Serial:       src.Property(PropSerial),
		Product:      src.Property(PropProduct),
		Fingerprint:  src.Property(PropFingerprint),
		Brand:        src.Property(PropBrand),
		Device:       src.Property(PropDevice),
		Hardware:     src.Property(PropHardware),
		TimeZone:     src.Property(PropTimeZone),
	}
	if p.Serial == "" {
		p.Serial = UnknownSerial
	}
	return p
}

// field 按规则里的字段名取值，第二个返回值表示字段名是否合法
func (p Properties) field(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "version":
		return p.Version, true
	case "sdk_version", "sdk":
		return p.SDKVersion, true
	case "model":
		return p.Model, true
	case "manufacturer":
		return p.Manufacturer, true
	case "serial":
		return p.Serial, true
	case "product":
		return p.Product, true
	case "fingerprint":
		return p.Fingerprint, true
	case "brand":
		return p.Brand, true
	case "device":
		return p.Device, true
	case "hardware":
		return p.Hardware, true
	case "time_zone", "timezone":
		return p.TimeZone, true
	default:
		return "", false
	}
}

// mapProperties 把一张静态表包装成 PropertySource，供非 Android 宿主和测试使用
type mapProperties map[string]string

func (m mapProperties) Property(key string) string { return m[key] }

// normalizeOneLine 把多行内容压缩成一行，避免 sysfs/注册表里的换行进入输出
func normalizeOneLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
