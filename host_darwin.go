//go:build darwin
// +build darwin

package deviceinfo

import (
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var (
	darwinPropsOnce sync.Once
	darwinProps     mapProperties
)

// systemProperties 用 sysctl 映射构建属性，只采集一次
func systemProperties() PropertySource {
	darwinPropsOnce.Do(func() {
		darwinProps = collectDarwinProperties()
	})
	return darwinProps
}

func collectDarwinProperties() mapProperties {
	props := mapProperties{
		PropModel:        sysctlString("hw.model"),
		PropManufacturer: "Apple",
		PropBrand:        "Apple",
		PropProduct:      sysctlString("hw.product"),
		PropHardware:     sysctlString("machdep.cpu.brand_string"),
		PropVersion:      sysctlString("kern.osproductversion"),
		PropSDKVersion:   sysctlString("kern.osrelease"),
		PropFingerprint:  sysctlString("kern.version"),
		PropDevice:       runtime.GOARCH,
	}
	if props[PropProduct] == "" {
		props[PropProduct] = props[PropModel]
	}
	if props[PropVersion] == "" {
		props[PropVersion] = props[PropSDKVersion]
	}
	tz, _ := time.Now().Zone()
	if name := time.Local.String(); name != "" && name != "Local" {
		tz = name
	}
	props[PropTimeZone] = tz
	return props
}

func sysctlString(name string) string {
	v, err := unix.Sysctl(name)
	if err != nil {
		return ""
	}
	return normalizeOneLine(strings.TrimRight(v, "\x00"))
}
