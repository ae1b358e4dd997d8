//go:build windows
// +build windows

package deviceinfo

import (
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sys/windows/registry"
)

const (
	biosKey     = `HARDWARE\DESCRIPTION\System\BIOS`
	versionKey  = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`
	timeZoneKey = `SYSTEM\CurrentControlSet\Control\TimeZoneInformation`
)

var (
	windowsPropsOnce sync.Once
	windowsProps     mapProperties
)

// systemProperties 从注册表的 BIOS 与 CurrentVersion 键映射构建属性，只采集一次
func systemProperties() PropertySource {
	windowsPropsOnce.Do(func() {
		windowsProps = collectWindowsProperties()
	})
	return windowsProps
}

func collectWindowsProperties() mapProperties {
	lm := registry.LOCAL_MACHINE
	props := mapProperties{
		PropModel:        readRegistryString(lm, biosKey, "SystemProductName"),
		PropManufacturer: readRegistryString(lm, biosKey, "SystemManufacturer"),
		PropProduct:      readRegistryString(lm, biosKey, "SystemFamily"),
		PropBrand:        readRegistryString(lm, biosKey, "BaseBoardManufacturer"),
		PropDevice:       readRegistryString(lm, biosKey, "BaseBoardProduct"),
		PropHardware:     readRegistryString(lm, biosKey, "BIOSVendor"),
		PropVersion:      readRegistryString(lm, versionKey, "DisplayVersion"),
		PropSDKVersion:   readRegistryString(lm, versionKey, "CurrentBuild"),
		PropFingerprint:  readRegistryString(lm, versionKey, "BuildLabEx"),
		PropTimeZone:     readRegistryString(lm, timeZoneKey, "TimeZoneKeyName"),
	}
	// 旧系统没有 DisplayVersion
	if props[PropVersion] == "" {
		props[PropVersion] = readRegistryString(lm, versionKey, "CurrentVersion")
	}
	if props[PropDevice] == "" {
		props[PropDevice] = runtime.GOARCH
	}
	// 序列号需要 WMI，这里不读取，交给占位值
	return props
}

func readRegistryString(root registry.Key, path, name string) string {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return ""
	}
	defer k.Close()

	s, _, err := k.GetStringValue(name)
	if err != nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(s), "\x00")
}
