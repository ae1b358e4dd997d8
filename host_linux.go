//go:build linux && !android
// +build linux,!android

package deviceinfo

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

const dmiBasePath = "/sys/class/dmi/id"

var (
	linuxPropsOnce sync.Once
	linuxProps     mapProperties
)

// systemProperties 把 DMI/SMBIOS 与 uname 信息映射到构建属性键上，只采集一次
func systemProperties() PropertySource {
	linuxPropsOnce.Do(func() {
		linuxProps = collectLinuxProperties(dmiBasePath)
	})
	return linuxProps
}

func collectLinuxProperties(dmiBase string) mapProperties {
	props := mapProperties{}

	// 读不到的文件保持为空（容器、权限不足等场景）
	dmiFields := map[string]string{
		"product_name":   PropModel,
		"sys_vendor":     PropManufacturer,
		"product_serial": PropSerial,
		"product_family": PropProduct,
		"board_vendor":   PropBrand,
		"board_name":     PropDevice,
		"bios_vendor":    PropHardware,
	}
	for file, key := range dmiFields {
		if data, err := readFileString(filepath.Join(dmiBase, file)); err == nil {
			props[key] = normalizeOneLine(data)
		}
	}
	// 没有 product_family 时退回 product_name
	if props[PropProduct] == "" {
		props[PropProduct] = props[PropModel]
	}
	// ARM 板卡通常没有 DMI，用 devicetree 的 model
	if props[PropModel] == "" {
		if data, err := readFileString("/sys/firmware/devicetree/base/model"); err == nil {
			props[PropModel] = strings.Trim(data, "\x00")
		}
	}

	var un unix.Utsname
	if err := unix.Uname(&un); err == nil {
		props[PropVersion] = unix.ByteSliceToString(un.Release[:])
		props[PropFingerprint] = unix.ByteSliceToString(un.Version[:])
		if props[PropDevice] == "" {
			props[PropDevice] = unix.ByteSliceToString(un.Machine[:])
		}
	}

	props[PropTimeZone] = linuxTimeZone()
	return props
}

func linuxTimeZone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return strings.TrimPrefix(tz, ":")
	}
	if data, err := readFileString("/etc/timezone"); err == nil && data != "" {
		return data
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			return target[i+len("zoneinfo/"):]
		}
	}
	return "UTC"
}

func readFileString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
