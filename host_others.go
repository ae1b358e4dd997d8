//go:build !linux && !windows && !darwin && !android
// +build !linux,!windows,!darwin,!android

package deviceinfo

import (
	"os"
	"runtime"
	"strings"
	"time"
)

// systemProperties 其他平台只能给出运行时可知的少量信息
func systemProperties() PropertySource {
	tz := strings.TrimPrefix(os.Getenv("TZ"), ":")
	if tz == "" {
		tz, _ = time.Now().Zone()
	}
	return mapProperties{
		PropVersion:  runtime.GOOS,
		PropDevice:   runtime.GOARCH,
		PropTimeZone: tz,
	}
}
