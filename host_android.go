//go:build android
// +build android

package deviceinfo

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"
)

const (
	getpropPath    = "/system/bin/getprop"
	getpropTimeout = 2 * time.Second
)

// getpropSource 通过 getprop 读取 system properties
type getpropSource struct{}

func systemProperties() PropertySource {
	return getpropSource{}
}

func (getpropSource) Property(key string) string {
	ctx, cancel := context.WithTimeout(context.Background(), getpropTimeout)
	defer cancel()

	var out bytes.Buffer
	if err := run(ctx, &out, io.Discard, getpropPath, key); err != nil {
		packageLogger().WithError(err).WithField("key", key).Debug("getprop failed")
		return ""
	}
	return strings.TrimSpace(out.String())
}
