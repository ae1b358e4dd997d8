package deviceinfo

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
)

// DefaultCPUInfoCommand 读取 CPU 描述伪文件的命令
var DefaultCPUInfoCommand = []string{"/system/bin/cat", "/proc/cpuinfo"}

const maxCPUInfoLine = 1 << 20

// ScanCPUInfo 逐行扫描 cpuinfo 文本，命中特征返回 true。
// Hardware 行只检查 HardwareValue；不含 Hardware 的 Revision 行才检查 RevisionValue。
func ScanCPUInfo(r io.Reader, sig CPUSignature) bool {
	if r == nil {
		return false
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxCPUInfoLine)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch {
		case strings.Contains(line, sig.HardwareMarker):
			if strings.Contains(line, sig.HardwareValue) {
				return true
			}
		case strings.Contains(line, sig.RevisionMarker):
			if strings.Contains(line, sig.RevisionValue) {
				return true
			}
		}
	}
	return false
}

// HasVirtualCPUSignature 执行 cpuinfo 命令并扫描输出。
// 命令非零退出时仍扫描已经读到的输出；启动失败或超时按 false 处理。
func (p *Provider) HasVirtualCPUSignature(ctx context.Context) bool {
	if p.host.Commands == nil || len(p.cpuCommand) == 0 {
		return false
	}
	if p.cpuTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cpuTimeout)
		defer cancel()
	}

	var out bytes.Buffer
	if err := p.host.Commands.Run(ctx, &out, p.cpuCommand[0], p.cpuCommand[1:]...); err != nil {
		if ctx.Err() != nil {
			p.log.WithError(err).Debug("cpuinfo timed out")
			return false
		}
		p.log.WithError(err).WithField("bytes", out.Len()).Debug("cpuinfo command failed")
	}
	if ScanCPUInfo(&out, p.rules.CPUInfo) {
		p.log.Debug("cpuinfo signature matched")
		return true
	}
	return false
}
