package deviceinfo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ExecRunner 是基于 os/exec 的 CommandRunner
type ExecRunner struct{}

// Run 执行命令；失败时把 stderr 内容附在错误里
func (ExecRunner) Run(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	var stderr bytes.Buffer
	if err := run(ctx, stdout, &stderr, name, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("deviceinfo: %s: %w", name, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("deviceinfo: %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("deviceinfo: %s: %w", name, err)
	}
	return nil
}

func run(ctx context.Context, stdout, stderr io.Writer, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}
