// xexecctl 用失效安全执行器定时运行 shell 命令。
//
// 用法:
//
//	xexecctl <命令> [命令参数]
//
// 命令:
//
//	run     按配置文件调度任务，直到收到信号或运行时长到达
//	check   校验配置文件并列出任务
//
// 任务命令失败（非零退出码、超时）时，失败由执行器记录为一条 ERROR 日志，
// 周期任务继续按计划运行。运行期间修改配置文件中的 log.level 会立即生效。
//
// 退出码:
//
//	0: 成功（run 因信号或 --duration 正常结束）
//	1: 运行时错误
//	2: 参数或配置错误
//
// 示例:
//
//	xexecctl check --config jobs.yaml
//	xexecctl run --config jobs.yaml
//	xexecctl run --config jobs.yaml --duration 1h
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

// usageError 表示参数或配置错误，对应退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xexecctl",
		Usage:     "用失效安全执行器定时运行 shell 命令",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createRunCommand(),
			createCheckCommand(),
		},
		OnUsageError:   onUsageError,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{err: err}
}

// run 执行命令行并把错误映射为退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return exitOK
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "usage error: %v\n", ue.err)
		return exitUsage
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitRuntime
}
