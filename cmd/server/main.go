// Package main 是服务端的入口点
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDir 配置文件目录，由 --config 指定
var configDir string

var rootCmd = &cobra.Command{
	Use:   "pocket-chat",
	Short: "Pocket Chat - 会话存储与上游转发服务",
	Long: `Pocket Chat 服务端

保存会话、消息、提示词库和上游端点，并把 /api/v1/* 请求原样转发到所选端点。

不带子命令运行时等同于 serve。`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./configs", "配置文件目录")
}

func main() {
	Execute()
}
