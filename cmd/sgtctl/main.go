package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sargenteacao/backend/internal/cli"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "sgtctl",
		Short: "sgtctl - 勤务编排后台管理工具",
		Long: `sgtctl 直接连接数据库执行运维操作：
数据库迁移、查看某日效力列表、创建操作员账号。`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（缺省读取 ./config/config.yaml）")

	rootCmd.AddCommand(cli.MigrateCmd(&configPath))
	rootCmd.AddCommand(cli.EfetivoCmd(&configPath))
	rootCmd.AddCommand(cli.CreateUserCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
