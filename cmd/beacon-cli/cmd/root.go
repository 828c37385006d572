package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"beacon-core/pkg/config"
	"beacon-core/pkg/logger"
)

var cfgFile string

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "beacon-cli",
	Short: "区块链节点一致性巡检工具",
	Long: `对配置中的节点做一次性巡检: 查看各节点高度与最佳区块哈希，
或者手动跑一次完整的分叉/高度不同步检测。`,
	SilenceUsage: true,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认查找 ./config.yaml, ~/.beacon/config.yaml)")
}

// loadConfig 读取配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.Env)
	return cfg, nil
}
